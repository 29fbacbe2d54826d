package store

import (
	"context"
	"errors"
	"testing"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/client"
	"github.com/starford/ansuz/internal/devserver"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/testutil"
)

// restStore wires a REST store against an in-process dev server with a
// real signed-in token.
func restStore(t *testing.T) (*REST, *devserver.DB) {
	t.Helper()
	ts, db := testutil.TestServer(t)
	testutil.SeedUser(t, db, "editor@test", "secret1")

	c := client.New(ts.URL, nil)
	var auth models.AuthResponse
	err := c.Post(context.Background(), "/auth/login",
		map[string]string{"email": "editor@test", "password": "secret1"}, false, &auth)
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	authed := client.New(ts.URL, client.StaticToken(auth.Token))
	return NewREST(authed), db
}

func TestRESTRoundTrip(t *testing.T) {
	s, _ := restStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, models.KindPost, models.Draft{
		Title: "Hello", Slug: "hello", Content: "body",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.Get(ctx, models.KindPost, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Slug != "hello" {
		t.Errorf("slug = %q", got.Slug)
	}

	updated, err := s.Update(ctx, models.KindPost, created.ID, models.Draft{
		Title: "Hello v2", Slug: "hello", Content: "body", Status: models.StatusPublished,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "Hello v2" || updated.PublishedAt == nil {
		t.Errorf("updated = %+v", updated)
	}

	records, err := s.List(ctx, models.KindPost, models.StatusPublished)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("published = %d", len(records))
	}

	if err := s.Delete(ctx, models.KindPost, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, models.KindPost, created.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("get after delete = %v", err)
	}
}

func TestRESTConflictMapsToSentinel(t *testing.T) {
	s, _ := restStore(t)
	ctx := context.Background()

	draft := models.Draft{Title: "One", Slug: "dup", Content: "a"}
	if _, err := s.Create(ctx, models.KindPost, draft); err != nil {
		t.Fatal(err)
	}
	_, err := s.Create(ctx, models.KindPost, draft)
	if !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("duplicate slug err = %v", err)
	}
}

func TestRESTUnauthorized(t *testing.T) {
	ts, _ := testutil.TestServer(t)
	s := NewREST(client.New(ts.URL, nil))

	_, err := s.List(context.Background(), models.KindPost, "")
	if !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("err = %v, want unauthorized", err)
	}
}

func TestRESTStats(t *testing.T) {
	s, db := restStore(t)
	ctx := context.Background()

	for _, d := range []models.Draft{
		{Title: "P1", Slug: "p1", Status: models.StatusPublished},
		{Title: "P2", Slug: "p2", Status: models.StatusDraft},
		{Title: "P3", Slug: "p3", Status: models.StatusDraft},
	} {
		testutil.SeedRecord(t, db, models.KindPost, d)
	}
	testutil.SeedRecord(t, db, models.KindPage, models.Draft{
		Title: "About", Slug: "about", Status: models.StatusPublished,
	})

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	want := models.Stats{TotalPosts: 3, PublishedPosts: 1, DraftPosts: 2, TotalPages: 1}
	if *stats != want {
		t.Errorf("stats = %+v, want %+v", *stats, want)
	}
}
