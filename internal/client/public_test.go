package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/starford/ansuz/internal/fallback"
	"github.com/starford/ansuz/internal/models"
)

func TestReaderServesLiveContent(t *testing.T) {
	live := []models.Record{{ID: "42", Title: "Live", Slug: "live", Status: models.StatusPublished}}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/posts":
			json.NewEncoder(w).Encode(live)
		case "/api/posts/live":
			json.NewEncoder(w).Encode(live[0])
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"post not found"}`))
		}
	}))
	defer ts.Close()

	reader := NewReader(New(ts.URL, nil), fallback.Default())
	ctx := context.Background()

	posts := reader.Posts(ctx)
	if len(posts) != 1 || posts[0].ID != "42" {
		t.Fatalf("posts = %+v", posts)
	}
	if got := reader.PostBySlug(ctx, "live"); got == nil || got.Slug != "live" {
		t.Errorf("PostBySlug = %+v", got)
	}
}

func TestReaderFallsBackWhenBackendErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"internal error"}`))
	}))
	defer ts.Close()

	reader := NewReader(New(ts.URL, nil), fallback.Default())
	ctx := context.Background()

	posts := reader.Posts(ctx)
	if len(posts) != 3 {
		t.Fatalf("fallback posts = %d, want 3", len(posts))
	}
	for _, p := range posts {
		if p.Status != models.StatusPublished {
			t.Errorf("fallback post %s status = %s", p.Slug, p.Status)
		}
	}

	got := reader.PostBySlug(ctx, "getting-started-with-headless-cms")
	if got == nil || got.Slug != "getting-started-with-headless-cms" {
		t.Errorf("fallback PostBySlug = %+v", got)
	}
	if got := reader.PostBySlug(ctx, "no-such-slug"); got != nil {
		t.Errorf("unknown fallback slug = %+v", got)
	}
}

func TestReaderFallsBackWhenBackendDown(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close()

	reader := NewReader(New(ts.URL, nil), fallback.Default())
	if posts := reader.Posts(context.Background()); len(posts) != 3 {
		t.Errorf("fallback posts = %d, want 3", len(posts))
	}
}

func TestReaderDisabledFallback(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	reader := NewReader(New(ts.URL, nil), fallback.Disabled{})
	ctx := context.Background()

	if posts := reader.Posts(ctx); len(posts) != 0 {
		t.Errorf("disabled fallback posts = %d", len(posts))
	}
	if got := reader.PageBySlug(ctx, "about"); got != nil {
		t.Errorf("disabled fallback page = %+v", got)
	}
}
