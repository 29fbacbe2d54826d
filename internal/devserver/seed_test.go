package devserver

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/ansuz/internal/models"
)

func writeFixture(t *testing.T, dir, name string, fixture any) {
	t.Helper()
	data, err := json.Marshal(fixture)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSeed(t *testing.T) {
	_, db := testServer(t)
	dir := t.TempDir()

	writeFixture(t, dir, "welcome.json", Fixture{
		Draft: models.Draft{Title: "Welcome Post", Content: "hi", Status: models.StatusPublished},
	})
	writeFixture(t, dir, "about.json", Fixture{
		Kind:  models.KindPage,
		Draft: models.Draft{Title: "About", Slug: "about", Content: "about us"},
	})
	// Not JSON; skipped without failing the pass.
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Seed(db, dir, discardLogger()); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	// Missing kind defaults to post, missing slug derives from the title.
	post, err := db.GetRecordBySlug(models.KindPost, "welcome-post", "")
	if err != nil {
		t.Fatalf("seeded post: %v", err)
	}
	if post.Status != models.StatusPublished {
		t.Errorf("post status = %s", post.Status)
	}
	if _, err := db.GetRecordBySlug(models.KindPage, "about", ""); err != nil {
		t.Errorf("seeded page: %v", err)
	}
}

func TestSeedUpsertsBySlug(t *testing.T) {
	_, db := testServer(t)
	dir := t.TempDir()

	writeFixture(t, dir, "a.json", Fixture{
		Draft: models.Draft{Title: "Original", Slug: "fixed-slug", Content: "v1"},
	})
	if err := Seed(db, dir, discardLogger()); err != nil {
		t.Fatal(err)
	}

	writeFixture(t, dir, "a.json", Fixture{
		Draft: models.Draft{Title: "Updated", Slug: "fixed-slug", Content: "v2"},
	})
	if err := Seed(db, dir, discardLogger()); err != nil {
		t.Fatal(err)
	}

	records, err := db.ListRecords(models.KindPost, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	if records[0].Title != "Updated" || records[0].Content != "v2" {
		t.Errorf("record = %+v", records[0])
	}
}
