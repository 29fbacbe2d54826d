package editor

import (
	"context"
	"testing"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
)

func threeRecords() []models.Record {
	return []models.Record{
		{ID: "1", Title: "First", Slug: "first", Status: models.StatusPublished},
		{ID: "2", Title: "Second", Slug: "second", Status: models.StatusDraft},
		{ID: "3", Title: "Third", Slug: "third", Status: models.StatusPublished},
	}
}

func TestListRefreshAndFilter(t *testing.T) {
	fs := &fakeStore{records: threeRecords()}
	view := NewList(fs, models.KindPost)
	ctx := context.Background()

	if err := view.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(view.Items()) != 3 {
		t.Fatalf("items = %d", len(view.Items()))
	}

	if err := view.SetFilter(ctx, models.StatusPublished); err != nil {
		t.Fatalf("SetFilter: %v", err)
	}
	if len(view.Items()) != 2 {
		t.Errorf("published items = %d", len(view.Items()))
	}

	// Empty filter means everything.
	if err := view.SetFilter(ctx, ""); err != nil {
		t.Fatal(err)
	}
	if len(view.Items()) != 3 {
		t.Errorf("unfiltered items = %d", len(view.Items()))
	}
}

func TestDeletePreservesOrder(t *testing.T) {
	fs := &fakeStore{records: threeRecords()}
	view := NewList(fs, models.KindPost)
	ctx := context.Background()
	if err := view.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	confirmed := false
	err := view.Delete(ctx, "2", func(r models.Record) bool {
		confirmed = true
		if r.ID != "2" {
			t.Errorf("confirm got record %s", r.ID)
		}
		return true
	})
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !confirmed {
		t.Fatal("confirm not consulted")
	}

	items := view.Items()
	if len(items) != 2 || items[0].ID != "1" || items[1].ID != "3" {
		t.Errorf("items after delete = %+v", items)
	}
	// Removed locally, no re-fetch.
	if fs.listCalls != 1 {
		t.Errorf("list calls = %d, want 1", fs.listCalls)
	}
}

func TestDeleteWithoutConfirmAborts(t *testing.T) {
	fs := &fakeStore{records: threeRecords()}
	view := NewList(fs, models.KindPost)
	ctx := context.Background()
	if err := view.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	if err := view.Delete(ctx, "2", nil); err != nil {
		t.Fatalf("nil confirm errored: %v", err)
	}
	if fs.deleteds != 0 {
		t.Errorf("store delete called %d times without confirmation", fs.deleteds)
	}
	if len(view.Items()) != 3 {
		t.Errorf("items = %d", len(view.Items()))
	}
}

func TestDeleteDeclinedDoesNothing(t *testing.T) {
	fs := &fakeStore{records: threeRecords()}
	view := NewList(fs, models.KindPost)
	ctx := context.Background()
	if err := view.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	if err := view.Delete(ctx, "2", func(models.Record) bool { return false }); err != nil {
		t.Fatalf("declined delete errored: %v", err)
	}
	if fs.deleteds != 0 {
		t.Errorf("store delete called %d times", fs.deleteds)
	}
	if len(view.Items()) != 3 {
		t.Errorf("items = %d", len(view.Items()))
	}
}

func TestDeleteFailureLeavesListUnchanged(t *testing.T) {
	fs := &fakeStore{records: threeRecords()}
	view := NewList(fs, models.KindPost)
	ctx := context.Background()
	if err := view.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	fs.failWith = apperr.NewRequestError(500, "internal error")
	if err := view.Delete(ctx, "2", func(models.Record) bool { return true }); err == nil {
		t.Fatal("failed delete not surfaced")
	}
	if len(view.Items()) != 3 {
		t.Errorf("items = %d, want 3", len(view.Items()))
	}
	if view.Notice() != "failed to delete post" {
		t.Errorf("notice = %q", view.Notice())
	}
}

func TestDeleteUnknownID(t *testing.T) {
	fs := &fakeStore{records: threeRecords()}
	view := NewList(fs, models.KindPost)
	ctx := context.Background()
	if err := view.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	if err := view.Delete(ctx, "99", nil); err == nil {
		t.Error("delete of unknown id succeeded")
	}
	if len(view.Items()) != 3 {
		t.Errorf("items = %d", len(view.Items()))
	}
}
