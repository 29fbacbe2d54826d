package editor

import (
	"context"
	"fmt"

	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/store"
)

// ConfirmFunc is the explicit user confirmation step before a delete is
// committed. Returning false aborts without issuing the request.
type ConfirmFunc func(record models.Record) bool

// List is the fetch-filter-render-confirm-delete cycle over one content
// collection. It holds the in-memory record set for the view; there is no
// pagination, every refresh is a single full-collection fetch.
type List struct {
	store  store.ContentStore
	kind   models.Kind
	filter models.Status
	items  []models.Record
	notice string
}

// NewList creates a list view over the given kind with no filter.
func NewList(cs store.ContentStore, kind models.Kind) *List {
	return &List{store: cs, kind: kind}
}

// Items returns the records currently held by the view.
func (l *List) Items() []models.Record {
	return l.items
}

// Notice returns the last error notice, empty when the last operation
// succeeded.
func (l *List) Notice() string {
	return l.notice
}

// Refresh fetches the full collection under the current filter.
func (l *List) Refresh(ctx context.Context) error {
	items, err := l.store.List(ctx, l.kind, l.filter)
	if err != nil {
		l.notice = fmt.Sprintf("failed to load %s: %s", l.kind.Path(), err)
		return err
	}
	l.items = items
	l.notice = ""
	return nil
}

// SetFilter changes the status filter and refetches. An empty status means
// all records.
func (l *List) SetFilter(ctx context.Context, status models.Status) error {
	l.filter = status
	return l.Refresh(ctx)
}

// Delete runs the two-step confirm-then-commit cycle for the record with
// the given id. Confirmation is mandatory: a nil confirm aborts the same
// way a declined one does. On success the record is removed from the
// in-memory list without a re-fetch, preserving the relative order of the
// remainder. On failure the list is left unchanged and a notice is
// recorded.
func (l *List) Delete(ctx context.Context, id string, confirm ConfirmFunc) error {
	idx := -1
	for i := range l.items {
		if l.items[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		l.notice = fmt.Sprintf("%s %s is not in the list", l.kind, id)
		return fmt.Errorf("editor: %s", l.notice)
	}
	if confirm == nil || !confirm(l.items[idx]) {
		return nil
	}
	if err := l.store.Delete(ctx, l.kind, id); err != nil {
		l.notice = fmt.Sprintf("failed to delete %s", l.kind)
		return err
	}
	l.items = append(l.items[:idx], l.items[idx+1:]...)
	l.notice = ""
	return nil
}
