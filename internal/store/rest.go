package store

import (
	"context"
	"net/url"

	"github.com/starford/ansuz/internal/client"
	"github.com/starford/ansuz/internal/models"
)

// REST adapts the CMS REST API to the ContentStore interface. Every
// operation goes through the authenticated client; the server enforces
// authorization and slug uniqueness.
type REST struct {
	client *client.Client
}

// NewREST creates a REST-backed content store.
func NewREST(c *client.Client) *REST {
	return &REST{client: c}
}

var _ ContentStore = (*REST)(nil)

// List fetches the full collection, optionally filtered by status. There is
// no pagination: the admin surface works on the whole set.
func (s *REST) List(ctx context.Context, kind models.Kind, status models.Status) ([]models.Record, error) {
	path := "/" + kind.Path()
	if status != "" {
		path += "?status=" + url.QueryEscape(string(status))
	}
	var records []models.Record
	if err := s.client.Get(ctx, path, true, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Get fetches one record by id for editing.
func (s *REST) Get(ctx context.Context, kind models.Kind, id string) (*models.Record, error) {
	var record models.Record
	if err := s.client.Get(ctx, "/"+kind.Path()+"/"+id, true, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Create submits a new record.
func (s *REST) Create(ctx context.Context, kind models.Kind, draft models.Draft) (*models.Record, error) {
	var record models.Record
	if err := s.client.Post(ctx, "/"+kind.Path(), draft, true, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Update overwrites the record with the given id.
func (s *REST) Update(ctx context.Context, kind models.Kind, id string, draft models.Draft) (*models.Record, error) {
	var record models.Record
	if err := s.client.Put(ctx, "/"+kind.Path()+"/"+id, draft, true, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Delete removes the record with the given id.
func (s *REST) Delete(ctx context.Context, kind models.Kind, id string) error {
	return s.client.Delete(ctx, "/"+kind.Path()+"/"+id, true)
}

// Stats derives the dashboard counts from full-collection fetches, the same
// way the admin dashboard assembles them.
func (s *REST) Stats(ctx context.Context) (*models.Stats, error) {
	posts, err := s.List(ctx, models.KindPost, "")
	if err != nil {
		return nil, err
	}
	pages, err := s.List(ctx, models.KindPage, "")
	if err != nil {
		return nil, err
	}
	stats := &models.Stats{TotalPosts: len(posts), TotalPages: len(pages)}
	for _, p := range posts {
		switch p.Status {
		case models.StatusPublished:
			stats.PublishedPosts++
		case models.StatusDraft:
			stats.DraftPosts++
		}
	}
	return stats, nil
}
