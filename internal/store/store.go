// Package store defines the backend-agnostic content capability interface
// and its adapters.
//
// Two backends exist for the same entities: the generic REST API and a
// Postgres database addressed directly. Call sites depend on ContentStore
// so they stay agnostic of which one is wired in.
package store

import (
	"context"

	"github.com/starford/ansuz/internal/models"
)

// ContentStore is the unified capability interface over content backends.
// status filters List when non-empty. Uniqueness of slugs is enforced by
// the backing store and reported as apperr.ErrConflict; absent records are
// apperr.ErrNotFound.
type ContentStore interface {
	List(ctx context.Context, kind models.Kind, status models.Status) ([]models.Record, error)
	Get(ctx context.Context, kind models.Kind, id string) (*models.Record, error)
	Create(ctx context.Context, kind models.Kind, draft models.Draft) (*models.Record, error)
	Update(ctx context.Context, kind models.Kind, id string, draft models.Draft) (*models.Record, error)
	Delete(ctx context.Context, kind models.Kind, id string) error
	Stats(ctx context.Context) (*models.Stats, error)
}
