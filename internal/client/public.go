package client

import (
	"context"
	"log/slog"

	"github.com/starford/ansuz/internal/fallback"
	"github.com/starford/ansuz/internal/models"
)

// Reader serves the public, unauthenticated content surface. On any
// transport failure or non-success status it answers from the fallback
// provider instead of propagating the error: the public reader must never
// show a hard failure just because the backend is unreachable. This is a
// deliberate availability-over-consistency tradeoff and applies to reads
// only, never to authenticated write paths.
type Reader struct {
	client   *Client
	fallback fallback.Provider
}

// NewReader wires a public reader. provider must be non-nil; pass
// fallback.Disabled{} to surface backend outages as empty results.
func NewReader(c *Client, provider fallback.Provider) *Reader {
	return &Reader{client: c, fallback: provider}
}

// Posts lists the published posts, substituting sample content on failure.
func (r *Reader) Posts(ctx context.Context) []models.Record {
	var posts []models.Record
	if err := r.client.Get(ctx, "/api/posts", false, &posts); err != nil {
		slog.Warn("public posts unavailable, serving fallback", slog.String("error", err.Error()))
		return r.fallback.Posts()
	}
	return posts
}

// PostBySlug fetches one published post. A nil result means not found,
// in the live backend and the sample set both.
func (r *Reader) PostBySlug(ctx context.Context, slug string) *models.Record {
	var post models.Record
	if err := r.client.Get(ctx, "/api/posts/"+slug, false, &post); err != nil {
		slog.Warn("public post unavailable, serving fallback",
			slog.String("slug", slug), slog.String("error", err.Error()))
		return r.fallback.PostBySlug(slug)
	}
	return &post
}

// PageBySlug fetches one published page, falling back to the sample set.
func (r *Reader) PageBySlug(ctx context.Context, slug string) *models.Record {
	var page models.Record
	if err := r.client.Get(ctx, "/api/pages/"+slug, false, &page); err != nil {
		slog.Warn("public page unavailable, serving fallback",
			slog.String("slug", slug), slog.String("error", err.Error()))
		return r.fallback.PageBySlug(slug)
	}
	return &page
}
