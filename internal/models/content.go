// Package models defines the content domain types shared by the client,
// the editing flows, and the dev server.
package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/ansuz/internal/slug"
)

// Content kinds.
type Kind string

const (
	KindPost Kind = "post"
	KindPage Kind = "page"
)

// Path returns the collection path segment for the kind ("posts", "pages").
func (k Kind) Path() string {
	return string(k) + "s"
}

// Statuses. Pages use draft/published; posts additionally support archived.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// ValidStatuses returns the statuses permitted for the kind.
func ValidStatuses(k Kind) []any {
	if k == KindPage {
		return []any{StatusDraft, StatusPublished}
	}
	return []any{StatusDraft, StatusPublished, StatusArchived}
}

// Record is the shared shape for posts and pages. ID and the timestamps are
// backend-assigned; the client never writes them. Excerpt and CoverImage are
// meaningful for posts only and stay empty on pages.
type Record struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Content     string     `json:"content"`
	Excerpt     string     `json:"excerpt,omitempty"`
	CoverImage  string     `json:"cover_image,omitempty"`
	Status      Status     `json:"status"`
	AuthorID    string     `json:"author_id,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Draft is the client-side write payload for a record. The backend assigns
// everything absent here.
type Draft struct {
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Content     string     `json:"content"`
	Excerpt     string     `json:"excerpt,omitempty"`
	CoverImage  string     `json:"cover_image,omitempty"`
	Status      Status     `json:"status"`
	AuthorID    string     `json:"author_id,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// Validate checks the draft against the rules enforced before any request
// is sent: required title, slug matching the grammar, and a status legal
// for the kind.
func (d Draft) Validate(kind Kind) error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Title, validation.Required),
		validation.Field(&d.Slug, validation.Required,
			validation.By(func(v any) error {
				if !slug.Validate(v.(string)) {
					return errInvalidSlug
				}
				return nil
			})),
		validation.Field(&d.Status, validation.Required, validation.In(ValidStatuses(kind)...)),
	)
}

var errInvalidSlug = validation.NewError(
	"validation_slug",
	"must contain only lowercase letters, numbers, and single hyphens")

// User is the authenticated principal returned by the auth endpoints.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResponse is the payload of a successful sign-in or registration.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Stats carries the dashboard counts.
type Stats struct {
	TotalPosts     int `json:"total_posts"`
	PublishedPosts int `json:"published_posts"`
	DraftPosts     int `json:"draft_posts"`
	TotalPages     int `json:"total_pages"`
}
