package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
)

// pgUniqueViolation is the Postgres error code for a unique constraint hit.
const pgUniqueViolation = "23505"

// Postgres adapts a Postgres database to the ContentStore interface,
// addressing the content tables directly instead of going through the REST
// API. Expected schema: per-kind tables "posts" and "pages" with the Record
// columns; pages omit excerpt and cover_image.
type Postgres struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

// NewPostgres connects a pool and verifies it with a ping.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: ping postgres: %w", err)
	}
	return &Postgres{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}, nil
}

var _ ContentStore = (*Postgres)(nil)

// Close releases the pool.
func (s *Postgres) Close() {
	s.pool.Close()
}

func columns(kind models.Kind) []string {
	cols := []string{"id", "title", "slug", "content", "status", "author_id", "published_at", "created_at", "updated_at"}
	if kind == models.KindPost {
		cols = append(cols, "excerpt", "cover_image")
	}
	return cols
}

func scanRecord(kind models.Kind, row pgx.Row) (*models.Record, error) {
	var (
		r        models.Record
		authorID *string
	)
	dest := []any{&r.ID, &r.Title, &r.Slug, &r.Content, &r.Status, &authorID, &r.PublishedAt, &r.CreatedAt, &r.UpdatedAt}
	if kind == models.KindPost {
		dest = append(dest, &r.Excerpt, &r.CoverImage)
	}
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("store: scan %s: %w", kind, err)
	}
	if authorID != nil {
		r.AuthorID = *authorID
	}
	return &r, nil
}

// List returns all records of the kind, newest first, optionally filtered
// by status.
func (s *Postgres) List(ctx context.Context, kind models.Kind, status models.Status) ([]models.Record, error) {
	q := s.sb.Select(columns(kind)...).From(kind.Path()).OrderBy("created_at DESC")
	if status != "" {
		q = q.Where(sq.Eq{"status": status})
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("store: build list query: %w", err)
	}
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list %s: %w", kind.Path(), err)
	}
	defer rows.Close()

	records := []models.Record{}
	for rows.Next() {
		r, err := scanRecord(kind, rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}

// Get fetches one record by id.
func (s *Postgres) Get(ctx context.Context, kind models.Kind, id string) (*models.Record, error) {
	sql, args, err := s.sb.Select(columns(kind)...).From(kind.Path()).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("store: build get query: %w", err)
	}
	return scanRecord(kind, s.pool.QueryRow(ctx, sql, args...))
}

// Create inserts a new record. Slug uniqueness violations surface as
// apperr.ErrConflict.
func (s *Postgres) Create(ctx context.Context, kind models.Kind, draft models.Draft) (*models.Record, error) {
	now := time.Now().UTC()
	publishedAt := draft.PublishedAt
	if publishedAt == nil && draft.Status == models.StatusPublished {
		publishedAt = &now
	}

	cols := []string{"id", "title", "slug", "content", "status", "author_id", "published_at", "created_at", "updated_at"}
	vals := []any{uuid.NewString(), draft.Title, draft.Slug, draft.Content, draft.Status, nullable(draft.AuthorID), publishedAt, now, now}
	if kind == models.KindPost {
		cols = append(cols, "excerpt", "cover_image")
		vals = append(vals, draft.Excerpt, draft.CoverImage)
	}

	sql, args, err := s.sb.Insert(kind.Path()).Columns(cols...).Values(vals...).
		Suffix("RETURNING " + returning(kind)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("store: build insert query: %w", err)
	}
	record, err := scanRecord(kind, s.pool.QueryRow(ctx, sql, args...))
	return record, mapPgError(err)
}

// Update overwrites the record. published_at is stamped on the first
// transition to published and never overwritten afterwards.
func (s *Postgres) Update(ctx context.Context, kind models.Kind, id string, draft models.Draft) (*models.Record, error) {
	q := s.sb.Update(kind.Path()).
		Set("title", draft.Title).
		Set("slug", draft.Slug).
		Set("content", draft.Content).
		Set("status", draft.Status).
		Set("author_id", nullable(draft.AuthorID)).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + returning(kind))
	if draft.Status == models.StatusPublished {
		q = q.Set("published_at", sq.Expr("COALESCE(published_at, NOW())"))
	}
	if kind == models.KindPost {
		q = q.Set("excerpt", draft.Excerpt).Set("cover_image", draft.CoverImage)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("store: build update query: %w", err)
	}
	record, err := scanRecord(kind, s.pool.QueryRow(ctx, sql, args...))
	return record, mapPgError(err)
}

// Delete removes the record by id.
func (s *Postgres) Delete(ctx context.Context, kind models.Kind, id string) error {
	sql, args, err := s.sb.Delete(kind.Path()).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("store: build delete query: %w", err)
	}
	tag, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("store: delete from %s: %w", kind.Path(), err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// Stats returns the dashboard counts in a single pass per table.
func (s *Postgres) Stats(ctx context.Context) (*models.Stats, error) {
	stats := &models.Stats{}
	row := s.pool.QueryRow(ctx, `
		SELECT count(*),
		       count(*) FILTER (WHERE status = 'published'),
		       count(*) FILTER (WHERE status = 'draft')
		FROM posts`)
	if err := row.Scan(&stats.TotalPosts, &stats.PublishedPosts, &stats.DraftPosts); err != nil {
		return nil, fmt.Errorf("store: post stats: %w", err)
	}
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM pages`).Scan(&stats.TotalPages); err != nil {
		return nil, fmt.Errorf("store: page stats: %w", err)
	}
	return stats, nil
}

func returning(kind models.Kind) string {
	cols := columns(kind)
	out := cols[0]
	for _, c := range cols[1:] {
		out += ", " + c
	}
	return out
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// mapPgError converts a unique violation into the conflict sentinel so the
// editor can show its distinguished slug message. Other errors (including
// the scanRecord mapping of no-rows) pass through.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return apperr.ErrConflict
	}
	return err
}
