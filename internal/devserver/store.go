// Package devserver implements a local CMS backend serving the same HTTP
// surface as the hosted API, so the toolkit is fully usable offline.
package devserver

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS records (
	kind         TEXT NOT NULL,
	id           TEXT NOT NULL,
	title        TEXT NOT NULL DEFAULT '',
	slug         TEXT NOT NULL,
	content      TEXT NOT NULL DEFAULT '',
	excerpt      TEXT NOT NULL DEFAULT '',
	cover_image  TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL DEFAULT 'draft',
	author_id    TEXT,
	published_at DATETIME,
	created_at   DATETIME NOT NULL,
	updated_at   DATETIME NOT NULL,
	PRIMARY KEY (kind, id),
	UNIQUE (kind, slug)
);

CREATE INDEX IF NOT EXISTS idx_records_status ON records(kind, status);

CREATE TABLE IF NOT EXISTS revoked_tokens (
	token      TEXT PRIMARY KEY,
	revoked_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// DB wraps the SQLite database backing the dev server.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("devserver: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("devserver: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("devserver: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

const recordColumns = "id, title, slug, content, excerpt, cover_image, status, author_id, published_at, created_at, updated_at"

func scanRecord(row interface{ Scan(...any) error }) (*models.Record, error) {
	var (
		r        models.Record
		authorID sql.NullString
		pubAt    sql.NullTime
	)
	err := row.Scan(&r.ID, &r.Title, &r.Slug, &r.Content, &r.Excerpt, &r.CoverImage,
		&r.Status, &authorID, &pubAt, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("devserver: scan record: %w", err)
	}
	r.AuthorID = authorID.String
	if pubAt.Valid {
		t := pubAt.Time
		r.PublishedAt = &t
	}
	return &r, nil
}

// ListRecords returns records of a kind, newest first, optionally filtered
// by status.
func (db *DB) ListRecords(kind models.Kind, status models.Status) ([]models.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE kind = ?`
	args := []any{kind}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("devserver: list records: %w", err)
	}
	defer rows.Close()

	records := []models.Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}

// GetRecord fetches one record by id.
func (db *DB) GetRecord(kind models.Kind, id string) (*models.Record, error) {
	row := db.conn.QueryRow(`SELECT `+recordColumns+` FROM records WHERE kind = ? AND id = ?`, kind, id)
	return scanRecord(row)
}

// GetRecordBySlug fetches one record by slug, optionally restricted to a
// status (the public surface passes published).
func (db *DB) GetRecordBySlug(kind models.Kind, slug string, status models.Status) (*models.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE kind = ? AND slug = ?`
	args := []any{kind, slug}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	return scanRecord(db.conn.QueryRow(query, args...))
}

// CreateRecord inserts a draft as a new record, assigning id and
// timestamps. A published draft gets published_at stamped unless the
// client supplied one. Slug collisions return apperr.ErrConflict.
func (db *DB) CreateRecord(kind models.Kind, draft models.Draft) (*models.Record, error) {
	now := time.Now().UTC()
	id := uuid.NewString()
	publishedAt := draft.PublishedAt
	if publishedAt == nil && draft.Status == models.StatusPublished {
		publishedAt = &now
	}

	_, err := db.conn.Exec(`
		INSERT INTO records (kind, id, title, slug, content, excerpt, cover_image, status, author_id, published_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		kind, id, draft.Title, draft.Slug, draft.Content, draft.Excerpt, draft.CoverImage,
		draft.Status, nullString(draft.AuthorID), nullTime(publishedAt), now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.ErrConflict
		}
		return nil, fmt.Errorf("devserver: insert record: %w", err)
	}
	return db.GetRecord(kind, id)
}

// UpdateRecord overwrites an existing record. published_at is stamped the
// first time the record transitions to published and never overwritten by
// later writes.
func (db *DB) UpdateRecord(kind models.Kind, id string, draft models.Draft) (*models.Record, error) {
	existing, err := db.GetRecord(kind, id)
	if err != nil {
		return nil, err
	}

	publishedAt := existing.PublishedAt
	if publishedAt == nil && draft.Status == models.StatusPublished {
		now := time.Now().UTC()
		publishedAt = &now
	}

	_, err = db.conn.Exec(`
		UPDATE records
		SET title = ?, slug = ?, content = ?, excerpt = ?, cover_image = ?, status = ?, author_id = ?, published_at = ?, updated_at = ?
		WHERE kind = ? AND id = ?`,
		draft.Title, draft.Slug, draft.Content, draft.Excerpt, draft.CoverImage,
		draft.Status, nullString(draft.AuthorID), nullTime(publishedAt), time.Now().UTC(),
		kind, id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.ErrConflict
		}
		return nil, fmt.Errorf("devserver: update record: %w", err)
	}
	return db.GetRecord(kind, id)
}

// DeleteRecord removes a record by id.
func (db *DB) DeleteRecord(kind models.Kind, id string) error {
	res, err := db.conn.Exec(`DELETE FROM records WHERE kind = ? AND id = ?`, kind, id)
	if err != nil {
		return fmt.Errorf("devserver: delete record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// CreateUser inserts a new account. Duplicate emails return
// apperr.ErrConflict.
func (db *DB) CreateUser(email, passwordHash string) (*models.User, error) {
	user := models.User{
		ID:        uuid.NewString(),
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	_, err := db.conn.Exec(`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		user.ID, user.Email, passwordHash, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.ErrConflict
		}
		return nil, fmt.Errorf("devserver: insert user: %w", err)
	}
	return &user, nil
}

// UserByEmail returns the account and its password hash.
func (db *DB) UserByEmail(email string) (*models.User, string, error) {
	var (
		user models.User
		hash string
	)
	err := db.conn.QueryRow(`SELECT id, email, password_hash, created_at FROM users WHERE email = ?`, email).
		Scan(&user.ID, &user.Email, &hash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", apperr.ErrNotFound
		}
		return nil, "", fmt.Errorf("devserver: user by email: %w", err)
	}
	return &user, hash, nil
}

// UserByID returns the account by id.
func (db *DB) UserByID(id string) (*models.User, error) {
	var user models.User
	err := db.conn.QueryRow(`SELECT id, email, created_at FROM users WHERE id = ?`, id).
		Scan(&user.ID, &user.Email, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("devserver: user by id: %w", err)
	}
	return &user, nil
}

// RevokeToken records a token as invalidated. Revoking twice is a no-op.
func (db *DB) RevokeToken(token string) error {
	_, err := db.conn.Exec(`INSERT OR IGNORE INTO revoked_tokens (token, revoked_at) VALUES (?, ?)`,
		token, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("devserver: revoke token: %w", err)
	}
	return nil
}

// TokenRevoked reports whether the token has been invalidated.
func (db *DB) TokenRevoked(token string) (bool, error) {
	var n int
	err := db.conn.QueryRow(`SELECT count(*) FROM revoked_tokens WHERE token = ?`, token).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("devserver: token revoked: %w", err)
	}
	return n > 0, nil
}

// Counts returns the dashboard stats.
func (db *DB) Counts() (*models.Stats, error) {
	stats := &models.Stats{}
	err := db.conn.QueryRow(`
		SELECT count(*),
		       sum(CASE WHEN status = 'published' THEN 1 ELSE 0 END),
		       sum(CASE WHEN status = 'draft' THEN 1 ELSE 0 END)
		FROM records WHERE kind = 'post'`).
		Scan(&stats.TotalPosts, &nullableInt{&stats.PublishedPosts}, &nullableInt{&stats.DraftPosts})
	if err != nil {
		return nil, fmt.Errorf("devserver: post counts: %w", err)
	}
	err = db.conn.QueryRow(`SELECT count(*) FROM records WHERE kind = 'page'`).Scan(&stats.TotalPages)
	if err != nil {
		return nil, fmt.Errorf("devserver: page counts: %w", err)
	}
	return stats, nil
}

// nullableInt scans NULL (empty table sums) as zero.
type nullableInt struct{ dst *int }

func (n *nullableInt) Scan(v any) error {
	if v == nil {
		*n.dst = 0
		return nil
	}
	switch x := v.(type) {
	case int64:
		*n.dst = int(x)
	case float64:
		*n.dst = int(x)
	default:
		return fmt.Errorf("devserver: unexpected sum type %T", v)
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
