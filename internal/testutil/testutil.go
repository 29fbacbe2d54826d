// Package testutil provides shared test helpers for setting up databases
// and dev server instances.
package testutil

import (
	"net/http/httptest"
	"os"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/starford/ansuz/internal/devserver"
	"github.com/starford/ansuz/internal/models"
)

// TestSecret signs tokens in tests.
const TestSecret = "testing-secret"

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *devserver.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "ansuz-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := devserver.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestServer starts an in-process dev server over a fresh database.
func TestServer(t *testing.T) (*httptest.Server, *devserver.DB) {
	t.Helper()
	db := TestDB(t)
	srv := devserver.NewServer(db, []byte(TestSecret))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, db
}

// SeedRecord inserts a record directly, bypassing the HTTP surface.
func SeedRecord(t *testing.T, db *devserver.DB, kind models.Kind, draft models.Draft) *models.Record {
	t.Helper()
	record, err := db.CreateRecord(kind, draft)
	if err != nil {
		t.Fatalf("seed %s %q: %v", kind, draft.Slug, err)
	}
	return record
}

// SeedUser creates an account directly, bypassing the register endpoint.
// bcrypt.MinCost keeps test sign-ins fast.
func SeedUser(t *testing.T, db *devserver.DB, email, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	user, err := db.CreateUser(email, string(hash))
	if err != nil {
		t.Fatalf("seed user %q: %v", email, err)
	}
	return user
}
