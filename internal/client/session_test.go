package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/starford/ansuz/internal/credentials"
	"github.com/starford/ansuz/internal/models"
)

func testCreds(t *testing.T) *credentials.Store {
	t.Helper()
	creds, err := credentials.NewStore(filepath.Join(t.TempDir(), "credentials.json"))
	if err != nil {
		t.Fatal(err)
	}
	return creds
}

func authBackend(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			json.NewEncoder(w).Encode(models.AuthResponse{
				Token: "issued-token",
				User:  models.User{ID: "u1", Email: "a@b.test"},
			})
		case "/auth/me":
			if r.Header.Get("Authorization") != "Bearer issued-token" {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"message":"invalid token"}`))
				return
			}
			json.NewEncoder(w).Encode(map[string]models.User{
				"user": {ID: "u1", Email: "a@b.test"},
			})
		case "/auth/logout":
			w.Write([]byte("{}"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestSignInPersistsToken(t *testing.T) {
	ts := authBackend(t)
	creds := testCreds(t)
	s := NewSession(New(ts.URL, creds), creds)
	ctx := context.Background()

	if err := s.SignIn(ctx, "a@b.test", "pw"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if !s.SignedIn() || s.User().Email != "a@b.test" {
		t.Errorf("user = %+v", s.User())
	}
	if tok, ok := creds.Token(); !ok || tok != "issued-token" {
		t.Errorf("stored token = %q, %v", tok, ok)
	}
}

func TestInitRehydratesFromStoredToken(t *testing.T) {
	ts := authBackend(t)
	creds := testCreds(t)
	if err := creds.SetToken("issued-token"); err != nil {
		t.Fatal(err)
	}

	s := NewSession(New(ts.URL, creds), creds)
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if !s.SignedIn() || s.User().ID != "u1" {
		t.Errorf("user = %+v", s.User())
	}
}

func TestInitWithoutTokenIsNoop(t *testing.T) {
	ts := authBackend(t)
	creds := testCreds(t)
	s := NewSession(New(ts.URL, creds), creds)

	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if s.SignedIn() {
		t.Error("signed in without a token")
	}
}

func TestInitClearsRejectedToken(t *testing.T) {
	ts := authBackend(t)
	creds := testCreds(t)
	if err := creds.SetToken("stale-token"); err != nil {
		t.Fatal(err)
	}

	s := NewSession(New(ts.URL, creds), creds)
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if s.SignedIn() {
		t.Error("still signed in after rejected probe")
	}
	if _, ok := creds.Token(); ok {
		t.Error("stale token not cleared")
	}
}

func TestSignOutClearsTokenEvenOnServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"internal error"}`))
	}))
	defer ts.Close()

	creds := testCreds(t)
	if err := creds.SetToken("issued-token"); err != nil {
		t.Fatal(err)
	}
	s := NewSession(New(ts.URL, creds), creds)
	s.user = &models.User{ID: "u1"}

	if err := s.SignOut(context.Background()); err == nil {
		t.Error("server error not surfaced")
	}
	if _, ok := creds.Token(); ok {
		t.Error("token survived sign-out")
	}
	if s.SignedIn() {
		t.Error("session still active")
	}
}
