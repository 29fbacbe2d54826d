package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/starford/ansuz/internal/apperr"
)

func TestBearerHeader(t *testing.T) {
	var gotAuth []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = append(gotAuth, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("{}"))
	}))
	defer ts.Close()

	c := New(ts.URL, StaticToken("tok-1"))
	ctx := context.Background()

	if err := c.Get(ctx, "/a", true, nil); err != nil {
		t.Fatalf("authed get: %v", err)
	}
	if err := c.Get(ctx, "/b", false, nil); err != nil {
		t.Fatalf("public get: %v", err)
	}

	if gotAuth[0] != "Bearer tok-1" {
		t.Errorf("authed request header = %q", gotAuth[0])
	}
	if gotAuth[1] != "" {
		t.Errorf("public request header = %q", gotAuth[1])
	}
}

func TestMissingTokenStillSendsRequest(t *testing.T) {
	// No local gate: requiresAuth with an empty token source sends the
	// request unauthenticated and lets the server reject it.
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Header.Get("Authorization") != "" {
			t.Errorf("unexpected Authorization header %q", r.Header.Get("Authorization"))
		}
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"missing token"}`))
	}))
	defer ts.Close()

	c := New(ts.URL, StaticToken(""))
	err := c.Get(context.Background(), "/protected", true, nil)
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("err = %v, want unauthorized", err)
	}
}

func TestErrorMessageExtraction(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/json":
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"message":"slug already exists"}`))
		case "/html":
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("<html>gateway error</html>"))
		}
	}))
	defer ts.Close()

	c := New(ts.URL, nil)
	ctx := context.Background()

	err := c.Get(ctx, "/json", false, nil)
	var reqErr *apperr.RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("err = %T", err)
	}
	if reqErr.Message != "slug already exists" {
		t.Errorf("json message = %q", reqErr.Message)
	}
	if !errors.Is(err, apperr.ErrConflict) {
		t.Error("409 not mapped to conflict")
	}

	// Non-JSON body falls back to the status text.
	err = c.Get(ctx, "/html", false, nil)
	if !errors.As(err, &reqErr) {
		t.Fatalf("err = %T", err)
	}
	if reqErr.Message != http.StatusText(http.StatusBadGateway) {
		t.Errorf("html message = %q", reqErr.Message)
	}
}

func TestTransportErrorHasZeroStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // connection refused from here on

	c := New(ts.URL, nil)
	err := c.Get(context.Background(), "/a", false, nil)

	var reqErr *apperr.RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("err = %T, want RequestError", err)
	}
	if reqErr.Status != 0 {
		t.Errorf("status = %d, want 0", reqErr.Status)
	}
	if reqErr.Message == "" {
		t.Error("empty transport error message")
	}
}

func TestBaseURLTrailingSlash(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte("{}"))
	}))
	defer ts.Close()

	c := New(ts.URL+"/", nil)
	if err := c.Get(context.Background(), "/posts", false, nil); err != nil {
		t.Fatal(err)
	}
	if gotPath != "/posts" {
		t.Errorf("path = %q", gotPath)
	}
}
