package client

import (
	"context"
	"log/slog"

	"github.com/starford/ansuz/internal/credentials"
	"github.com/starford/ansuz/internal/models"
)

// Session is the explicit auth context object: it owns the current user and
// the persisted token, replacing the ambient global the admin UI kept.
// Construct one at process start, call Init to rehydrate, and pass it by
// reference to consumers.
type Session struct {
	client *Client
	creds  *credentials.Store
	user   *models.User
}

// NewSession wires a session over the client and credential store.
func NewSession(c *Client, creds *credentials.Store) *Session {
	return &Session{client: c, creds: creds}
}

// Init rehydrates the session from the stored token. When a token exists it
// probes the identity endpoint; on success the returned user becomes the
// active session, on any failure the stored token is cleared and the
// session is signed-out. The probe gates access to protected flows but is
// not itself an authorization boundary, so its failure is never fatal.
func (s *Session) Init(ctx context.Context) error {
	if _, ok := s.creds.Token(); !ok {
		return nil
	}
	var payload struct {
		User models.User `json:"user"`
	}
	if err := s.client.Get(ctx, "/auth/me", true, &payload); err != nil {
		slog.Debug("session rehydration failed, clearing token", slog.String("error", err.Error()))
		s.user = nil
		return s.creds.Clear()
	}
	s.user = &payload.User
	return nil
}

// SignIn exchanges credentials for a token, persists it, and adopts the
// returned user.
func (s *Session) SignIn(ctx context.Context, email, password string) error {
	return s.exchange(ctx, "/auth/login", email, password)
}

// SignUp registers an account; a successful registration signs in.
func (s *Session) SignUp(ctx context.Context, email, password string) error {
	return s.exchange(ctx, "/auth/register", email, password)
}

func (s *Session) exchange(ctx context.Context, path, email, password string) error {
	var resp models.AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := s.client.Post(ctx, path, body, false, &resp); err != nil {
		return err
	}
	if err := s.creds.SetToken(resp.Token); err != nil {
		return err
	}
	s.user = &resp.User
	return nil
}

// SignOut invalidates the server-side session and tears the local one down.
// The token is cleared even when the server call fails: local teardown must
// always succeed.
func (s *Session) SignOut(ctx context.Context) error {
	err := s.client.Post(ctx, "/auth/logout", map[string]string{}, true, nil)
	if clearErr := s.creds.Clear(); clearErr != nil && err == nil {
		err = clearErr
	}
	s.user = nil
	return err
}

// User returns the active user, or nil when signed out.
func (s *Session) User() *models.User {
	return s.user
}

// SignedIn reports whether a user is active.
func (s *Session) SignedIn() bool {
	return s.user != nil
}
