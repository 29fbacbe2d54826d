package devserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/starford/ansuz/internal/models"
)

type contextKey string

const userContextKey contextKey = "user"

// bearerToken extracts the token from the Authorization header, empty when
// absent or malformed.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(auth, "Bearer ")
}

// requireAuth validates the bearer token, rejects revoked or invalid ones,
// and stores the resolved user in the request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeMessage(w, http.StatusUnauthorized, "missing token")
			return
		}
		if revoked, err := s.db.TokenRevoked(token); err != nil || revoked {
			writeMessage(w, http.StatusUnauthorized, "invalid token")
			return
		}
		userID, err := parseToken(s.secret, token)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "invalid token")
			return
		}
		user, err := s.db.UserByID(userID)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// currentUser returns the authenticated user set by requireAuth.
func currentUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(userContextKey).(*models.User)
	return user
}
