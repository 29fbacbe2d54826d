package devserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// register handles POST /auth/register.
func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "email and password are required")
		return
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		s.internalError(w, "hash password", err)
		return
	}
	user, err := s.db.CreateUser(req.Email, hash)
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			writeMessage(w, http.StatusConflict, "an account with this email already exists")
			return
		}
		s.internalError(w, "create user", err)
		return
	}
	s.respondWithToken(w, http.StatusCreated, user)
}

// login handles POST /auth/login.
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, hash, err := s.db.UserByEmail(req.Email)
	if err != nil || !checkPassword(hash, req.Password) {
		// Same message for unknown email and bad password.
		writeMessage(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	s.respondWithToken(w, http.StatusOK, user)
}

func (s *Server) respondWithToken(w http.ResponseWriter, status int, user *models.User) {
	token, err := issueToken(s.secret, user.ID)
	if err != nil {
		s.internalError(w, "issue token", err)
		return
	}
	writeJSON(w, status, models.AuthResponse{Token: token, User: *user})
}

// me handles GET /auth/me: the session rehydration probe.
func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"user": currentUser(r)})
}

// logout handles POST /auth/logout by revoking the presented token.
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.db.RevokeToken(bearerToken(r)); err != nil {
		s.internalError(w, "revoke token", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// listRecords handles GET /posts and GET /pages with an optional status
// filter.
func (s *Server) listRecords(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := models.Status(r.URL.Query().Get("status"))
		records, err := s.db.ListRecords(kind, status)
		if err != nil {
			s.internalError(w, "list records", err)
			return
		}
		writeJSON(w, http.StatusOK, records)
	}
}

// getRecord handles GET /posts/{id} and GET /pages/{id}.
func (s *Server) getRecord(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		record, err := s.db.GetRecord(kind, chi.URLParam(r, "id"))
		if err != nil {
			s.recordError(w, kind, err)
			return
		}
		writeJSON(w, http.StatusOK, record)
	}
}

// createRecord handles POST /posts and POST /pages.
func (s *Server) createRecord(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		draft, ok := s.decodeDraft(w, r, kind)
		if !ok {
			return
		}
		record, err := s.db.CreateRecord(kind, draft)
		if err != nil {
			s.recordError(w, kind, err)
			return
		}
		writeJSON(w, http.StatusCreated, record)
	}
}

// updateRecord handles PUT /posts/{id} and PUT /pages/{id}.
func (s *Server) updateRecord(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		draft, ok := s.decodeDraft(w, r, kind)
		if !ok {
			return
		}
		record, err := s.db.UpdateRecord(kind, chi.URLParam(r, "id"), draft)
		if err != nil {
			s.recordError(w, kind, err)
			return
		}
		writeJSON(w, http.StatusOK, record)
	}
}

// deleteRecord handles DELETE /posts/{id} and DELETE /pages/{id}.
func (s *Server) deleteRecord(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.db.DeleteRecord(kind, chi.URLParam(r, "id")); err != nil {
			s.recordError(w, kind, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// stats handles GET /stats for the dashboard.
func (s *Server) stats(w http.ResponseWriter, _ *http.Request) {
	counts, err := s.db.Counts()
	if err != nil {
		s.internalError(w, "counts", err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

// publicPosts handles GET /api/posts: published posts only, no auth.
func (s *Server) publicPosts(w http.ResponseWriter, _ *http.Request) {
	records, err := s.db.ListRecords(models.KindPost, models.StatusPublished)
	if err != nil {
		s.internalError(w, "list public posts", err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// publicBySlug handles GET /api/posts/{slug} and GET /api/pages/{slug}.
func (s *Server) publicBySlug(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		record, err := s.db.GetRecordBySlug(kind, chi.URLParam(r, "slug"), models.StatusPublished)
		if err != nil {
			s.recordError(w, kind, err)
			return
		}
		writeJSON(w, http.StatusOK, record)
	}
}

func (s *Server) decodeDraft(w http.ResponseWriter, r *http.Request, kind models.Kind) (models.Draft, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var draft models.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON body")
		return draft, false
	}
	if draft.Status == "" {
		draft.Status = models.StatusDraft
	}
	if err := draft.Validate(kind); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return draft, false
	}
	if user := currentUser(r); user != nil && draft.AuthorID == "" {
		draft.AuthorID = user.ID
	}
	return draft, true
}

func (s *Server) recordError(w http.ResponseWriter, kind models.Kind, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeMessage(w, http.StatusNotFound, fmt.Sprintf("%s not found", kind))
	case errors.Is(err, apperr.ErrConflict):
		writeMessage(w, http.StatusConflict, fmt.Sprintf("a %s with this slug already exists", kind))
	default:
		s.internalError(w, "record operation", err)
	}
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	slog.Error("devserver request failed", slog.String("op", op), slog.String("error", err.Error()))
	writeMessage(w, http.StatusInternalServerError, "internal error")
}
