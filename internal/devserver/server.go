package devserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ansuz/internal/models"
)

// Server holds the dev server state: the backing database and the token
// signing secret.
type Server struct {
	db     *DB
	secret []byte
}

// NewServer creates a dev server over the database.
func NewServer(db *DB, secret []byte) *Server {
	return &Server{db: db, secret: secret}
}

// Router builds the chi router with the full API surface: the auth
// exchange, the authenticated admin CRUD, and the unauthenticated public
// reads.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Post("/auth/register", s.register)
	r.Post("/auth/login", s.login)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Get("/auth/me", s.me)
		r.Post("/auth/logout", s.logout)
		r.Get("/stats", s.stats)

		for _, kind := range []models.Kind{models.KindPost, models.KindPage} {
			base := "/" + kind.Path()
			r.Get(base, s.listRecords(kind))
			r.Post(base, s.createRecord(kind))
			r.Get(base+"/{id}", s.getRecord(kind))
			r.Put(base+"/{id}", s.updateRecord(kind))
			r.Delete(base+"/{id}", s.deleteRecord(kind))
		}
	})

	// Public read surface with slug lookups; published content only.
	r.Get("/api/posts", s.publicPosts)
	r.Get("/api/posts/{slug}", s.publicBySlug(models.KindPost))
	r.Get("/api/pages/{slug}", s.publicBySlug(models.KindPage))

	return r
}

// Handler returns the router as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.Router()
}
