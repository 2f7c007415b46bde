package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"

	"github.com/portalkit/catalog/pkg/catalog"
)

// Server assembles the catalog HTTP surface
type Server struct {
	service     catalog.Service
	tokenAuth   *jwtauth.JWTAuth
	environment string
}

// NewServer creates a new HTTP server wrapper. tokenAuth may be nil,
// in which case identity comes from the X-User-* headers only.
func NewServer(service catalog.Service, tokenAuth *jwtauth.JWTAuth, environment string) *Server {
	return &Server{
		service:     service,
		tokenAuth:   tokenAuth,
		environment: environment,
	}
}

// Routes sets up the HTTP routes
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS for development
	if s.environment == "development" {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Access-Control-Allow-Origin", "*")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-User-Id, X-User-Name, X-User-Email, X-User-Role")

				if r.Method == "OPTIONS" {
					w.WriteHeader(http.StatusOK)
					return
				}

				next.ServeHTTP(w, r)
			})
		})
	}

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		if s.tokenAuth != nil {
			r.Use(jwtauth.Verifier(s.tokenAuth))
		}
		r.Use(Principal(s.tokenAuth))

		r.Mount("/assets", NewAssetHandler(s.service).Routes())
		r.Mount("/contents", NewContentHandler(s.service).Routes())
		r.Mount("/stats", NewStatsHandler(s.service).Routes())
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
