package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/rangelog/internal/ingest"
	"github.com/claude/rangelog/internal/metrics"
	"github.com/claude/rangelog/internal/storage"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store  storage.Store
	ing    *ingest.Provider
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a new Server with all routes configured. An empty apiKey
// disables authentication on mutating routes.
func New(store storage.Store, ing *ingest.Provider, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		store:  store,
		ing:    ing,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(Instrument)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", metrics.Handler())

	s.router.Route("/api/v1", func(r chi.Router) {
		// Read-side queries, no auth required
		r.Get("/sessions", s.handleListSessions)
		r.Get("/sessions/{id}", s.handleGetSession)
		r.Get("/progression", s.handleProgression)
		r.Get("/stats", s.handleGlobalStats)
		r.Get("/allowlist", s.handleAllowlist)

		// Mutating routes (API key required when configured)
		r.Group(func(r chi.Router) {
			if s.apiKey != "" {
				r.Use(APIKeyAuth(s.apiKey))
			}
			r.Post("/sessions", s.handleUpload)
			r.Delete("/sessions/{id}", s.handleDeleteSession)
		})
	})
}
