// Package api exposes the analysis pipeline over HTTP.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/docsift/docsift/internal/config"
	"github.com/docsift/docsift/internal/pipeline"
)

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	svc    *pipeline.Service
	log    *slog.Logger
	cfg    config.Config
}

// NewServer creates and configures the HTTP server around a started
// pipeline service.
func NewServer(svc *pipeline.Service, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		svc: svc,
		log: log,
		cfg: cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/analyze", s.handleAnalyze)
		r.Get("/api/runs/{runID}", s.handleRunStatus)
		r.Get("/api/runs/{runID}/result", s.handleRunResult)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
