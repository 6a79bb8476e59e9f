// Package api provides the admin HTTP API for the seed tracker.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnug/seedtracker/internal/tracker"
	"github.com/MrSnug/seedtracker/internal/version"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server represents the admin HTTP API server.
type Server struct {
	httpServer *http.Server
	engine     *tracker.Tracker

	// Auth configuration
	authEnabled  bool
	authUsername string
	authPassword string
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithBasicAuth enables HTTP Basic Auth on all non-health routes.
func WithBasicAuth(username, password string) ServerOption {
	return func(s *Server) {
		if username != "" && password != "" {
			s.authEnabled = true
			s.authUsername = username
			s.authPassword = password
		}
	}
}

// NewServer creates a new admin API server around the engine.
func NewServer(addr string, engine *tracker.Tracker, opts ...ServerOption) *Server {
	s := &Server{
		engine: engine,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Health endpoint (no auth required)
	r.Get("/api/v1/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		if s.authEnabled {
			r.Use(middleware.BasicAuth("seedtracker", map[string]string{
				s.authUsername: s.authPassword,
			}))
		}

		r.Get("/status", s.handleStatus)
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Get("/streaks", s.handleStreaks)
		r.Get("/analytics", s.handleAnalytics)
		r.Get("/effective", s.handleEffectiveSeeders)
		r.Get("/recommendations", s.handleRecommendations)

		r.Get("/alerts", s.handleAlertStatus)
		r.Put("/alerts", s.handleUpdateAlerts)

		r.Get("/list", s.handleListEntries)
		r.Post("/list/{uid}", s.handleAddToList)
		r.Delete("/list/{uid}", s.handleRemoveFromList)

		r.Post("/reset", s.handleReset)
	})

	return r
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.String(),
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the server address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}
