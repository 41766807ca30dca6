// Package api serves the task API over HTTP.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/felixgeelhaar/quadra/pkg/observability"
)

// Server is the HTTP API server.
type Server struct {
	mux      *http.ServeMux
	server   *http.Server
	logger   *slog.Logger
	metrics  observability.Metrics
	health   *observability.HealthRegistry
	resolver ActorResolver
	handler  *Handler
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:         "127.0.0.1:8080",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewServer creates a new API server. health may be nil, in which case
// /health only reports liveness.
func NewServer(cfg ServerConfig, handler *Handler, resolver ActorResolver, health *observability.HealthRegistry, logger *slog.Logger, metrics observability.Metrics) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		metrics:  metrics,
		health:   health,
		resolver: resolver,
		handler:  handler,
	}

	s.registerRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// registerRoutes sets up the API routes.
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	// Tasks
	s.route("GET /api/v1/tasks", s.handler.ListTasks)
	s.route("GET /api/v1/tasks/quadrant/{quadrant}", s.handler.ListByQuadrant)
	s.route("GET /api/v1/tasks/status/{status}", s.handler.ListByStatus)
	s.route("GET /api/v1/tasks/search", s.handler.SearchTasks)
	s.route("GET /api/v1/tasks/today", s.handler.ListToday)
	s.route("GET /api/v1/tasks/{id}", s.handler.GetTask)
	s.route("POST /api/v1/tasks", s.handler.CreateTask)
	s.route("PUT /api/v1/tasks/{id}", s.handler.UpdateTask)
	s.route("PATCH /api/v1/tasks/{id}/complete", s.handler.CompleteTask)
	s.route("DELETE /api/v1/tasks/{id}", s.handler.DeleteTask)

	// Stats
	s.route("GET /api/v1/stats", s.handler.Stats)
	s.route("GET /api/v1/stats/deadlines", s.handler.Deadlines)

	// Admin
	s.route("GET /api/v1/admin/users", s.handler.ListUsers)
	s.route("POST /api/v1/admin/users", s.handler.RegisterUser)
	s.route("POST /api/v1/admin/quadrants/refresh", s.handler.TriggerRefresh)
	s.route("GET /api/v1/admin/quadrants/refresh", s.handler.LastRefresh)
}

// route registers an authenticated endpoint.
func (s *Server) route(pattern string, fn http.HandlerFunc) {
	s.mux.Handle(pattern, s.authenticate(fn))
}

// Handler returns the root handler with request logging and metrics.
func (s *Server) Handler() http.Handler {
	return s.instrument(s.mux)
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": string(observability.HealthStatusHealthy),
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	result := s.health.Check(r.Context())
	status := http.StatusOK
	if result.Status == observability.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, result)
}

// Start starts the API server.
func (s *Server) Start() error {
	s.logger.Info("starting API server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.server.Shutdown(ctx)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error":   http.StatusText(status),
		"message": message,
	})
}
