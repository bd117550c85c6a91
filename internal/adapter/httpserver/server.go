// Package httpserver exposes the latest feature collection plus health,
// readiness, and metrics endpoints.
package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/cyclone-feed-service/internal/domain"
)

// CollectionProvider hands out the most recent aggregation snapshot and
// reports whether the service is ready to serve traffic.
type CollectionProvider interface {
	Snapshot() (domain.FeatureCollection, bool)
	CheckReadiness(ctx context.Context) error
}

// Server exposes the GeoJSON collection and operational HTTP endpoints.
type Server struct {
	httpServer *http.Server
	provider   CollectionProvider
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /, /healthz, /readyz, and /metrics routes.
func NewServer(addr string, provider CollectionProvider, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		provider: provider,
		logger:   logger,
	}

	mux.HandleFunc("GET /{$}", s.handleCollection)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleCollection(w http.ResponseWriter, _ *http.Request) {
	fc, ok := s.provider.Snapshot()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "no feature collection available yet",
		})
		return
	}
	writeJSON(w, http.StatusOK, fc.GeoJSON())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.provider.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
