// Package http serves the closures map, the GeoJSON feed, and the
// health/metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/road-closures-service/internal/domain"
)

// ClosuresProvider runs the pipeline and reports whether it refreshed.
type ClosuresProvider interface {
	GetClosures(ctx context.Context) ([]domain.ClosureRecord, bool, error)
}

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes the map page, the GeoJSON feed, and operational endpoints.
type Server struct {
	httpServer *http.Server
	provider   ClosuresProvider
	logger     *slog.Logger

	// The marshalled FeatureCollection is kept in memory and only rebuilt
	// when the pipeline reports a refresh, so repeat page loads inside the
	// cache window skip re-deriving the document.
	mu      sync.Mutex
	geojson []byte
}

// NewServer creates an HTTP server with the map, GeoJSON, health,
// readiness, and metrics routes.
func NewServer(addr string, provider ClosuresProvider, ready ReadinessChecker, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	}))

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		provider: provider,
		logger:   logger,
	}

	for _, route := range []string{"/", "/map", "/data", "/contact"} {
		r.Get(route, s.handleMap)
	}
	r.Get("/closures.geojson", s.handleGeoJSON)
	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", handleReady(ready))
	r.Handle("/metrics", promhttp.Handler())

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

// handleGeoJSON runs the pipeline and serves the closure set as a GeoJSON
// FeatureCollection. Pages are cacheable for an hour; the payload cache
// bounds how stale the underlying data can get.
func (s *Server) handleGeoJSON(w http.ResponseWriter, r *http.Request) {
	body, err := s.currentGeoJSON(r.Context())
	if err != nil {
		s.logger.Error("closures pipeline failed", "error", err)
		http.Error(w, "closures unavailable", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(body) //nolint:errcheck // client gone, nothing to do
}

// currentGeoJSON returns the cached document, rebuilding it when the
// pipeline refreshed or nothing is cached yet.
func (s *Server) currentGeoJSON(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, refreshed, err := s.provider.GetClosures(ctx)
	if err != nil {
		// Serve the previous document if we have one; an outdated map beats
		// an empty one.
		if s.geojson != nil {
			s.logger.Warn("serving stale closures after pipeline failure", "error", err)
			return s.geojson, nil
		}
		return nil, err
	}

	if s.geojson == nil || refreshed {
		body, err := json.Marshal(toFeatureCollection(records))
		if err != nil {
			return nil, err
		}
		s.geojson = body
		s.logger.Info("rebuilt geojson document", "closures", len(records), "bytes", len(body))
	}
	return s.geojson, nil
}

func (s *Server) handleMap(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write([]byte(mapPage)) //nolint:errcheck // best-effort page write
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort health response
}
