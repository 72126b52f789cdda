package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/shelter-data-etl-service/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SnapshotProvider returns the snapshot being served, or domain.ErrNoData
// before the first one is built.
type SnapshotProvider interface {
	Snapshot() (domain.Snapshot, error)
}

// Server exposes the shelter API alongside health, readiness, and metrics
// endpoints.
type Server struct {
	httpServer *http.Server
	snapshots  SnapshotProvider
	validate   *validator.Validate
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the operational routes and the
// read-only /api routes.
func NewServer(addr string, snapshots SnapshotProvider, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		snapshots: snapshots,
		validate:  validator.New(),
		logger:    logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/snapshot", s.withSnapshot(s.handleSnapshotInfo))
	mux.HandleFunc("GET /api/shelters", s.withSnapshot(s.handleShelters))
	mux.HandleFunc("GET /api/shelters/map", s.withSnapshot(s.handleMap))
	mux.HandleFunc("GET /api/shelters/canonical", s.withSnapshot(s.handleCanonical))
	mux.HandleFunc("GET /api/shelters.xlsx", s.withSnapshot(s.handleXLSX))
	mux.HandleFunc("GET /api/options/communities", s.withSnapshot(s.handleCommunityOptions))
	mux.HandleFunc("GET /api/options/settlements", s.withSnapshot(s.handleSettlementOptions))
	mux.HandleFunc("GET /api/options/types", s.withSnapshot(s.handleTypeOptions))
	mux.HandleFunc("GET /api/summary", s.withSnapshot(s.handleSummary))
	mux.HandleFunc("GET /api/charts/capacity-by-type", s.withSnapshot(s.handleCapacityByType))
	mux.HandleFunc("GET /api/charts/top-settlements", s.withSnapshot(s.handleTopSettlements))

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
