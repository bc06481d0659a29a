// Package server exposes the layout pipeline over HTTP.
//
// Routes:
//
//	GET    /healthz                  liveness
//	GET    /readyz                   runs the registered health checks
//	GET    /version                  build information
//	POST   /v1/layout                layout result as JSON
//	POST   /v1/layout.svg            rendered seat circle
//	POST   /v1/stacking.dot          stacking constraint graph
//	POST   /v1/tables/{table}/layout layout on a long-lived table engine
//	DELETE /v1/tables/{table}        forget a table engine
//	GET    /metrics                  Prometheus metrics, see [Server.MountMetrics]
//
// Request bodies are pipeline.Options as JSON. Errors are JSON objects with
// the pkg/errors code: {"code": "LAYOUT_BUSY", "message": "...", "request_id": "..."}.
//
// Passes posted to the same table share one layout engine; a pass that
// arrives while the previous one is still running is rejected with 409.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/townsquare/pkg/config"
	"github.com/matzehuels/townsquare/pkg/layout"
	"github.com/matzehuels/townsquare/pkg/pipeline"
)

const (
	// maxBodyBytes caps request bodies.
	maxBodyBytes = 1 << 20

	readinessTimeout = 5 * time.Second
	shutdownTimeout  = 10 * time.Second
)

// HealthCheck is a named readiness probe.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Server serves the layout API.
type Server struct {
	router chi.Router
	runner *pipeline.Runner
	cfg    config.Config
	logger *log.Logger

	mu     sync.Mutex
	tables map[string]*layout.Engine

	healthChecks []HealthCheck
	startTime    time.Time
	httpServer   *http.Server
}

// New returns a server running passes through runner with cfg.
func New(runner *pipeline.Runner, cfg config.Config, logger *log.Logger, checks ...HealthCheck) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		router:       chi.NewRouter(),
		runner:       runner,
		cfg:          cfg,
		logger:       logger,
		tables:       make(map[string]*layout.Engine),
		healthChecks: checks,
		startTime:    time.Now(),
	}
	s.registerRoutes()
	return s
}

// MountMetrics serves h on /metrics.
func (s *Server) MountMetrics(h http.Handler) {
	s.router.Method(http.MethodGet, "/metrics", h)
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down server")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// table returns the engine of a table, creating it on first use.
func (s *Server) table(id string) *layout.Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	eng, ok := s.tables[id]
	if !ok {
		eng = layout.New(s.cfg.Engine())
		s.tables[id] = eng
	}
	return eng
}

// dropTable forgets a table and reports whether it existed.
func (s *Server) dropTable(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tables[id]
	delete(s.tables, id)
	return ok
}
