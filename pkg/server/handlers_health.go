package server

import (
	"context"
	"net/http"
	"time"

	"github.com/matzehuels/townsquare/pkg/buildinfo"
)

func (s *Server) registerHealthRoutes() {
	s.router.Get("/healthz", s.handleLiveness)
	s.router.Get("/readyz", s.handleReadiness)
	s.router.Get("/version", s.handleVersion)
}

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.startTime).Seconds(),
	})
}

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	failed := map[string]string{}
	for _, hc := range s.healthChecks {
		if err := hc.Check(ctx); err != nil {
			failed[hc.Name] = err.Error()
		}
	}
	if len(failed) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "unavailable",
			"failed": failed,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}
