package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/vytor/web3profile/internal/logger"
)

// handleHealth reports liveness and always returns 200 OK.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady checks every registered dependency and returns 503 if any fails.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	log := logger.FromContext(ctx)

	names := make([]string, 0, len(s.Dependencies))
	for name := range s.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	checks := make(map[string]string, len(names))
	status := http.StatusOK
	for _, name := range names {
		dep := s.Dependencies[name]
		if dep == nil {
			continue
		}
		if err := dep.Ping(ctx); err != nil {
			log.Warn("readiness check failed - %s: %v", name, err)
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "unavailable"
	}
	writeJSON(w, r, status, map[string]any{"status": state, "checks": checks})
}
