package server

import (
	"context"
	"net/http"
	"time"
)

// CheckFunc reports whether a backing service is reachable.
type CheckFunc func(ctx context.Context) error

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := make(map[string]string, len(s.Checks))
	status := http.StatusOK
	for name, check := range s.Checks {
		checks[name] = "ok"
		if err := check(ctx); err != nil {
			s.Logger.WithError(err).WithField("check", name).Error("health check failed")
			checks[name] = "error"
			status = http.StatusServiceUnavailable
		}
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	writeJSON(w, status, map[string]any{"status": overall, "checks": checks})
}
