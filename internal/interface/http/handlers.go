package http

import (
	"net/http"
	"time"

	"github.com/gradecalc/gradeform/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// healthResponse is the body of /health.
type healthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version,omitempty"`
	Uptime    string    `json:"uptime"`
	Timestamp time.Time `json:"timestamp"`
}

// handleHealth reports liveness of the web server itself.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Version:   s.deps.Version,
		Uptime:    s.Uptime().Round(time.Second).String(),
		Timestamp: time.Now().UTC(),
	})
}

// handleReady runs the registered checks, the calculation server among them.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := s.deps.HealthChecker.Check(r.Context())
	if !status.Ready {
		s.logger.Warn("readiness check failed", logger.String("message", status.Message))
		writeJSON(w, http.StatusServiceUnavailable, status)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
