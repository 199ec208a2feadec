package httpapi

import (
	"net/http"
	"time"
)

// handleHealth implements GET /health: a liveness-independent summary
// used by uptime monitors, not by the orchestrator.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady implements GET /ready: the engine is ready to accept
// pseudonymize/depseudonymize calls once it holds a constructed
// engine instance (cache and key-service handles are injected at
// construction, so reaching this handler at all implies they exist).
func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if s.engine == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive implements GET /live: a bare process-liveness probe.
func (s *Server) handleLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "live"})
}

type statusResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

// handleStatus implements GET /status, bearer-token gated.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Status: "running",
		Uptime: time.Since(s.startTime).Round(time.Second).String(),
	})
}
