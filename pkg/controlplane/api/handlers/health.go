package handlers

import (
	"net/http"
	"time"
)

// HealthHandler handles health check endpoints.
//
// Health endpoints are unauthenticated and provide:
//   - Liveness probe: is the server process running?
//   - Readiness probe: is the FIN listener accepting connections?
type HealthHandler struct {
	ready     func() bool
	startTime time.Time
}

// NewHealthHandler creates a new health handler. ready reports whether the
// FIN listener is up; it must not block.
func NewHealthHandler(ready func() bool) *HealthHandler {
	return &HealthHandler{
		ready:     ready,
		startTime: time.Now(),
	}
}

// Liveness handles GET /health - simple liveness probe.
//
// Returns 200 OK if the server process is running. This endpoint is
// designed for Kubernetes liveness probes and should always succeed as
// long as the HTTP server is responsive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.startTime)
	writeJSON(w, http.StatusOK, healthyResponse(map[string]any{
		"service":    "finmock",
		"started_at": h.startTime.UTC().Format(time.RFC3339),
		"uptime":     uptime.Round(time.Second).String(),
		"uptime_sec": int64(uptime.Seconds()),
	}))
}

// Readiness handles GET /health/ready - readiness probe.
//
// Returns 200 OK once the FIN listener is accepting connections, 503
// before that. Clients gate their connection attempts on this.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil && !h.ready() {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse("FIN listener not ready"))
		return
	}
	writeJSON(w, http.StatusOK, healthyResponse(map[string]any{
		"fin_listener": "ready",
	}))
}
