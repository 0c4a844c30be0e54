package handlers

import (
	"net/http"

	"github.com/finwire/finmock/pkg/controlplane"
)

// StatusHandler serves the state snapshot.
type StatusHandler struct {
	ctrl *controlplane.Control
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(ctrl *controlplane.Control) *StatusHandler {
	return &StatusHandler{ctrl: ctrl}
}

// Get handles GET /api/v1/status.
//
// Returns every session with its sequence counters, the armed faults and
// the tail of the audit trail.
func (h *StatusHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, okResponse(h.ctrl.Snapshot()))
}
