package handlers

import (
	"net/http"

	"github.com/finwire/finmock/pkg/controlplane"
)

// ResetHandler wipes the mock back to its initial state.
type ResetHandler struct {
	ctrl *controlplane.Control
}

// NewResetHandler creates a new ResetHandler.
func NewResetHandler(ctrl *controlplane.Control) *ResetHandler {
	return &ResetHandler{ctrl: ctrl}
}

// Post handles POST /api/v1/reset.
//
// Clears all sessions, the audit trail, archived messages and armed
// faults, then persists the empty state. Connected clients keep their
// sockets; their next message starts a fresh session.
func (h *ResetHandler) Post(w http.ResponseWriter, r *http.Request) {
	h.ctrl.Reset(r.Context())

	writeJSON(w, http.StatusOK, okResponse(map[string]string{
		"message": "state reset",
	}))
}
