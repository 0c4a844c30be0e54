package handlers

import (
	"net/http"

	"github.com/finwire/finmock/pkg/controlplane"
)

// InjectHandler arms fault injection.
type InjectHandler struct {
	ctrl *controlplane.Control
}

// NewInjectHandler creates a new InjectHandler.
func NewInjectHandler(ctrl *controlplane.Control) *InjectHandler {
	return &InjectHandler{ctrl: ctrl}
}

// Post handles POST /api/v1/inject-error.
//
// The body selects either an error mode (none, nack_next, drop_connection,
// timeout, latency) or a batch of ignored sequences:
//
//	{"error_type": "nack_next"}
//	{"error_type": "latency", "latency_ms": 1500}
//	{"error_type": "ignore_sequence", "sequences": [30, 31]}
func (h *InjectHandler) Post(w http.ResponseWriter, r *http.Request) {
	var req controlplane.InjectRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	result, err := h.ctrl.InjectError(req)
	if err != nil {
		BadRequest(w, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, okResponse(result))
}
