package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/finwire/finmock/pkg/controlplane"
)

// MessagesHandler serves the audit trail.
type MessagesHandler struct {
	ctrl *controlplane.Control
}

// NewMessagesHandler creates a new MessagesHandler.
func NewMessagesHandler(ctrl *controlplane.Control) *MessagesHandler {
	return &MessagesHandler{ctrl: ctrl}
}

// List handles GET /api/v1/messages?limit=N.
//
// Returns the most recent limit entries in chronological order (default
// 50, capped at the ring size).
func (h *MessagesHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			BadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	writeJSON(w, http.StatusOK, okResponse(h.ctrl.Messages(limit)))
}

// Get handles GET /api/v1/messages/{id}.
//
// Returns the audit entry, with the full raw wire text when the archive
// holds it.
func (h *MessagesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		BadRequest(w, "Message id is required")
		return
	}

	detail, err := h.ctrl.LookupMessage(r.Context(), id)
	if err != nil {
		if errors.Is(err, controlplane.ErrNotFound) {
			NotFound(w, "Message not found")
			return
		}
		InternalServerError(w, "Failed to look up message")
		return
	}

	writeJSON(w, http.StatusOK, okResponse(detail))
}
