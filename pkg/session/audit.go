package session

import (
	"time"

	"github.com/google/uuid"
)

// Audit directions.
const (
	DirectionInbound  = "INBOUND"
	DirectionOutbound = "OUTBOUND"
)

// maxAuditEntries bounds the in-memory audit ring; the persisted
// message_log carries the same tail.
const maxAuditEntries = 1000

// previewLimit caps the preview stored per entry. Full raw messages go to
// the archive, when one is configured.
const previewLimit = 200

// AuditEntry records one message that crossed the wire, in either
// direction. Entries are append-only; the ring truncates from the front.
type AuditEntry struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	SessionID string         `json:"session_id"`
	Direction string         `json:"direction"`
	Preview   string         `json:"message_preview"`
	Details   map[string]any `json:"parsed_details,omitempty"`
	Duplicate bool           `json:"duplicate,omitempty"`
}

// newAuditEntry builds an entry with a fresh id and a bounded preview.
func newAuditEntry(sessionID, direction, raw string, details map[string]any, now time.Time) AuditEntry {
	return AuditEntry{
		ID:        uuid.NewString(),
		Timestamp: now,
		SessionID: sessionID,
		Direction: direction,
		Preview:   preview(raw),
		Details:   details,
	}
}

// preview truncates raw to previewLimit characters without splitting a
// multi-byte rune.
func preview(raw string) string {
	if len(raw) <= previewLimit {
		return raw
	}
	runes := []rune(raw)
	if len(runes) <= previewLimit {
		return raw
	}
	return string(runes[:previewLimit])
}
