// Package controlplane exposes the narrow inject/query/reset surface that
// the HTTP API and the CLI bind to. It owns no protocol state of its own:
// it is a facade over the session registry, the fault table and the message
// archive, so everything it reports is exactly what the wire side sees.
//
// Usage:
//
//	ctrl := controlplane.New(registry, table, arch)
//	srv := api.NewServer(cfg, ctrl, ready)
package controlplane

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finwire/finmock/internal/logger"
	"github.com/finwire/finmock/pkg/faults"
	"github.com/finwire/finmock/pkg/session"
	"github.com/finwire/finmock/pkg/store/archive"
)

// ErrNotFound is returned by LookupMessage when the id is in neither the
// audit ring nor the archive.
var ErrNotFound = errors.New("message not found")

// ErrorTypeIgnoreSequence is the inject-error type that feeds the ignored
// set instead of arming a mode.
const ErrorTypeIgnoreSequence = "ignore_sequence"

// snapshotMessages is how many recent audit entries a status snapshot
// carries.
const snapshotMessages = 50

// defaultMessagesLimit and maxMessagesLimit bound the message listing.
const (
	defaultMessagesLimit = 50
	maxMessagesLimit     = 1000
)

// Control binds the session registry, the fault table and the optional
// message archive behind the control-plane operations. All methods are
// safe for concurrent use; they take snapshots and never hold a lock
// across I/O.
type Control struct {
	registry *session.Registry
	faults   *faults.Table
	archive  *archive.Archive
}

// New creates the control-plane facade. arch may be nil when the message
// archive is disabled.
func New(registry *session.Registry, table *faults.Table, arch *archive.Archive) *Control {
	return &Control{
		registry: registry,
		faults:   table,
		archive:  arch,
	}
}

// Status is the point-in-time state snapshot served by GET /api/v1/status.
type Status struct {
	Status           string                     `json:"status"`
	SessionCount     int                        `json:"sessions"`
	ErrorMode        faults.Mode                `json:"error_mode"`
	LatencyMS        int                        `json:"latency_ms"`
	IgnoredSequences []int                      `json:"ignored_sequences"`
	MessageCount     int                        `json:"message_count"`
	SessionDetails   map[string]session.Session `json:"session_details"`
	RecentMessages   []session.AuditEntry       `json:"recent_messages"`
}

// Snapshot returns the full state snapshot: every session, the armed
// faults, and the tail of the audit trail.
func (c *Control) Snapshot() Status {
	sessions := c.registry.Sessions()
	snap := c.faults.Snapshot()
	return Status{
		Status:           "running",
		SessionCount:     len(sessions),
		ErrorMode:        snap.Mode,
		LatencyMS:        snap.LatencyMS,
		IgnoredSequences: snap.Ignored,
		MessageCount:     c.registry.MessageCount(),
		SessionDetails:   sessions,
		RecentMessages:   c.registry.Messages(snapshotMessages),
	}
}

// MessageList is the paged audit listing served by GET /api/v1/messages.
type MessageList struct {
	Messages   []session.AuditEntry `json:"messages"`
	TotalCount int                  `json:"total_count"`
}

// Messages returns the most recent limit audit entries in chronological
// order. A non-positive limit selects the default of 50; limits above the
// ring capacity are clamped.
func (c *Control) Messages(limit int) MessageList {
	if limit <= 0 {
		limit = defaultMessagesLimit
	}
	if limit > maxMessagesLimit {
		limit = maxMessagesLimit
	}
	return MessageList{
		Messages:   c.registry.Messages(limit),
		TotalCount: c.registry.MessageCount(),
	}
}

// MessageDetail is a single audit entry, with the full raw wire text when
// the archive holds it.
type MessageDetail struct {
	session.AuditEntry
	Raw string `json:"raw,omitempty"`
}

// LookupMessage resolves a message id. The archive is consulted for the
// full raw text; entries that fell off the bounded ring are still served
// from the archive alone.
func (c *Control) LookupMessage(ctx context.Context, id string) (MessageDetail, error) {
	detail := MessageDetail{}
	entry, inRing := c.registry.MessageByID(id)
	if inRing {
		detail.AuditEntry = entry
	}

	rec, err := c.archive.Get(ctx, id)
	switch {
	case err == nil:
		detail.Raw = rec.Raw
		if !inRing {
			detail.AuditEntry = session.AuditEntry{
				ID:        rec.ID,
				Timestamp: rec.Timestamp,
				SessionID: rec.SessionID,
				Direction: rec.Direction,
				Details:   rec.Details,
				Duplicate: rec.Duplicate,
			}
		}
	case errors.Is(err, archive.ErrNotFound):
		if !inRing {
			return MessageDetail{}, ErrNotFound
		}
	default:
		if !inRing {
			return MessageDetail{}, err
		}
		logger.Warn("message archive lookup failed, serving ring entry",
			"message_id", id, logger.Err(err))
	}
	return detail, nil
}

// InjectRequest is the POST /api/v1/inject-error payload.
type InjectRequest struct {
	ErrorType string `json:"error_type"`
	Sequences []int  `json:"sequences,omitempty"`
	LatencyMS int    `json:"latency_ms,omitempty"`
}

// InjectResult reports what a successful injection changed.
type InjectResult struct {
	Message string          `json:"message"`
	Faults  faults.Snapshot `json:"faults"`
}

// InjectError applies a fault-injection request: either an error mode
// (optionally with a latency) or a batch of ignored sequences. Validation
// failures leave the table untouched.
func (c *Control) InjectError(req InjectRequest) (InjectResult, error) {
	if req.LatencyMS < 0 {
		return InjectResult{}, fmt.Errorf("latency_ms must be >= 0, got %d", req.LatencyMS)
	}

	var message string
	switch req.ErrorType {
	case ErrorTypeIgnoreSequence:
		if len(req.Sequences) == 0 {
			return InjectResult{}, errors.New("ignore_sequence requires a non-empty sequences list")
		}
		c.faults.AddIgnored(req.Sequences...)
		message = fmt.Sprintf("will ignore sequences %v", req.Sequences)
	default:
		mode, err := faults.ParseMode(req.ErrorType)
		if err != nil {
			return InjectResult{}, err
		}
		if mode == faults.ModeLatency && req.LatencyMS == 0 {
			return InjectResult{}, errors.New("latency requires latency_ms > 0")
		}
		c.faults.Set(mode, time.Duration(req.LatencyMS)*time.Millisecond)
		message = fmt.Sprintf("error mode set to %s", mode)
	}

	c.registry.Persist()

	snap := c.faults.Snapshot()
	logger.Info("fault injected",
		logger.FaultMode(string(snap.Mode)),
		logger.LatencyMs(snap.LatencyMS),
		"ignored_sequences", snap.Ignored,
	)
	return InjectResult{Message: message, Faults: snap}, nil
}

// Reset discards every session, the audit trail, the archived messages and
// all armed faults, then persists the now-empty state. An archive failure
// is logged, not fatal: the in-memory state is already clean.
func (c *Control) Reset(ctx context.Context) {
	c.registry.Reset()
	c.faults.Reset()
	if err := c.archive.Reset(ctx); err != nil {
		logger.Warn("message archive reset failed", logger.Err(err))
	}
	c.registry.Persist()
	logger.Info("state reset via control plane")
}
