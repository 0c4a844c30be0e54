package session

import (
	"sync"
	"time"

	"github.com/finwire/finmock/internal/logger"
	"github.com/finwire/finmock/pkg/fin"
)

// Saver persists the registry snapshot. Writes are best-effort: a failed
// save is logged and swallowed, it never fails message processing.
type Saver interface {
	Save(sessions map[string]Session, log []AuditEntry) error
}

// Archiver stores full raw messages for later lookup by id. The audit ring
// only retains previews.
type Archiver interface {
	Archive(entry AuditEntry, raw string) error
}

// Registry is the process-wide session map plus the bounded audit ring.
// All field access goes through the registry mutex; connection handlers own
// their session for its lifetime and everything else only takes snapshots.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	audit    []AuditEntry

	saver   Saver
	archive Archiver
}

// NewRegistry creates an empty registry. Both saver and archive may be nil.
func NewRegistry(saver Saver, archive Archiver) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		saver:    saver,
		archive:  archive,
	}
}

// Attach returns the session for a just-accepted connection, creating it if
// the endpoint was never seen. Reconnects resume the existing counters.
func (r *Registry) Attach(remoteAddr string, now time.Time) Session {
	id := SessionID(remoteAddr)

	r.mu.Lock()
	sess, ok := r.sessions[id]
	if !ok {
		sess = NewSession(remoteAddr, now)
		r.sessions[id] = sess
	}
	sess.Connected = true
	sess.RemoteAddr = remoteAddr
	sess.LastActivity = now
	copied := *sess
	r.mu.Unlock()

	r.Persist()
	return copied
}

// Detach marks the session disconnected. The session itself is retained so
// sequence state survives reconnects; only Reset discards it.
func (r *Registry) Detach(id string, now time.Time) {
	r.mu.Lock()
	if sess, ok := r.sessions[id]; ok {
		sess.Connected = false
		sess.LastActivity = now
	}
	r.mu.Unlock()
}

// Session returns a copy of the session with the given id.
func (r *Registry) Session(id string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[id]
	if !ok {
		return Session{}, false
	}
	return *sess, true
}

// Sessions returns a copy of every session, keyed by id.
func (r *Registry) Sessions() map[string]Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]Session, len(r.sessions))
	for id, sess := range r.sessions {
		out[id] = *sess
	}
	return out
}

// InputSeq returns the session's highest accepted inbound sequence.
func (r *Registry) InputSeq(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sess, ok := r.sessions[id]; ok {
		return sess.InputSeq
	}
	return 0
}

// AdvanceInput raises input_seq to s. input_seq is monotone: a lower s
// never rewinds it.
func (r *Registry) AdvanceInput(id string, s int, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[id]
	if !ok {
		return
	}
	if s > sess.InputSeq {
		sess.InputSeq = s
	}
	sess.LastActivity = now
}

// NextOutput increments output_seq and returns the new value. Exactly one
// call per emitted response keeps the wire series 1, 2, 3, ...
func (r *Registry) NextOutput(id string, now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[id]
	if !ok {
		return 0
	}
	sess.OutputSeq++
	sess.LastActivity = now
	return sess.OutputSeq
}

// MarkAuthenticated records a completed LOGIN handshake.
func (r *Registry) MarkAuthenticated(id string, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sess, ok := r.sessions[id]; ok {
		sess.Authenticated = true
		sess.LastActivity = now
	}
}

// LogInbound appends an audit entry for a received message and returns the
// entry id, which doubles as the message id for archive lookups.
func (r *Registry) LogInbound(sessionID string, msg *fin.Message, duplicate bool, now time.Time) string {
	entry := newAuditEntry(sessionID, DirectionInbound, msg.Raw, msg.Details(), now)
	entry.Duplicate = duplicate
	r.append(entry, msg.Raw)
	return entry.ID
}

// LogOutbound appends an audit entry for an emitted response.
func (r *Registry) LogOutbound(sessionID, raw, responseType string, now time.Time) string {
	details := fin.Parse(raw).Details()
	details["response_type"] = responseType
	entry := newAuditEntry(sessionID, DirectionOutbound, raw, details, now)
	r.append(entry, raw)
	return entry.ID
}

// append adds the entry to the ring under the lock, then archives the full
// raw text outside it.
func (r *Registry) append(entry AuditEntry, raw string) {
	r.mu.Lock()
	r.audit = append(r.audit, entry)
	if len(r.audit) > maxAuditEntries {
		r.audit = r.audit[len(r.audit)-maxAuditEntries:]
	}
	r.mu.Unlock()

	if r.archive != nil {
		if err := r.archive.Archive(entry, raw); err != nil {
			logger.Warn("message archive write failed", "message_id", entry.ID, "error", err)
		}
	}
}

// Messages returns the most recent limit audit entries in chronological
// order. A non-positive limit returns the whole ring.
func (r *Registry) Messages(limit int) []AuditEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	start := 0
	if limit > 0 && len(r.audit) > limit {
		start = len(r.audit) - limit
	}
	out := make([]AuditEntry, len(r.audit)-start)
	copy(out, r.audit[start:])
	return out
}

// MessageByID looks an audit entry up in the ring.
func (r *Registry) MessageByID(id string) (AuditEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.audit) - 1; i >= 0; i-- {
		if r.audit[i].ID == id {
			return r.audit[i], true
		}
	}
	return AuditEntry{}, false
}

// MessageCount returns the number of retained audit entries.
func (r *Registry) MessageCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.audit)
}

// Reset discards all sessions and the audit ring.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.sessions = make(map[string]*Session)
	r.audit = nil
	r.mu.Unlock()
}

// Restore loads a persisted snapshot, typically at startup. Restored
// sessions are never connected: their sockets died with the old process.
func (r *Registry) Restore(sessions map[string]Session, log []AuditEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = make(map[string]*Session, len(sessions))
	for id, sess := range sessions {
		restored := sess
		restored.Connected = false
		r.sessions[id] = &restored
	}
	if len(log) > maxAuditEntries {
		log = log[len(log)-maxAuditEntries:]
	}
	r.audit = append([]AuditEntry(nil), log...)
}

// Persist writes the current snapshot through the configured saver.
// Failures are logged and swallowed.
func (r *Registry) Persist() {
	if r.saver == nil {
		return
	}
	sessions := r.Sessions()
	log := r.Messages(0)
	if err := r.saver.Save(sessions, log); err != nil {
		logger.Warn("state snapshot failed", "error", err)
	}
}
