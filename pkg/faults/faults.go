// Package faults holds the process-wide fault-injection table consulted by
// the FIN session engine. The table is strictly polled: the engine reads it
// under the table lock on each decision, control-plane mutators hold the
// same lock, and nothing ever calls back out of it.
package faults

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Mode is the active fault mode.
type Mode string

const (
	ModeNone           Mode = "none"
	ModeNackNext       Mode = "nack_next"
	ModeDropConnection Mode = "drop_connection"
	ModeTimeout        Mode = "timeout"
	ModeLatency        Mode = "latency"
)

// ParseMode validates a wire-level error mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeNone, ModeNackNext, ModeDropConnection, ModeTimeout, ModeLatency:
		return Mode(s), nil
	default:
		return ModeNone, fmt.Errorf("unknown error mode %q", s)
	}
}

// Snapshot is a point-in-time copy of the table for status reporting.
type Snapshot struct {
	Mode      Mode  `json:"error_mode"`
	LatencyMS int   `json:"latency_ms"`
	Ignored   []int `json:"ignored_sequences"`
}

// Table is the fault-injection state. nack_next and drop_connection are
// one-shot: the first matching decision consumes them back to none.
// timeout and latency persist until cleared. Each ignored sequence is
// consumed on its first match.
type Table struct {
	mu      sync.Mutex
	mode    Mode
	latency time.Duration
	ignored map[int]struct{}
}

// NewTable returns a table with no faults armed.
func NewTable() *Table {
	return &Table{
		mode:    ModeNone,
		ignored: make(map[int]struct{}),
	}
}

// Set arms an error mode. The latency value always overwrites the previous
// one, so arming any mode with a zero latency also clears a pending delay.
func (t *Table) Set(mode Mode, latency time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.mode = mode
	t.latency = latency
}

// AddIgnored adds sequence numbers to the ignored set.
func (t *Table) AddIgnored(seqs ...int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range seqs {
		t.ignored[s] = struct{}{}
	}
}

// Reset clears the mode, the latency and the ignored set.
func (t *Table) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.mode = ModeNone
	t.latency = 0
	t.ignored = make(map[int]struct{})
}

// Mode returns the currently armed mode.
func (t *Table) Mode() Mode {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mode
}

// Delay returns the configured latency to apply before responding.
func (t *Table) Delay() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latency
}

// TimeoutActive reports whether the timeout mode is armed. Timeout is not
// one-shot; it silences every message until cleared.
func (t *Table) TimeoutActive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mode == ModeTimeout
}

// ConsumeDrop atomically consumes an armed drop_connection mode.
func (t *Table) ConsumeDrop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.mode != ModeDropConnection {
		return false
	}
	t.mode = ModeNone
	return true
}

// ConsumeNackNext atomically consumes an armed nack_next mode.
func (t *Table) ConsumeNackNext() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.mode != ModeNackNext {
		return false
	}
	t.mode = ModeNone
	return true
}

// IsIgnored reports membership without consuming. The gap rule needs the
// check before the ignore rule gets its chance to consume.
func (t *Table) IsIgnored(seq int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.ignored[seq]
	return ok
}

// ConsumeIgnored removes seq from the ignored set if present.
func (t *Table) ConsumeIgnored(seq int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.ignored[seq]; !ok {
		return false
	}
	delete(t.ignored, seq)
	return true
}

// Snapshot copies the table for the control-plane status payload.
func (t *Table) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	ignored := make([]int, 0, len(t.ignored))
	for s := range t.ignored {
		ignored = append(ignored, s)
	}
	sort.Ints(ignored)
	return Snapshot{
		Mode:      t.mode,
		LatencyMS: int(t.latency / time.Millisecond),
		Ignored:   ignored,
	}
}
