package logger

import (
	"log/slog"
)

// Standard field keys for structured logging.
// Use these keys consistently across all log statements so that session,
// message and fault events can be correlated in log aggregation.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// FIN Messages
	// ========================================================================
	KeyMsgType      = "msg_type"      // Classified kind: MT103, LOGIN, HEARTBEAT, UNKNOWN
	KeyMsgID        = "msg_id"        // Archive/audit record identifier
	KeyDirection    = "direction"     // INBOUND or OUTBOUND
	KeySequence     = "sequence"      // Declared sequence number (field 34)
	KeyReference    = "reference"     // Transaction reference (field 20)
	KeyUETR         = "uetr"          // Unique end-to-end transaction reference (block 3 {108:})
	KeyResponseType = "response_type" // ack, nack, resend, login_ok
	KeyNackCode     = "nack_code"     // Error code carried in field 451
	KeyReason       = "reason"        // Human-readable rejection reason

	// ========================================================================
	// Session & Connection
	// ========================================================================
	KeySessionID  = "session_id"  // Session identifier (SESSION-<ip>-<port>)
	KeyRemoteAddr = "remote_addr" // Peer address (ip:port)
	KeyInputSeq   = "input_seq"   // Highest acknowledged inbound sequence
	KeyOutputSeq  = "output_seq"  // Last assigned outbound sequence
	KeyGapFrom    = "gap_from"    // First missing sequence in a detected gap
	KeyGapTo      = "gap_to"      // Last missing sequence in a detected gap

	// ========================================================================
	// Fault Injection
	// ========================================================================
	KeyFaultMode = "fault_mode" // none, nack_next, drop_connection, timeout, latency
	KeyLatencyMs = "latency_ms" // Injected latency in milliseconds
	KeyIgnored   = "ignored"    // Sequences configured to be silently ignored

	// ========================================================================
	// State & Archive
	// ========================================================================
	KeyPath     = "path"     // File or database path
	KeySessions = "sessions" // Number of sessions in a snapshot
	KeyMessages = "messages" // Number of audit entries in a snapshot
	KeyLimit    = "limit"    // Requested result limit

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyBytes      = "bytes"       // Byte count read or written
	KeyComponent  = "component"   // Subsystem name (adapter, controlplane, store)
)

// ============================================================================
// Field constructors for type safety
// ============================================================================

// TraceID returns a slog.Attr for OpenTelemetry trace ID
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// MsgType returns a slog.Attr for the classified message kind
func MsgType(kind string) slog.Attr {
	return slog.String(KeyMsgType, kind)
}

// MsgID returns a slog.Attr for an archive/audit record id
func MsgID(id string) slog.Attr {
	return slog.String(KeyMsgID, id)
}

// Direction returns a slog.Attr for message direction
func Direction(d string) slog.Attr {
	return slog.String(KeyDirection, d)
}

// Sequence returns a slog.Attr for a declared sequence number
func Sequence(seq int) slog.Attr {
	return slog.Int(KeySequence, seq)
}

// Reference returns a slog.Attr for a transaction reference
func Reference(ref string) slog.Attr {
	return slog.String(KeyReference, ref)
}

// UETR returns a slog.Attr for the end-to-end transaction reference
func UETR(uetr string) slog.Attr {
	return slog.String(KeyUETR, uetr)
}

// ResponseType returns a slog.Attr for the outbound response type
func ResponseType(t string) slog.Attr {
	return slog.String(KeyResponseType, t)
}

// NackCode returns a slog.Attr for a rejection code
func NackCode(code string) slog.Attr {
	return slog.String(KeyNackCode, code)
}

// Reason returns a slog.Attr for a rejection reason
func Reason(r string) slog.Attr {
	return slog.String(KeyReason, r)
}

// SessionID returns a slog.Attr for a session identifier
func SessionID(id string) slog.Attr {
	return slog.String(KeySessionID, id)
}

// RemoteAddr returns a slog.Attr for a peer address
func RemoteAddr(addr string) slog.Attr {
	return slog.String(KeyRemoteAddr, addr)
}

// InputSeq returns a slog.Attr for the acknowledged inbound sequence
func InputSeq(seq int) slog.Attr {
	return slog.Int(KeyInputSeq, seq)
}

// OutputSeq returns a slog.Attr for the outbound sequence counter
func OutputSeq(seq int) slog.Attr {
	return slog.Int(KeyOutputSeq, seq)
}

// GapRange returns slog.Attrs for a detected sequence gap
func GapRange(from, to int) []slog.Attr {
	return []slog.Attr{slog.Int(KeyGapFrom, from), slog.Int(KeyGapTo, to)}
}

// GapFrom returns a slog.Attr for the first missing sequence of a gap
func GapFrom(seq int) slog.Attr {
	return slog.Int(KeyGapFrom, seq)
}

// GapTo returns a slog.Attr for the last missing sequence of a gap
func GapTo(seq int) slog.Attr {
	return slog.Int(KeyGapTo, seq)
}

// FaultMode returns a slog.Attr for the active fault mode
func FaultMode(mode string) slog.Attr {
	return slog.String(KeyFaultMode, mode)
}

// LatencyMs returns a slog.Attr for injected latency
func LatencyMs(ms int) slog.Attr {
	return slog.Int(KeyLatencyMs, ms)
}

// Path returns a slog.Attr for a file or database path
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// Sessions returns a slog.Attr for a session count
func Sessions(n int) slog.Attr {
	return slog.Int(KeySessions, n)
}

// Messages returns a slog.Attr for an audit entry count
func Messages(n int) slog.Attr {
	return slog.Int(KeyMessages, n)
}

// Limit returns a slog.Attr for a requested result limit
func Limit(n int) slog.Attr {
	return slog.Int(KeyLimit, n)
}

// DurationMs returns a slog.Attr for duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Bytes returns a slog.Attr for a byte count
func Bytes(n int) slog.Attr {
	return slog.Int(KeyBytes, n)
}

// Component returns a slog.Attr for a subsystem name
func Component(name string) slog.Attr {
	return slog.String(KeyComponent, name)
}
