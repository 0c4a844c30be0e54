package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for FIN traffic and server internals.
// These follow OpenTelemetry semantic conventions where applicable.
// Client keys are protocol-agnostic; FIN-specific keys use the "fin." prefix.
const (
	// ========================================================================
	// Client attributes (protocol-agnostic)
	// ========================================================================
	AttrClientIP   = "client.ip"
	AttrClientAddr = "client.address"

	// ========================================================================
	// FIN session attributes
	// ========================================================================
	AttrSessionID = "fin.session_id"
	AttrInputSeq  = "fin.input_seq"
	AttrOutputSeq = "fin.output_seq"

	// ========================================================================
	// FIN message attributes
	// ========================================================================
	AttrMsgType   = "fin.msg_type"   // mt103, login, resend_request, unknown
	AttrSequence  = "fin.sequence"   // inbound :34: sequence number
	AttrReference = "fin.reference"  // :20: transaction reference
	AttrUETR      = "fin.uetr"       // block-3 {108:} unique end-to-end reference
	AttrResponse  = "fin.response"   // ACK, NACK, RESEND_REQUEST, LOGIN_OK
	AttrDuplicate = "fin.duplicate"  // sequence at or below the watermark
	AttrBytes     = "fin.bytes"      // raw frame size

	// ========================================================================
	// Fault-injection attributes
	// ========================================================================
	AttrFaultMode      = "fault.mode"
	AttrFaultLatencyMS = "fault.latency_ms"

	// ========================================================================
	// Archive attributes
	// ========================================================================
	AttrArchiveID = "archive.message_id"
)

// Span names for operations.
// Format: <component>.<operation>
const (
	// Root span for one inbound FIN frame: parse, decide, respond.
	SpanFINMessage = "fin.message"

	// Unsolicited LOGIN-OK written right after accept.
	SpanFINGreeting = "fin.greeting"

	// Durable state operations
	SpanStateSave   = "state.save"
	SpanStateLoad   = "state.load"
	SpanArchivePut  = "archive.put"
	SpanArchiveGet  = "archive.get"
	SpanArchiveScan = "archive.scan"
)

// ClientIP returns an attribute for client IP address
func ClientIP(ip string) attribute.KeyValue {
	return attribute.String(AttrClientIP, ip)
}

// ClientAddr returns an attribute for full client address
func ClientAddr(addr string) attribute.KeyValue {
	return attribute.String(AttrClientAddr, addr)
}

// SessionID returns an attribute for the FIN session identifier
func SessionID(id string) attribute.KeyValue {
	return attribute.String(AttrSessionID, id)
}

// InputSeq returns an attribute for the session's acknowledged watermark
func InputSeq(seq int) attribute.KeyValue {
	return attribute.Int(AttrInputSeq, seq)
}

// OutputSeq returns an attribute for the session's outbound counter
func OutputSeq(seq int) attribute.KeyValue {
	return attribute.Int(AttrOutputSeq, seq)
}

// MsgType returns an attribute for the parsed message kind
func MsgType(kind string) attribute.KeyValue {
	return attribute.String(AttrMsgType, kind)
}

// Sequence returns an attribute for the inbound sequence number
func Sequence(seq int) attribute.KeyValue {
	return attribute.Int(AttrSequence, seq)
}

// Reference returns an attribute for the :20: transaction reference
func Reference(ref string) attribute.KeyValue {
	return attribute.String(AttrReference, ref)
}

// UETR returns an attribute for the :121: end-to-end reference
func UETR(uetr string) attribute.KeyValue {
	return attribute.String(AttrUETR, uetr)
}

// Response returns an attribute for the response kind sent back
func Response(kind string) attribute.KeyValue {
	return attribute.String(AttrResponse, kind)
}

// Duplicate returns an attribute marking a replayed sequence number
func Duplicate(dup bool) attribute.KeyValue {
	return attribute.Bool(AttrDuplicate, dup)
}

// Bytes returns an attribute for a raw frame size
func Bytes(n int) attribute.KeyValue {
	return attribute.Int(AttrBytes, n)
}

// FaultMode returns an attribute for the armed fault mode
func FaultMode(mode string) attribute.KeyValue {
	return attribute.String(AttrFaultMode, mode)
}

// FaultLatencyMS returns an attribute for injected latency in milliseconds
func FaultLatencyMS(ms int) attribute.KeyValue {
	return attribute.Int(AttrFaultLatencyMS, ms)
}

// ArchiveID returns an attribute for an archived message id
func ArchiveID(id string) attribute.KeyValue {
	return attribute.String(AttrArchiveID, id)
}

// StartMessageSpan starts a span for one inbound FIN frame.
// This is a convenience function that sets common attributes.
func StartMessageSpan(ctx context.Context, sessionID, msgType string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		SessionID(sessionID),
		MsgType(msgType),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, SpanFINMessage, trace.WithAttributes(allAttrs...))
}

// StartArchiveSpan starts a span for a message-archive operation.
func StartArchiveSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, "archive."+operation, trace.WithAttributes(attrs...))
}
