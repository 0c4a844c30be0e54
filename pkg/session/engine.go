package session

import (
	"context"
	"time"

	"github.com/finwire/finmock/internal/logger"
	"github.com/finwire/finmock/pkg/faults"
	"github.com/finwire/finmock/pkg/fin"
	"github.com/finwire/finmock/pkg/metrics"
)

// timeoutPause is how long the timeout fault silences the handler per
// message. Package variable so tests can shorten it.
var timeoutPause = 2 * time.Second

// Action tells the connection handler what to do with the wire after a
// decision.
type Action int

const (
	// ActionNone sends nothing; the handler keeps reading.
	ActionNone Action = iota
	// ActionSend writes Decision.Response, then keeps reading.
	ActionSend
	// ActionClose tears the connection down without a response.
	ActionClose
)

// Decision is the transport-facing outcome of one inbound message. The
// engine never touches the socket; the connection handler executes the
// decision, so no lock is ever held across I/O.
type Decision struct {
	Action   Action
	Response string
	// Type is the response kind (ACK, NACK, RESEND_REQUEST, LOGIN_OK)
	// when Action is ActionSend.
	Type string
}

var (
	decideNone  = Decision{Action: ActionNone}
	decideClose = Decision{Action: ActionClose}
)

// Engine runs the per-message decision table against the session registry,
// the fault table and the response builder. It owns no transport state:
// one engine serves every connection.
type Engine struct {
	registry *Registry
	faults   *faults.Table
	builder  *fin.Builder
	key      string
	metrics  *metrics.FINMetrics

	now func() time.Time
}

// NewEngine creates the decision engine. key is the trailer MAC key; empty
// selects the built-in default. m may be nil to disable metrics.
func NewEngine(registry *Registry, table *faults.Table, key string, m *metrics.FINMetrics) *Engine {
	if key == "" {
		key = fin.DefaultMACKey
	}
	return &Engine{
		registry: registry,
		faults:   table,
		builder:  fin.NewBuilder(key),
		key:      key,
		metrics:  m,
		now:      time.Now,
	}
}

// Greeting returns the unsolicited LOGIN-OK emitted right after accept.
// It consumes no output sequence; the monotone :34: series starts with the
// first real acknowledgment.
func (e *Engine) Greeting(sessionID string) Decision {
	raw := e.builder.LoginOK(sessionID)
	e.registry.LogOutbound(sessionID, raw, fin.ResponseLoginOK, e.now())
	e.metrics.ObserveResponse(fin.ResponseLoginOK)
	return Decision{Action: ActionSend, Response: raw, Type: fin.ResponseLoginOK}
}

// Handle runs one parsed inbound message through the decision table and
// returns what the transport must do. ctx bounds the intentional pauses
// (injected latency and the timeout fault); cancellation cuts them short
// without changing the decision.
//
// Rule order, first match wins:
//
//	drop_connection  close without response (one-shot)
//	timeout          pause, no response (persists until cleared)
//	trailer invalid  NACK code 5, input_seq unchanged
//	sequence gap     Resend Request [i+1, s-1], input_seq unchanged
//	ignored seq      consume the entry, no response, input_seq unchanged
//	nack_next        NACK code 7 ADVERSARIAL_TEST, input_seq = s (one-shot)
//	default          ACK, input_seq = s
//
// A LOGIN envelope bypasses the table entirely: it re-runs the handshake
// and is answered with LOGIN-OK no matter what faults are armed.
func (e *Engine) Handle(ctx context.Context, sessionID string, msg *fin.Message) Decision {
	start := e.now()
	defer func() {
		e.metrics.ObserveMessageDuration(time.Since(start))
	}()

	e.metrics.ObserveMessage(string(msg.Kind))

	if msg.Kind == fin.KindLogin {
		return e.handleLogin(sessionID, msg)
	}

	s := msg.SequenceNumber
	i := e.registry.InputSeq(sessionID)
	_, hasSeq := msg.Field("34")
	duplicate := hasSeq && s <= i

	msgID := e.registry.LogInbound(sessionID, msg, duplicate, start)

	log := logger.With(
		logger.SessionID(sessionID),
		logger.MsgType(string(msg.Kind)),
		logger.Sequence(s),
		logger.InputSeq(i),
	)

	if e.faults.ConsumeDrop() {
		e.metrics.ObserveFault(string(faults.ModeDropConnection))
		log.Info("fault: dropping connection without response")
		return decideClose
	}

	if e.faults.TimeoutActive() {
		e.metrics.ObserveFault(string(faults.ModeTimeout))
		log.Info("fault: timeout, withholding response",
			logger.LatencyMs(int(timeoutPause/time.Millisecond)))
		pause(ctx, timeoutPause)
		return decideNone
	}

	if delay := e.faults.Delay(); delay > 0 {
		e.metrics.ObserveFault(string(faults.ModeLatency))
		log.Debug("fault: delaying response",
			logger.LatencyMs(int(delay/time.Millisecond)))
		pause(ctx, delay)
	}

	if msg.HasTrailer() {
		if ok, reason := fin.ValidateTrailer(msg.Raw, e.key); !ok {
			e.metrics.ObserveTrailerFailure()
			log.Warn("trailer validation failed", logger.Reason(reason))
			return e.send(sessionID, fin.ResponseNACK,
				e.builder.NACK(e.ref(msg, msgID), e.registry.NextOutput(sessionID, e.now()), "5", reason, e.now()))
		}
	}

	if s > i+1 && !e.faults.IsIgnored(s) {
		e.metrics.ObserveSequenceGap()
		log.Info("sequence gap detected, requesting resend",
			logger.GapFrom(i+1), logger.GapTo(s-1))
		return e.send(sessionID, fin.ResponseResend,
			e.builder.ResendRequest(e.registry.NextOutput(sessionID, e.now()), i+1, s-1))
	}

	if e.faults.ConsumeIgnored(s) {
		e.metrics.ObserveFault("ignore_sequence")
		log.Info("fault: ignoring message, no response")
		return decideNone
	}

	if e.faults.ConsumeNackNext() {
		e.metrics.ObserveFault(string(faults.ModeNackNext))
		log.Info("fault: forced NACK")
		d := e.send(sessionID, fin.ResponseNACK,
			e.builder.NACK(e.ref(msg, msgID), e.registry.NextOutput(sessionID, e.now()), "7", "ADVERSARIAL_TEST", e.now()))
		e.registry.AdvanceInput(sessionID, s, e.now())
		e.registry.Persist()
		return d
	}

	if duplicate {
		log.Debug("duplicate sequence, acknowledging without advance")
	} else {
		log.Debug("acknowledging message")
	}
	d := e.send(sessionID, fin.ResponseACK,
		e.builder.ACK(e.ref(msg, msgID), msg.UETR, e.registry.NextOutput(sessionID, e.now()), e.now()))
	e.registry.AdvanceInput(sessionID, s, e.now())
	e.registry.Persist()
	return d
}

// Malformed answers a frame that parsed without a block 4. The message is
// audited and NACKed with reason "malformed"; input_seq never advances. The
// connection handler routes here instead of Handle, before the decision
// table gets involved.
func (e *Engine) Malformed(sessionID string, msg *fin.Message) Decision {
	start := e.now()
	defer func() {
		e.metrics.ObserveMessageDuration(time.Since(start))
	}()

	e.metrics.ObserveMessage(string(msg.Kind))
	msgID := e.registry.LogInbound(sessionID, msg, false, start)

	logger.Warn("malformed message, missing block 4",
		logger.SessionID(sessionID),
		logger.MsgID(msgID),
	)
	return e.send(sessionID, fin.ResponseNACK,
		e.builder.NACK(e.ref(msg, msgID), e.registry.NextOutput(sessionID, e.now()), "5", "malformed", e.now()))
}

// handleLogin completes (or idempotently repeats) the handshake.
func (e *Engine) handleLogin(sessionID string, msg *fin.Message) Decision {
	now := e.now()
	e.registry.LogInbound(sessionID, msg, false, now)
	e.registry.MarkAuthenticated(sessionID, now)
	e.registry.Persist()
	logger.Info("session authenticated", logger.SessionID(sessionID))
	return e.send(sessionID, fin.ResponseLoginOK, e.builder.LoginOK(sessionID))
}

// send records the outbound response in the audit trail and metrics and
// wraps it in a Decision.
func (e *Engine) send(sessionID, responseType, raw string) Decision {
	e.registry.LogOutbound(sessionID, raw, responseType, e.now())
	e.metrics.ObserveResponse(responseType)
	return Decision{Action: ActionSend, Response: raw, Type: responseType}
}

// ref picks the reference echoed in field 20 of ACK/NACK responses: the
// inbound transaction reference, falling back to the audit message id.
func (e *Engine) ref(msg *fin.Message, msgID string) string {
	if msg.TransactionReference != "" {
		return msg.TransactionReference
	}
	return msgID
}

// pause sleeps for d unless ctx ends first.
func pause(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
