package fin

import (
	"context"
	"io"
	"net"
	"runtime/debug"
	"time"

	"github.com/finwire/finmock/internal/logger"
	"github.com/finwire/finmock/internal/telemetry"
	fin "github.com/finwire/finmock/pkg/fin"
	"github.com/finwire/finmock/pkg/session"
)

// Connection handles a single FIN client connection. Messages are
// processed strictly in arrival order: the read loop frames, parses,
// decides and writes before touching the next frame, so responses never
// interleave and output sequence numbers hit the wire in the order the
// engine assigned them.
type Connection struct {
	server    *Adapter
	conn      net.Conn
	sessionID string
	frames    *frameBuffer
}

// NewConnection creates a new FIN connection handler.
func NewConnection(server *Adapter, conn net.Conn) *Connection {
	return &Connection{
		server: server,
		conn:   conn,
		frames: newFrameBuffer(server.config.MaxBufferSize),
	}
}

// Serve handles all FIN traffic for this connection.
//
// On entry the session is attached (created on first contact, resumed
// with its previous counters on reconnect) and, unless disabled, the
// unsolicited LOGIN-OK greeting is written.
//
// The connection is automatically closed when:
// - The context is cancelled (server shutdown)
// - An idle or read timeout occurs
// - The engine decides to drop the connection
// - The framing buffer overflows
// - The client closes the connection
func (c *Connection) Serve(ctx context.Context) {
	defer c.handleConnectionClose()

	clientAddr := c.conn.RemoteAddr().String()
	sess := c.server.registry.Attach(clientAddr, time.Now())
	c.sessionID = sess.ID

	logger.Info("FIN session attached",
		logger.SessionID(sess.ID),
		logger.RemoteAddr(clientAddr),
		logger.InputSeq(sess.InputSeq),
		logger.OutputSeq(sess.OutputSeq),
	)

	if c.server.config.greetingEnabled() {
		if err := c.execute(c.server.engine.Greeting(c.sessionID)); err != nil {
			logger.Debug("FIN greeting write failed",
				logger.SessionID(c.sessionID), logger.Err(err))
			return
		}
	}

	readBuf := make([]byte, readChunkSize)

	for {
		// Check for shutdown before blocking on the next read
		select {
		case <-ctx.Done():
			logger.Debug("FIN connection closed due to context cancellation",
				logger.SessionID(c.sessionID))
			return
		case <-c.server.Shutdown:
			logger.Debug("FIN connection closed due to server shutdown",
				logger.SessionID(c.sessionID))
			return
		default:
		}

		if timeout := c.readTimeout(); timeout > 0 {
			if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
				logger.Warn("Failed to set read deadline",
					logger.SessionID(c.sessionID), logger.Err(err))
			}
		}

		n, err := c.conn.Read(readBuf)
		if err != nil {
			c.logReadEnd(err)
			return
		}

		if !c.frames.Append(readBuf[:n]) {
			logger.Warn("FIN framing buffer overflow, closing connection",
				logger.SessionID(c.sessionID), logger.Bytes(c.frames.Len()))
			return
		}

		// One read may complete several pipelined frames
		for {
			frame, ok := c.frames.Next()
			if !ok {
				break
			}
			if !c.handleFrame(ctx, frame) {
				return
			}
		}
	}
}

// handleFrame parses one framed message and executes the engine's
// decision. It returns false when the connection must close.
func (c *Connection) handleFrame(ctx context.Context, frame string) bool {
	msg := fin.Parse(frame)

	ctx, span := telemetry.StartMessageSpan(ctx, c.sessionID, string(msg.Kind),
		telemetry.ClientAddr(c.conn.RemoteAddr().String()),
		telemetry.Sequence(msg.SequenceNumber),
		telemetry.Bytes(len(frame)))
	defer span.End()

	var d session.Decision
	if !msg.HasBlock4 {
		d = c.server.engine.Malformed(c.sessionID, msg)
	} else {
		d = c.server.engine.Handle(ctx, c.sessionID, msg)
	}
	if d.Type != "" {
		telemetry.SetAttributes(ctx, telemetry.Response(d.Type))
	}

	if err := c.execute(d); err != nil {
		telemetry.RecordError(ctx, err)
		logger.Debug("FIN response write failed",
			logger.SessionID(c.sessionID),
			logger.ResponseType(d.Type),
			logger.Err(err))
		return false
	}
	return d.Action != session.ActionClose
}

// execute performs the transport side of a decision. Only ActionSend
// touches the socket.
func (c *Connection) execute(d session.Decision) error {
	if d.Action != session.ActionSend {
		return nil
	}

	if w := c.server.config.Timeouts.Write; w > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(w)); err != nil {
			logger.Warn("Failed to set write deadline",
				logger.SessionID(c.sessionID), logger.Err(err))
		}
	}

	if _, err := c.conn.Write([]byte(d.Response)); err != nil {
		return err
	}

	logger.Debug("FIN response sent",
		logger.SessionID(c.sessionID),
		logger.ResponseType(d.Type),
		logger.Bytes(len(d.Response)),
	)
	return nil
}

// readTimeout picks the effective deadline for the next read: the shorter
// of the idle and read timeouts, 0 when neither is set.
func (c *Connection) readTimeout() time.Duration {
	timeout := c.server.config.Timeouts.Idle
	if r := c.server.config.Timeouts.Read; r > 0 && (timeout == 0 || r < timeout) {
		timeout = r
	}
	return timeout
}

// logReadEnd classifies why the read loop ended. All of these are normal
// connection endings, logged at debug.
func (c *Connection) logReadEnd(err error) {
	if err == io.EOF {
		logger.Debug("FIN connection closed by client",
			logger.SessionID(c.sessionID))
	} else if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		logger.Debug("FIN connection timed out",
			logger.SessionID(c.sessionID), logger.Err(err))
	} else {
		logger.Debug("Error reading FIN message",
			logger.SessionID(c.sessionID), logger.Err(err))
	}
}

// handleConnectionClose handles cleanup and panic recovery for the
// connection. A panic is contained here: other connections and the
// listener are unaffected.
func (c *Connection) handleConnectionClose() {
	if r := recover(); r != nil {
		logger.Error("Panic in FIN connection handler",
			logger.SessionID(c.sessionID),
			"error", r,
			"stack", string(debug.Stack()))
	}

	_ = c.conn.Close()
	logger.Debug("FIN connection closed", logger.SessionID(c.sessionID))
}
