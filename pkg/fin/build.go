package fin

import (
	"fmt"
	"time"
)

// Response kinds recorded in the audit trail and metrics.
const (
	ResponseACK     = "ACK"
	ResponseNACK    = "NACK"
	ResponseResend  = "RESEND_REQUEST"
	ResponseLoginOK = "LOGIN_OK"
)

// Fixed header literals. Clients match on these byte for byte; change them
// only in lockstep with the client side.
const (
	ackBlock1    = "{1:F21MOCKSVRXXXXAXXX0000000000}"
	ackBlock2    = "{2:I901MOCKRCVRXXXXN}"
	resendBlock1 = "{1:F02MOCKSVRXXXXAXXX0000000000}"
	resendBlock2 = "{2:I2MOCKRCVRXXXXN}"
	loginBlock1  = "{1:F01MOCKSVRXXXXAXXX0000000000}"
	loginBlock2  = "{2:I001MOCKRCVRXXXXN}"
)

// Builder emits the server's response messages. It is stateless: the
// caller owns the session and passes in the already-incremented
// output_seq value.
type Builder struct {
	key string
}

// NewBuilder returns a Builder signing trailers with the given MAC key.
// An empty key selects DefaultMACKey.
func NewBuilder(key string) *Builder {
	if key == "" {
		key = DefaultMACKey
	}
	return &Builder{key: key}
}

// ACK builds an F21 positive acknowledgment. ref is the inbound
// transaction reference (the caller substitutes a message id when the
// inbound had none); uetr falls back to a synthesized ACK-<timestamp>
// value when the inbound carried no block-3 UETR.
func (b *Builder) ACK(ref, uetr string, outputSeq int, now time.Time) string {
	if uetr == "" {
		uetr = "ACK-" + now.Format("20060102150405")
	}
	base := ackBlock1 + ackBlock2 +
		"{4:\n" +
		fmt.Sprintf(":20:%s\n", ref) +
		fmt.Sprintf(":34:%d\n", outputSeq) +
		":77E:ACK\n" +
		fmt.Sprintf(":108:%s\n", uetr) +
		fmt.Sprintf(":177:%s\n", now.Format("0601021504")) +
		":451:0\n" +
		"-}\n"
	return AppendTrailer(base, b.key)
}

// NACK builds an F21 negative acknowledgment with a non-zero error code
// in field 451 and a single-line reason in field 79.
func (b *Builder) NACK(ref string, outputSeq int, code, reason string, now time.Time) string {
	base := ackBlock1 + ackBlock2 +
		"{4:\n" +
		fmt.Sprintf(":20:%s\n", ref) +
		fmt.Sprintf(":34:%d\n", outputSeq) +
		":77E:NACK\n" +
		fmt.Sprintf(":177:%s\n", now.Format("0601021504")) +
		fmt.Sprintf(":451:%s\n", code) +
		fmt.Sprintf(":79:%s\n", reason) +
		"-}\n"
	return AppendTrailer(base, b.key)
}

// ResendRequest builds a MsgType 2 retransmission request covering the
// inclusive sequence range [fromSeq, toSeq].
func (b *Builder) ResendRequest(outputSeq, fromSeq, toSeq int) string {
	base := resendBlock1 + resendBlock2 +
		"{4:\n" +
		fmt.Sprintf(":34:%d\n", outputSeq) +
		fmt.Sprintf(":7:%d\n", fromSeq) +
		fmt.Sprintf(":16:%d\n", toSeq) +
		"-}\n"
	return AppendTrailer(base, b.key)
}

// LoginOK builds the handshake response, used both as the unsolicited
// greeting on accept and as the reply to an explicit LOGIN message. It
// carries no field 34 and must not consume an output sequence: the
// monotone :34: series starts with the first real acknowledgment.
func (b *Builder) LoginOK(sessionID string) string {
	base := loginBlock1 + loginBlock2 +
		"{4:\n" +
		":20:LOGIN_OK\n"
	if sessionID != "" {
		base += fmt.Sprintf(":108:%s\n", sessionID)
	}
	base += ":79:LOGIN_SUCCESSFUL\n" +
		"-}\n"
	return AppendTrailer(base, b.key)
}
