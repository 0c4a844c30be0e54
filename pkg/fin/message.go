// Package fin implements the simplified SWIFT FIN dialect spoken by the
// mock endpoint: the five-block message envelope, the block-5 trailer
// codec, and the builders for ACK, NACK, Resend Request and LOGIN
// responses.
package fin

import (
	"strings"
)

// Kind classifies an inbound message after parsing.
type Kind string

const (
	KindLogin     Kind = "LOGIN"
	KindHeartbeat Kind = "HEARTBEAT"
	KindMT103     Kind = "MT103"
	KindUnknown   Kind = "UNKNOWN"
)

// Field is a single block-4 field in arrival order.
type Field struct {
	Tag   string
	Value string
}

// Message is the parsed form of a raw FIN message. Parsing is total:
// missing blocks or fields leave the corresponding members at their zero
// value, they never produce an error. Structural problems (such as a
// missing block 4) surface as flags the session engine inspects.
type Message struct {
	Raw string

	Block1 string
	Block2 string
	Block3 string
	Block4 string
	Block5 string

	HasBlock4 bool

	// Fields preserves block-4 tag order for audit round-trips.
	Fields []Field

	// Convenience projections. All optional.
	TransactionReference string
	SequenceNumber       int
	ValueDate            string
	Currency             string
	Amount               string
	OrderingCustomer     string
	Beneficiary          string
	UETR                 string
	MAC                  string
	Checksum             string

	Kind Kind
}

// Field returns the value of the first block-4 field with the given tag.
func (m *Message) Field(tag string) (string, bool) {
	for _, f := range m.Fields {
		if f.Tag == tag {
			return f.Value, true
		}
	}
	return "", false
}

// HasTrailer reports whether both MAC and CHK sub-fields were found.
func (m *Message) HasTrailer() bool {
	return m.MAC != "" && m.Checksum != ""
}

// MsgType returns the three-digit message type declared in block 2, or ""
// when block 2 is absent or too short. Block 2 bodies look like
// "O1031234240107TESTDE33XXXX12345678": a direction letter followed by the
// type digits.
func (m *Message) MsgType() string {
	if len(m.Block2) < 4 {
		return ""
	}
	return m.Block2[1:4]
}

// Details returns the audit projection of the message, mirroring what the
// control plane exposes for each logged entry.
func (m *Message) Details() map[string]any {
	details := map[string]any{
		"msg_type": string(m.Kind),
	}
	if m.TransactionReference != "" {
		details["transaction_reference"] = m.TransactionReference
	}
	if m.SequenceNumber != 0 {
		details["sequence_number"] = m.SequenceNumber
	}
	if m.ValueDate != "" {
		details["value_date"] = m.ValueDate
	}
	if m.Currency != "" {
		details["currency"] = m.Currency
	}
	if m.Amount != "" {
		details["amount"] = m.Amount
	}
	if m.OrderingCustomer != "" {
		details["ordering_customer"] = m.OrderingCustomer
	}
	if m.Beneficiary != "" {
		details["beneficiary_customer"] = m.Beneficiary
	}
	if m.UETR != "" {
		details["uetr"] = m.UETR
	}
	if m.MAC != "" {
		details["mac"] = m.MAC
	}
	if m.Checksum != "" {
		details["checksum"] = m.Checksum
	}
	return details
}

// classify derives the message kind from the parsed projections. LOGIN and
// HEARTBEAT require a dedicated field-20 token; a raw-substring match is
// deliberately not sufficient, an MT103 narrative mentioning LOGIN must not
// start a handshake.
func (m *Message) classify() Kind {
	switch m.TransactionReference {
	case "LOGIN":
		return KindLogin
	case "HEARTBEAT", "ECHO":
		return KindHeartbeat
	}
	if m.MsgType() == "103" {
		return KindMT103
	}
	for _, tag := range []string{"32A", "50K", "59"} {
		if _, ok := m.Field(tag); ok {
			return KindMT103
		}
	}
	return KindUnknown
}

// trimToken returns the first whitespace-delimited token of s.
func trimToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
