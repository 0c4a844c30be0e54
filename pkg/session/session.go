// Package session tracks per-endpoint FIN session state, the bounded audit
// trail, and the decision engine that turns inbound messages into ACK, NACK
// or Resend Request responses. The engine is transport-free: it returns
// decisions and never touches a socket, so no lock is ever held across
// network I/O.
package session

import (
	"net"
	"strings"
	"time"
)

// Session is the durable state of one remote endpoint. Sessions are keyed
// by an id derived from the remote address and survive reconnects: a
// dropped connection only flips Connected to false, it never discards the
// sequence counters.
type Session struct {
	ID            string    `json:"session_id"`
	RemoteAddr    string    `json:"remote_addr"`
	InputSeq      int       `json:"input_seq"`
	OutputSeq     int       `json:"output_seq"`
	Authenticated bool      `json:"authenticated"`
	Connected     bool      `json:"connected"`
	CreatedAt     time.Time `json:"created_at"`
	LastActivity  time.Time `json:"last_activity"`
}

// SessionID derives the stable session key for a remote address, in the
// form SESSION-<ip>-<port>.
func SessionID(remoteAddr string) string {
	host, port, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return "SESSION-" + strings.ReplaceAll(remoteAddr, ":", "-")
	}
	return "SESSION-" + host + "-" + port
}

// NewSession creates a fresh session for a just-accepted connection.
func NewSession(remoteAddr string, now time.Time) *Session {
	return &Session{
		ID:           SessionID(remoteAddr),
		RemoteAddr:   remoteAddr,
		Connected:    true,
		CreatedAt:    now,
		LastActivity: now,
	}
}
