package apiclient

import "time"

// SessionInfo is the state of one FIN session as reported by the server.
type SessionInfo struct {
	ID            string    `json:"session_id"`
	RemoteAddr    string    `json:"remote_addr"`
	InputSeq      int       `json:"input_seq"`
	OutputSeq     int       `json:"output_seq"`
	Authenticated bool      `json:"authenticated"`
	Connected     bool      `json:"connected"`
	CreatedAt     time.Time `json:"created_at"`
	LastActivity  time.Time `json:"last_activity"`
}

// FaultSnapshot is the armed fault-injection state.
type FaultSnapshot struct {
	Mode      string `json:"error_mode"`
	LatencyMS int    `json:"latency_ms"`
	Ignored   []int  `json:"ignored_sequences"`
}

// Status is the full server state snapshot.
type Status struct {
	Status           string                 `json:"status"`
	SessionCount     int                    `json:"sessions"`
	ErrorMode        string                 `json:"error_mode"`
	LatencyMS        int                    `json:"latency_ms"`
	IgnoredSequences []int                  `json:"ignored_sequences"`
	MessageCount     int                    `json:"message_count"`
	SessionDetails   map[string]SessionInfo `json:"session_details"`
	RecentMessages   []AuditEntry           `json:"recent_messages"`
}

// Status returns the server state snapshot: every session with its
// sequence counters, the armed faults, and recent audit entries.
func (c *Client) Status() (*Status, error) {
	var status Status
	if err := c.get("/api/v1/status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}
