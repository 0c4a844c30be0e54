package apiclient

// InjectRequest arms fault injection on the server.
//
// ErrorType selects a mode (none, nack_next, drop_connection, timeout,
// latency) or "ignore_sequence", which feeds Sequences into the ignored
// set instead. LatencyMS is required for the latency mode.
type InjectRequest struct {
	ErrorType string `json:"error_type"`
	Sequences []int  `json:"sequences,omitempty"`
	LatencyMS int    `json:"latency_ms,omitempty"`
}

// InjectResult reports what a successful injection changed.
type InjectResult struct {
	Message string        `json:"message"`
	Faults  FaultSnapshot `json:"faults"`
}

// InjectError arms a fault. Validation failures surface as *APIError with
// a 400 status.
func (c *Client) InjectError(req InjectRequest) (*InjectResult, error) {
	var result InjectResult
	if err := c.post("/api/v1/inject-error", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ResetResult acknowledges a state reset.
type ResetResult struct {
	Message string `json:"message"`
}

// Reset clears all sessions, the audit trail, archived messages and armed
// faults on the server.
func (c *Client) Reset() (*ResetResult, error) {
	var result ResetResult
	if err := c.post("/api/v1/reset", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
