package apiclient

import (
	"net/url"
	"strconv"
	"time"
)

// AuditEntry is one message that crossed the wire, in either direction.
type AuditEntry struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	SessionID string         `json:"session_id"`
	Direction string         `json:"direction"`
	Preview   string         `json:"message_preview"`
	Details   map[string]any `json:"parsed_details,omitempty"`
	Duplicate bool           `json:"duplicate,omitempty"`
}

// MessageList is a page of the audit trail.
type MessageList struct {
	Messages   []AuditEntry `json:"messages"`
	TotalCount int          `json:"total_count"`
}

// MessageDetail is a single audit entry, with the full raw wire text when
// the server archives messages.
type MessageDetail struct {
	AuditEntry
	Raw string `json:"raw,omitempty"`
}

// Messages returns the most recent audit entries in chronological order.
// limit <= 0 selects the server default (50).
func (c *Client) Messages(limit int) (*MessageList, error) {
	path := "/api/v1/messages"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	var list MessageList
	if err := c.get(path, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// Message returns a single audit entry by id.
func (c *Client) Message(id string) (*MessageDetail, error) {
	var detail MessageDetail
	if err := c.get("/api/v1/messages/"+url.PathEscape(id), &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}
