package apiclient

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// respondOK wraps data in the control-plane response envelope, the way the
// real server does.
func respondOK(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"data":      data,
	})
}

// respondProblem writes an RFC 7807 problem body.
func respondProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"type":   "about:blank",
		"title":  title,
		"status": status,
		"detail": detail,
	})
}

func TestNew(t *testing.T) {
	client := New("http://localhost:8104")
	assert.NotNil(t, client)
	assert.Equal(t, "http://localhost:8104", client.baseURL)
}

func TestDoUnwrapsEnvelope(t *testing.T) {
	type payload struct {
		Message string `json:"message"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		respondOK(w, payload{Message: "success"})
	}))
	defer server.Close()

	client := New(server.URL)

	var resp payload
	err := client.get("/test", &resp)
	require.NoError(t, err)
	assert.Equal(t, "success", resp.Message)
}

func TestDoWithProblemError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondProblem(w, http.StatusNotFound, "Not Found", "message not found: msg-1")
	}))
	defer server.Close()

	client := New(server.URL)
	err := client.get("/test", nil)
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Not Found", apiErr.Title)
	assert.Equal(t, "message not found: msg-1", apiErr.Detail)
	assert.True(t, apiErr.IsNotFound())
	assert.False(t, apiErr.IsBadRequest())
	assert.Equal(t, "message not found: msg-1", apiErr.Error())
}

func TestDoWithNonProblemError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream unavailable\n"))
	}))
	defer server.Close()

	client := New(server.URL)
	err := client.get("/test", nil)
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream unavailable", apiErr.Detail)
}

func TestDoWithPost(t *testing.T) {
	type request struct {
		Name string `json:"name"`
	}
	type response struct {
		ID string `json:"id"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var req request
		_ = json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, "test", req.Name)

		respondOK(w, response{ID: "abc"})
	}))
	defer server.Close()

	client := New(server.URL)

	var resp response
	err := client.post("/test", request{Name: "test"}, &resp)
	require.NoError(t, err)
	assert.Equal(t, "abc", resp.ID)
}

func TestStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/status", r.URL.Path)
		respondOK(w, Status{
			Status:           "running",
			SessionCount:     1,
			ErrorMode:        "latency",
			LatencyMS:        750,
			IgnoredSequences: []int{7, 9},
			MessageCount:     42,
			SessionDetails: map[string]SessionInfo{
				"sess-1": {
					ID:         "sess-1",
					RemoteAddr: "10.0.0.5:49152",
					InputSeq:   12,
					OutputSeq:  3,
					Connected:  true,
				},
			},
		})
	}))
	defer server.Close()

	status, err := New(server.URL).Status()
	require.NoError(t, err)
	assert.Equal(t, "running", status.Status)
	assert.Equal(t, 1, status.SessionCount)
	assert.Equal(t, "latency", status.ErrorMode)
	assert.Equal(t, 750, status.LatencyMS)
	assert.Equal(t, []int{7, 9}, status.IgnoredSequences)
	assert.Equal(t, 42, status.MessageCount)
	require.Contains(t, status.SessionDetails, "sess-1")
	assert.Equal(t, 12, status.SessionDetails["sess-1"].InputSeq)
}

func TestMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/messages", r.URL.Path)
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		respondOK(w, MessageList{
			Messages: []AuditEntry{
				{ID: "msg-1", Direction: "inbound", Preview: ":20:REF-1"},
				{ID: "msg-2", Direction: "outbound", Preview: "{4::177:"},
			},
			TotalCount: 42,
		})
	}))
	defer server.Close()

	list, err := New(server.URL).Messages(25)
	require.NoError(t, err)
	require.Len(t, list.Messages, 2)
	assert.Equal(t, "msg-1", list.Messages[0].ID)
	assert.Equal(t, "inbound", list.Messages[0].Direction)
	assert.Equal(t, 42, list.TotalCount)
}

func TestMessagesDefaultLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("limit"))
		respondOK(w, MessageList{})
	}))
	defer server.Close()

	_, err := New(server.URL).Messages(0)
	require.NoError(t, err)
}

func TestMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/messages/msg-1", r.URL.Path)
		respondOK(w, MessageDetail{
			AuditEntry: AuditEntry{ID: "msg-1", Direction: "inbound", Preview: ":20:REF-1"},
			Raw:        "{1:F01TESTBANKXXXX0000000000}{4:\n:20:REF-1\n-}",
		})
	}))
	defer server.Close()

	detail, err := New(server.URL).Message("msg-1")
	require.NoError(t, err)
	assert.Equal(t, "msg-1", detail.ID)
	assert.Contains(t, detail.Raw, ":20:REF-1")
}

func TestMessageNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondProblem(w, http.StatusNotFound, "Not Found", "message not found: missing")
	}))
	defer server.Close()

	_, err := New(server.URL).Message("missing")
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.True(t, apiErr.IsNotFound())
}

func TestInjectError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/inject-error", r.URL.Path)

		var req InjectRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "latency", req.ErrorType)
		assert.Equal(t, 1500, req.LatencyMS)

		respondOK(w, InjectResult{
			Message: "error mode set to latency",
			Faults: FaultSnapshot{
				Mode:      "latency",
				LatencyMS: 1500,
				Ignored:   []int{},
			},
		})
	}))
	defer server.Close()

	result, err := New(server.URL).InjectError(InjectRequest{
		ErrorType: "latency",
		LatencyMS: 1500,
	})
	require.NoError(t, err)
	assert.Equal(t, "latency", result.Faults.Mode)
	assert.Equal(t, 1500, result.Faults.LatencyMS)
}

func TestInjectErrorRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondProblem(w, http.StatusBadRequest, "Bad Request", "latency requires latency_ms > 0")
	}))
	defer server.Close()

	_, err := New(server.URL).InjectError(InjectRequest{ErrorType: "latency"})
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.True(t, apiErr.IsBadRequest())
	assert.Contains(t, apiErr.Detail, "latency_ms")
}

func TestReset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/reset", r.URL.Path)
		respondOK(w, ResetResult{Message: "state reset"})
	}))
	defer server.Close()

	result, err := New(server.URL).Reset()
	require.NoError(t, err)
	assert.Equal(t, "state reset", result.Message)
}
