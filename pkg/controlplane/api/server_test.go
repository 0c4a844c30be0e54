package api

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finwire/finmock/pkg/controlplane"
	"github.com/finwire/finmock/pkg/faults"
	"github.com/finwire/finmock/pkg/session"
)

func testControl() *controlplane.Control {
	return controlplane.New(session.NewRegistry(nil, nil), faults.NewTable(), nil)
}

// startTestServer starts a server on the given port and returns once it
// answers health checks. Shutdown is wired into test cleanup.
func startTestServer(t *testing.T, cfg APIConfig, ready ReadyFunc) (*Server, chan error) {
	t.Helper()

	server := NewServer(cfg, testControl(), ready)

	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(ctx)
	}()
	t.Cleanup(cancel)

	// Poll until the listener is up.
	url := fmt.Sprintf("http://localhost:%d/health", server.Port())
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond, "server did not come up")

	return server, errChan
}

func TestServerLifecycle(t *testing.T) {
	cfg := APIConfig{Port: 18104}
	server := NewServer(cfg, testControl(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(ctx)
	}()

	url := fmt.Sprintf("http://localhost:%d/health", cfg.Port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer func() { _ = resp.Body.Close() }()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	cancel()

	select {
	case err := <-errChan:
		assert.NoError(t, err, "graceful shutdown returns nil")
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down in time")
	}
}

func TestServerReadinessFollowsListener(t *testing.T) {
	var listenerUp atomic.Bool
	server, _ := startTestServer(t, APIConfig{Port: 18105}, listenerUp.Load)

	url := fmt.Sprintf("http://localhost:%d/health/ready", server.Port())

	resp, err := http.Get(url)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	listenerUp.Store(true)

	resp, err = http.Get(url)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServerPort(t *testing.T) {
	server := NewServer(APIConfig{Port: 9999}, testControl(), nil)
	assert.Equal(t, 9999, server.Port())
}

func TestServerDefaultConfig(t *testing.T) {
	server := NewServer(APIConfig{}, testControl(), nil)
	assert.Equal(t, 8104, server.Port())
}

func TestServerStopIsIdempotent(t *testing.T) {
	server := NewServer(APIConfig{Port: 18106}, testControl(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(ctx)
	}()

	url := fmt.Sprintf("http://localhost:%d/health", server.Port())
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, server.Stop(context.Background()))
	require.NoError(t, server.Stop(context.Background()))

	// Start unblocks via its context; the second shutdown path is a no-op.
	cancel()

	select {
	case err := <-errChan:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
}
