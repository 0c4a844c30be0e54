// Package fin implements the FIN wire listener: a TCP adapter that frames
// five-block SWIFT messages off long-lived connections and runs them
// through the session decision engine.
package fin

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/finwire/finmock/internal/logger"
	"github.com/finwire/finmock/pkg/adapter"
	"github.com/finwire/finmock/pkg/faults"
	"github.com/finwire/finmock/pkg/metrics"
	"github.com/finwire/finmock/pkg/session"
)

// Adapter is the FIN protocol listener.
//
// Architecture:
// Adapter embeds BaseAdapter for shared TCP lifecycle management (listener,
// shutdown, connection tracking, semaphore, metrics logging). Protocol
// behavior lives in Connection: framing, parsing, and executing the
// decisions the shared session engine returns. The ConnectionFactory
// pattern lets BaseAdapter create FIN-specific connections via
// NewConnection.
//
// Thread safety:
// All methods are safe for concurrent use. One engine serves every
// connection; per-session state lives in the registry, never on the
// adapter.
type Adapter struct {
	*adapter.BaseAdapter

	// config holds the FIN-specific listener configuration.
	config Config

	// registry tracks session state across connections and restarts.
	registry *session.Registry

	// engine runs the per-message decision table.
	engine *session.Engine
}

// New creates a new Adapter with the specified configuration.
//
// The adapter is created in a stopped state; call Serve to start
// accepting. Zero values in config are replaced with defaults. m may be
// nil to run without metrics.
//
// Panics if config validation fails.
func New(config Config, registry *session.Registry, table *faults.Table, m *metrics.FINMetrics) *Adapter {
	config.applyDefaults()

	if err := config.validate(); err != nil {
		panic(fmt.Sprintf("invalid FIN config: %v", err))
	}

	baseConfig := adapter.BaseConfig{
		BindAddress:        config.BindAddress,
		Port:               config.Port,
		MaxConnections:     config.MaxConnections,
		ShutdownTimeout:    config.Timeouts.Shutdown,
		MetricsLogInterval: config.MetricsLogInterval,
	}

	a := &Adapter{
		BaseAdapter: adapter.NewBaseAdapter(baseConfig, "FIN"),
		config:      config,
		registry:    registry,
		engine:      session.NewEngine(registry, table, config.MACKey, m),
	}
	a.Metrics = m
	return a
}

// Serve starts the FIN listener and blocks until the context is cancelled
// or an unrecoverable error occurs.
//
// Serve delegates to BaseAdapter.ServeWithFactory for the shared TCP
// accept loop, providing FIN-specific connection creation and a close
// callback that marks the session disconnected.
//
// Returns nil on graceful shutdown, an error if the listener fails to
// start or the shutdown timeout is exceeded.
func (a *Adapter) Serve(ctx context.Context) error {
	return a.ServeWithFactory(ctx, a, a.releaseSession)
}

// NewConnection creates a protocol-specific connection handler for an
// accepted TCP connection. This implements the adapter.ConnectionFactory
// interface.
func (a *Adapter) NewConnection(conn net.Conn) adapter.ConnectionHandler {
	return NewConnection(a, conn)
}

// releaseSession marks the session disconnected once its connection
// goroutine exits. Sequence counters are retained for reconnects; only a
// control-plane reset discards them.
func (a *Adapter) releaseSession(addr string) {
	id := session.SessionID(addr)
	a.registry.Detach(id, time.Now())
	a.registry.Persist()
	logger.Debug("FIN session detached", logger.SessionID(id))
}
