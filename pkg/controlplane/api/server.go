package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/finwire/finmock/internal/logger"
	"github.com/finwire/finmock/pkg/controlplane"
)

// ReadyFunc reports whether the FIN listener is accepting connections. It
// backs the readiness probe and must not block.
type ReadyFunc func() bool

// Server is the control-plane HTTP server.
//
// Endpoints:
//   - GET /health: liveness probe
//   - GET /health/ready: readiness probe (FIN listener up)
//   - GET /metrics: Prometheus exposition (404 when metrics are disabled)
//   - GET /api/v1/status: state snapshot
//   - GET /api/v1/messages: audit trail listing
//   - GET /api/v1/messages/{id}: single message, with raw text when archived
//   - POST /api/v1/inject-error: arm a fault
//   - POST /api/v1/reset: clear sessions, audit trail and faults
//
// The server supports graceful shutdown with configurable timeout.
type Server struct {
	server       *http.Server
	config       APIConfig
	shutdownOnce sync.Once
}

// NewServer creates the control-plane HTTP server in a stopped state. Call
// Start to begin serving requests. ready may be nil; the readiness probe
// then only reports that the HTTP server itself is up.
func NewServer(config APIConfig, ctrl *controlplane.Control, ready ReadyFunc) *Server {
	config.applyDefaults()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		Handler:      NewRouter(ctrl, ready),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return &Server{
		server: server,
		config: config,
	}
}

// Start starts the HTTP server and blocks until the context is cancelled
// or an error occurs. Cancellation triggers graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		logger.Info("control API listening", "port", s.config.Port)
		logger.Debug("control API endpoints available",
			"status", fmt.Sprintf("http://localhost:%d/api/v1/status", s.config.Port),
			"messages", fmt.Sprintf("http://localhost:%d/api/v1/messages", s.config.Port),
			"metrics", fmt.Sprintf("http://localhost:%d/metrics", s.config.Port),
		)

		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			select {
			case errChan <- err:
			default:
				// Context was cancelled, error is not needed
			}
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("control API shutdown signal received")
		// Don't use the cancelled ctx: it would abort the shutdown
		// immediately instead of draining in-flight requests.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("control API failed: %w", err)
	}
}

// Stop initiates graceful shutdown. It is safe to call multiple times and
// concurrently with Start.
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		logger.Debug("control API shutdown initiated")

		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("control API shutdown error: %w", err)
			logger.Error("control API shutdown error", logger.Err(err))
		} else {
			logger.Info("control API stopped gracefully")
		}
	})
	return shutdownErr
}

// Port returns the TCP port the server is listening on.
func (s *Server) Port() int {
	return s.config.Port
}
