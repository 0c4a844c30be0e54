package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/finwire/finmock/internal/logger"
	"github.com/finwire/finmock/pkg/controlplane"
	"github.com/finwire/finmock/pkg/controlplane/api/handlers"
	"github.com/finwire/finmock/pkg/metrics"
)

// NewRouter creates and configures the chi router with all middleware and
// routes.
//
// The router is configured with:
//   - Request ID middleware for request tracking
//   - Real IP extraction for proper client identification
//   - Custom request logging using the internal logger
//   - Panic recovery to prevent server crashes
//   - Request timeout to prevent hung requests
func NewRouter(ctrl *controlplane.Control, ready ReadyFunc) http.Handler {
	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	healthHandler := handlers.NewHealthHandler(func() bool {
		return ready == nil || ready()
	})

	// Health routes - probed by orchestrators, never authenticated
	r.Route("/health", func(r chi.Router) {
		r.Get("/", healthHandler.Liveness)
		r.Get("/ready", healthHandler.Readiness)
	})

	// Prometheus exposition. Serves 404 when metrics are disabled, so the
	// route is mounted unconditionally.
	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		metrics.Handler().ServeHTTP(w, req)
	})

	// Root redirect to health for convenience
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	statusHandler := handlers.NewStatusHandler(ctrl)
	messagesHandler := handlers.NewMessagesHandler(ctrl)
	injectHandler := handlers.NewInjectHandler(ctrl)
	resetHandler := handlers.NewResetHandler(ctrl)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", statusHandler.Get)

		r.Route("/messages", func(r chi.Router) {
			r.Get("/", messagesHandler.List)
			r.Get("/{id}", messagesHandler.Get)
		})

		r.Post("/inject-error", injectHandler.Post)
		r.Post("/reset", resetHandler.Post)
	})

	return r
}

// isQuietPath reports whether the request path is probed periodically
// (health checks and metric scrapes) and should be logged at DEBUG.
func isQuietPath(path string) bool {
	return path == "/health" || strings.HasPrefix(path, "/health/") || path == "/metrics"
}

// requestLogger is a custom middleware that logs requests using the
// internal logger.
//
// It logs:
//   - Request start (DEBUG level): method, path, remote addr
//   - Request completion (INFO level): method, path, status, duration
//   - Probe and scrape requests are logged at DEBUG level to reduce noise
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		logger.Debug("control API request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		// Wrap response writer to capture status code
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		duration := time.Since(start)

		logArgs := []any{
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", duration.String(),
		}

		if isQuietPath(r.URL.Path) {
			logger.Debug("control API request completed", logArgs...)
		} else {
			logger.Info("control API request completed", logArgs...)
		}
	})
}
