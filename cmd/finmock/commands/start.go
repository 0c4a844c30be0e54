package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/finwire/finmock/internal/logger"
	"github.com/finwire/finmock/internal/telemetry"
	fin "github.com/finwire/finmock/pkg/adapter/fin"
	"github.com/finwire/finmock/pkg/config"
	"github.com/finwire/finmock/pkg/controlplane"
	"github.com/finwire/finmock/pkg/controlplane/api"
	"github.com/finwire/finmock/pkg/faults"
	"github.com/finwire/finmock/pkg/metrics"
	"github.com/finwire/finmock/pkg/session"
	"github.com/finwire/finmock/pkg/store"
	"github.com/finwire/finmock/pkg/store/archive"
)

var (
	foreground bool
	pidFile    string
	logFile    string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the finmock server",
	Long: `Start the finmock server with the specified configuration.

By default, the server runs in the background (daemon mode). Use --foreground
to run in the foreground for debugging or when managed by a process supervisor.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/finmock/config.yaml.

Examples:
  # Start in background (default)
  finmock start

  # Start in foreground
  finmock start --foreground

  # Start with custom config file
  finmock start --config /etc/finmock/config.yaml

  # Start with environment variable overrides
  FINMOCK_LOGGING_LEVEL=DEBUG finmock start --foreground`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().BoolVarP(&foreground, "foreground", "f", false, "Run in foreground (default: background/daemon mode)")
	startCmd.Flags().StringVar(&pidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/finmock/finmock.pid)")
	startCmd.Flags().StringVar(&logFile, "log-file", "", "Path to log file for daemon mode (default: $XDG_STATE_HOME/finmock/finmock.log)")
}

func runStart(cmd *cobra.Command, args []string) error {
	// Handle daemon mode (background)
	if !foreground {
		return startDaemon()
	}

	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	// Initialize the structured logger
	if err := InitLogger(cfg); err != nil {
		return err
	}

	// Create cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry (if enabled)
	telemetryCfg := telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "finmock",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	}
	telemetryShutdown, err := telemetry.Init(ctx, telemetryCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	// Initialize Pyroscope profiling (if enabled)
	profilingCfg := telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "finmock",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	}
	profilingShutdown, err := telemetry.InitProfiling(profilingCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", "error", err)
		}
	}()

	fmt.Println("finmock - Stateful SWIFT FIN mock server")
	logger.Info("Log level", "level", cfg.Logging.Level, "format", cfg.Logging.Format)
	logger.Info("Configuration loaded", "source", getConfigSource(GetConfigFile()))
	if telemetry.IsEnabled() {
		logger.Info("Telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	} else {
		logger.Info("Telemetry disabled")
	}
	if telemetry.IsProfilingEnabled() {
		logger.Info("Profiling enabled", "endpoint", cfg.Telemetry.Profiling.Endpoint, "profile_types", cfg.Telemetry.Profiling.ProfileTypes)
	} else {
		logger.Info("Profiling disabled")
	}

	// Initialize metrics (if enabled)
	var finMetrics *metrics.FINMetrics
	if cfg.Metrics.Enabled {
		reg := metrics.InitRegistry()
		finMetrics = metrics.NewFINMetrics(reg)
		logger.Info("Metrics enabled", "endpoint", fmt.Sprintf(":%d/metrics", cfg.ControlPlane.Port))
	} else {
		logger.Info("Metrics collection disabled")
	}

	// Open the full-message archive (if configured)
	var arch *archive.Archive
	if cfg.State.ArchivePath != "" {
		arch, err = archive.Open(cfg.State.ArchivePath)
		if err != nil {
			return fmt.Errorf("failed to open message archive: %w", err)
		}
		defer func() {
			if err := arch.Close(); err != nil {
				logger.Error("archive close error", "error", err)
			}
		}()
		logger.Info("Message archive open", "path", cfg.State.ArchivePath)
	} else {
		logger.Info("Message archive disabled")
	}

	// Wire durable state: the registry persists through the state file and
	// archives full messages when the archive is configured.
	stateFile := store.NewStateFile(cfg.State.Path)
	var registry *session.Registry
	if arch != nil {
		registry = session.NewRegistry(stateFile, arch)
	} else {
		registry = session.NewRegistry(stateFile, nil)
	}

	// Restore sessions and audit trail from the previous run
	sessions, auditLog := stateFile.Load()
	registry.Restore(sessions, auditLog)
	logger.Info("State restored",
		"path", cfg.State.Path,
		"sessions", len(sessions),
		"audit_entries", len(auditLog))

	// The fault table starts clean on every boot; armed faults are not
	// durable state.
	table := faults.NewTable()

	// FIN listener
	finServer := fin.New(cfg.FIN, registry, table, finMetrics)
	logger.Info("FIN listener configured", "bind", cfg.FIN.BindAddress, "port", cfg.FIN.Port)

	// Control-plane API server. Readiness reflects whether the FIN listener
	// is accepting connections.
	ctrl := controlplane.New(registry, table, arch)
	ready := func() bool {
		select {
		case <-finServer.ListenerReady:
			return true
		default:
			return false
		}
	}
	apiServer := api.NewServer(cfg.ControlPlane, ctrl, ready)
	logger.Info("Control-plane API configured", "port", cfg.ControlPlane.Port)

	// Write PID file if specified
	if pidFile != "" {
		if err := os.WriteFile(pidFile, []byte(fmt.Sprintf("%d", os.Getpid())), 0644); err != nil {
			return fmt.Errorf("failed to write PID file: %w", err)
		}
		defer func() { _ = os.Remove(pidFile) }()
	}

	// Start both servers in the background
	serverDone := make(chan error, 2)
	go func() {
		serverDone <- finServer.Serve(ctx)
	}()
	go func() {
		serverDone <- apiServer.Start(ctx)
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Server is running. Press Ctrl+C to stop.")

	var exitErr error
	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("Shutdown signal received, initiating graceful shutdown")
		cancel()

		// Wait for both servers to shut down gracefully
		for range 2 {
			if err := <-serverDone; err != nil && exitErr == nil {
				exitErr = err
			}
		}

	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			exitErr = err
		}
		cancel()
		if err := <-serverDone; err != nil && exitErr == nil {
			exitErr = err
		}
	}

	// Final snapshot so disconnect times survive the shutdown
	registry.Persist()

	if exitErr != nil {
		logger.Error("Server shutdown error", "error", exitErr)
		return exitErr
	}
	logger.Info("Server stopped gracefully")

	return nil
}

// getConfigSource returns a description of where the config was loaded from.
func getConfigSource(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return "defaults"
}
