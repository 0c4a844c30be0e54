package fin

import (
	"fmt"
	"time"
)

// DefaultMaxBufferSize caps the per-connection framing buffer (1MB). A
// well-formed FIN message is a few hundred bytes; the cap exists so a peer
// streaming bytes that never frame cannot grow the buffer without bound.
const DefaultMaxBufferSize = 1 << 20

// TimeoutsConfig groups all timeout-related configuration.
type TimeoutsConfig struct {
	// Read is the maximum duration to wait for the next inbound bytes.
	// 0 means no read timeout: FIN links are long-lived and clients may
	// stay silent between bursts.
	Read time.Duration `mapstructure:"read" validate:"min=0" yaml:"read"`

	// Write is the maximum duration for writing one response.
	// 0 means no timeout.
	// Recommended: 30s.
	Write time.Duration `mapstructure:"write" validate:"min=0" yaml:"write"`

	// Idle closes a connection that has produced no inbound traffic for
	// this long. 0 disables the idle timeout; connections then stay open
	// until the client disconnects, matching bank-side link behavior.
	Idle time.Duration `mapstructure:"idle" validate:"min=0" yaml:"idle"`

	// Shutdown is the maximum duration to wait for active connections
	// to complete during graceful shutdown.
	// After this timeout, remaining connections are forcibly closed.
	// Must be > 0 to ensure shutdown completes.
	Shutdown time.Duration `mapstructure:"shutdown" validate:"required,gt=0" yaml:"shutdown"`
}

// Config holds configuration parameters for the FIN listener.
//
// Default values (applied by New if zero):
//   - Port: 10103
//   - MaxConnections: 0 (unlimited)
//   - MACKey: "" (built-in mock key)
//   - Greeting: true
//   - MaxBufferSize: 1MB
//   - Timeouts.Write: 30s
//   - Timeouts.Shutdown: 30s
//   - MetricsLogInterval: 5m (0 disables)
type Config struct {
	// BindAddress is the IP address to bind to.
	// Empty string or "0.0.0.0" binds to all interfaces.
	BindAddress string `mapstructure:"bind_address" yaml:"bind_address,omitempty"`

	// Port is the TCP port to listen on for FIN connections.
	// If 0, defaults to 10103.
	Port int `mapstructure:"port" validate:"min=0,max=65535" yaml:"port"`

	// MaxConnections limits the number of concurrent client connections.
	// 0 means unlimited.
	MaxConnections int `mapstructure:"max_connections" validate:"min=0" yaml:"max_connections"`

	// MACKey is the shared secret used to sign response trailers and to
	// verify inbound ones. Empty selects the built-in mock key; set it
	// only in lockstep with the client side.
	MACKey string `mapstructure:"mac_key" yaml:"mac_key,omitempty"`

	// Greeting controls the unsolicited LOGIN-OK emitted right after a
	// connection is accepted. Connectors observed in the wild block on
	// this greeting before sending their first message.
	// Default: true
	Greeting *bool `mapstructure:"greeting" yaml:"greeting,omitempty"`

	// MaxBufferSize caps the per-connection framing buffer. A connection
	// exceeding it is closed. 0 means use the default (1MB).
	MaxBufferSize int `mapstructure:"max_buffer_size" validate:"min=0" yaml:"max_buffer_size,omitempty"`

	// Timeouts groups all timeout-related configuration.
	Timeouts TimeoutsConfig `mapstructure:"timeouts" yaml:"timeouts"`

	// MetricsLogInterval is the interval at which to log listener metrics
	// (active connections). 0 disables periodic metrics logging.
	MetricsLogInterval time.Duration `mapstructure:"metrics_log_interval" validate:"min=0" yaml:"metrics_log_interval,omitempty"`
}

// applyDefaults fills in zero values with sensible defaults.
func (c *Config) applyDefaults() {
	if c.Port <= 0 {
		c.Port = 10103
	}
	if c.Greeting == nil {
		greeting := true
		c.Greeting = &greeting
	}
	if c.MaxBufferSize == 0 {
		c.MaxBufferSize = DefaultMaxBufferSize
	}
	if c.Timeouts.Write == 0 {
		c.Timeouts.Write = 30 * time.Second
	}
	if c.Timeouts.Shutdown == 0 {
		c.Timeouts.Shutdown = 30 * time.Second
	}
	if c.MetricsLogInterval == 0 {
		c.MetricsLogInterval = 5 * time.Minute
	}
}

// validate checks that the configuration is valid for production use.
// Called after applyDefaults, so Port is never 0 here.
func (c *Config) validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be 0-65535", c.Port)
	}
	if c.MaxConnections < 0 {
		return fmt.Errorf("invalid MaxConnections %d: must be >= 0", c.MaxConnections)
	}
	if c.MaxBufferSize < 0 {
		return fmt.Errorf("invalid MaxBufferSize %d: must be >= 0", c.MaxBufferSize)
	}
	if c.Timeouts.Read < 0 {
		return fmt.Errorf("invalid timeouts.read %v: must be >= 0", c.Timeouts.Read)
	}
	if c.Timeouts.Write < 0 {
		return fmt.Errorf("invalid timeouts.write %v: must be >= 0", c.Timeouts.Write)
	}
	if c.Timeouts.Idle < 0 {
		return fmt.Errorf("invalid timeouts.idle %v: must be >= 0", c.Timeouts.Idle)
	}
	if c.Timeouts.Shutdown <= 0 {
		return fmt.Errorf("invalid timeouts.shutdown %v: must be > 0", c.Timeouts.Shutdown)
	}
	return nil
}

// greetingEnabled reports whether the accept-time LOGIN-OK is on. New
// guarantees the pointer is set; the nil check keeps zero-value configs in
// tests safe.
func (c *Config) greetingEnabled() bool {
	return c.Greeting == nil || *c.Greeting
}
