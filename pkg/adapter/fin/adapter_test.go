package fin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/finwire/finmock/pkg/faults"
	"github.com/finwire/finmock/pkg/session"
)

func TestNewAppliesDefaults(t *testing.T) {
	a := New(Config{}, session.NewRegistry(nil, nil), faults.NewTable(), nil)

	assert.Equal(t, 10103, a.config.Port)
	assert.True(t, a.config.greetingEnabled())
	assert.Equal(t, DefaultMaxBufferSize, a.config.MaxBufferSize)
	assert.Equal(t, 30*time.Second, a.config.Timeouts.Write)
	assert.Equal(t, 30*time.Second, a.config.Timeouts.Shutdown)
	assert.Equal(t, 5*time.Minute, a.config.MetricsLogInterval)

	// The embedded listener inherits the resolved values.
	assert.Equal(t, 10103, a.Config.Port)
	assert.Equal(t, 30*time.Second, a.Config.ShutdownTimeout)
}

func TestNewKeepsExplicitValues(t *testing.T) {
	a := New(Config{
		BindAddress:    "127.0.0.1",
		Port:           20103,
		MaxConnections: 8,
		Timeouts: TimeoutsConfig{
			Idle:     time.Minute,
			Shutdown: 5 * time.Second,
		},
	}, session.NewRegistry(nil, nil), faults.NewTable(), nil)

	assert.Equal(t, "127.0.0.1", a.config.BindAddress)
	assert.Equal(t, 20103, a.config.Port)
	assert.Equal(t, 8, a.config.MaxConnections)
	assert.Equal(t, time.Minute, a.config.Timeouts.Idle)
	assert.Equal(t, 5*time.Second, a.config.Timeouts.Shutdown)
}

func TestNewPanicsOnInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{"port out of range", Config{Port: 70000}},
		{"negative read timeout", Config{Timeouts: TimeoutsConfig{Read: -time.Second}}},
		{"negative max connections", Config{MaxConnections: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Panics(t, func() {
				New(tt.config, session.NewRegistry(nil, nil), faults.NewTable(), nil)
			})
		})
	}
}

func TestReadTimeoutPicksTightest(t *testing.T) {
	tests := []struct {
		name string
		read time.Duration
		idle time.Duration
		want time.Duration
	}{
		{"both zero", 0, 0, 0},
		{"read only", 10 * time.Second, 0, 10 * time.Second},
		{"idle only", 0, time.Minute, time.Minute},
		{"read tighter", 10 * time.Second, time.Minute, 10 * time.Second},
		{"idle tighter", time.Minute, 10 * time.Second, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(Config{Timeouts: TimeoutsConfig{Read: tt.read, Idle: tt.idle, Shutdown: time.Second}},
				session.NewRegistry(nil, nil), faults.NewTable(), nil)
			c := &Connection{server: a}
			assert.Equal(t, tt.want, c.readTimeout())
		})
	}
}
