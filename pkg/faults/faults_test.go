package faults

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	for _, valid := range []string{"none", "nack_next", "drop_connection", "timeout", "latency"} {
		mode, err := ParseMode(valid)
		require.NoError(t, err)
		assert.Equal(t, Mode(valid), mode)
	}

	_, err := ParseMode("explode")
	assert.ErrorContains(t, err, "unknown error mode")
}

func TestOneShotConsumption(t *testing.T) {
	t.Run("NackNext", func(t *testing.T) {
		table := NewTable()
		table.Set(ModeNackNext, 0)

		assert.True(t, table.ConsumeNackNext())
		assert.Equal(t, ModeNone, table.Mode())
		assert.False(t, table.ConsumeNackNext())
	})

	t.Run("DropConnection", func(t *testing.T) {
		table := NewTable()
		table.Set(ModeDropConnection, 0)

		assert.True(t, table.ConsumeDrop())
		assert.Equal(t, ModeNone, table.Mode())
		assert.False(t, table.ConsumeDrop())
	})

	t.Run("ConsumersAreModeSpecific", func(t *testing.T) {
		table := NewTable()
		table.Set(ModeNackNext, 0)

		assert.False(t, table.ConsumeDrop())
		assert.True(t, table.ConsumeNackNext())
	})
}

func TestPersistentModes(t *testing.T) {
	t.Run("TimeoutSurvivesChecks", func(t *testing.T) {
		table := NewTable()
		table.Set(ModeTimeout, 0)

		assert.True(t, table.TimeoutActive())
		assert.True(t, table.TimeoutActive())
		assert.False(t, table.ConsumeDrop())
		assert.False(t, table.ConsumeNackNext())
		assert.Equal(t, ModeTimeout, table.Mode())
	})

	t.Run("LatencyPersists", func(t *testing.T) {
		table := NewTable()
		table.Set(ModeLatency, 250*time.Millisecond)

		assert.Equal(t, 250*time.Millisecond, table.Delay())
		assert.Equal(t, 250*time.Millisecond, table.Delay())
	})

	t.Run("SettingAnotherModeClearsLatency", func(t *testing.T) {
		table := NewTable()
		table.Set(ModeLatency, 250*time.Millisecond)
		table.Set(ModeNone, 0)

		assert.Zero(t, table.Delay())
	})
}

func TestIgnoredSequences(t *testing.T) {
	table := NewTable()
	table.AddIgnored(30, 31)

	t.Run("MembershipWithoutConsumption", func(t *testing.T) {
		assert.True(t, table.IsIgnored(30))
		assert.True(t, table.IsIgnored(30))
		assert.False(t, table.IsIgnored(99))
	})

	t.Run("ConsumedOnFirstMatch", func(t *testing.T) {
		assert.True(t, table.ConsumeIgnored(30))
		assert.False(t, table.ConsumeIgnored(30))
		assert.False(t, table.IsIgnored(30))
	})

	t.Run("OtherEntriesUntouched", func(t *testing.T) {
		assert.True(t, table.IsIgnored(31))
	})
}

func TestReset(t *testing.T) {
	table := NewTable()
	table.Set(ModeLatency, time.Second)
	table.AddIgnored(1, 2, 3)

	table.Reset()

	snap := table.Snapshot()
	assert.Equal(t, ModeNone, snap.Mode)
	assert.Zero(t, snap.LatencyMS)
	assert.Empty(t, snap.Ignored)
}

func TestSnapshot(t *testing.T) {
	table := NewTable()
	table.Set(ModeLatency, 1500*time.Millisecond)
	table.AddIgnored(7, 3, 5)

	snap := table.Snapshot()
	assert.Equal(t, ModeLatency, snap.Mode)
	assert.Equal(t, 1500, snap.LatencyMS)
	assert.Equal(t, []int{3, 5, 7}, snap.Ignored)

	// The snapshot is a copy: consuming afterwards must not mutate it.
	table.ConsumeIgnored(5)
	assert.Equal(t, []int{3, 5, 7}, snap.Ignored)
}
