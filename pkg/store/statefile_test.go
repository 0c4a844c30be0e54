package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finwire/finmock/pkg/session"
)

func testSnapshot(now time.Time) (map[string]session.Session, []session.AuditEntry) {
	sessions := map[string]session.Session{
		"SESSION-10.0.0.1-4000": {
			ID:            "SESSION-10.0.0.1-4000",
			RemoteAddr:    "10.0.0.1:4000",
			InputSeq:      4,
			OutputSeq:     6,
			Authenticated: true,
			Connected:     true,
			CreatedAt:     now,
			LastActivity:  now,
		},
	}
	log := []session.AuditEntry{
		{
			ID:        "entry-1",
			Timestamp: now,
			SessionID: "SESSION-10.0.0.1-4000",
			Direction: session.DirectionInbound,
			Preview:   "{1:F01TESTBANK}",
			Details:   map[string]any{"msg_type": "MT103"},
		},
	}
	return sessions, log
}

func TestStateFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	sf := NewStateFile(path)
	now := time.Now().UTC().Truncate(time.Second)

	sessions, log := testSnapshot(now)
	require.NoError(t, sf.Save(sessions, log))

	gotSessions, gotLog := sf.Load()
	require.Contains(t, gotSessions, "SESSION-10.0.0.1-4000")
	got := gotSessions["SESSION-10.0.0.1-4000"]
	assert.Equal(t, 4, got.InputSeq)
	assert.Equal(t, 6, got.OutputSeq)
	assert.True(t, got.Authenticated)

	require.Len(t, gotLog, 1)
	assert.Equal(t, "entry-1", gotLog[0].ID)
	assert.Equal(t, session.DirectionInbound, gotLog[0].Direction)
}

func TestStateFileCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "state.json")
	sf := NewStateFile(path)

	sessions, log := testSnapshot(time.Now())
	require.NoError(t, sf.Save(sessions, log))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestStateFileLeavesNoTempBehind(t *testing.T) {
	dir := t.TempDir()
	sf := NewStateFile(filepath.Join(dir, "state.json"))

	sessions, log := testSnapshot(time.Now())
	require.NoError(t, sf.Save(sessions, log))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "state.json", entries[0].Name())
}

func TestStateFileLoadMissing(t *testing.T) {
	sf := NewStateFile(filepath.Join(t.TempDir(), "absent.json"))

	sessions, log := sf.Load()

	assert.NotNil(t, sessions)
	assert.Empty(t, sessions)
	assert.Empty(t, log)
}

func TestStateFileLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	sessions, log := NewStateFile(path).Load()

	assert.Empty(t, sessions)
	assert.Empty(t, log)
}

func TestStateFileIgnoresUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	doc := `{"sessions": {}, "message_log": [], "format_version": 2}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0600))

	sessions, log := NewStateFile(path).Load()

	assert.NotNil(t, sessions)
	assert.Empty(t, log)
}

func TestStateFileOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	sf := NewStateFile(path)
	now := time.Now()

	sessions, log := testSnapshot(now)
	require.NoError(t, sf.Save(sessions, log))
	require.NoError(t, sf.Save(map[string]session.Session{}, nil))

	gotSessions, gotLog := sf.Load()
	assert.Empty(t, gotSessions)
	assert.Empty(t, gotLog)
}
