// Package store persists the mock's durable state: the session map and
// the audit log tail, written as a single JSON document. The file is a
// debugging artifact as much as a store, so it stays human-readable.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/finwire/finmock/internal/logger"
	"github.com/finwire/finmock/pkg/session"
)

// snapshot is the on-disk document. Unknown top-level keys in an existing
// file are ignored on load so the format can grow without breaking old
// state files.
type snapshot struct {
	Sessions   map[string]session.Session `json:"sessions"`
	MessageLog []session.AuditEntry       `json:"message_log"`
}

// StateFile persists {sessions, message_log} at a fixed path. Writes are
// serialized and atomic (temp file + rename). Persistence is best-effort
// by contract: callers log a failed Save and keep processing messages.
type StateFile struct {
	mu   sync.Mutex
	path string
}

// NewStateFile creates a state file store. The file itself is created on
// the first Save.
func NewStateFile(path string) *StateFile {
	return &StateFile{path: path}
}

// Path returns the backing file path.
func (s *StateFile) Path() string {
	return s.path
}

// Save writes the snapshot. It implements session.Saver.
func (s *StateFile) Save(sessions map[string]session.Session, log []session.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := snapshot{Sessions: sessions, MessageLog: log}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	// Write-then-rename so a crash mid-write never leaves a truncated
	// document behind.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

// Load reads the persisted snapshot. Missing, unreadable or corrupt files
// yield empty state with a warning; startup never fails on state-file
// health.
func (s *StateFile) Load() (map[string]session.Session, []session.AuditEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("no state file found, starting with empty state", logger.Path(s.path))
		} else {
			logger.Warn("state file unreadable, starting with empty state",
				logger.Path(s.path), logger.Err(err))
		}
		return map[string]session.Session{}, nil
	}

	var doc snapshot
	if err := json.Unmarshal(data, &doc); err != nil {
		logger.Warn("state file corrupt, starting with empty state",
			logger.Path(s.path), logger.Err(err))
		return map[string]session.Session{}, nil
	}
	if doc.Sessions == nil {
		doc.Sessions = map[string]session.Session{}
	}

	logger.Info("state restored",
		logger.Path(s.path),
		logger.Sessions(len(doc.Sessions)),
		logger.Messages(len(doc.MessageLog)))
	return doc.Sessions, doc.MessageLog
}
