// Package archive stores full raw FIN messages in BadgerDB, keyed by
// audit entry id. The in-memory audit ring only keeps 200-character
// previews; the archive is the place to go for complete wire text, and it
// survives restarts independently of the JSON state file.
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/finwire/finmock/internal/logger"
	"github.com/finwire/finmock/pkg/session"
)

// ErrNotFound is returned by Get when no record exists for the id.
var ErrNotFound = errors.New("message not found in archive")

// ============================================================================
// Database Key Namespace Design
// ============================================================================
//
// Data Type       Prefix  Key Format                 Value Type
// ============================================================================
// Message Record  "m:"    m:<entry id>               Record (JSON)
// Time Index      "t:"    t:<unix nanos>:<entry id>  entry id (bytes)
//
// The time index keys zero-pad the nanosecond timestamp to 20 digits so
// lexicographic key order is chronological order, which makes Recent a
// single reverse prefix scan.

const (
	prefixMessage = "m:"
	prefixTime    = "t:"
)

func keyMessage(id string) []byte {
	return []byte(prefixMessage + id)
}

func keyTime(ts time.Time, id string) []byte {
	return []byte(fmt.Sprintf("%s%020d:%s", prefixTime, ts.UnixNano(), id))
}

// Record is one archived message: the audit projection plus the full raw
// text.
type Record struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	SessionID string         `json:"session_id"`
	Direction string         `json:"direction"`
	Raw       string         `json:"raw"`
	Details   map[string]any `json:"parsed_details,omitempty"`
	Duplicate bool           `json:"duplicate,omitempty"`
}

// Archive is the BadgerDB-backed message store. All methods are nil-safe
// so a disabled archive (nil *Archive) can flow through the wiring.
type Archive struct {
	db *badger.DB
}

// Open opens (or creates) the archive database at path.
func Open(path string) (*Archive, error) {
	opts := badger.DefaultOptions(path).WithLogger(badgerLogger{})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open message archive: %w", err)
	}
	logger.Info("message archive opened", logger.Path(path))
	return &Archive{db: db}, nil
}

// Archive implements session.Archiver: it stores the entry together with
// the full raw message.
func (a *Archive) Archive(entry session.AuditEntry, raw string) error {
	if a == nil {
		return nil
	}
	return a.Put(Record{
		ID:        entry.ID,
		Timestamp: entry.Timestamp,
		SessionID: entry.SessionID,
		Direction: entry.Direction,
		Raw:       raw,
		Details:   entry.Details,
		Duplicate: entry.Duplicate,
	})
}

// Put stores a record and its time-index entry.
func (a *Archive) Put(rec Record) error {
	if a == nil {
		return nil
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode archive record: %w", err)
	}
	return a.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(keyMessage(rec.ID), data); err != nil {
			return err
		}
		return txn.Set(keyTime(rec.Timestamp, rec.ID), []byte(rec.ID))
	})
}

// Get retrieves a record by entry id. Returns ErrNotFound if absent.
func (a *Archive) Get(ctx context.Context, id string) (*Record, error) {
	if a == nil {
		return nil, ErrNotFound
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rec *Record
	err := a.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyMessage(id))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var decoded Record
			if err := json.Unmarshal(val, &decoded); err != nil {
				return fmt.Errorf("failed to decode archive record: %w", err)
			}
			rec = &decoded
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Recent returns the most recent n records in chronological order.
func (a *Archive) Recent(ctx context.Context, n int) ([]Record, error) {
	if a == nil || n <= 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var records []Record
	err := a.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixTime)
		// Reverse iteration starts just past the last possible index key.
		seek := append(append([]byte{}, prefix...), 0xff)
		for it.Seek(seek); it.ValidForPrefix(prefix) && len(records) < n; it.Next() {
			var id string
			if err := it.Item().Value(func(val []byte) error {
				id = string(val)
				return nil
			}); err != nil {
				return err
			}

			item, err := txn.Get(keyMessage(id))
			if err == badger.ErrKeyNotFound {
				continue // index entry outlived its record
			}
			if err != nil {
				return err
			}
			if err := item.Value(func(val []byte) error {
				var rec Record
				if err := json.Unmarshal(val, &rec); err != nil {
					return fmt.Errorf("failed to decode archive record: %w", err)
				}
				records = append(records, rec)
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Collected newest-first; flip to chronological.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// Reset drops every archived message.
func (a *Archive) Reset(ctx context.Context) error {
	if a == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return a.db.DropAll()
}

// Close releases the database.
func (a *Archive) Close() error {
	if a == nil {
		return nil
	}
	return a.db.Close()
}

// badgerLogger routes BadgerDB's own logging through the process logger.
// Badger is chatty at INFO, so its info output lands at DEBUG.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...any) {
	logger.Errorf("badger: "+strings.TrimSuffix(format, "\n"), args...)
}

func (badgerLogger) Warningf(format string, args ...any) {
	logger.Warnf("badger: "+strings.TrimSuffix(format, "\n"), args...)
}

func (badgerLogger) Infof(format string, args ...any) {
	logger.Debugf("badger: "+strings.TrimSuffix(format, "\n"), args...)
}

func (badgerLogger) Debugf(format string, args ...any) {
	logger.Debugf("badger: "+strings.TrimSuffix(format, "\n"), args...)
}
