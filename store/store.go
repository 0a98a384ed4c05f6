// Package store persists enforcement events as an append-only,
// newline-delimited JSON log. Appends are durable and safe under
// concurrent writers from separate processes; pruning is the only
// mutating operation and swaps the file atomically.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"github.com/yairfalse/fenceline/telemetry"
	"github.com/yairfalse/fenceline/types"
)

// DefaultPath is where enforcement points write events unless configured
const DefaultPath = "data/enforcement_events.jsonl"

// Store is a handle on one events file. Safe for concurrent use; the
// file lock additionally serializes writers across processes.
type Store struct {
	mu     sync.Mutex
	path   string
	flock  *flock.Flock
	logger *telemetry.Logger
}

// Open prepares a store at path, creating parent directories as needed.
// The events file itself is created lazily on first append.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w: %w", ErrStorage, err)
		}
	}

	return &Store{
		path:   path,
		flock:  flock.New(path + ".lock"),
		logger: telemetry.NewLogger("event-store"),
	}, nil
}

// Path returns the events file location
func (s *Store) Path() string {
	return s.path
}

// Append writes one event durably before returning. The event is one
// complete line written under the file lock, so concurrent appenders
// never interleave partial records.
func (s *Store) Append(ctx context.Context, event types.Event) error {
	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.flock.Lock(); err != nil {
		return fmt.Errorf("lock store: %w: %w", ErrStorage, err)
	}
	defer func() { _ = s.flock.Unlock() }()

	if err := s.writeLine(line); err != nil {
		return err
	}

	telemetry.CountAppend(ctx, string(event.Type))
	return nil
}

// writeLine appends one record and syncs it to disk
func (s *Store) writeLine(line []byte) error {
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open events file: %w: %w", ErrStorage, err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write event: %w: %w", ErrStorage, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync events file: %w: %w", ErrStorage, err)
	}
	return nil
}

// Record is the enforcement-point entry: it builds and appends an event,
// logging any failure instead of returning it. A telemetry write must
// never change an enforcement decision, so this path cannot fail loudly.
func (s *Store) Record(ctx context.Context, eventType types.EventType, source string, details any) {
	event, err := types.NewEvent(eventType, source, details)
	if err != nil {
		s.logger.WithContext(ctx).Warn().
			Err(err).
			Str("event_type", string(eventType)).
			Str("source", source).
			Msg("dropping unserializable enforcement event")
		return
	}

	if err := s.Append(ctx, event); err != nil {
		s.logger.WithContext(ctx).Warn().
			Err(err).
			Str("event_type", string(eventType)).
			Str("source", source).
			Msg("enforcement event not persisted")
	}
}
