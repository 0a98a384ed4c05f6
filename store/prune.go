package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yairfalse/fenceline/telemetry"
	"github.com/yairfalse/fenceline/types"
)

// lockWait bounds how long Prune waits for the exclusive lock
const lockWait = 5 * time.Second

// Prune rewrites the store keeping only events with timestamp >= olderThan
// and returns the number removed. The rewrite goes to a temp file that is
// renamed over the original, so readers see either the pre-prune or the
// post-prune state, never a partial file. Malformed lines are kept: prune
// must never be the operation that loses data.
func (s *Store) Prune(ctx context.Context, olderThan time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lockCtx, cancel := context.WithTimeout(ctx, lockWait)
	defer cancel()

	locked, err := s.flock.TryLockContext(lockCtx, 50*time.Millisecond)
	if err != nil || !locked {
		return 0, fmt.Errorf("prune: %w (waited %s)", ErrLockTimeout, lockWait)
	}
	defer func() { _ = s.flock.Unlock() }()

	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("open events file: %w: %w", ErrStorage, err)
	}

	kept, removed, err := partitionLines(file, olderThan)
	_ = file.Close()
	if err != nil {
		return 0, err
	}

	if removed == 0 {
		return 0, nil
	}

	if err := s.swapIn(kept); err != nil {
		return 0, err
	}

	telemetry.CountPrune(ctx, removed)
	s.logger.WithContext(ctx).Info().
		Int("removed", removed).
		Time("older_than", olderThan).
		Msg("pruned old enforcement events")

	return removed, nil
}

// PlanPrune counts what a prune would remove and keep without mutating
// the store. Used by cleanup --dry-run.
func (s *Store) PlanPrune(ctx context.Context, olderThan time.Time) (remove, keep int, err error) {
	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, 0, nil
		}
		return 0, 0, fmt.Errorf("open events file: %w: %w", ErrStorage, err)
	}
	defer func() { _ = file.Close() }()

	kept, removed, err := partitionLines(file, olderThan)
	if err != nil {
		return 0, 0, err
	}
	return removed, len(kept), nil
}

// partitionLines splits the store into lines to keep and a removed count.
// A line is removed only when it parses cleanly and is older than cutoff.
func partitionLines(file *os.File, cutoff time.Time) (kept []string, removed int, err error) {
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var event types.Event
		if jsonErr := json.Unmarshal([]byte(line), &event); jsonErr != nil {
			kept = append(kept, line)
			continue
		}

		if event.Timestamp.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read events file: %w: %w", ErrStorage, err)
	}
	return kept, removed, nil
}

// swapIn writes the kept lines to a temp file and renames it into place
func (s *Store) swapIn(lines []string) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".prune-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w: %w", ErrStorage, err)
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	writer := bufio.NewWriter(tmp)
	for _, line := range lines {
		if _, err := writer.WriteString(line + "\n"); err != nil {
			cleanup()
			return fmt.Errorf("write temp file: %w: %w", ErrStorage, err)
		}
	}
	if err := writer.Flush(); err != nil {
		cleanup()
		return fmt.Errorf("flush temp file: %w: %w", ErrStorage, err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync temp file: %w: %w", ErrStorage, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp file: %w: %w", ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w: %w", ErrStorage, err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("swap events file: %w: %w", ErrStorage, err)
	}
	return nil
}
