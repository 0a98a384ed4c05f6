package store

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"github.com/yairfalse/fenceline/types"
)

func seedAges(t *testing.T, s *Store, ages []time.Duration) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	for _, age := range ages {
		event := types.Event{
			Timestamp: now.Add(-age),
			Type:      types.EventViolationDetected,
			Source:    "violation-watcher",
		}
		if err := s.Append(ctx, event); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
}

func TestStore_Prune(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	// Two old events, two recent ones
	seedAges(t, s, []time.Duration{
		40 * 24 * time.Hour,
		35 * 24 * time.Hour,
		5 * 24 * time.Hour,
		time.Hour,
	})

	cutoff := time.Now().UTC().AddDate(0, 0, -30)
	removed, err := s.Prune(ctx, cutoff)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	events, err := s.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events after prune, want 2", len(events))
	}
	for _, event := range events {
		if event.Timestamp.Before(cutoff) {
			t.Errorf("event %v survived prune with cutoff %v", event.Timestamp, cutoff)
		}
	}

	// Idempotent: same cutoff removes nothing further
	removed, err = s.Prune(ctx, cutoff)
	if err != nil {
		t.Fatalf("second Prune failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("second prune removed %d, want 0", removed)
	}
}

func TestStore_PruneEmptyStore(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	removed, err := s.Prune(ctx, time.Now())
	if err != nil {
		t.Fatalf("Prune on empty store failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}
}

func TestStore_PruneKeepsMalformedLines(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	seedAges(t, s, []time.Duration{40 * 24 * time.Hour, time.Hour})

	f, err := os.OpenFile(s.Path(), os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open events file: %v", err)
	}
	if _, err := f.WriteString("corrupted-but-precious\n"); err != nil {
		t.Fatalf("write corrupt line: %v", err)
	}
	_ = f.Close()

	cutoff := time.Now().UTC().AddDate(0, 0, -30)
	removed, err := s.Prune(ctx, cutoff)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("read events file: %v", err)
	}
	if !strings.Contains(string(data), "corrupted-but-precious\n") {
		t.Error("prune dropped a malformed line; it must be kept")
	}
}

// Prune must give up with ErrLockTimeout when another process holds the
// lock, leaving the store byte-for-byte unchanged.
func TestStore_PruneLockTimeout(t *testing.T) {
	s := testStore(t)
	seedAges(t, s, []time.Duration{
		40 * 24 * time.Hour,
		time.Hour,
	})

	before, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	// Stand in for a concurrent process holding the exclusive lock
	holder := flock.New(s.Path() + ".lock")
	if err := holder.Lock(); err != nil {
		t.Fatalf("holder Lock failed: %v", err)
	}
	defer func() { _ = holder.Unlock() }()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	removed, err := s.Prune(ctx, time.Now().UTC().AddDate(0, 0, -30))
	if !errors.Is(err, ErrLockTimeout) {
		t.Fatalf("Prune error = %v, want ErrLockTimeout", err)
	}
	if removed != 0 {
		t.Errorf("Prune removed %d under contention, want 0", removed)
	}

	after, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(before) != string(after) {
		t.Error("store changed despite failed lock acquisition")
	}
}

func TestStore_PlanPrune(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	seedAges(t, s, []time.Duration{
		40 * 24 * time.Hour,
		35 * 24 * time.Hour,
		time.Hour,
	})

	cutoff := time.Now().UTC().AddDate(0, 0, -30)
	remove, keep, err := s.PlanPrune(ctx, cutoff)
	if err != nil {
		t.Fatalf("PlanPrune failed: %v", err)
	}
	if remove != 2 || keep != 1 {
		t.Errorf("plan = remove %d keep %d, want remove 2 keep 1", remove, keep)
	}

	// Dry run mutates nothing
	events, err := s.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(events) != 3 {
		t.Errorf("store has %d events after dry run, want 3", len(events))
	}
}
