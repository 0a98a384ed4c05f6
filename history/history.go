// Package history keeps a durable record of past score evaluations so
// rating changes can be tracked over time, beyond the two-window
// comparison a single evaluation sees.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/yairfalse/fenceline/score"
)

var bucketScores = []byte("scores")

// Snapshot is one recorded evaluation
type Snapshot struct {
	Timestamp     time.Time    `json:"timestamp"`
	Rating        score.Rating `json:"rating"`
	ViolationRate float64      `json:"violation_rate"`
	Violations    int          `json:"violations"`
	ImportBlocked int          `json:"import_blocked"`
	Bypasses      int          `json:"bypasses"`
	TotalEvents   int          `json:"total_events"`
}

// FromReport builds a snapshot from a score report
func FromReport(r *score.Report) Snapshot {
	return Snapshot{
		Timestamp:     time.Now().UTC(),
		Rating:        r.Rating,
		ViolationRate: r.ViolationRate,
		Violations:    r.Violations.Current,
		ImportBlocked: r.ImportBlocked.Current,
		Bypasses:      r.Bypasses.Current,
		TotalEvents:   r.TotalCurrent,
	}
}

// Store persists snapshots in a bbolt database
type Store struct {
	db *bbolt.DB
}

// Open creates or opens the history database in dir
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := bbolt.Open(filepath.Join(dir, "history.db"), 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketScores)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize history database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores one snapshot keyed by its timestamp
func (s *Store) Record(ctx context.Context, snapshot Snapshot) error {
	key := fmt.Sprintf("score:%d", snapshot.Timestamp.UnixNano())

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketScores).Put([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	return nil
}

// List returns snapshots at or after since, oldest first.
// Malformed entries are skipped rather than failing the listing.
func (s *Store) List(ctx context.Context, since time.Time) ([]Snapshot, error) {
	var snapshots []Snapshot

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketScores).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var snapshot Snapshot
			if err := json.Unmarshal(v, &snapshot); err != nil {
				continue
			}
			if snapshot.Timestamp.Before(since) {
				continue
			}
			snapshots = append(snapshots, snapshot)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	return snapshots, nil
}

// Latest returns the most recent snapshot, or false when none exist
func (s *Store) Latest(ctx context.Context) (Snapshot, bool, error) {
	var snapshot Snapshot
	found := false

	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketScores).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if err := json.Unmarshal(v, &snapshot); err != nil {
				continue
			}
			found = true
			return nil
		}
		return nil
	})
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("read latest snapshot: %w", err)
	}

	return snapshot, found, nil
}
