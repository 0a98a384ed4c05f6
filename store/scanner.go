package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/yairfalse/fenceline/telemetry"
	"github.com/yairfalse/fenceline/types"
)

// Filter selects events during a scan. Zero values mean "no constraint".
type Filter struct {
	Since  time.Time       // inclusive
	Until  time.Time       // exclusive
	Type   types.EventType // exact match
	Source string          // case-insensitive substring match
	Limit  int             // 0 = unlimited
}

// InWindow returns a filter covering a time window
func InWindow(w types.Window) Filter {
	return Filter{Since: w.Start, Until: w.End}
}

func (f Filter) matches(event types.Event) bool {
	if !f.Since.IsZero() && event.Timestamp.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && !event.Timestamp.Before(f.Until) {
		return false
	}
	if f.Type != "" && event.Type != f.Type {
		return false
	}
	if f.Source != "" && !strings.Contains(strings.ToLower(event.Source), strings.ToLower(f.Source)) {
		return false
	}
	return true
}

// Scanner streams matching events from the store in write order.
// Each scan re-reads the file, so appends made after a previous scan
// are visible to the next one.
type Scanner struct {
	ctx      context.Context
	file     *os.File
	scanner  *bufio.Scanner
	filter   Filter
	logger   *telemetry.Logger
	returned int
}

// Scan opens a lazy scan over events matching the filter.
// A store that has never been written to yields an empty scan.
func (s *Store) Scan(ctx context.Context, filter Filter) (*Scanner, error) {
	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Scanner{ctx: ctx, filter: filter, logger: s.logger}, nil
		}
		return nil, fmt.Errorf("open events file: %w: %w", ErrStorage, err)
	}

	return &Scanner{
		ctx:     ctx,
		file:    file,
		scanner: bufio.NewScanner(file),
		filter:  filter,
		logger:  s.logger,
	}, nil
}

// Next returns the next matching event, or io.EOF when the scan is done.
// Corrupt lines are skipped with a warning; they never abort the scan.
func (sc *Scanner) Next() (types.Event, error) {
	if sc.scanner == nil {
		return types.Event{}, io.EOF
	}
	if sc.filter.Limit > 0 && sc.returned >= sc.filter.Limit {
		return types.Event{}, io.EOF
	}

	for sc.scanner.Scan() {
		line := strings.TrimSpace(sc.scanner.Text())
		if line == "" {
			continue
		}

		var event types.Event
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			sc.logger.WithContext(sc.ctx).Warn().
				Err(err).
				Str("line", truncate(line, 120)).
				Msg("skipping malformed event record")
			telemetry.CountMalformed(sc.ctx)
			continue
		}

		if !sc.filter.matches(event) {
			continue
		}

		sc.returned++
		return event, nil
	}

	if err := sc.scanner.Err(); err != nil {
		return types.Event{}, fmt.Errorf("read events file: %w: %w", ErrStorage, err)
	}
	return types.Event{}, io.EOF
}

// Close releases the underlying file
func (sc *Scanner) Close() error {
	if sc.file == nil {
		return nil
	}
	return sc.file.Close()
}

// List drains a scan into a slice, in store order
func (s *Store) List(ctx context.Context, filter Filter) ([]types.Event, error) {
	sc, err := s.Scan(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer func() { _ = sc.Close() }()

	var events []types.Event
	for {
		event, err := sc.Next()
		if err == io.EOF {
			return events, nil
		}
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
