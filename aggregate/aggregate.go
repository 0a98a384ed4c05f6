// Package aggregate computes event-type counts over time windows.
// Aggregation is a pure multiset count of the store's current contents:
// no caching, and scan order never matters.
package aggregate

import (
	"context"
	"io"

	"github.com/yairfalse/fenceline/store"
	"github.com/yairfalse/fenceline/types"
)

// CountByType counts events per type inside the window. Types with no
// events in the window are omitted; unknown types written by newer
// enforcement points are counted under their own name.
func CountByType(ctx context.Context, s *store.Store, w types.Window) (map[types.EventType]int, error) {
	sc, err := s.Scan(ctx, store.InWindow(w))
	if err != nil {
		return nil, err
	}
	defer func() { _ = sc.Close() }()

	counts := make(map[types.EventType]int)
	for {
		event, err := sc.Next()
		if err == io.EOF {
			return counts, nil
		}
		if err != nil {
			return nil, err
		}
		counts[event.Type]++
	}
}

// Total sums all event counts inside the window
func Total(ctx context.Context, s *store.Store, w types.Window) (int, error) {
	counts, err := CountByType(ctx, s, w)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	return total, nil
}

// Sum adds up an already computed count map
func Sum(counts map[types.EventType]int) int {
	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}
