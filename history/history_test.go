package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/fenceline/score"
	"github.com/yairfalse/fenceline/types"
)

func testHistory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_RecordAndList(t *testing.T) {
	ctx := context.Background()
	s := testHistory(t)

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	ratings := []score.Rating{score.RatingGood, score.RatingConcerning, score.RatingExcellent}

	for i, rating := range ratings {
		err := s.Record(ctx, Snapshot{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Rating:    rating,
		})
		require.NoError(t, err)
	}

	snapshots, err := s.List(ctx, time.Time{})
	require.NoError(t, err)
	require.Len(t, snapshots, 3)

	// Oldest first
	for i, rating := range ratings {
		assert.Equal(t, rating, snapshots[i].Rating)
	}

	// Time filter
	recent, err := s.List(ctx, base.Add(90*time.Minute))
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, score.RatingExcellent, recent[0].Rating)
}

func TestStore_Latest(t *testing.T) {
	ctx := context.Background()
	s := testHistory(t)

	_, found, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.False(t, found, "empty history should have no latest")

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Record(ctx, Snapshot{Timestamp: base, Rating: score.RatingGood}))
	require.NoError(t, s.Record(ctx, Snapshot{Timestamp: base.Add(time.Hour), Rating: score.RatingCritical}))

	latest, found, err := s.Latest(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, score.RatingCritical, latest.Rating)
}

func TestFromReport(t *testing.T) {
	cw := types.LastDays(7)
	r := score.NewEngine(score.DefaultThresholds()).Compute(
		map[types.EventType]int{
			types.EventViolationDetected:    2,
			types.EventImportBlocked:        3,
			types.EventCommitReviewBypassed: 1,
		},
		map[types.EventType]int{},
		cw, cw.Previous(),
	)

	snapshot := FromReport(r)

	assert.Equal(t, r.Rating, snapshot.Rating)
	assert.Equal(t, 2, snapshot.Violations)
	assert.Equal(t, 3, snapshot.ImportBlocked)
	assert.Equal(t, 1, snapshot.Bypasses)
	assert.Equal(t, 6, snapshot.TotalEvents)
	assert.False(t, snapshot.Timestamp.IsZero())
}
