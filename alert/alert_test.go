package alert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yairfalse/fenceline/score"
	"github.com/yairfalse/fenceline/types"
)

func reportWith(current, previous map[types.EventType]int) *score.Report {
	cw := types.LastDays(7)
	return score.NewEngine(score.DefaultThresholds()).Compute(current, previous, cw, cw.Previous())
}

func check(current, previous map[types.EventType]int) Result {
	return Check(reportWith(current, previous), score.DefaultThresholds())
}

func TestCheck_Healthy(t *testing.T) {
	result := check(
		map[types.EventType]int{
			types.EventViolationDetected: 1,
			types.EventImportBlocked:     3,
		},
		map[types.EventType]int{types.EventImportBlocked: 7},
	)

	assert.Empty(t, result.Alerts)
	assert.False(t, result.HasCritical)
	assert.False(t, result.HasWarnings)
	assert.Equal(t, "ok", result.Status)
}

func TestCheck_BypassAlwaysAlerts(t *testing.T) {
	// One bypass with otherwise spotless signals still raises CRITICAL
	result := check(
		map[types.EventType]int{types.EventCommitReviewBypassed: 1},
		map[types.EventType]int{types.EventImportBlocked: 5},
	)

	require.Len(t, result.Alerts, 1)
	assert.Equal(t, LevelCritical, result.Alerts[0].Level)
	assert.Equal(t, types.EventCommitReviewBypassed, result.Alerts[0].Metric)
	assert.True(t, result.HasCritical)
	assert.Equal(t, "critical", result.Status)
}

func TestCheck_ViolationThresholds(t *testing.T) {
	tests := []struct {
		name       string
		violations int
		wantLevel  Level
		wantAlerts int
	}{
		{"below warning", 5, "", 0},
		{"above warning", 6, LevelWarning, 1},
		{"at critical boundary", 10, LevelWarning, 1},
		{"above critical", 11, LevelCritical, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := check(
				map[types.EventType]int{types.EventViolationDetected: tt.violations},
				map[types.EventType]int{types.EventViolationDetected: tt.violations},
			)

			require.Len(t, result.Alerts, tt.wantAlerts)
			if tt.wantAlerts > 0 {
				assert.Equal(t, tt.wantLevel, result.Alerts[0].Level)
			}
		})
	}
}

func TestCheck_IncreasingBlocksWarn(t *testing.T) {
	result := check(
		map[types.EventType]int{types.EventImportBlocked: 10},
		map[types.EventType]int{types.EventImportBlocked: 4},
	)

	require.Len(t, result.Alerts, 1)
	a := result.Alerts[0]
	assert.Equal(t, LevelWarning, a.Level)
	assert.Equal(t, types.EventImportBlocked, a.Metric)
	assert.Equal(t, 4, a.Previous)
	assert.Equal(t, "warning", result.Status)
}

func TestCheck_CriticalScenario(t *testing.T) {
	// Two bypasses in the current window: rating critical, alerts non-empty
	report := reportWith(
		map[types.EventType]int{types.EventCommitReviewBypassed: 2},
		map[types.EventType]int{},
	)
	result := Check(report, score.DefaultThresholds())

	assert.Equal(t, score.RatingCritical, report.Rating)
	assert.NotEmpty(t, result.Alerts)
	assert.True(t, result.HasCritical)
}

func TestCheck_StackedAlerts(t *testing.T) {
	result := check(
		map[types.EventType]int{
			types.EventViolationDetected:    12,
			types.EventImportBlocked:        9,
			types.EventCommitReviewBypassed: 2,
		},
		map[types.EventType]int{types.EventImportBlocked: 2},
	)

	require.Len(t, result.Alerts, 3)
	assert.True(t, result.HasCritical)
	assert.True(t, result.HasWarnings)
	assert.Equal(t, "critical", result.Status)
}
