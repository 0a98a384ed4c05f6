// Package score derives a discrete effectiveness rating from enforcement
// event counts in two adjacent time windows. The rating rules are an
// ordered guard cascade, most severe first, first match wins, so the
// whole contract stays auditable in one place.
package score

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yairfalse/fenceline/aggregate"
	"github.com/yairfalse/fenceline/store"
	"github.com/yairfalse/fenceline/telemetry"
	"github.com/yairfalse/fenceline/types"
)

// Rating is the overall health label for the enforcement system
type Rating string

const (
	RatingExcellent  Rating = "excellent"
	RatingGood       Rating = "good"
	RatingConcerning Rating = "concerning"
	RatingCritical   Rating = "critical"
)

// Level maps ratings onto an ordinal scale (0=excellent .. 3=critical)
func (r Rating) Level() int64 {
	switch r {
	case RatingExcellent:
		return 0
	case RatingGood:
		return 1
	case RatingConcerning:
		return 2
	case RatingCritical:
		return 3
	}
	return 2
}

// Thresholds hold the rating boundaries, all normalized to a 7-day week
type Thresholds struct {
	ViolationsExcellent float64 `yaml:"violations_excellent"` // rate below this qualifies for excellent
	ViolationsWarning   float64 `yaml:"violations_warning"`   // rate at or above this is concerning
	ViolationsCritical  float64 `yaml:"violations_critical"`  // rate above this is critical
	MaxBypasses         int     `yaml:"max_bypasses"`         // bypass count above this is critical
}

// DefaultThresholds returns the standard rating boundaries
func DefaultThresholds() Thresholds {
	return Thresholds{
		ViolationsExcellent: 2,
		ViolationsWarning:   5,
		ViolationsCritical:  10,
		MaxBypasses:         1,
	}
}

// MetricTrend is one tracked metric's comparison between the windows
type MetricTrend struct {
	Name      string          `json:"name"`
	EventType types.EventType `json:"event_type"`
	Current   int             `json:"current"`
	Previous  int             `json:"previous"`
	Trend     Trend           `json:"trend"`
	Threshold string          `json:"threshold"`
}

// Report is the full effectiveness evaluation, recomputed on every
// request and never stored by the engine itself.
type Report struct {
	Rating        Rating       `json:"rating"`
	Description   string       `json:"description"`
	Violations    MetricTrend  `json:"violations"`
	ImportBlocked MetricTrend  `json:"import_blocked"`
	Bypasses      MetricTrend  `json:"bypasses"`
	ViolationRate float64      `json:"violation_rate"` // per 7-day week
	Current       types.Window `json:"current_window"`
	Previous      types.Window `json:"previous_window"`
	TotalCurrent  int          `json:"total_events_current"`
	TotalPrevious int          `json:"total_events_previous"`
}

// Metrics lists the tracked metric trends in display order
func (r *Report) Metrics() []MetricTrend {
	return []MetricTrend{r.Violations, r.ImportBlocked, r.Bypasses}
}

// signals are the three inputs the rating guards look at
type signals struct {
	violationRate float64
	blockedTrend  Trend
	bypasses      int
}

// guard pairs a predicate with the rating it yields
type guard struct {
	rating      Rating
	description string
	when        func(signals) bool
}

// Engine evaluates effectiveness against configured thresholds
type Engine struct {
	thresholds Thresholds
	logger     *telemetry.Logger
}

// NewEngine creates an engine with the given thresholds
func NewEngine(thresholds Thresholds) *Engine {
	return &Engine{
		thresholds: thresholds,
		logger:     telemetry.NewLogger("score-engine"),
	}
}

// guards returns the rating cascade, most severe first. Evaluation walks
// the list top to bottom and the first matching guard wins; anything that
// matches nothing falls back to concerning as the safe default.
func (e *Engine) guards() []guard {
	th := e.thresholds
	return []guard{
		{
			rating:      RatingCritical,
			description: "Enforcement system failure",
			when: func(s signals) bool {
				return s.violationRate > th.ViolationsCritical || s.bypasses > th.MaxBypasses
			},
		},
		{
			rating:      RatingConcerning,
			description: "Enforcement needs attention",
			when: func(s signals) bool {
				return (s.violationRate >= th.ViolationsWarning && s.violationRate <= th.ViolationsCritical) ||
					s.blockedTrend == TrendIncreasing ||
					s.bypasses > 0
			},
		},
		{
			rating:      RatingExcellent,
			description: "Enforcement is working optimally",
			when: func(s signals) bool {
				return s.violationRate < th.ViolationsExcellent &&
					s.blockedTrend == TrendDecreasing &&
					s.bypasses == 0
			},
		},
		{
			rating:      RatingGood,
			description: "Enforcement is working with minor issues",
			when: func(s signals) bool {
				return s.violationRate < th.ViolationsWarning &&
					(s.blockedTrend == TrendStable || s.blockedTrend == TrendDecreasing) &&
					s.bypasses == 0
			},
		},
	}
}

// Evaluate aggregates both windows from the store and computes the report
func (e *Engine) Evaluate(ctx context.Context, s *store.Store, days int) (*Report, error) {
	ctx, span := telemetry.Tracer.Start(ctx, "score.evaluate",
		trace.WithAttributes(attribute.Int("window.days", days)))
	defer span.End()

	current := types.LastDays(days)
	previous := current.Previous()

	currentCounts, err := aggregate.CountByType(ctx, s, current)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	previousCounts, err := aggregate.CountByType(ctx, s, previous)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	report := e.Compute(currentCounts, previousCounts, current, previous)

	span.SetAttributes(
		attribute.String("rating", string(report.Rating)),
		attribute.Float64("violation_rate", report.ViolationRate),
		attribute.Int("events.current", report.TotalCurrent),
	)
	telemetry.CountEvaluation(ctx, string(report.Rating), report.Rating.Level())
	e.logger.WithContext(ctx).Debug().
		Str("rating", string(report.Rating)).
		Float64("violation_rate", report.ViolationRate).
		Msg("effectiveness score computed")

	return report, nil
}

// Compute derives the report from already aggregated counts.
// Pure function: same counts and windows always give the same report.
func (e *Engine) Compute(current, previous map[types.EventType]int, cw, pw types.Window) *Report {
	th := e.thresholds

	violations := current[types.EventViolationDetected]
	blocked := current[types.EventImportBlocked]
	bypasses := current[types.EventCommitReviewBypassed]

	// Normalize to a 7-day week so arbitrary window sizes stay
	// comparable to the fixed thresholds
	rate := float64(violations) * 7 / float64(cw.Days())

	report := &Report{
		Violations: MetricTrend{
			Name:      "Violations",
			EventType: types.EventViolationDetected,
			Current:   violations,
			Previous:  previous[types.EventViolationDetected],
			Trend:     Classify(violations, previous[types.EventViolationDetected]),
			Threshold: fmt.Sprintf("<%.0f/week for good, <%.0f/week for excellent", th.ViolationsWarning, th.ViolationsExcellent),
		},
		ImportBlocked: MetricTrend{
			Name:      "Import Blocked",
			EventType: types.EventImportBlocked,
			Current:   blocked,
			Previous:  previous[types.EventImportBlocked],
			Trend:     Classify(blocked, previous[types.EventImportBlocked]),
			Threshold: "decreasing is good",
		},
		Bypasses: MetricTrend{
			Name:      "Bypasses",
			EventType: types.EventCommitReviewBypassed,
			Current:   bypasses,
			Previous:  previous[types.EventCommitReviewBypassed],
			Trend:     Classify(bypasses, previous[types.EventCommitReviewBypassed]),
			Threshold: "0 is required for good/excellent",
		},
		ViolationRate: rate,
		Current:       cw,
		Previous:      pw,
		TotalCurrent:  aggregate.Sum(current),
		TotalPrevious: aggregate.Sum(previous),
	}

	// A store with no activity at all cannot be scored meaningfully;
	// report good rather than failing or claiming excellence.
	if report.TotalCurrent == 0 && report.TotalPrevious == 0 {
		report.Rating = RatingGood
		report.Description = "No enforcement activity recorded"
		return report
	}

	sig := signals{
		violationRate: rate,
		blockedTrend:  report.ImportBlocked.Trend,
		bypasses:      bypasses,
	}

	for _, g := range e.guards() {
		if g.when(sig) {
			report.Rating = g.rating
			report.Description = g.description
			return report
		}
	}

	report.Rating = RatingConcerning
	report.Description = "Enforcement needs attention"
	return report
}
