package telemetry

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Metric instruments shared by the store, scanner, and watch loop.
// Nil until InitOTEL runs; instrumented code must go through the
// record helpers below, which tolerate an uninitialized state so the
// append hot path never depends on telemetry setup.
var (
	EventsAppended   metric.Int64Counter
	MalformedRecords metric.Int64Counter
	PruneRuns        metric.Int64Counter
	EventsPruned     metric.Int64Counter
	Evaluations      metric.Int64Counter
	RatingLevel      metric.Int64Gauge
)

// initMetrics creates all instruments on the global meter
func initMetrics() error {
	meter := otel.Meter("github.com/yairfalse/fenceline")

	var err error

	EventsAppended, err = meter.Int64Counter(
		"fenceline.events.appended",
		metric.WithDescription("Enforcement events appended to the store"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return err
	}

	MalformedRecords, err = meter.Int64Counter(
		"fenceline.scan.malformed_records",
		metric.WithDescription("Corrupt log lines skipped during scans"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return err
	}

	PruneRuns, err = meter.Int64Counter(
		"fenceline.store.prunes",
		metric.WithDescription("Retention prune operations completed"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return err
	}

	EventsPruned, err = meter.Int64Counter(
		"fenceline.store.events_pruned",
		metric.WithDescription("Events removed by retention pruning"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return err
	}

	Evaluations, err = meter.Int64Counter(
		"fenceline.score.evaluations",
		metric.WithDescription("Effectiveness score evaluations run"),
		metric.WithUnit("{evaluation}"),
	)
	if err != nil {
		return err
	}

	RatingLevel, err = meter.Int64Gauge(
		"fenceline.score.rating_level",
		metric.WithDescription("Current effectiveness rating (0=excellent .. 3=critical)"),
	)
	return err
}
