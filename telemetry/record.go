package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// CountAppend records one appended event
func CountAppend(ctx context.Context, eventType string) {
	if EventsAppended == nil {
		return
	}
	EventsAppended.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_type", eventType),
	))
}

// CountMalformed records one corrupt line skipped during a scan
func CountMalformed(ctx context.Context) {
	if MalformedRecords == nil {
		return
	}
	MalformedRecords.Add(ctx, 1)
}

// CountPrune records a completed prune and how many events it removed
func CountPrune(ctx context.Context, removed int) {
	if PruneRuns == nil {
		return
	}
	PruneRuns.Add(ctx, 1)
	EventsPruned.Add(ctx, int64(removed))
}

// CountEvaluation records a score evaluation and the resulting rating
func CountEvaluation(ctx context.Context, rating string, level int64) {
	if Evaluations == nil {
		return
	}
	Evaluations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("rating", rating),
	))
	RatingLevel.Record(ctx, level, metric.WithAttributes(
		attribute.String("rating", rating),
	))
}
