package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/yairfalse/fenceline/aggregate"
	"github.com/yairfalse/fenceline/alert"
	"github.com/yairfalse/fenceline/config"
	"github.com/yairfalse/fenceline/history"
	"github.com/yairfalse/fenceline/report"
	"github.com/yairfalse/fenceline/score"
	"github.com/yairfalse/fenceline/store"
	"github.com/yairfalse/fenceline/types"
)

func runRecord(ctx context.Context, cfg *config.Config, req Request) error {
	eventType, err := types.ParseEventType(req.Type)
	if err != nil {
		return fmt.Errorf("%w (valid types: %s)", err, joinEventTypes())
	}
	if len(req.Details) > 0 && !json.Valid(req.Details) {
		return fmt.Errorf("details must be valid JSON")
	}

	s, err := openStore()
	if err != nil {
		return err
	}

	event := types.Event{
		Timestamp: time.Now().UTC(),
		Type:      eventType,
		Source:    req.Source,
		Details:   req.Details,
	}
	if err := s.Append(ctx, event); err != nil {
		return err
	}

	if req.AsJSON {
		printJSON(struct {
			Action string      `json:"action"`
			Event  types.Event `json:"event"`
		}{"record", event})
		return nil
	}

	fmt.Printf("Recorded %s from %s\n", event.Type, event.Source)
	return nil
}

func runStats(ctx context.Context, cfg *config.Config, req Request) error {
	s, err := openStore()
	if err != nil {
		return err
	}

	window := types.LastDays(req.Days)
	counts, err := aggregate.CountByType(ctx, s, window)
	if err != nil {
		return err
	}
	total := aggregate.Sum(counts)

	if req.AsJSON {
		printJSON(struct {
			Action      string                  `json:"action"`
			Days        int                     `json:"days"`
			TotalEvents int                     `json:"total_events"`
			ByType      map[types.EventType]int `json:"by_type"`
			EventTypes  []types.EventType       `json:"event_types"`
		}{"stats", req.Days, total, counts, types.KnownEventTypes})
		return nil
	}

	fmt.Print(report.Stats(req.Days, counts, total))
	return nil
}

func runEvents(ctx context.Context, cfg *config.Config, req Request) error {
	if req.Type != "" {
		if _, err := types.ParseEventType(req.Type); err != nil {
			return fmt.Errorf("%w (valid types: %s)", err, joinEventTypes())
		}
	}

	s, err := openStore()
	if err != nil {
		return err
	}

	window := types.LastDays(req.Days)
	events, err := s.List(ctx, store.Filter{
		Since:  window.Start,
		Until:  window.End,
		Type:   types.EventType(req.Type),
		Source: req.Source,
	})
	if err != nil {
		return err
	}

	// Most recent first, then cap at the limit
	sort.Slice(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})
	if len(events) > req.Limit {
		events = events[:req.Limit]
	}

	if req.AsJSON {
		printJSON(struct {
			Action string        `json:"action"`
			Days   int           `json:"days"`
			Type   string        `json:"event_type,omitempty"`
			Source string        `json:"source,omitempty"`
			Limit  int           `json:"limit"`
			Count  int           `json:"count"`
			Events []types.Event `json:"events"`
		}{"events", req.Days, req.Type, req.Source, req.Limit, len(events), events})
		return nil
	}

	fmt.Print(report.Events(req.Days, req.Type, req.Source, events))
	return nil
}

func runCleanup(ctx context.Context, cfg *config.Config, req Request) error {
	s, err := openStore()
	if err != nil {
		return err
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -req.Days)
	summary := report.CleanupSummary{DryRun: req.DryRun, RetentionDays: req.Days}

	if req.DryRun {
		remove, keep, err := s.PlanPrune(ctx, cutoff)
		if err != nil {
			return err
		}
		summary.WouldRemove = remove
		summary.WouldKeep = keep
	} else {
		removed, err := s.Prune(ctx, cutoff)
		if err != nil {
			return err
		}
		summary.Removed = removed
	}

	if req.AsJSON {
		printJSON(struct {
			Action string `json:"action"`
			report.CleanupSummary
		}{"cleanup", summary})
		return nil
	}

	fmt.Print(report.Cleanup(summary))
	return nil
}

func runScore(ctx context.Context, cfg *config.Config, req Request) error {
	s, err := openStore()
	if err != nil {
		return err
	}

	scoreReport, err := score.NewEngine(cfg.Thresholds).Evaluate(ctx, s, req.Days)
	if err != nil {
		return err
	}

	if req.AsJSON {
		printJSON(struct {
			Action string `json:"action"`
			*score.Report
		}{"score", scoreReport})
		return nil
	}

	fmt.Print(report.Score(scoreReport))
	return nil
}

func runAlert(ctx context.Context, cfg *config.Config, req Request) error {
	s, err := openStore()
	if err != nil {
		return err
	}

	scoreReport, err := score.NewEngine(cfg.Thresholds).Evaluate(ctx, s, req.Days)
	if err != nil {
		return err
	}
	result := alert.Check(scoreReport, cfg.Thresholds)

	if result.HasCritical {
		exitCode = 1
	}

	// Quiet mode is for schedulers: no output at all, the exit code
	// alone distinguishes critical from healthy
	if req.Quiet {
		return nil
	}

	if req.AsJSON {
		printJSON(struct {
			Action string `json:"action"`
			alert.Result
		}{"alert", result})
		return nil
	}

	fmt.Print(report.Alerts(result))
	return nil
}

func runDashboard(ctx context.Context, cfg *config.Config, req Request) error {
	s, err := openStore()
	if err != nil {
		return err
	}

	window := types.LastDays(req.Days)
	counts, err := aggregate.CountByType(ctx, s, window)
	if err != nil {
		return err
	}

	scoreReport, err := score.NewEngine(cfg.Thresholds).Evaluate(ctx, s, req.Days)
	if err != nil {
		return err
	}
	alerts := alert.Check(scoreReport, cfg.Thresholds)

	markdown := report.Dashboard(report.DashboardData{
		GeneratedAt: time.Now(),
		Days:        req.Days,
		Counts:      counts,
		Total:       aggregate.Sum(counts),
		Score:       scoreReport,
		Alerts:      alerts,
	})

	if req.Output != "" {
		if dir := filepath.Dir(req.Output); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
		}
		if err := os.WriteFile(req.Output, []byte(markdown), 0o644); err != nil {
			return fmt.Errorf("write dashboard: %w", err)
		}
	}

	if req.AsJSON {
		printJSON(struct {
			Action      string       `json:"action"`
			Markdown    string       `json:"markdown"`
			OutputFile  string       `json:"output_file,omitempty"`
			Rating      score.Rating `json:"rating"`
			HasAlerts   bool         `json:"has_alerts"`
			TotalEvents int          `json:"total_events"`
		}{"dashboard", markdown, req.Output, scoreReport.Rating, len(alerts.Alerts) > 0, scoreReport.TotalCurrent})
		return nil
	}

	if req.Output != "" {
		fmt.Fprintf(os.Stderr, "Dashboard written to: %s\n", req.Output)
		return nil
	}
	fmt.Print(markdown)
	return nil
}

func runHistory(ctx context.Context, cfg *config.Config, req Request) error {
	h, err := history.Open(cfg.Watch.HistoryDir)
	if err != nil {
		return err
	}
	defer func() { _ = h.Close() }()

	since := time.Now().UTC().AddDate(0, 0, -req.Days)
	snapshots, err := h.List(ctx, since)
	if err != nil {
		return err
	}

	if req.AsJSON {
		printJSON(struct {
			Action    string             `json:"action"`
			Days      int                `json:"days"`
			Count     int                `json:"count"`
			Snapshots []history.Snapshot `json:"snapshots"`
		}{"history", req.Days, len(snapshots), snapshots})
		return nil
	}

	fmt.Print(report.History(req.Days, snapshots))
	return nil
}

func joinEventTypes() string {
	names := make([]string, len(types.KnownEventTypes))
	for i, t := range types.KnownEventTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
