// Package report renders aggregation, score, and alert results as plain
// text and Markdown. It is presentation-only: every number comes from the
// aggregate, score, and alert packages, so CLI and file output can never
// disagree on business logic.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/yairfalse/fenceline/alert"
	"github.com/yairfalse/fenceline/score"
	"github.com/yairfalse/fenceline/types"
)

var ratingSymbols = map[score.Rating]string{
	score.RatingExcellent:  "[+]",
	score.RatingGood:       "[~]",
	score.RatingConcerning: "[!]",
	score.RatingCritical:   "[X]",
}

var trendArrows = map[score.Trend]string{
	score.TrendIncreasing: "^",
	score.TrendDecreasing: "v",
	score.TrendStable:     "-",
}

// Stats renders per-type counts as a compact table
func Stats(days int, counts map[types.EventType]int, total int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Enforcement Stats (last %d days)\n", days)
	b.WriteString(strings.Repeat("=", 45) + "\n\n")

	if len(counts) == 0 {
		b.WriteString("No events recorded\n")
		return b.String()
	}

	names := sortedTypes(counts)
	width := 0
	for _, name := range names {
		if len(name) > width {
			width = len(name)
		}
	}

	fmt.Fprintf(&b, "%-*s  %8s\n", width, "Event Type", "Count")
	b.WriteString(strings.Repeat("-", width+10) + "\n")
	for _, name := range names {
		fmt.Fprintf(&b, "%-*s  %8d\n", width, name, counts[types.EventType(name)])
	}
	b.WriteString(strings.Repeat("-", width+10) + "\n")
	fmt.Fprintf(&b, "%-*s  %8d\n", width, "TOTAL", total)

	return b.String()
}

// Events renders raw events most recent first, with details inline
func Events(days int, typeFilter, sourceFilter string, events []types.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Recent Events (last %d day(s))\n", days)
	b.WriteString(strings.Repeat("=", 80) + "\n\n")

	if typeFilter != "" || sourceFilter != "" {
		var parts []string
		if typeFilter != "" {
			parts = append(parts, "type="+typeFilter)
		}
		if sourceFilter != "" {
			parts = append(parts, "source="+sourceFilter)
		}
		fmt.Fprintf(&b, "Filters: %s\n\n", strings.Join(parts, ", "))
	}

	if len(events) == 0 {
		b.WriteString("No events found\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%-26s  %-25s  %-20s\n", "Timestamp", "Type", "Source")
	b.WriteString(strings.Repeat("-", 80) + "\n")

	for _, event := range events {
		fmt.Fprintf(&b, "%-26s  %-25s  %-20s\n",
			clip(event.Timestamp.Format("2006-01-02T15:04:05.000000"), 26),
			clip(string(event.Type), 25),
			clip(event.Source, 20),
		)
		if len(event.Details) > 0 {
			detail := compactJSON(event.Details)
			if len(detail) > 70 {
				detail = detail[:67] + "..."
			}
			fmt.Fprintf(&b, "  -> %s\n", detail)
		}
	}

	fmt.Fprintf(&b, "\nShowing %d event(s)\n", len(events))
	return b.String()
}

// Score renders the full trend/score breakdown
func Score(r *score.Report) string {
	var b strings.Builder
	b.WriteString("Enforcement Effectiveness Score\n")
	b.WriteString(strings.Repeat("=", 55) + "\n\n")

	symbol := ratingSymbols[r.Rating]
	if symbol == "" {
		symbol = "[?]"
	}
	fmt.Fprintf(&b, "  %s Overall Rating: %s\n", symbol, strings.ToUpper(string(r.Rating)))
	fmt.Fprintf(&b, "      %s\n\n", r.Description)

	b.WriteString("Score Breakdown\n")
	b.WriteString(strings.Repeat("-", 55) + "\n\n")

	for _, m := range r.Metrics() {
		arrow := trendArrows[m.Trend]
		if arrow == "" {
			arrow = "?"
		}
		fmt.Fprintf(&b, "  %s:\n", m.Name)
		fmt.Fprintf(&b, "    Current period:  %4d  [%s] %s\n", m.Current, arrow, m.Trend)
		fmt.Fprintf(&b, "    Previous period: %4d\n", m.Previous)
		fmt.Fprintf(&b, "    Threshold:       %s\n\n", m.Threshold)
	}

	b.WriteString(strings.Repeat("-", 55) + "\n")
	fmt.Fprintf(&b, "Period: %s to %s vs prior %d days\n",
		r.Current.Start.Format("2006-01-02"),
		r.Current.End.Format("2006-01-02"),
		r.Current.Days(),
	)
	fmt.Fprintf(&b, "Total events: %d (current) / %d (previous)\n", r.TotalCurrent, r.TotalPrevious)

	return b.String()
}

// Alerts renders alert lines for the terminal; empty when all is well
func Alerts(result alert.Result) string {
	if len(result.Alerts) == 0 {
		return ""
	}

	var lines []string
	for _, a := range result.Alerts {
		lines = append(lines, fmt.Sprintf("[%s] %s", a.Level, a.Message))
	}
	return strings.Join(lines, "\n") + "\n"
}

// CleanupSummary holds the outcome of a cleanup run for rendering
type CleanupSummary struct {
	DryRun        bool `json:"dry_run"`
	RetentionDays int  `json:"retention_days"`
	Removed       int  `json:"removed"`
	WouldRemove   int  `json:"would_remove,omitempty"`
	WouldKeep     int  `json:"would_keep,omitempty"`
}

// Cleanup renders a cleanup result
func Cleanup(c CleanupSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cleanup (retention: %d days)\n", c.RetentionDays)
	b.WriteString(strings.Repeat("=", 45) + "\n\n")

	if c.DryRun {
		b.WriteString("[DRY RUN - no changes made]\n\n")
		fmt.Fprintf(&b, "Events to remove: %d\n", c.WouldRemove)
		fmt.Fprintf(&b, "Events to keep:   %d\n", c.WouldKeep)
	} else {
		fmt.Fprintf(&b, "Events removed: %d\n", c.Removed)
	}

	return b.String()
}

func sortedTypes(counts map[types.EventType]int) []string {
	names := make([]string, 0, len(counts))
	for t := range counts {
		names = append(names, string(t))
	}
	sort.Strings(names)
	return names
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func compactJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
