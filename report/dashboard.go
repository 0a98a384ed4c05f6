package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/yairfalse/fenceline/alert"
	"github.com/yairfalse/fenceline/score"
	"github.com/yairfalse/fenceline/types"
)

var ratingEmoji = map[score.Rating]string{
	score.RatingExcellent:  "✅",
	score.RatingGood:       "\U0001F7E2",
	score.RatingConcerning: "⚠️",
	score.RatingCritical:   "\U0001F534",
}

var trendEmoji = map[score.Trend]string{
	score.TrendIncreasing: "⬆️",
	score.TrendDecreasing: "⬇️",
	score.TrendStable:     "➡️",
}

// DashboardData bundles everything the Markdown dashboard presents
type DashboardData struct {
	GeneratedAt time.Time
	Days        int
	Counts      map[types.EventType]int
	Total       int
	Score       *score.Report
	Alerts      alert.Result
}

// Dashboard renders the Markdown dashboard combining stats, score
// breakdown, and alert status
func Dashboard(d DashboardData) string {
	var b strings.Builder

	b.WriteString("# Enforcement Telemetry Dashboard\n\n")
	fmt.Fprintf(&b, "**Generated:** %s\n\n", d.GeneratedAt.Format("2006-01-02 15:04:05"))

	writeScoreSection(&b, d.Score)
	writeAlertSection(&b, d.Alerts)
	writeCountsSection(&b, d.Days, d.Counts, d.Total)

	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "*Period: last %d days compared to the %d days before*\n",
		d.Score.Current.Days(), d.Score.Previous.Days())

	return b.String()
}

func writeScoreSection(b *strings.Builder, r *score.Report) {
	emoji := ratingEmoji[r.Rating]
	if emoji == "" {
		emoji = "❓"
	}

	b.WriteString("## Effectiveness Score\n\n")
	fmt.Fprintf(b, "%s **Rating:** %s\n\n", emoji, strings.ToUpper(string(r.Rating)))
	fmt.Fprintf(b, "> %s\n\n", r.Description)

	b.WriteString("### Trend Analysis\n\n")
	b.WriteString("| Metric | Current | Previous | Trend |\n")
	b.WriteString("|--------|---------|----------|-------|\n")
	for _, m := range r.Metrics() {
		fmt.Fprintf(b, "| %s | %d | %d | %s %s |\n",
			m.Name, m.Current, m.Previous, trendEmoji[m.Trend], m.Trend)
	}
	b.WriteString("\n")
}

func writeAlertSection(b *strings.Builder, result alert.Result) {
	b.WriteString("## Active Alerts\n\n")

	if len(result.Alerts) == 0 {
		b.WriteString("✅ No active alerts\n\n")
		return
	}

	for _, a := range result.Alerts {
		emoji := "\U0001F7E1"
		if a.Level == alert.LevelCritical {
			emoji = "\U0001F534"
		}
		fmt.Fprintf(b, "- %s **%s:** %s\n", emoji, a.Level, a.Message)
	}
	b.WriteString("\n")
}

func writeCountsSection(b *strings.Builder, days int, counts map[types.EventType]int, total int) {
	fmt.Fprintf(b, "## Event Counts (Last %d Days)\n\n", days)

	if len(counts) == 0 {
		b.WriteString("*No events recorded in this period.*\n\n")
		return
	}

	b.WriteString("| Event Type | Count |\n")
	b.WriteString("|------------|-------|\n")
	for _, name := range sortedTypes(counts) {
		fmt.Fprintf(b, "| %s | %d |\n", name, counts[types.EventType(name)])
	}
	fmt.Fprintf(b, "\n**Total Events:** %d\n\n", total)
}
