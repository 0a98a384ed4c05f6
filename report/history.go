package report

import (
	"fmt"
	"strings"

	"github.com/yairfalse/fenceline/history"
)

// History renders recorded score snapshots oldest first
func History(days int, snapshots []history.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Score History (last %d days)\n", days)
	b.WriteString(strings.Repeat("=", 72) + "\n\n")

	if len(snapshots) == 0 {
		b.WriteString("No score snapshots recorded\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%-17s  %-14s  %9s  %6s  %8s  %7s\n",
		"Recorded", "Rating", "Rate/wk", "Viol", "Blocked", "Bypass")
	b.WriteString(strings.Repeat("-", 72) + "\n")

	for _, snap := range snapshots {
		symbol := ratingSymbols[snap.Rating]
		if symbol == "" {
			symbol = "[?]"
		}
		fmt.Fprintf(&b, "%-17s  %s %-10s  %9.1f  %6d  %8d  %7d\n",
			snap.Timestamp.Format("2006-01-02 15:04"),
			symbol, snap.Rating,
			snap.ViolationRate,
			snap.Violations,
			snap.ImportBlocked,
			snap.Bypasses,
		)
	}

	fmt.Fprintf(&b, "\n%d snapshot(s)\n", len(snapshots))
	return b.String()
}
