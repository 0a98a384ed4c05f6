package score

// Trend labels the direction of a metric between two adjacent windows
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// trendBandPct is the percent-change band treated as stable
const trendBandPct = 20.0

// Classify compares a current count against the previous window's count.
// A zero previous count has nothing to decrease from: the result is
// stable only when current is also zero, otherwise increasing. Beyond
// that, changes inside a +/-20% band count as stable.
func Classify(current, previous int) Trend {
	if previous == 0 {
		if current == 0 {
			return TrendStable
		}
		return TrendIncreasing
	}

	changePct := float64(current-previous) / float64(previous) * 100

	switch {
	case changePct > trendBandPct:
		return TrendIncreasing
	case changePct < -trendBandPct:
		return TrendDecreasing
	default:
		return TrendStable
	}
}
