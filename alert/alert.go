// Package alert evaluates a score report against critical thresholds.
// Bypasses are independently alarm-worthy: any bypass alerts even when
// the overall rating is still good.
package alert

import (
	"fmt"

	"github.com/yairfalse/fenceline/score"
	"github.com/yairfalse/fenceline/types"
)

// Level is the alert severity
type Level string

const (
	LevelCritical Level = "CRITICAL"
	LevelWarning  Level = "WARNING"
)

// Alert is one threshold breach with the values behind it
type Alert struct {
	Level     Level           `json:"level"`
	Metric    types.EventType `json:"metric"`
	Message   string          `json:"message"`
	Value     float64         `json:"value"`
	Threshold float64         `json:"threshold"`
	Previous  int             `json:"previous,omitempty"`
}

// Result is the outcome of an alert check
type Result struct {
	Alerts      []Alert `json:"alerts"`
	HasCritical bool    `json:"has_critical"`
	HasWarnings bool    `json:"has_warnings"`
	Status      string  `json:"status"` // critical, warning, or ok
}

// Check evaluates the report. The returned alert list is empty when the
// system is healthy.
func Check(report *score.Report, thresholds score.Thresholds) Result {
	var alerts []Alert

	if bypasses := report.Bypasses.Current; bypasses > 0 {
		alerts = append(alerts, Alert{
			Level:     LevelCritical,
			Metric:    types.EventCommitReviewBypassed,
			Message:   fmt.Sprintf("Git review bypassed %d time(s) this period", bypasses),
			Value:     float64(bypasses),
			Threshold: 0,
		})
	}

	rate := report.ViolationRate
	switch {
	case rate > thresholds.ViolationsCritical:
		alerts = append(alerts, Alert{
			Level:     LevelCritical,
			Metric:    types.EventViolationDetected,
			Message:   fmt.Sprintf("Violations exceeded critical threshold: %.1f/week (threshold: %.0f)", rate, thresholds.ViolationsCritical),
			Value:     rate,
			Threshold: thresholds.ViolationsCritical,
		})
	case rate > thresholds.ViolationsWarning:
		alerts = append(alerts, Alert{
			Level:     LevelWarning,
			Metric:    types.EventViolationDetected,
			Message:   fmt.Sprintf("Violations exceeded warning threshold: %.1f/week (threshold: %.0f)", rate, thresholds.ViolationsWarning),
			Value:     rate,
			Threshold: thresholds.ViolationsWarning,
		})
	}

	if report.ImportBlocked.Trend == score.TrendIncreasing {
		alerts = append(alerts, Alert{
			Level:    LevelWarning,
			Metric:   types.EventImportBlocked,
			Message:  fmt.Sprintf("Import blocks increasing: %d -> %d this period", report.ImportBlocked.Previous, report.ImportBlocked.Current),
			Value:    float64(report.ImportBlocked.Current),
			Previous: report.ImportBlocked.Previous,
		})
	}

	result := Result{Alerts: alerts}
	for _, a := range alerts {
		switch a.Level {
		case LevelCritical:
			result.HasCritical = true
		case LevelWarning:
			result.HasWarnings = true
		}
	}

	switch {
	case result.HasCritical:
		result.Status = "critical"
	case result.HasWarnings:
		result.Status = "warning"
	default:
		result.Status = "ok"
	}

	return result
}
