package main

import (
	"github.com/spf13/cobra"
)

var (
	alertDays  int
	alertQuiet bool
	alertJSON  bool
)

// alertCmd represents the alert command
var alertCmd = &cobra.Command{
	Use:   "alert",
	Short: "Check alert conditions against thresholds",
	Long: `Evaluate the current window and raise alerts when enforcement
health degrades. Any bypassed review is always CRITICAL.

The process exits 1 when a critical alert fires, so the command can
gate CI jobs or cron-driven notifications. With --quiet nothing is
printed at all and the exit code is the only signal.`,
	Example: `  fenceline alert                    # Print alerts, exit 1 if critical
  fenceline alert --quiet            # Exit code only, for schedulers
  fenceline alert --days 30 --json   # Structured output`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dispatch(cmd.Context(), cfg, Request{
			Action: "alert",
			Days:   alertDays,
			Quiet:  alertQuiet,
			AsJSON: alertJSON,
		})
	},
}

func init() {
	rootCmd.AddCommand(alertCmd)

	alertCmd.Flags().IntVar(&alertDays, "days", 7, "Window size in days")
	alertCmd.Flags().BoolVar(&alertQuiet, "quiet", false, "Suppress all output; signal via exit code")
	alertCmd.Flags().BoolVar(&alertJSON, "json", false, "Emit JSON instead of text")
}
