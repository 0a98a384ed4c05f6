package main

import (
	"github.com/spf13/cobra"
)

var (
	cleanupDays   int
	cleanupDryRun bool
	cleanupJSON   bool
)

// cleanupCmd represents the cleanup command
var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Prune events older than the retention window",
	Long: `Remove events older than the retention window from the log.

The rewrite is atomic: surviving lines go to a temp file which then
replaces the log, so a crash mid-prune never loses current data.
Lines that fail to parse are preserved rather than silently dropped.`,
	Example: `  fenceline cleanup                    # Drop events older than 30 days
  fenceline cleanup --days 90          # Longer retention
  fenceline cleanup --dry-run          # Count without changing anything`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dispatch(cmd.Context(), cfg, Request{
			Action: "cleanup",
			Days:   cleanupDays,
			DryRun: cleanupDryRun,
			AsJSON: cleanupJSON,
		})
	},
}

func init() {
	rootCmd.AddCommand(cleanupCmd)

	cleanupCmd.Flags().IntVar(&cleanupDays, "days", 0, "Retention window in days (default: configured retention_days, or 30)")
	cleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "Report what would be removed without removing it")
	cleanupCmd.Flags().BoolVar(&cleanupJSON, "json", false, "Emit JSON instead of text")
}
