package main

import (
	"github.com/spf13/cobra"
)

var (
	statsDays int
	statsJSON bool
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show enforcement event counts by type",
	Long: `Count enforcement events per type over a recent window.

Every event in the log that falls inside the window is counted,
including types this build does not know about, so totals stay
honest across version upgrades.`,
	Example: `  fenceline stats              # Last 7 days
  fenceline stats --days 30    # Last 30 days
  fenceline stats --json       # Structured output`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dispatch(cmd.Context(), cfg, Request{
			Action: "stats",
			Days:   statsDays,
			AsJSON: statsJSON,
		})
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().IntVar(&statsDays, "days", 7, "Window size in days")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Emit JSON instead of text")
}
