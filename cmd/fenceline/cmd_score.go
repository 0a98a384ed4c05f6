package main

import (
	"github.com/spf13/cobra"
)

var (
	scoreDays int
	scoreJSON bool
)

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Compute the enforcement effectiveness score",
	Long: `Compare the current window against the window immediately before
it and rate enforcement health:

  excellent   guardrails working, violations trending down
  good        within thresholds, nothing alarming
  concerning  violations elevated or blocks rising
  critical    thresholds breached or reviews bypassed

Ratings come from an ordered rule cascade; the first matching rule
wins, so a critical signal can never be averaged away.`,
	Example: `  fenceline score              # This week vs last week
  fenceline score --days 30    # Monthly comparison
  fenceline score --json       # Structured output`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dispatch(cmd.Context(), cfg, Request{
			Action: "score",
			Days:   scoreDays,
			AsJSON: scoreJSON,
		})
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().IntVar(&scoreDays, "days", 7, "Window size in days")
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "Emit JSON instead of text")
}
