package main

import (
	"github.com/spf13/cobra"
)

var (
	historyDays int
	historyJSON bool
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded score snapshots",
	Long: `List score snapshots recorded by watch mode, oldest first.

Each watch evaluation stores its rating and metric values, so this
command shows how enforcement health moved over time rather than a
single point-in-time score.`,
	Example: `  fenceline history              # Last 7 days of snapshots
  fenceline history --days 90    # Quarterly view
  fenceline history --json       # Structured output`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dispatch(cmd.Context(), cfg, Request{
			Action: "history",
			Days:   historyDays,
			AsJSON: historyJSON,
		})
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyDays, "days", 7, "Window size in days")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Emit JSON instead of text")
}
