package main

import (
	"github.com/spf13/cobra"
)

var (
	dashboardDays   int
	dashboardOutput string
	dashboardJSON   bool
)

// dashboardCmd represents the dashboard command
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Render a Markdown effectiveness dashboard",
	Long: `Assemble the score, trend table, active alerts, and event counts
into a single Markdown document.

Without --output the document goes to stdout so it can be piped;
with --output it is written to the given file (parent directories
are created) and a confirmation goes to stderr.`,
	Example: `  fenceline dashboard                          # Markdown on stdout
  fenceline dashboard --output docs/health.md  # Write to file
  fenceline dashboard --days 30                # Monthly view`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dispatch(cmd.Context(), cfg, Request{
			Action: "dashboard",
			Days:   dashboardDays,
			Output: dashboardOutput,
			AsJSON: dashboardJSON,
		})
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)

	dashboardCmd.Flags().IntVar(&dashboardDays, "days", 7, "Window size in days")
	dashboardCmd.Flags().StringVarP(&dashboardOutput, "output", "o", "", "Write the dashboard to this file")
	dashboardCmd.Flags().BoolVar(&dashboardJSON, "json", false, "Emit JSON instead of Markdown")
}
