package main

import (
	"github.com/spf13/cobra"
)

var (
	eventsDays   int
	eventsType   string
	eventsSource string
	eventsLimit  int
	eventsJSON   bool
)

// eventsCmd represents the events command
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List recent enforcement events",
	Long: `List raw events from the log, most recent first.

Events can be narrowed by type (exact match) and by source
(case-insensitive substring). Details attached to an event are
shown inline, truncated for readability.`,
	Example: `  fenceline events                                # Last day, up to 20
  fenceline events --days 7 --limit 50            # Wider window
  fenceline events --type violation_detected      # One type only
  fenceline events --source import_guard          # Filter by source`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return dispatch(cmd.Context(), cfg, Request{
			Action: "events",
			Days:   eventsDays,
			Type:   eventsType,
			Source: eventsSource,
			Limit:  eventsLimit,
			AsJSON: eventsJSON,
		})
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)

	eventsCmd.Flags().IntVar(&eventsDays, "days", 1, "Window size in days")
	eventsCmd.Flags().StringVar(&eventsType, "type", "", "Filter by event type")
	eventsCmd.Flags().StringVar(&eventsSource, "source", "", "Filter by source substring")
	eventsCmd.Flags().IntVar(&eventsLimit, "limit", 20, "Maximum events to show")
	eventsCmd.Flags().BoolVar(&eventsJSON, "json", false, "Emit JSON instead of text")
}
