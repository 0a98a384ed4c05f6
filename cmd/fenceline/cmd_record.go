package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

var (
	recordType    string
	recordSource  string
	recordDetails string
	recordJSON    bool
)

// recordCmd represents the record command
var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Append an enforcement event to the log",
	Long: `Record that an enforcement mechanism fired. Intended for shell
hooks (pre-commit, import guards) that run as separate processes;
concurrent appenders are safe, each event is one atomic line.

Details are free-form JSON whose shape depends on the event type.`,
	Example: `  fenceline record --type import_blocked --source import_guard
  fenceline record --type violation_detected --source watcher \
      --details '{"rule": "no-direct-db", "file": "api/handler.go"}'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var details json.RawMessage
		if recordDetails != "" {
			details = json.RawMessage(recordDetails)
		}
		return dispatch(cmd.Context(), cfg, Request{
			Action:  "record",
			Type:    recordType,
			Source:  recordSource,
			Details: details,
			AsJSON:  recordJSON,
		})
	},
}

func init() {
	rootCmd.AddCommand(recordCmd)

	recordCmd.Flags().StringVar(&recordType, "type", "", "Event type to record (required)")
	recordCmd.Flags().StringVar(&recordSource, "source", "", "Component that fired (required)")
	recordCmd.Flags().StringVar(&recordDetails, "details", "", "Event details as a JSON object")
	recordCmd.Flags().BoolVar(&recordJSON, "json", false, "Emit the recorded event as JSON")
	_ = recordCmd.MarkFlagRequired("type")
	_ = recordCmd.MarkFlagRequired("source")
}
