package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/yairfalse/fenceline/config"
)

// Request is the canonical command representation. Both the flag parser
// and the JSON action form produce this, so business logic has exactly
// one entry point per action.
type Request struct {
	Action  string          `json:"action"`
	Days    int             `json:"days,omitempty"`
	Type    string          `json:"event_type,omitempty"`
	Source  string          `json:"source,omitempty"`
	Limit   int             `json:"limit,omitempty"`
	DryRun  bool            `json:"dry_run,omitempty"`
	Quiet   bool            `json:"quiet,omitempty"`
	Output  string          `json:"output,omitempty"`
	Details json.RawMessage `json:"details,omitempty"`

	// AsJSON selects structured output; always set for the JSON form
	AsJSON bool `json:"-"`
}

var validActions = []string{"record", "stats", "events", "cleanup", "score", "alert", "dashboard", "history"}

// applyDefaults fills per-action defaults for unset fields. Cleanup
// falls back to the configured retention so a config file's
// retention_days governs unless the flag or JSON field overrides it.
func (r *Request) applyDefaults(retentionDays int) {
	if r.Days == 0 {
		switch r.Action {
		case "events", "record":
			r.Days = 1
		case "cleanup":
			if retentionDays > 0 {
				r.Days = retentionDays
			} else {
				r.Days = 30
			}
		default:
			r.Days = 7
		}
	}
	if r.Action == "events" && r.Limit == 0 {
		r.Limit = 20
	}
}

func (r *Request) validate() error {
	known := false
	for _, action := range validActions {
		if r.Action == action {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown action %q (use: %s)", r.Action, strings.Join(validActions, ", "))
	}

	if r.Action == "record" {
		if r.Type == "" {
			return fmt.Errorf("record requires an event type")
		}
		if r.Source == "" {
			return fmt.Errorf("record requires a source")
		}
		return nil
	}

	if r.Days < 1 {
		return fmt.Errorf("days must be at least 1, got %d", r.Days)
	}
	return nil
}

// dispatch routes a validated request to its action runner
func dispatch(ctx context.Context, cfg *config.Config, req Request) error {
	req.applyDefaults(cfg.RetentionDays)
	if err := req.validate(); err != nil {
		return err
	}

	switch req.Action {
	case "record":
		return runRecord(ctx, cfg, req)
	case "stats":
		return runStats(ctx, cfg, req)
	case "events":
		return runEvents(ctx, cfg, req)
	case "cleanup":
		return runCleanup(ctx, cfg, req)
	case "score":
		return runScore(ctx, cfg, req)
	case "alert":
		return runAlert(ctx, cfg, req)
	case "dashboard":
		return runDashboard(ctx, cfg, req)
	case "history":
		return runHistory(ctx, cfg, req)
	}
	return fmt.Errorf("unknown action %q", req.Action)
}

// ExecuteJSON handles the JSON action object invocation form
func ExecuteJSON(raw string) {
	var req Request
	decoder := json.NewDecoder(strings.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		printJSON(map[string]string{"error": "invalid JSON action", "details": err.Error()})
		os.Exit(1)
	}
	req.AsJSON = true

	if err := initRuntime(); err != nil {
		printJSON(map[string]string{"error": err.Error()})
		os.Exit(1)
	}

	if err := dispatch(context.Background(), cfg, req); err != nil {
		printJSON(map[string]string{"error": err.Error()})
		os.Exit(1)
	}
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

// printJSON writes v to stdout as indented JSON
func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: encode result: %v\n", err)
		return
	}
	fmt.Println(string(data))
}
