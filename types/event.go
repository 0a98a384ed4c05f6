package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType identifies which enforcement mechanism fired
type EventType string

const (
	// Import guard events
	EventImportBlocked EventType = "import_blocked"
	EventImportAllowed EventType = "import_allowed"

	// Violation watcher events
	EventViolationDetected EventType = "violation_detected"

	// Pre-commit hook events
	EventCommitReviewRequired EventType = "commit_review_required"
	EventCommitReviewBypassed EventType = "commit_review_bypassed"
	EventCommitGitignoreOnly  EventType = "commit_gitignore_only"

	// Bypass events from git hooks
	EventBypassReview       EventType = "bypass_review"
	EventBypassAgentTrailer EventType = "bypass_agent_trailer"

	// Post-commit metadata
	EventCommitCompleted EventType = "commit_completed"
)

// KnownEventTypes lists every event type the enforcement points emit.
// Scans still count unknown types generically so old binaries can read
// logs written by newer enforcement points.
var KnownEventTypes = []EventType{
	EventImportBlocked,
	EventImportAllowed,
	EventViolationDetected,
	EventCommitReviewRequired,
	EventCommitReviewBypassed,
	EventCommitGitignoreOnly,
	EventBypassReview,
	EventBypassAgentTrailer,
	EventCommitCompleted,
}

// ParseEventType validates a user-supplied event type string
func ParseEventType(s string) (EventType, error) {
	for _, t := range KnownEventTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown event type %q", s)
}

// Event records that an enforcement mechanism fired.
// Events are write-once: appended to the log and never edited.
type Event struct {
	Timestamp time.Time       `json:"timestamp"`
	Type      EventType       `json:"event_type"`
	Source    string          `json:"source"`
	Details   json.RawMessage `json:"details,omitempty"`
}

// NewEvent creates an event stamped with the current UTC time.
// Details must be JSON-serializable; shape varies by event type.
func NewEvent(eventType EventType, source string, details any) (Event, error) {
	event := Event{
		Timestamp: time.Now().UTC(),
		Type:      eventType,
		Source:    source,
	}

	if details != nil {
		data, err := json.Marshal(details)
		if err != nil {
			return Event{}, fmt.Errorf("marshal event details: %w", err)
		}
		event.Details = data
	}

	return event, nil
}
