package types

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseEventType(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    EventType
		wantErr bool
	}{
		{
			name:  "import blocked",
			input: "import_blocked",
			want:  EventImportBlocked,
		},
		{
			name:  "commit review bypassed",
			input: "commit_review_bypassed",
			want:  EventCommitReviewBypassed,
		},
		{
			name:    "unknown type",
			input:   "disk_erased",
			wantErr: true,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEventType(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseEventType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseEventType(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewEvent(t *testing.T) {
	before := time.Now().UTC()

	event, err := NewEvent(EventImportBlocked, "import-guard", map[string]string{
		"module": "requests",
		"reason": "not in allowlist",
	})
	if err != nil {
		t.Fatalf("NewEvent failed: %v", err)
	}

	if event.Type != EventImportBlocked {
		t.Errorf("Type = %v, want %v", event.Type, EventImportBlocked)
	}
	if event.Source != "import-guard" {
		t.Errorf("Source = %v, want import-guard", event.Source)
	}
	if event.Timestamp.Before(before) {
		t.Errorf("Timestamp %v predates event creation", event.Timestamp)
	}
	if event.Timestamp.Location() != time.UTC {
		t.Errorf("Timestamp not in UTC: %v", event.Timestamp.Location())
	}

	var details map[string]string
	if err := json.Unmarshal(event.Details, &details); err != nil {
		t.Fatalf("Details not valid JSON: %v", err)
	}
	if details["module"] != "requests" {
		t.Errorf("details module = %v, want requests", details["module"])
	}
}

func TestNewEvent_NoDetails(t *testing.T) {
	event, err := NewEvent(EventCommitCompleted, "post-commit", nil)
	if err != nil {
		t.Fatalf("NewEvent failed: %v", err)
	}
	if event.Details != nil {
		t.Errorf("Details = %s, want nil", event.Details)
	}
}

func TestNewEvent_UnserializableDetails(t *testing.T) {
	_, err := NewEvent(EventImportBlocked, "import-guard", make(chan int))
	if err == nil {
		t.Fatal("expected error for unserializable details")
	}
}

func TestEvent_JSONRoundTrip(t *testing.T) {
	event, err := NewEvent(EventCommitCompleted, "post-commit", map[string]any{
		"commit_sha":    "abc123",
		"files_changed": 3,
	})
	if err != nil {
		t.Fatalf("NewEvent failed: %v", err)
	}

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var got Event
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if got.Type != event.Type {
		t.Errorf("Type = %v, want %v", got.Type, event.Type)
	}
	if !got.Timestamp.Equal(event.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, event.Timestamp)
	}
}
