package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestDefaults(t *testing.T) {
	tests := []struct {
		action    string
		wantDays  int
		wantLimit int
	}{
		{"stats", 7, 0},
		{"events", 1, 20},
		{"cleanup", 30, 0},
		{"score", 7, 0},
		{"alert", 7, 0},
		{"dashboard", 7, 0},
		{"history", 7, 0},
	}

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			req := Request{Action: tt.action}
			req.applyDefaults(0)
			assert.Equal(t, tt.wantDays, req.Days)
			assert.Equal(t, tt.wantLimit, req.Limit)
		})
	}
}

func TestRequestDefaultsKeepExplicitValues(t *testing.T) {
	req := Request{Action: "events", Days: 14, Limit: 5}
	req.applyDefaults(0)
	assert.Equal(t, 14, req.Days)
	assert.Equal(t, 5, req.Limit)
}

// Cleanup without an explicit window must honor the configured
// retention, not the compiled-in fallback.
func TestCleanupDefaultsToConfiguredRetention(t *testing.T) {
	req := Request{Action: "cleanup"}
	req.applyDefaults(60)
	assert.Equal(t, 60, req.Days)

	req = Request{Action: "cleanup", Days: 7}
	req.applyDefaults(60)
	assert.Equal(t, 7, req.Days, "explicit days must override configured retention")

	// Retention only governs cleanup, not the read commands
	req = Request{Action: "stats"}
	req.applyDefaults(60)
	assert.Equal(t, 7, req.Days)
}

func TestRequestValidate(t *testing.T) {
	req := Request{Action: "stats", Days: 7}
	assert.NoError(t, req.validate())

	req = Request{Action: "demolish", Days: 7}
	err := req.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown action")
	assert.Contains(t, err.Error(), "stats")

	req = Request{Action: "score", Days: -3}
	err = req.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "days")
}

func TestRequestValidateRecord(t *testing.T) {
	req := Request{Action: "record", Type: "import_blocked", Source: "import_guard"}
	assert.NoError(t, req.validate())

	req = Request{Action: "record", Source: "import_guard"}
	err := req.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "event type")

	req = Request{Action: "record", Type: "import_blocked"}
	err = req.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source")
}

func TestRequestJSONForm(t *testing.T) {
	raw := `{"action": "events", "days": 3, "event_type": "violation_detected", "source": "import_guard", "limit": 10}`

	var req Request
	decoder := json.NewDecoder(strings.NewReader(raw))
	decoder.DisallowUnknownFields()
	require.NoError(t, decoder.Decode(&req))

	assert.Equal(t, "events", req.Action)
	assert.Equal(t, 3, req.Days)
	assert.Equal(t, "violation_detected", req.Type)
	assert.Equal(t, "import_guard", req.Source)
	assert.Equal(t, 10, req.Limit)
}

func TestRequestJSONFormRejectsUnknownFields(t *testing.T) {
	raw := `{"action": "stats", "workers": 4}`

	var req Request
	decoder := json.NewDecoder(strings.NewReader(raw))
	decoder.DisallowUnknownFields()
	err := decoder.Decode(&req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workers")
}

// The flag form and the JSON form should yield the same Request so
// both surfaces run identical logic.
func TestFlagAndJSONFormsAgree(t *testing.T) {
	fromFlags := Request{
		Action: "alert",
		Days:   30,
		Quiet:  true,
	}

	var fromJSON Request
	require.NoError(t, json.Unmarshal(
		[]byte(`{"action": "alert", "days": 30, "quiet": true}`), &fromJSON))

	fromFlags.applyDefaults(30)
	fromJSON.applyDefaults(30)
	assert.Equal(t, fromFlags, fromJSON)
}
