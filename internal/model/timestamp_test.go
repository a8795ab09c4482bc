package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTimestampJSON(t *testing.T) {
	ts := NewTimestamp(time.Date(2024, 3, 1, 9, 30, 0, 123e6, time.FixedZone("CET", 3600)))

	data, err := json.Marshal(ts)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if got, want := string(data), `"2024-03-01T08:30:00.123Z"`; got != want {
		t.Errorf("Marshal = %s, want %s", got, want)
	}

	var back Timestamp
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !back.Equal(ts.Time) {
		t.Errorf("round trip = %v, want %v", back, ts)
	}
}

func TestTimestampInvalid(t *testing.T) {
	data, err := json.Marshal(Timestamp{})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != "null" {
		t.Errorf("zero timestamp = %s, want null", data)
	}

	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"null", `null`, false},
		{"garbage", `"next tuesday"`, false},
		{"stored layout", `"2024-03-01T09:30:00.000Z"`, true},
		{"rfc3339", `"2024-03-01T09:30:00+01:00"`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			if err := json.Unmarshal([]byte(tt.input), &ts); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if ts.Valid() != tt.valid {
				t.Errorf("Valid() = %v, want %v", ts.Valid(), tt.valid)
			}
		})
	}
}

func TestIncidentIsOverdue(t *testing.T) {
	now := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	due := NewTimestamp(now.Add(-time.Hour))

	tests := []struct {
		status IncidentStatus
		due    Timestamp
		want   bool
	}{
		{StatusWaiting, due, true},
		{StatusFixing, due, true},
		{StatusDone, due, false},
		{StatusArchived, due, false},
		{StatusWaiting, NewTimestamp(now.Add(time.Hour)), false},
		{StatusWaiting, Timestamp{}, false},
	}
	for _, tt := range tests {
		inc := Incident{Status: tt.status, DueDate: tt.due}
		if got := inc.IsOverdue(now); got != tt.want {
			t.Errorf("IsOverdue(%s, %v) = %v, want %v", tt.status, tt.due, got, tt.want)
		}
	}
}
