package core

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTimestampRendersUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	ts := NewTimestamp(time.Date(2024, 3, 1, 14, 30, 0, 0, loc))

	if got, want := ts.String(), "2024-03-01T12:30:00Z"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	data, err := json.Marshal(ts)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got, want := string(data), `"2024-03-01T14:30:00+02:00"`; got != want {
		t.Errorf("MarshalJSON = %s, want %s", got, want)
	}
}
