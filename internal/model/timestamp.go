package model

import (
	"bytes"
	"encoding/json"
	"regexp"
	"time"
)

// TimestampLayout is the wire format used for every persisted date:
// UTC with millisecond precision (e.g. 2024-03-01T09:30:00.000Z).
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// timestampPattern recognizes strings that should be revived into dates on load.
var timestampPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}.\d{3}Z$`)

// Timestamp is a time.Time that serializes in the stored collection format.
// The zero value stands for an absent or invalid date and encodes as null.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t, normalized to UTC.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

// Valid reports whether the timestamp holds a real date.
func (ts Timestamp) Valid() bool {
	return !ts.IsZero()
}

// String formats the timestamp, or returns "" for an invalid date.
func (ts Timestamp) String() string {
	if !ts.Valid() {
		return ""
	}
	return ts.UTC().Format(TimestampLayout)
}

// MarshalJSON implements json.Marshaler.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if !ts.Valid() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.UTC().Format(TimestampLayout))
}

// UnmarshalJSON implements json.Unmarshaler. Strings matching the stored
// layout are revived directly; RFC 3339 strings are accepted as a fallback.
// Anything else decodes to an invalid (zero) timestamp rather than failing.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*ts = Timestamp{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*ts = ParseTimestamp(s)
	return nil
}

// ParseTimestamp revives a stored date string. Unrecognized input yields the
// zero Timestamp.
func ParseTimestamp(s string) Timestamp {
	if timestampPattern.MatchString(s) {
		if t, err := time.Parse(TimestampLayout, s); err == nil {
			return NewTimestamp(t)
		}
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return NewTimestamp(t)
	}
	return Timestamp{}
}
