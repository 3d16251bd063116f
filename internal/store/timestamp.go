package store

import (
	"fmt"
	"time"
)

// TimestampLayout is the naive "YYYY-MM-DD HH:MM:SS" form clients send for
// schedule and board timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

var timestampLayouts = []string{time.RFC3339, TimestampLayout, "2006-01-02T15:04:05", "2006-01-02"}

// ParseTimestamp accepts RFC 3339 or the naive layouts above. Naive values are
// interpreted as UTC.
func ParseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}
