package store

import (
	"fmt"
	"time"
)

// timestampLayout is fixed width so lexicographic order matches chronological order.
// Nanoseconds are always 9 digits; time.RFC3339Nano trims trailing zeros and breaks sorting.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// formatTimestampKey renders t as a sortable index value.
// Example: 2024-01-15T10:30:00.123456789Z.
func formatTimestampKey(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// parseTimestampKey is the inverse of formatTimestampKey.
func parseTimestampKey(value string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp key %q: %w", value, err)
	}
	return t, nil
}
