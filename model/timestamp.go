package model

import (
	"fmt"
	"strings"
	"time"
)

// Layouts without an offset are read as UTC.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp reads an ISO-8601 instant. A trailing Z and an explicit
// offset are honoured, a missing offset means UTC. The result is in UTC.
func ParseTimestamp(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, &ValidationError{
			Field:  "timestamp",
			Reason: "timestamp is required",
			Err:    ErrMissingField,
		}
	}
	// "2025-10-27 14:00:00" is read like "2025-10-27T14:00:00".
	if len(s) > 10 && s[10] == ' ' {
		s = s[:10] + "T" + s[11:]
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}

	return time.Time{}, &ValidationError{
		Field:  "timestamp",
		Reason: fmt.Sprintf("cannot parse %q as an ISO-8601 timestamp", raw),
		Err:    ErrInvalidTimestamp,
	}
}
