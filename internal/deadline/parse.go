package deadline

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidDeadline is returned when a deadline value cannot be parsed.
	ErrInvalidDeadline = errors.New("invalid deadline")
	// ErrMissingDeadline is returned for an empty deadline value.
	ErrMissingDeadline = errors.New("missing deadline")
)

var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
}

var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Parse reads an ISO-8601 deadline. Values without a zone are read in loc.
func Parse(raw string, loc *time.Location) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, ErrMissingDeadline
	}
	if loc == nil {
		loc = time.UTC
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDeadline, raw)
}
