package admission

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrScheduleMissing is returned for a room without a start date.
var ErrScheduleMissing = errors.New("schedule: start date missing")

// naiveLayouts are the zone-less formats study hosts submit; they are read in the
// configured location.
var naiveLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04",
	"2006/01/02 15:04:05",
}

// ParseSchedule reads a stored start date. Values with a zone (RFC 3339, "Z" or an
// offset) keep it; naive values are interpreted in loc.
func ParseSchedule(raw string, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, ErrScheduleMissing
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	// RFC 3339 without seconds, e.g. "2025-01-10T10:00+09:00"
	if t, err := time.Parse("2006-01-02T15:04Z07:00", s); err == nil {
		return t, nil
	}

	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("schedule: unsupported start date format %q", raw)
}
