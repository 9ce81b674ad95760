package gharchive

import (
	"fmt"
	"time"
)

// HourRef identifies a GH Archive hour (UTC).
type HourRef struct {
	Year  int
	Month int
	Day   int
	Hour  int
}

// NewHourRef creates an HourRef from a time.Time, converting to UTC
func NewHourRef(t time.Time) HourRef {
	ut := t.UTC()
	return HourRef{Year: ut.Year(), Month: int(ut.Month()), Day: ut.Day(), Hour: ut.Hour()}
}

// Time returns the start of the hour
func (h HourRef) Time() time.Time {
	return time.Date(h.Year, time.Month(h.Month), h.Day, h.Hour, 0, 0, 0, time.UTC)
}

// String returns the string representation of the HourRef in GH Archive format
func (h HourRef) String() string {
	// Matches GH Archive naming: YYYY-MM-DD-H.json.gz
	return fmt.Sprintf("%04d-%02d-%02d-%d", h.Year, h.Month, h.Day, h.Hour)
}

// LastHours returns the n complete hours before now, newest first
// the current hour is still being written upstream and is left out
func LastHours(now time.Time, n int) []HourRef {
	out := make([]HourRef, 0, max(n, 0))
	top := now.UTC().Truncate(time.Hour)
	for i := 1; i <= n; i++ {
		out = append(out, NewHourRef(top.Add(-time.Duration(i)*time.Hour)))
	}
	return out
}
