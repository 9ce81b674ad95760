// Package timespan provides an immutable duration value used as the grouping gap
package timespan

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	perr "pulse/internal/platform/errors"
)

const day = 24 * time.Hour

// Timespan is an immutable span of time with day/hour/minute decomposition
type Timespan struct{ d time.Duration }

// Zero is the empty span
var Zero = Timespan{}

// Of wraps a time.Duration
func Of(d time.Duration) Timespan { return Timespan{d: d} }

// FromMillis builds a span from milliseconds
func FromMillis(ms int64) Timespan { return Timespan{d: time.Duration(ms) * time.Millisecond} }

// Minutes builds a span of n minutes
func Minutes(n int) Timespan { return Timespan{d: time.Duration(n) * time.Minute} }

// Between returns the absolute distance between two instants
func Between(a, b time.Time) Timespan {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return Timespan{d: d}
}

// Parse accepts Go duration syntax plus a leading day component, e.g. "2d", "1d12h", "90m"
func Parse(s string) (Timespan, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, perr.InvalidArgf("timespan: empty value")
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	var total time.Duration
	if i := strings.IndexByte(s, 'd'); i >= 0 {
		n, err := strconv.Atoi(s[:i])
		if err != nil || n < 0 {
			return Zero, perr.InvalidArgf("timespan: invalid day component in %q", s)
		}
		total = time.Duration(n) * day
		s = s[i+1:]
	}
	if s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return Zero, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "timespan: invalid duration %q", s)
		}
		total += d
	}
	if neg {
		total = -total
	}
	return Timespan{d: total}, nil
}

// Duration returns the underlying time.Duration
func (t Timespan) Duration() time.Duration { return t.d }

// Millis returns the span in whole milliseconds
func (t Timespan) Millis() int64 { return t.d.Milliseconds() }

// IsZero reports whether the span is empty
func (t Timespan) IsZero() bool { return t.d == 0 }

// Compare returns -1, 0 or +1 as t is shorter than, equal to or longer than o
func (t Timespan) Compare(o Timespan) int {
	switch {
	case t.d < o.d:
		return -1
	case t.d > o.d:
		return 1
	default:
		return 0
	}
}

// Within reports whether t does not exceed limit
func (t Timespan) Within(limit Timespan) bool { return t.d <= limit.d }

// Days returns the whole-day component
func (t Timespan) Days() int { return int(abs(t.d) / day) }

// Hours returns the hour component in [0, 23]
func (t Timespan) Hours() int { return int(abs(t.d) % day / time.Hour) }

// Minutes returns the minute component in [0, 59]
func (t Timespan) Minutes() int { return int(abs(t.d) % time.Hour / time.Minute) }

// String renders the span as "1d 2h 3m", dropping zero leading components
func (t Timespan) String() string {
	var b strings.Builder
	if t.d < 0 {
		b.WriteByte('-')
	}
	switch {
	case t.Days() > 0:
		fmt.Fprintf(&b, "%dd %dh %dm", t.Days(), t.Hours(), t.Minutes())
	case t.Hours() > 0:
		fmt.Fprintf(&b, "%dh %dm", t.Hours(), t.Minutes())
	default:
		fmt.Fprintf(&b, "%dm", t.Minutes())
	}
	return b.String()
}

// MarshalText renders the span as a Go duration string
func (t Timespan) MarshalText() ([]byte, error) { return []byte(t.d.String()), nil }

// UnmarshalText parses the output of MarshalText or any value accepted by Parse
func (t *Timespan) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

func abs(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
