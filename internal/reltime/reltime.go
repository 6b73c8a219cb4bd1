// Package reltime renders review timestamps as coarse relative strings:
// "today", "N day(s) ago", "N month(s) ago", "N year(s) ago".
//
// Backends report review times in either seconds or milliseconds since the
// epoch without saying which. Values below SecondsThreshold are taken as
// seconds, everything else as milliseconds.
package reltime

import (
	"fmt"
	"math"
	"time"
)

// SecondsThreshold separates second- from millisecond-resolution inputs.
// 1e10 seconds is in the year 2286; 1e10 milliseconds is April 1970.
const SecondsThreshold = 10_000_000_000

const msPerDay = 86_400_000

// Formatter formats timestamps relative to Now.
type Formatter struct {
	Now func() time.Time
}

// New returns a Formatter using the wall clock.
func New() Formatter {
	return Formatter{Now: time.Now}
}

// Format returns the relative string for ts, or "" if ts is nil or not a
// finite number. Formatting never fails.
func (f Formatter) Format(ts *float64) string {
	if ts == nil {
		return ""
	}
	ms, ok := Normalize(*ts)
	if !ok {
		return ""
	}

	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	diffDays := int64(math.Floor((float64(now().UnixMilli()) - ms) / msPerDay))
	diffMonths := floorDiv(diffDays, 30)
	diffYears := floorDiv(diffDays, 365)

	switch {
	case diffYears > 0:
		return plural(diffYears, "year")
	case diffMonths > 0:
		return plural(diffMonths, "month")
	case diffDays > 0:
		return plural(diffDays, "day")
	default:
		return "today"
	}
}

// Normalize converts a raw timestamp to milliseconds since the epoch.
// Returns false for NaN and infinities.
func Normalize(ts float64) (float64, bool) {
	if math.IsNaN(ts) || math.IsInf(ts, 0) {
		return 0, false
	}
	if ts < SecondsThreshold {
		return ts * 1000, true
	}
	return ts, true
}

// Format is a convenience wrapper using the wall clock.
func Format(ts *float64) string {
	return New().Format(ts)
}

func plural(n int64, unit string) string {
	if n > 1 {
		return fmt.Sprintf("%d %ss ago", n, unit)
	}
	return fmt.Sprintf("%d %s ago", n, unit)
}

// floorDiv divides rounding toward negative infinity, matching Math.floor
// for future timestamps (negative day counts).
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
