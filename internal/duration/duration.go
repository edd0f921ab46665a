// Package duration parses human-readable lookback windows such as "1w",
// "30d" or "6mo".
package duration

import (
	"fmt"
	"strings"
	"time"
)

const day = 24 * time.Hour

// Parse converts a string like "12h", "30d", "6mo" or "1y" to a duration.
// Months are 30 days and years 365 days.
func Parse(s string) (time.Duration, error) {
	var n int
	var unit string

	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d%s", &n, &unit); err != nil {
		return 0, fmt.Errorf("invalid duration format: %s (use e.g., 1w, 30d, 6mo)", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid duration %s: must not be negative", s)
	}

	var unitLen time.Duration
	switch unit {
	case "h", "hr", "hrs", "hour", "hours":
		unitLen = time.Hour
	case "d", "day", "days":
		unitLen = day
	case "w", "wk", "wks", "week", "weeks":
		unitLen = 7 * day
	case "mo", "month", "months":
		unitLen = 30 * day
	case "y", "yr", "yrs", "year", "years":
		unitLen = 365 * day
	default:
		return 0, fmt.Errorf("unknown duration unit: %s", unit)
	}

	return time.Duration(n) * unitLen, nil
}

// Since returns the instant the window s reaches back to from now.
func Since(s string, now time.Time) (time.Time, error) {
	d, err := Parse(s)
	if err != nil {
		return time.Time{}, err
	}
	return now.Add(-d), nil
}
