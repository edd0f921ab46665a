package format

import (
	"fmt"
	"time"

	"github.com/spiffcs/issuebot/internal/constants"
)

// FormatAge formats a duration as a compact age string:
// "now", "5m", "2h", "3d", "2w", "3mo", "1y".
func FormatAge(d time.Duration) string {
	if d < time.Minute {
		return "now"
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return FormatDays(int(d.Hours() / 24))
}

// FormatDays formats a whole number of days the same way FormatAge does.
func FormatDays(days int) string {
	switch {
	case days < 7:
		return fmt.Sprintf("%dd", days)
	case days < 30:
		return fmt.Sprintf("%dw", days/7)
	case days < 365:
		return fmt.Sprintf("%dmo", days/30)
	default:
		return fmt.Sprintf("%dy", days/365)
	}
}

// NextThreshold describes the next inactivity threshold an issue of the
// given age will cross, e.g. "warn in 12d". Issues past the close
// threshold return "due".
func NextThreshold(days int) string {
	switch {
	case days < constants.WarnDays:
		return fmt.Sprintf("warn in %dd", constants.WarnDays-days)
	case days < constants.PendingCloseDays:
		return fmt.Sprintf("second notice in %dd", constants.PendingCloseDays-days)
	case days < constants.CloseDays:
		return fmt.Sprintf("close in %dd", constants.CloseDays-days)
	default:
		return "due"
	}
}
