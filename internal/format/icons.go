package format

import "github.com/spiffcs/issuebot/internal/policy"

// Icon strings for display (renderers can apply their own styling)
const (
	// WarnIcon marks an issue that received its first notice.
	WarnIcon = "\u26A0\uFE0F" // ⚠️

	// PendingCloseIcon marks an issue that received its second notice.
	PendingCloseIcon = "\u23F3" // ⏳

	// ClosedIcon marks an issue closed for inactivity.
	ClosedIcon = "\U0001F512" // 🔒

	// ReactivatedIcon marks an issue whose inactivity labels were removed.
	ReactivatedIcon = "\u267B\uFE0F" // ♻️

	// FailedIcon marks an issue whose processing failed.
	FailedIcon = "\u274C" // ❌

	// IconWidth is the display width reserved for the icon column (emoji=2 + space=1).
	IconWidth = 3
)

// IconFor picks the icon for an outcome. Outcomes the bot did not act on
// get no icon.
func IconFor(mode policy.Mode, o policy.Outcome) string {
	if o.Failed() {
		return FailedIcon
	}
	if mode == policy.ModeReactivate {
		if o.Tier == policy.TierFresh {
			return ReactivatedIcon
		}
		return ""
	}

	switch o.Tier {
	case policy.TierWarn:
		return WarnIcon
	case policy.TierPendingClose:
		return PendingCloseIcon
	case policy.TierClosed:
		return ClosedIcon
	default:
		return ""
	}
}
