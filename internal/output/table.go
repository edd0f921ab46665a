package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/spiffcs/issuebot/internal/format"
	"github.com/spiffcs/issuebot/internal/policy"
	"github.com/spiffcs/issuebot/internal/stats"
)

// TableFormatter formats output as a terminal table
type TableFormatter struct {
	ShowAll    bool
	Hyperlinks bool
}

// Column widths
const (
	colNumber = 7
	colTitle  = 48
	colAge    = 6
	colTier   = 16
	colNext   = 22
)

// StdoutIsTerminal reports whether stdout is attached to a terminal.
func StdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// hyperlink creates a clickable terminal hyperlink using OSC 8
// Format: \033]8;;URL\033\\TEXT\033]8;;\033\\
func hyperlink(text, url string) string {
	if url == "" {
		return text
	}
	return fmt.Sprintf("\033]8;;%s\033\\%s\033]8;;\033\\", url, text)
}

// Format outputs each report as a table followed by its summary line.
func (f *TableFormatter) Format(reports []policy.Report, w io.Writer) error {
	for i, r := range reports {
		if i > 0 {
			fmt.Fprintln(w)
		}
		f.formatReport(r, w)
	}
	return nil
}

func (f *TableFormatter) formatReport(r policy.Report, w io.Writer) {
	fmt.Fprintln(w, color.New(color.Bold).Sprint(modeTitle(r)))

	rows := 0
	for _, o := range r.Outcomes {
		if !visible(o, f.ShowAll) {
			continue
		}
		if rows == 0 {
			f.header(w)
		}
		rows++
		f.row(r.Mode, o, w)
	}

	if rows == 0 {
		fmt.Fprintln(w, "  Nothing to do.")
	}
	printSummaryLine(r, w)
}

func (f *TableFormatter) header(w io.Writer) {
	fmt.Fprintf(w, "%*s%-*s  %-*s  %-*s  %-*s  %-*s  %s\n",
		format.IconWidth, "",
		colNumber, "Issue",
		colTitle, "Title",
		colAge, "Age",
		colTier, "Tier",
		colNext, "Next",
		"Actions")
	fmt.Fprintln(w, strings.Repeat("-", format.IconWidth+colNumber+colTitle+colAge+colTier+colNext+10+20))
}

func (f *TableFormatter) row(mode policy.Mode, o policy.Outcome, w io.Writer) {
	icon := format.IconFor(mode, o)
	iconCol := format.PadRight(icon, format.DisplayWidth(icon), format.IconWidth)

	title, titleWidth := format.TruncateToWidth(o.Title, colTitle)
	if f.Hyperlinks {
		title = hyperlink(title, o.URL)
	}
	title = format.PadRight(title, titleWidth, colTitle)

	age, next := "-", "-"
	if o.Tier != policy.TierInvalid {
		age = format.FormatDays(o.Days)
		next = format.NextThreshold(o.Days)
	}

	tier := o.Tier.Display()
	if mode == policy.ModeReactivate && o.Tier == policy.TierFresh {
		tier = "Reactivated"
	}

	fmt.Fprintf(w, "%s%-*s  %s  %-*s  %s  %-*s  %s\n",
		iconCol,
		colNumber, fmt.Sprintf("#%d", o.Number),
		title,
		colAge, age,
		format.PadRight(colorTier(o.Tier, tier), len(tier), colTier),
		colNext, next,
		describeSteps(o.Steps),
	)
}

func colorTier(t policy.Tier, label string) string {
	switch t {
	case policy.TierWarn:
		return color.YellowString(label)
	case policy.TierPendingClose:
		return color.New(color.FgHiRed).Sprint(label)
	case policy.TierClosed:
		return color.RedString(label)
	case policy.TierInvalid:
		return color.MagentaString(label)
	case policy.TierFresh:
		return color.GreenString(label)
	default:
		return label
	}
}

func printSummaryLine(r policy.Report, w io.Writer) {
	var parts []string
	parts = append(parts, fmt.Sprintf("%d evaluated", len(r.Outcomes)))

	if r.Mode == policy.ModeReactivate {
		parts = append(parts, fmt.Sprintf("%d reactivated", r.Acted()))
	} else {
		for _, t := range []policy.Tier{policy.TierWarn, policy.TierPendingClose, policy.TierClosed} {
			if n := r.Count(t); n > 0 {
				parts = append(parts, fmt.Sprintf("%d %s", n, strings.ToLower(t.Display())))
			}
		}
	}
	if n := len(r.Failures()); n > 0 {
		parts = append(parts, color.RedString("%d failed", n))
	}
	if r.Aborted != nil {
		parts = append(parts, color.YellowString("aborted"))
	}

	fmt.Fprintf(w, "  %s\n", strings.Join(parts, ", "))
}

// WriteFailures prints every failed outcome across reports, partial
// failures first since those issues need manual reconciliation. It writes
// nothing when there are no failures.
func WriteFailures(reports []policy.Report, w io.Writer) {
	var partial, other []string
	for _, r := range reports {
		for _, o := range r.Failures() {
			line := fmt.Sprintf("  %s #%d %s: %v", r.Mode, o.Number, o.Title, o.Err)
			var pmf *policy.PartialMutationFailure
			if errors.As(o.Err, &pmf) {
				partial = append(partial, line)
			} else {
				other = append(other, line)
			}
		}
	}

	if len(partial)+len(other) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("━", 60))
	if len(partial) > 0 {
		fmt.Fprintln(w, color.YellowString("%d issue(s) left partially updated:", len(partial)))
		for _, l := range partial {
			fmt.Fprintln(w, l)
		}
	}
	if len(other) > 0 {
		fmt.Fprintln(w, color.RedString("%d issue(s) failed:", len(other)))
		for _, l := range other {
			fmt.Fprintln(w, l)
		}
	}
}

// FormatHistory prints run snapshots, oldest first.
func FormatHistory(snaps []stats.Snapshot, w io.Writer) {
	if len(snaps) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	fmt.Fprintf(w, "%-20s  %-24s  %-10s  %5s  %5s  %5s  %5s  %5s  %5s\n",
		"Time", "Repository", "Mode", "Eval", "Warn", "Pend", "Close", "React", "Fail")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for _, s := range snaps {
		mode := string(s.Mode)
		if s.DryRun {
			mode += "*"
		}
		repo, repoWidth := format.TruncateToWidth(s.Repository, 24)
		fmt.Fprintf(w, "%-20s  %s  %-10s  %5d  %5d  %5d  %5d  %5d  %5d\n",
			s.Timestamp.Local().Format("2006-01-02 15:04"),
			format.PadRight(repo, repoWidth, 24),
			mode,
			s.Evaluated, s.Warned, s.PendingClose, s.Closed, s.Reactivated, s.Failures)
	}
}
