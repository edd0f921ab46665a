package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/spiffcs/issuebot/internal/format"
	"github.com/spiffcs/issuebot/internal/policy"
)

// MarkdownFormatter formats output as Markdown, suitable for a CI job
// summary.
type MarkdownFormatter struct {
	ShowAll bool
}

// Format outputs one section per report.
func (f *MarkdownFormatter) Format(reports []policy.Report, w io.Writer) error {
	for i, r := range reports {
		if i > 0 {
			fmt.Fprintln(w)
		}
		f.formatReport(r, w)
	}
	return nil
}

func (f *MarkdownFormatter) formatReport(r policy.Report, w io.Writer) {
	fmt.Fprintf(w, "## %s\n\n", modeTitle(r))
	fmt.Fprintf(w, "*Evaluated: %s*\n\n", r.EvaluatedAt.UTC().Format("2006-01-02 15:04 MST"))

	var rows []policy.Outcome
	for _, o := range r.Outcomes {
		if visible(o, f.ShowAll) {
			rows = append(rows, o)
		}
	}

	if len(rows) == 0 {
		fmt.Fprintln(w, "Nothing to do.")
		return
	}

	fmt.Fprintln(w, "| Issue | Title | Days | Tier | Actions |")
	fmt.Fprintln(w, "|---|---|---:|---|---|")
	for _, o := range rows {
		days := "-"
		if o.Tier != policy.TierInvalid {
			days = fmt.Sprint(o.Days)
		}
		status := o.Tier.Display()
		if icon := format.IconFor(r.Mode, o); icon != "" {
			status = icon + " " + status
		}
		actions := describeSteps(o.Steps)
		if o.Err != nil {
			actions += " (" + escapeCell(o.Err.Error()) + ")"
		}
		fmt.Fprintf(w, "| [#%d](%s) | %s | %s | %s | %s |\n",
			o.Number, o.URL, escapeCell(o.Title), days, status, actions)
	}
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
