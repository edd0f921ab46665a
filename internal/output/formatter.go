// Package output renders run reports for the terminal, for scripts and for
// CI job summaries.
package output

import (
	"fmt"
	"io"

	"github.com/spiffcs/issuebot/internal/policy"
)

// Format represents the output format
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates a format name given on the command line.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatTable, FormatJSON, FormatMarkdown:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected table, json or markdown)", s)
	}
}

// Formatter renders the reports of one invocation. A run produces a
// reactivate report followed by a sweep report; sweep and reactivate
// commands produce one.
type Formatter interface {
	Format(reports []policy.Report, w io.Writer) error
}

// Options tune the human-readable formatters.
type Options struct {
	// ShowAll includes issues the bot left untouched.
	ShowAll bool
	// Hyperlinks wraps issue titles in OSC 8 links.
	Hyperlinks bool
}

// NewFormatter creates a formatter for the specified format
func NewFormatter(format Format, opts Options) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Pretty: true}
	case FormatMarkdown:
		return &MarkdownFormatter{ShowAll: opts.ShowAll}
	default:
		return &TableFormatter{ShowAll: opts.ShowAll, Hyperlinks: opts.Hyperlinks}
	}
}

// visible reports whether an outcome belongs in a human-readable listing.
func visible(o policy.Outcome, showAll bool) bool {
	if showAll || o.Failed() || len(o.Steps) > 0 {
		return true
	}
	return o.Tier != policy.TierFresh && o.Tier != policy.TierSkip
}

func modeTitle(r policy.Report) string {
	title := "Sweep"
	if r.Mode == policy.ModeReactivate {
		title = "Reactivate"
	}
	if r.DryRun {
		title += " (dry run)"
	}
	return title
}

func describeSteps(steps []policy.Step) string {
	if len(steps) == 0 {
		return "-"
	}
	out := steps[0].String()
	for _, s := range steps[1:] {
		out += ", " + s.String()
	}
	return out
}
