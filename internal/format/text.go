// Package format provides text helpers for the terminal report: compact
// ages, tier icons and width-aware column fitting.
package format

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/spiffcs/issuebot/internal/constants"
)

const (
	variationSelector = '\uFE0F'
	ellipsis          = "..."
	ansiReset         = "\033[0m"
)

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// StripAnsi removes ANSI escape sequences from a string.
func StripAnsi(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// DisplayWidth returns the visible width of a string in terminal columns.
// ANSI sequences are zero width and an emoji followed by VS16 counts as two
// columns.
func DisplayWidth(s string) int {
	runes := []rune(StripAnsi(s))
	width := 0
	for i := 0; i < len(runes); i++ {
		if i+1 < len(runes) && runes[i+1] == variationSelector {
			width += 2
			i++
			continue
		}
		if runes[i] == variationSelector {
			continue
		}
		width += runewidth.RuneWidth(runes[i])
	}
	return width
}

// TruncateToWidth shortens s to at most maxWidth columns, ending it with
// "..." when anything was cut. ANSI sequences before the cut are kept and
// closed with a reset. Returns the result and its visible width.
func TruncateToWidth(s string, maxWidth int) (string, int) {
	width := DisplayWidth(s)
	if width <= maxWidth {
		return s, width
	}

	target := max(maxWidth-constants.TruncationSuffixWidth, 0)
	matches := ansiRegex.FindAllStringIndex(s, -1)

	var b strings.Builder
	visible, pos, next := 0, 0, 0
	colored := false

	for pos < len(s) && visible < target {
		if next < len(matches) && pos == matches[next][0] {
			b.WriteString(s[matches[next][0]:matches[next][1]])
			pos = matches[next][1]
			next++
			colored = true
			continue
		}

		r, size := utf8.DecodeRuneInString(s[pos:])
		end := pos + size
		rw := runewidth.RuneWidth(r)

		if end < len(s) {
			if vs, vsSize := utf8.DecodeRuneInString(s[end:]); vs == variationSelector {
				end += vsSize
				rw = 2
			}
		}
		if r == variationSelector {
			pos = end
			continue
		}
		if visible+rw > target {
			break
		}

		b.WriteString(s[pos:end])
		visible += rw
		pos = end
	}

	b.WriteString(ellipsis)
	if colored {
		b.WriteString(ansiReset)
	}
	return b.String(), visible + constants.TruncationSuffixWidth
}

// PadRight pads a string with spaces to reach the target visible width.
func PadRight(s string, visibleWidth, targetWidth int) string {
	if visibleWidth >= targetWidth {
		return s
	}
	return s + strings.Repeat(" ", targetWidth-visibleWidth)
}

// Fit truncates or pads s so it occupies exactly width columns.
func Fit(s string, width int) string {
	out, w := TruncateToWidth(s, width)
	return PadRight(out, w, width)
}
