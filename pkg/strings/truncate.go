// Package strings holds the text helpers shared by command output.
package strings

import (
	"strings"
)

// HelpColumnWidth is the width of command summaries in listings.
const HelpColumnWidth = 60

// minWidth leaves room for one character plus the ellipsis.
const minWidth = 4

// OneLine collapses every run of whitespace, newlines included, into a single space.
func OneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate shortens s to at most width runes, ending with "..." when cut.
// Widths below 4 are raised to 4.
func Truncate(s string, width int) string {
	width = max(width, minWidth)
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}

// Summary returns s on one line, truncated to width.
func Summary(s string, width int) string {
	return Truncate(OneLine(s), width)
}
