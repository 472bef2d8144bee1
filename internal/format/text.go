package format

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Truncate shortens a string to fit within maxWidth display columns,
// accounting for wide characters. If truncation occurs, "..." is appended.
func Truncate(s string, maxWidth int) string {
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return strings.Repeat(".", maxWidth)
	}

	cut := 0
	width := 0
	for i, r := range s {
		rw := runewidth.RuneWidth(r)
		if width+rw > maxWidth-3 {
			cut = i
			break
		}
		width += rw
	}
	return s[:cut] + "..."
}

// PadRight pads a string with spaces to reach the target display width.
func PadRight(s string, targetWidth int) string {
	width := runewidth.StringWidth(s)
	if width >= targetWidth {
		return s
	}
	return s + strings.Repeat(" ", targetWidth-width)
}
