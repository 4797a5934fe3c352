package bufcli

import (
	"strings"
	"unicode/utf16"

	runewidth "github.com/mattn/go-runewidth"
)

// RenderLinePreview truncates a line of text (already extracted from a
// buffer.Tree as UTF-16 code units) to fit within maxCells display columns,
// respecting double-width runes, and appends an ellipsis if it was cut.
func RenderLinePreview(units []uint16, maxCells int) string {
	line := string(utf16.Decode(units))
	line = strings.TrimRight(line, "\r\n")

	if runewidth.StringWidth(line) <= maxCells {
		return line
	}

	const ellipsis = "…"
	budget := maxCells - runewidth.StringWidth(ellipsis)
	if budget <= 0 {
		return ellipsis
	}

	var b strings.Builder
	width := 0
	for _, r := range line {
		w := runewidth.RuneWidth(r)
		if width+w > budget {
			break
		}
		b.WriteRune(r)
		width += w
	}
	b.WriteString(ellipsis)
	return b.String()
}
