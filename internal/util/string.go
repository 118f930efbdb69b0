// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// UNICODE: Rune-aware truncation preserves multi-byte characters.

// TruncateRunes truncates a string to a maximum number of runes (characters).
// If the string is truncated, "..." is appended.
func TruncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}

// TruncateWidth truncates a string to a maximum display width, accounting
// for double-width (CJK) characters.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// StringWidth returns the display width of a string in terminal columns.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// PadRight pads a string with spaces to the given display width.
func PadRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// FirstLine returns the first line of a string with surrounding whitespace
// removed.
func FirstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// WordWrap wraps text at word boundaries to fit within the given display
// width. Words wider than a whole line are broken mid-word.
func WordWrap(s string, width int) string {
	if width <= 0 {
		return s
	}

	var out strings.Builder
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			out.WriteByte('\n')
		}
		out.WriteString(wrapLine(line, width))
	}
	return out.String()
}

func wrapLine(line string, width int) string {
	words := strings.Fields(line)
	if len(words) == 0 {
		return line
	}

	var out strings.Builder
	lineWidth := 0
	for _, word := range words {
		w := runewidth.StringWidth(word)

		for w > width {
			if lineWidth > 0 {
				out.WriteByte('\n')
				lineWidth = 0
			}
			head := runewidth.Truncate(word, width, "")
			out.WriteString(head)
			out.WriteByte('\n')
			word = strings.TrimPrefix(word, head)
			w = runewidth.StringWidth(word)
		}
		if word == "" {
			continue
		}

		switch {
		case lineWidth == 0:
			out.WriteString(word)
			lineWidth = w
		case lineWidth+1+w <= width:
			out.WriteByte(' ')
			out.WriteString(word)
			lineWidth += 1 + w
		default:
			out.WriteByte('\n')
			out.WriteString(word)
			lineWidth = w
		}
	}
	return out.String()
}
