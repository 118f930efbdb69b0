// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/morganforge/inkwell-tui/internal/util"
)

// =============================================================================
// SHARED HELPER FUNCTIONS
// =============================================================================

// wordWrap wraps text at the given width, breaking on word boundaries.
func wordWrap(text string, width int) string {
	return util.WordWrap(text, width)
}

// maxLineWidth returns the display width of the widest line.
func maxLineWidth(text string) int {
	maxWidth := 0
	for _, line := range strings.Split(text, "\n") {
		if w := util.StringWidth(line); w > maxWidth {
			maxWidth = w
		}
	}
	return maxWidth
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
