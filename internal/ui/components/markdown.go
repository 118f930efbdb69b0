// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// MarkdownRenderer renders assistant messages as terminal markdown. A nil or
// failed renderer degrades to plain text with highlighted code fences.
type MarkdownRenderer struct {
	renderer *glamour.TermRenderer
	width    int
}

// NewMarkdownRenderer creates a renderer wrapping at the given width.
func NewMarkdownRenderer(width int) *MarkdownRenderer {
	if width < 20 {
		width = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		r = nil
	}
	return &MarkdownRenderer{renderer: r, width: width}
}

// Render renders markdown to styled terminal output.
func (m *MarkdownRenderer) Render(content string) string {
	if m == nil || m.renderer == nil {
		return HighlightFences(content)
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return HighlightFences(content)
	}
	// Glamour pads with a trailing blank line; the bubble adds its own.
	return strings.TrimRight(out, "\n")
}

// Width returns the wrap width the renderer was built with.
func (m *MarkdownRenderer) Width() int {
	if m == nil {
		return 0
	}
	return m.width
}
