// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/inkwell-tui/internal/ui/styles"
)

// =============================================================================
// RETRIEVAL PANES
// =============================================================================

// QueriesPane renders the retrieval-query list for the current turn. The
// pane collapses to a one-line summary when closed.
type QueriesPane struct {
	Queries  []string
	Expanded bool
	Width    int

	theme *styles.Theme
}

// NewQueriesPane creates a queries pane.
func NewQueriesPane(theme *styles.Theme) *QueriesPane {
	return &QueriesPane{Width: 80, theme: theme}
}

// Toggle flips the expanded state.
func (p *QueriesPane) Toggle() {
	p.Expanded = !p.Expanded
}

// View renders the pane. Returns "" when there are no queries to show.
func (p *QueriesPane) View() string {
	if len(p.Queries) == 0 {
		return ""
	}

	header := p.theme.PaneHeader.Render("Search queries")
	if !p.Expanded {
		summary := p.theme.PaneCollapsed.Render(
			header + " " + p.theme.PaneCollapsed.Render("("+toStr(len(p.Queries))+") [tab to expand]"))
		return summary
	}

	items := make([]string, 0, len(p.Queries))
	for _, q := range p.Queries {
		items = append(items, p.theme.QueryItem.Render("- "+q))
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, strings.Join(items, "\n"))
}

// ContextPane renders the retrieved context for the current turn.
type ContextPane struct {
	Context  string
	Expanded bool
	Width    int

	theme *styles.Theme
}

// NewContextPane creates a context pane.
func NewContextPane(theme *styles.Theme) *ContextPane {
	return &ContextPane{Width: 80, theme: theme}
}

// Toggle flips the expanded state.
func (p *ContextPane) Toggle() {
	p.Expanded = !p.Expanded
}

// View renders the pane. Returns "" when no context has arrived.
func (p *ContextPane) View() string {
	if strings.TrimSpace(p.Context) == "" {
		return ""
	}

	header := p.theme.PaneHeader.Render("Retrieved context")
	if !p.Expanded {
		passages := strings.Count(strings.TrimSuffix(p.Context, "\n\n"), "\n\n") + 1
		return header + " " + p.theme.PaneCollapsed.Render("("+toStr(passages)+" passages) [ctrl+r to expand]")
	}

	body := p.theme.PaneBody.Width(maxInt(p.Width-4, 20)).Render(strings.TrimSpace(p.Context))
	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}

// toStr converts a small non-negative integer to a string without fmt.
func toStr(n int) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
