// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package facts

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/morganforge/inkwell-tui/internal/model"
	"github.com/morganforge/inkwell-tui/internal/ui/components"
	"github.com/morganforge/inkwell-tui/internal/ui/styles"
)

var titleCaser = cases.Title(language.English)

// View renders the facts table.
func (m Model) View(width int, theme *styles.Theme) string {
	var sections []string

	if m.loading {
		sections = append(sections, theme.ThinkingText.Render("Loading facts..."))
	}

	if len(m.rows) == 0 && !m.loading {
		sections = append(sections, theme.ThinkingText.Render(
			"No story facts yet. Press n to add one."))
	}

	for i, r := range m.rows {
		if r.heading != "" {
			sections = append(sections, theme.CategoryHeader.Render(titleCaser.String(r.heading)))
			continue
		}

		fact := r.fact
		text := fact.Text
		marker := "  "

		if draft, ok := m.drafts[fact.ID]; ok {
			text = draft
			marker = "* " // unsaved draft
		}

		style := theme.FactRow
		switch {
		case m.saving[fact.ID]:
			style = theme.FactSaving
			text += " (saving...)"
		case i == m.cursor:
			style = theme.FactSelected
		case marker == "* ":
			style = theme.FactDraft
		}
		sections = append(sections, style.Render(marker+text))
	}

	if m.mode != modeBrowse {
		sections = append(sections, m.renderInputLine(theme))
	}

	if m.lastError != nil {
		errBox := components.NewErrorBox(m.lastError, theme)
		errBox.Width = width
		sections = append(sections, errBox.View())
	}

	sections = append(sections, m.renderHints(theme))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderInputLine(theme *styles.Theme) string {
	label := "Edit fact"
	if m.mode == modeAdd {
		label = "New " + m.currentCategory() + " fact (ctrl+t to switch category)"
	}
	return theme.FormLabel.Render(label+": ") + m.input.View()
}

func (m Model) renderHints(theme *styles.Theme) string {
	hints := []string{"e edit", "n new", "d delete", "r refresh"}
	if m.mode != modeBrowse {
		hints = []string{"enter save", "esc cancel"}
	}
	return theme.ShortcutDesc.Render(strings.Join(hints, "  |  "))
}

func (m Model) currentCategory() string {
	cats := model.FactCategories
	if m.addCategory < 0 || m.addCategory >= len(cats) {
		return cats[0]
	}
	return cats[m.addCategory]
}
