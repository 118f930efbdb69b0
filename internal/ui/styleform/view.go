// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styleform

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/inkwell-tui/internal/model"
	"github.com/morganforge/inkwell-tui/internal/ui/components"
	"github.com/morganforge/inkwell-tui/internal/ui/styles"
)

// View renders the writing-style form.
func (m Model) View(width int, theme *styles.Theme) string {
	var sections []string

	if m.loading {
		sections = append(sections, theme.ThinkingText.Render("Loading style profile..."))
	}

	sections = append(sections,
		m.renderOptionRow(theme, fieldPOV, "Point of view", model.POVOptions, m.style.POV),
		"",
		m.renderOptionRow(theme, fieldTense, "Tense", model.TenseOptions, m.style.Tense),
		"",
		m.renderDescriptionRow(theme),
	)

	switch {
	case m.saving:
		sections = append(sections, "", theme.ThinkingText.Render("Saving..."))
	case m.Dirty():
		sections = append(sections, "", theme.FormLabel.Render("Unsaved changes"))
	}

	if m.lastError != nil {
		errBox := components.NewErrorBox(m.lastError, theme)
		errBox.Width = width
		sections = append(sections, errBox.View())
	}

	sections = append(sections, "", m.renderHints(theme))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderOptionRow(theme *styles.Theme, f field, label string, options []string, current string) string {
	marker := "  "
	if m.cursor == f {
		marker = "> "
	}

	rendered := make([]string, 0, len(options))
	for _, opt := range options {
		if opt == current {
			rendered = append(rendered, theme.FormOptionSelected.Render("["+opt+"]"))
		} else {
			rendered = append(rendered, theme.FormOption.Render(opt))
		}
	}

	return marker + theme.FormLabel.Render(label+": ") + strings.Join(rendered, "  ")
}

func (m Model) renderDescriptionRow(theme *styles.Theme) string {
	marker := "  "
	if m.cursor == fieldDescription {
		marker = "> "
	}

	if m.editing {
		return marker + theme.FormLabel.Render("Style notes: ") + m.input.View()
	}

	value := m.style.Style
	if value == "" {
		value = "(none)"
	}
	return marker + theme.FormLabel.Render("Style notes: ") + theme.FormValue.Render(value)
}

func (m Model) renderHints(theme *styles.Theme) string {
	hints := []string{"up/down select", "left/right change", "enter edit notes", "s save", "r reload"}
	if m.editing {
		hints = []string{"enter apply", "esc cancel"}
	}
	return theme.ShortcutDesc.Render(strings.Join(hints, "  |  "))
}
