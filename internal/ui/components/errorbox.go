// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/inkwell-tui/internal/backend"
	"github.com/morganforge/inkwell-tui/internal/ui/styles"
)

// =============================================================================
// ERROR BOX
// =============================================================================

// ErrorBox renders a backend error with a short suggestion.
type ErrorBox struct {
	Err   error
	Width int

	theme *styles.Theme
}

// NewErrorBox creates an error box.
func NewErrorBox(err error, theme *styles.Theme) *ErrorBox {
	return &ErrorBox{Err: err, Width: 80, theme: theme}
}

// View renders the error box, or "" when there is no error.
func (e *ErrorBox) View() string {
	if e.Err == nil {
		return ""
	}

	title := e.theme.ErrorTitle.Render("Something went wrong")
	message := e.theme.ErrorMessage.Render(wordWrap(e.Err.Error(), maxInt(e.Width-8, 20)))

	var hint string
	switch {
	case backend.IsUnavailable(e.Err):
		hint = "Is the inkwell backend running? Start it and try again."
	case backend.IsTimeout(e.Err):
		hint = "The backend took too long to respond. Try again."
	case backend.IsNotFound(e.Err):
		hint = "The item no longer exists. Refresh the list."
	}

	parts := []string{title, message}
	if hint != "" {
		parts = append(parts, e.theme.ThinkingText.Render(hint))
	}
	return e.theme.ErrorBox.Width(minInt(e.Width-2, 100)).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
