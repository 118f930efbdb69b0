// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/inkwell-tui/internal/model"
	"github.com/morganforge/inkwell-tui/internal/ui/components"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the chat screen.
func (m Model) View() string {
	var sections []string

	header := m.theme.Header.Width(m.width).Render(
		m.theme.HeaderBrand.Render("inkwell") + "  writing assistant")
	sections = append(sections, header)

	sections = append(sections, m.viewport.View())

	if line := m.spinner.View(); line != "" {
		sections = append(sections, line)
	}

	if m.lastError != nil {
		errBox := components.NewErrorBox(m.lastError, m.theme)
		errBox.Width = m.width
		sections = append(sections, errBox.View())
	}

	sections = append(sections, m.renderInput())
	sections = append(sections, m.renderStatusBar())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderInput() string {
	if m.session.Loading() {
		// Input stays visible but clearly disabled while a turn streams.
		return m.theme.InputContainer.Width(m.width).Render(
			m.theme.InputDisabled.Render("> generating... (esc to cancel)"))
	}
	return m.theme.InputContainer.Width(m.width).Render(
		m.theme.InputPrompt.Render("> ") + m.input.View())
}

func (m Model) renderStatusBar() string {
	m.statusBar.Shortcuts = []components.Shortcut{
		{Key: "Enter", Desc: "send"},
		{Key: "Tab", Desc: "queries"},
		{Key: "C-r", Desc: "context"},
		{Key: "C-s", Desc: "save"},
		{Key: "C-q", Desc: "quit"},
	}
	return m.statusBar.View()
}

// refreshViewport rebuilds the scrollback content: committed history, the
// retrieval panes for the active turn, and the partially streamed answer.
func (m *Model) refreshViewport() {
	var parts []string

	history := m.session.History()
	width := maxInt(m.width-2, 20)

	// While streaming, the just-submitted user message is the last history
	// entry; the assistant bubble below it shows the growing answer.
	parts = append(parts, components.RenderHistory(history, width, m.theme, m.markdown))

	if m.session.Loading() {
		if pane := m.queriesPane.View(); pane != "" {
			parts = append(parts, pane)
		}
		if pane := m.contextPane.View(); pane != "" {
			parts = append(parts, pane)
		}
		if m.streamingText != "" {
			bubble := components.NewMessageBubble(
				model.NewAssistantMessage(m.streamingText), m.theme, m.markdown)
			bubble.SetWidth(width)
			bubble.Streaming = true
			parts = append(parts, bubble.View())
		}
	}

	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(strings.Join(parts, "\n\n"))
	if atBottom {
		m.viewport.GotoBottom()
	}
}
