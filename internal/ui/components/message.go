// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/inkwell-tui/internal/model"
	"github.com/morganforge/inkwell-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGE BUBBLE COMPONENT
// =============================================================================

// MessageBubble renders one chat message as a styled bubble.
type MessageBubble struct {
	Message   model.ChatMessage
	Width     int
	Streaming bool

	theme    *styles.Theme
	markdown *MarkdownRenderer
}

// NewMessageBubble creates a bubble for one message. markdown may be nil, in
// which case assistant content is rendered as plain text with highlighted
// code fences.
func NewMessageBubble(msg model.ChatMessage, theme *styles.Theme, markdown *MarkdownRenderer) *MessageBubble {
	return &MessageBubble{
		Message:  msg,
		Width:    80,
		theme:    theme,
		markdown: markdown,
	}
}

// SetWidth sets the bubble width.
func (b *MessageBubble) SetWidth(width int) {
	b.Width = width
}

// View renders the message bubble.
func (b *MessageBubble) View() string {
	if b.Message.Role == model.RoleUser {
		return b.renderUserBubble()
	}
	return b.renderAssistantBubble()
}

func (b *MessageBubble) renderUserBubble() string {
	content := b.Message.Content
	if content == "" {
		content = "..."
	}

	maxContentWidth := maxInt(b.Width-12, 20)
	wrapped := wordWrap(content, maxContentWidth)
	contentWidth := minInt(maxLineWidth(wrapped)+4, b.Width-8)

	bubble := b.theme.UserBubble.Width(contentWidth).Render(wrapped)
	label := b.theme.UserLabel.Render("you")
	return lipgloss.JoinVertical(lipgloss.Left, label, bubble)
}

func (b *MessageBubble) renderAssistantBubble() string {
	content := b.Message.Content
	switch {
	case content == "" && b.Streaming:
		content = "..."
	case content == "":
		// Empty committed answers still occupy a slot in the history.
		content = "(no response)"
	}

	maxContentWidth := maxInt(b.Width-12, 20)
	var body string
	if b.markdown != nil && !b.Streaming {
		body = b.markdown.Render(content)
	} else {
		// While streaming, markdown structure is incomplete; wrap as text
		// and highlight whatever fences have closed.
		body = wordWrap(HighlightFences(content), maxContentWidth)
	}

	contentWidth := minInt(maxLineWidth(body)+4, b.Width-8)
	bubble := b.theme.AssistantBubble.Width(contentWidth).Render(body)
	label := b.theme.AssistantLabel.Render("inkwell")

	if b.Streaming {
		label += b.theme.ThinkingText.Render(" writing...")
	}
	return lipgloss.JoinVertical(lipgloss.Left, label, bubble)
}

// RenderHistory renders a full message list, separated by blank lines.
func RenderHistory(messages []model.ChatMessage, width int, theme *styles.Theme, markdown *MarkdownRenderer) string {
	if len(messages) == 0 {
		return theme.ThinkingText.Render("Start a conversation to generate text.")
	}

	parts := make([]string, 0, len(messages))
	for _, msg := range messages {
		bubble := NewMessageBubble(msg, theme, markdown)
		bubble.SetWidth(width)
		parts = append(parts, bubble.View())
	}
	return strings.Join(parts, "\n\n")
}
