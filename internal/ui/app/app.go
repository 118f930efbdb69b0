// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the top-level Bubble Tea model: a tab bar over the chat,
// facts, and style views.
//
// Stream and backend messages are routed to their owning view regardless of
// which tab is visible, so a generation keeps flowing while the user edits
// facts. Key presses go to the active tab only.
package app

import (
	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/inkwell-tui/internal/backend"
	"github.com/morganforge/inkwell-tui/internal/config"
	"github.com/morganforge/inkwell-tui/internal/session"
	"github.com/morganforge/inkwell-tui/internal/storage"
	"github.com/morganforge/inkwell-tui/internal/ui/chat"
	"github.com/morganforge/inkwell-tui/internal/ui/facts"
	"github.com/morganforge/inkwell-tui/internal/ui/styleform"
	"github.com/morganforge/inkwell-tui/internal/ui/styles"
)

// =============================================================================
// TABS
// =============================================================================

// Tab identifies one of the top-level views.
type Tab int

const (
	TabChat Tab = iota
	TabFacts
	TabStyle
	tabCount
)

var tabLabels = [tabCount]string{"Write", "Facts", "Style"}

// =============================================================================
// MODEL
// =============================================================================

// Model is the root application model.
type Model struct {
	active Tab

	chat  chat.Model
	facts facts.Model
	style styleform.Model

	theme  *styles.Theme
	width  int
	height int
}

// New creates the root model. archive may be nil; transcript saving is then
// disabled in the chat view.
func New(sess *session.Session, client *backend.Client, cfg *config.Config, archive *storage.Archive, theme *styles.Theme) Model {
	return Model{
		active: TabChat,
		chat:   chat.New(sess, client, cfg, archive, theme),
		facts:  facts.New(client),
		style:  styleform.New(client),
		theme:  theme,
		width:  80,
		height: 24,
	}
}

// Init starts all three views.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.chat.Init(), m.facts.Init(), m.style.Init())
}

// =============================================================================
// UPDATE
// =============================================================================

// Update routes messages to the owning view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// The chat view owns the shared theme sizing.
		resized := msg
		resized.Height = m.contentHeight()
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(resized)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	// Chat-owned messages, delivered regardless of the visible tab.
	case chat.StreamQueriesMsg, chat.StreamContextMsg, chat.StreamTokenMsg,
		chat.StreamTickMsg, chat.StreamEndMsg, chat.StreamErrorMsg,
		chat.BackendStatusMsg, chat.SnapshotSavedMsg, chat.StatusClearMsg,
		chat.ErrorDismissMsg, chat.ConfigReloadedMsg:
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd

	case facts.FactsLoadedMsg, facts.FactSavedMsg, facts.FactCreatedMsg, facts.FactDeletedMsg:
		var cmd tea.Cmd
		m.facts, cmd = m.facts.Update(msg)
		return m, cmd

	case styleform.StyleLoadedMsg, styleform.StyleSavedMsg:
		var cmd tea.Cmd
		m.style, cmd = m.style.Update(msg)
		return m, cmd
	}

	// Everything else (spinner ticks, cursor blinks) goes to the active view.
	return m.updateActive(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "f1":
		m.active = TabChat
		return m, nil
	case "f2":
		m.active = TabFacts
		return m, nil
	case "f3":
		m.active = TabStyle
		return m, nil
	case "ctrl+n":
		m.active = (m.active + 1) % tabCount
		return m, nil
	case "ctrl+c", "ctrl+q":
		// Quit is global; the chat view also cancels its stream on it.
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd
	}
	return m.updateActive(msg)
}

func (m Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.active {
	case TabChat:
		m.chat, cmd = m.chat.Update(msg)
	case TabFacts:
		m.facts, cmd = m.facts.Update(msg)
	case TabStyle:
		m.style, cmd = m.style.Update(msg)
	}
	return m, cmd
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the tab bar and the active view.
func (m Model) View() string {
	var body string
	switch m.active {
	case TabChat:
		body = m.chat.View()
	case TabFacts:
		body = m.facts.View(m.width, m.theme)
	case TabStyle:
		body = m.style.View(m.width, m.theme)
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.renderTabBar(), body)
}

func (m Model) renderTabBar() string {
	tabs := make([]string, 0, tabCount)
	for i := Tab(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.active {
			tabs = append(tabs, m.theme.TabActive.Render(label))
		} else {
			tabs = append(tabs, m.theme.Tab.Render(label))
		}
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	hint := m.theme.ShortcutDesc.Render("  f1/f2/f3 switch")
	return bar + hint
}

// contentHeight is the window height minus the tab bar.
func (m Model) contentHeight() int {
	if m.height <= 1 {
		return m.height
	}
	return m.height - 1
}

// ActiveTab reports the visible tab.
func (m Model) ActiveTab() Tab {
	return m.active
}
