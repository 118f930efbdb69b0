// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styleform provides the writing-style view: a small form over the
// backend's singleton style profile (point of view, tense, and a free-text
// style description).
//
// The form edits a local copy and sends the whole profile to the backend on
// an explicit save.
package styleform

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/inkwell-tui/internal/backend"
	"github.com/morganforge/inkwell-tui/internal/model"
)

// =============================================================================
// MESSAGES
// =============================================================================

// StyleLoadedMsg delivers the style profile from the backend.
type StyleLoadedMsg struct {
	Style model.Style
	Err   error
}

// StyleSavedMsg reports the result of saving the style profile.
type StyleSavedMsg struct {
	Style model.Style
	Err   error
}

// =============================================================================
// FIELDS
// =============================================================================

// field identifies one row of the form.
type field int

const (
	fieldPOV field = iota
	fieldTense
	fieldDescription
	fieldCount
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the writing-style form.
type Model struct {
	client *backend.Client

	style model.Style // local editable copy
	saved model.Style // last state confirmed by the backend

	cursor  field
	editing bool // the description field has focus
	input   textinput.Model

	loading   bool
	saving    bool
	lastError error
}

// New creates the style form model.
func New(client *backend.Client) Model {
	ti := textinput.New()
	ti.Placeholder = "e.g. lyrical, sparse dialogue, long sentences"
	ti.CharLimit = 0

	def := model.DefaultStyle()
	return Model{
		client:  client,
		style:   def,
		saved:   def,
		input:   ti,
		loading: true,
	}
}

// Init fetches the current profile.
func (m Model) Init() tea.Cmd {
	return LoadStyleCmd(m.client)
}

// =============================================================================
// COMMANDS
// =============================================================================

// LoadStyleCmd fetches the style profile from the backend.
func LoadStyleCmd(client *backend.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		style, err := client.GetStyle(ctx)
		return StyleLoadedMsg{Style: style, Err: err}
	}
}

func saveStyleCmd(client *backend.Client, style model.Style) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		return StyleSavedMsg{Style: style, Err: client.SaveStyle(ctx, style)}
	}
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages for the style form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StyleLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.lastError = msg.Err
			return m, nil
		}
		m.lastError = nil
		m.style = msg.Style
		m.saved = msg.Style
		return m, nil

	case StyleSavedMsg:
		m.saving = false
		if msg.Err != nil {
			m.lastError = msg.Err
			return m, nil
		}
		m.lastError = nil
		m.saved = msg.Style
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.editing {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.editing {
		return m.handleEditKey(msg)
	}

	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < fieldCount-1 {
			m.cursor++
		}

	case "left", "h":
		m.cycleOption(-1)
	case "right", "l", " ":
		m.cycleOption(1)

	case "enter", "e":
		if m.cursor == fieldDescription {
			m.editing = true
			m.input.SetValue(m.style.Style)
			m.input.CursorEnd()
			m.input.Focus()
		} else {
			m.cycleOption(1)
		}

	case "ctrl+s", "s":
		if m.saving || !m.Dirty() {
			return m, nil
		}
		m.saving = true
		return m, saveStyleCmd(m.client, m.style)

	case "r":
		m.loading = true
		return m, LoadStyleCmd(m.client)
	}
	return m, nil
}

func (m Model) handleEditKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editing = false
		m.input.Blur()
		return m, nil

	case "enter":
		m.style.Style = m.input.Value()
		m.editing = false
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// STATE HELPERS
// =============================================================================

// cycleOption steps the selected option field by dir, wrapping around.
func (m *Model) cycleOption(dir int) {
	switch m.cursor {
	case fieldPOV:
		m.style.POV = stepOption(model.POVOptions, m.style.POV, dir)
	case fieldTense:
		m.style.Tense = stepOption(model.TenseOptions, m.style.Tense, dir)
	}
}

func stepOption(options []string, current string, dir int) string {
	idx := 0
	for i, opt := range options {
		if opt == current {
			idx = i
			break
		}
	}
	idx = (idx + dir + len(options)) % len(options)
	return options[idx]
}

// Dirty reports whether the local copy differs from the last saved state.
func (m Model) Dirty() bool {
	return m.style != m.saved
}
