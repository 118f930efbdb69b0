// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package facts provides the knowledge-base view: the story facts grouped by
// category, with inline editing.
//
// Edits are kept as local drafts and sent to the backend only on an explicit
// save; a row shows a saving flag from the moment its request leaves until
// the backend confirms it.
package facts

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/inkwell-tui/internal/backend"
	"github.com/morganforge/inkwell-tui/internal/model"
)

// =============================================================================
// MESSAGES
// =============================================================================

// FactsLoadedMsg delivers the fact list from the backend.
type FactsLoadedMsg struct {
	Facts []model.Fact
	Err   error
}

// FactSavedMsg reports the result of an update for one fact.
type FactSavedMsg struct {
	ID  string
	Err error
}

// FactCreatedMsg reports the result of creating a fact.
type FactCreatedMsg struct {
	Err error
}

// FactDeletedMsg reports the result of deleting a fact.
type FactDeletedMsg struct {
	ID  string
	Err error
}

// =============================================================================
// ROWS
// =============================================================================

// row is one rendered line: either a category heading or a fact.
type row struct {
	heading string
	fact    *model.Fact
}

// mode is the input mode of the view.
type mode int

const (
	modeBrowse mode = iota
	modeEdit        // editing the selected fact's draft
	modeAdd         // entering a new fact's text
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the facts view.
type Model struct {
	client *backend.Client

	facts  []model.Fact
	drafts map[string]string // fact ID -> unsaved edited text
	saving map[string]bool   // fact ID -> request in flight

	rows   []row
	cursor int

	mode        mode
	input       textinput.Model
	addCategory int // index into model.FactCategories

	lastError error
	loading   bool
}

// New creates the facts view model.
func New(client *backend.Client) Model {
	ti := textinput.New()
	ti.Placeholder = "Fact text..."
	ti.CharLimit = 0

	return Model{
		client: client,
		drafts: make(map[string]string),
		saving: make(map[string]bool),
		input:  ti,
	}
}

// Init loads the fact list.
func (m Model) Init() tea.Cmd {
	return LoadFactsCmd(m.client)
}

// =============================================================================
// COMMANDS
// =============================================================================

// LoadFactsCmd fetches all facts from the backend.
func LoadFactsCmd(client *backend.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		facts, err := client.ListFacts(ctx)
		return FactsLoadedMsg{Facts: facts, Err: err}
	}
}

func saveFactCmd(client *backend.Client, fact model.Fact) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		return FactSavedMsg{ID: fact.ID, Err: client.UpdateFact(ctx, fact)}
	}
}

func createFactCmd(client *backend.Client, fact model.Fact) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		return FactCreatedMsg{Err: client.CreateFact(ctx, fact)}
	}
}

func deleteFactCmd(client *backend.Client, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		return FactDeletedMsg{ID: id, Err: client.DeleteFact(ctx, id)}
	}
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages for the facts view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case FactsLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.lastError = msg.Err
			return m, nil
		}
		m.lastError = nil
		m.facts = msg.Facts
		m.rebuildRows()
		return m, nil

	case FactSavedMsg:
		delete(m.saving, msg.ID)
		if msg.Err != nil {
			m.lastError = msg.Err
			return m, nil
		}
		// The draft became the server state; drop it and refresh.
		delete(m.drafts, msg.ID)
		return m, LoadFactsCmd(m.client)

	case FactCreatedMsg:
		if msg.Err != nil {
			m.lastError = msg.Err
			return m, nil
		}
		return m, LoadFactsCmd(m.client)

	case FactDeletedMsg:
		delete(m.saving, msg.ID)
		if msg.Err != nil && !backend.IsNotFound(msg.Err) {
			m.lastError = msg.Err
			return m, nil
		}
		delete(m.drafts, msg.ID)
		return m, LoadFactsCmd(m.client)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.mode != modeBrowse {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.mode != modeBrowse {
		return m.handleInputKey(msg)
	}

	switch msg.String() {
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)

	case "enter", "e":
		fact := m.selectedFact()
		if fact == nil || m.saving[fact.ID] {
			return m, nil
		}
		m.mode = modeEdit
		text := fact.Text
		if draft, ok := m.drafts[fact.ID]; ok {
			text = draft
		}
		m.input.SetValue(text)
		m.input.CursorEnd()
		m.input.Focus()

	case "n":
		m.mode = modeAdd
		m.addCategory = 0
		m.input.SetValue("")
		m.input.Focus()

	case "d":
		fact := m.selectedFact()
		if fact == nil || m.saving[fact.ID] {
			return m, nil
		}
		m.saving[fact.ID] = true
		return m, deleteFactCmd(m.client, fact.ID)

	case "r":
		m.loading = true
		return m, LoadFactsCmd(m.client)
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		// Editing keeps the draft for later; adding discards the input.
		if m.mode == modeEdit {
			if fact := m.selectedFact(); fact != nil {
				m.storeDraft(fact, m.input.Value())
			}
		}
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil

	case "enter":
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}

		switch m.mode {
		case modeEdit:
			fact := m.selectedFact()
			if fact == nil {
				m.mode = modeBrowse
				return m, nil
			}
			m.mode = modeBrowse
			m.input.Blur()
			m.drafts[fact.ID] = text
			m.saving[fact.ID] = true
			updated := *fact
			updated.Text = text
			return m, saveFactCmd(m.client, updated)

		case modeAdd:
			m.mode = modeBrowse
			m.input.Blur()
			return m, createFactCmd(m.client, model.Fact{
				Text:     text,
				Category: model.FactCategories[m.addCategory],
			})
		}
		return m, nil

	case "ctrl+t":
		if m.mode == modeAdd {
			m.addCategory = (m.addCategory + 1) % len(model.FactCategories)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// STATE HELPERS
// =============================================================================

// rebuildRows regroups the fact list under category headings.
func (m *Model) rebuildRows() {
	categories, groups := model.GroupFactsByCategory(m.facts)

	m.rows = m.rows[:0]
	for _, cat := range categories {
		m.rows = append(m.rows, row{heading: cat})
		group := groups[cat]
		for i := range group {
			m.rows = append(m.rows, row{fact: &group[i]})
		}
	}

	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.snapToFact(1)
}

// moveCursor moves the selection by delta, skipping heading rows.
func (m *Model) moveCursor(delta int) {
	if len(m.rows) == 0 {
		return
	}
	next := m.cursor + delta
	for next >= 0 && next < len(m.rows) && m.rows[next].fact == nil {
		next += delta
	}
	if next >= 0 && next < len(m.rows) {
		m.cursor = next
	}
}

// snapToFact places the cursor on the nearest fact row in direction dir.
func (m *Model) snapToFact(dir int) {
	if len(m.rows) == 0 {
		return
	}
	if m.rows[m.cursor].fact != nil {
		return
	}
	m.moveCursor(dir)
}

func (m *Model) selectedFact() *model.Fact {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor].fact
}

func (m *Model) storeDraft(fact *model.Fact, text string) {
	if text == fact.Text {
		delete(m.drafts, fact.ID)
		return
	}
	m.drafts[fact.ID] = text
}

// HasUnsavedDrafts reports whether any fact has an uncommitted edit.
func (m Model) HasUnsavedDrafts() bool {
	return len(m.drafts) > 0
}
