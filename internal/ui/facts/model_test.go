// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package facts

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/inkwell-tui/internal/backend"
	"github.com/morganforge/inkwell-tui/internal/model"
	"github.com/morganforge/inkwell-tui/internal/ui/styles"
)

func loadedModel(t *testing.T, facts ...model.Fact) Model {
	t.Helper()
	m := New(backend.NewClient())
	m, _ = m.Update(FactsLoadedMsg{Facts: facts})
	return m
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestLoadedFactsGroupedUnderHeadings(t *testing.T) {
	m := loadedModel(t,
		model.Fact{ID: "1", Text: "Mira keeps the lighthouse.", Category: model.CategoryCharacter},
		model.Fact{ID: "2", Text: "Salt is taxed.", Category: model.CategoryWorldbuilding},
		model.Fact{ID: "3", Text: "Arlen fears the sea.", Category: model.CategoryCharacter},
	)

	if len(m.rows) != 5 { // 2 headings + 3 facts
		t.Fatalf("rows = %d", len(m.rows))
	}
	if m.rows[0].heading != model.CategoryCharacter {
		t.Errorf("first heading = %q", m.rows[0].heading)
	}
	// Facts inside a category are sorted by text.
	if m.rows[1].fact.Text != "Arlen fears the sea." {
		t.Errorf("first character fact = %q", m.rows[1].fact.Text)
	}
	// Cursor starts on a fact row, never a heading.
	if m.rows[m.cursor].fact == nil {
		t.Error("cursor on a heading row")
	}
}

func TestCursorSkipsHeadings(t *testing.T) {
	m := loadedModel(t,
		model.Fact{ID: "1", Text: "a", Category: model.CategoryCharacter},
		model.Fact{ID: "2", Text: "b", Category: model.CategoryPlot},
	)

	// rows: [heading character] [a] [heading plot] [b]
	m, _ = m.Update(keyMsg("j"))
	if got := m.selectedFact(); got == nil || got.ID != "2" {
		t.Fatalf("cursor should land on the next fact, got %+v", got)
	}
	m, _ = m.Update(keyMsg("k"))
	if got := m.selectedFact(); got == nil || got.ID != "1" {
		t.Fatalf("cursor should move back over the heading, got %+v", got)
	}
}

func TestEscKeepsDraft(t *testing.T) {
	m := loadedModel(t, model.Fact{ID: "1", Text: "original", Category: model.CategoryPlot})

	m, _ = m.Update(keyMsg("e"))
	if m.mode != modeEdit {
		t.Fatal("expected edit mode")
	}
	m.input.SetValue("edited but not saved")
	m, _ = m.Update(keyMsg("esc"))

	if !m.HasUnsavedDrafts() {
		t.Fatal("draft lost on esc")
	}
	if m.drafts["1"] != "edited but not saved" {
		t.Errorf("draft = %q", m.drafts["1"])
	}

	// Re-entering edit mode resumes from the draft, not the server text.
	m, _ = m.Update(keyMsg("e"))
	if m.input.Value() != "edited but not saved" {
		t.Errorf("edit resumed from %q", m.input.Value())
	}
}

func TestEscDraftMatchingServerTextIsDropped(t *testing.T) {
	m := loadedModel(t, model.Fact{ID: "1", Text: "original", Category: model.CategoryPlot})

	m, _ = m.Update(keyMsg("e"))
	m, _ = m.Update(keyMsg("esc"))
	if m.HasUnsavedDrafts() {
		t.Error("unchanged text should not count as a draft")
	}
}

func TestSaveSetsSavingFlagUntilConfirmed(t *testing.T) {
	m := loadedModel(t, model.Fact{ID: "1", Text: "original", Category: model.CategoryPlot})

	m, _ = m.Update(keyMsg("e"))
	m.input.SetValue("updated text")
	m, cmd := m.Update(keyMsg("enter"))

	if cmd == nil {
		t.Fatal("save should issue a command")
	}
	if !m.saving["1"] {
		t.Fatal("saving flag not set")
	}

	view := m.View(80, styles.NewTheme())
	if !strings.Contains(view, "saving...") {
		t.Errorf("view missing saving indicator: %q", view)
	}

	m, _ = m.Update(FactSavedMsg{ID: "1"})
	if m.saving["1"] {
		t.Error("saving flag not cleared after confirmation")
	}
	if m.HasUnsavedDrafts() {
		t.Error("draft should be dropped after a confirmed save")
	}
}

func TestSaveErrorKeepsDraft(t *testing.T) {
	m := loadedModel(t, model.Fact{ID: "1", Text: "original", Category: model.CategoryPlot})

	m, _ = m.Update(keyMsg("e"))
	m.input.SetValue("updated text")
	m, _ = m.Update(keyMsg("enter"))
	m, _ = m.Update(FactSavedMsg{ID: "1", Err: backend.ErrUnavailable})

	if m.lastError == nil {
		t.Error("error not surfaced")
	}
	if m.drafts["1"] != "updated text" {
		t.Errorf("draft lost on save failure: %q", m.drafts["1"])
	}
}

func TestViewTitleCasesCategories(t *testing.T) {
	m := loadedModel(t, model.Fact{ID: "1", Text: "a", Category: model.CategoryWorldbuilding})
	view := m.View(80, styles.NewTheme())
	if !strings.Contains(view, "Worldbuilding") {
		t.Errorf("heading not title-cased: %q", view)
	}
}
