// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styleform

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/inkwell-tui/internal/backend"
	"github.com/morganforge/inkwell-tui/internal/model"
	"github.com/morganforge/inkwell-tui/internal/ui/styles"
)

func loadedForm(t *testing.T, style model.Style) Model {
	t.Helper()
	m := New(backend.NewClient())
	m, _ = m.Update(StyleLoadedMsg{Style: style})
	return m
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestLoadReplacesDefaults(t *testing.T) {
	loaded := model.Style{POV: "Second person", Tense: "Present tense", Style: "clipped"}
	m := loadedForm(t, loaded)

	if m.style != loaded {
		t.Fatalf("style = %+v", m.style)
	}
	if m.Dirty() {
		t.Error("fresh load should not be dirty")
	}
}

func TestCycleOptionWraps(t *testing.T) {
	m := loadedForm(t, model.Style{POV: model.POVOptions[0], Tense: model.TenseOptions[0]})

	m, _ = m.Update(keyMsg("right"))
	if m.style.POV != model.POVOptions[1] {
		t.Fatalf("POV = %q", m.style.POV)
	}
	m, _ = m.Update(keyMsg("left"))
	m, _ = m.Update(keyMsg("left"))
	if m.style.POV != model.POVOptions[len(model.POVOptions)-1] {
		t.Fatalf("POV should wrap backwards, got %q", m.style.POV)
	}
	if !m.Dirty() {
		t.Error("option change should mark the form dirty")
	}
}

func TestTenseCycleOnSecondRow(t *testing.T) {
	m := loadedForm(t, model.Style{POV: model.POVOptions[0], Tense: model.TenseOptions[0]})

	m, _ = m.Update(keyMsg("j"))
	m, _ = m.Update(keyMsg("right"))
	if m.style.Tense != model.TenseOptions[1] {
		t.Fatalf("Tense = %q", m.style.Tense)
	}
	// POV untouched.
	if m.style.POV != model.POVOptions[0] {
		t.Errorf("POV changed to %q", m.style.POV)
	}
}

func TestDescriptionEditApplyAndCancel(t *testing.T) {
	m := loadedForm(t, model.Style{POV: model.POVOptions[0], Tense: model.TenseOptions[0], Style: "old notes"})

	m, _ = m.Update(keyMsg("j"))
	m, _ = m.Update(keyMsg("j"))
	m, _ = m.Update(keyMsg("enter"))
	if !m.editing {
		t.Fatal("expected edit mode on the description field")
	}
	m.input.SetValue("new notes")
	m, _ = m.Update(keyMsg("enter"))
	if m.style.Style != "new notes" {
		t.Fatalf("Style = %q", m.style.Style)
	}

	// Esc discards the in-progress edit.
	m, _ = m.Update(keyMsg("enter"))
	m.input.SetValue("discarded")
	m, _ = m.Update(keyMsg("esc"))
	if m.style.Style != "new notes" {
		t.Errorf("esc should keep the applied value, got %q", m.style.Style)
	}
}

func TestSaveClearsDirtyOnConfirmation(t *testing.T) {
	m := loadedForm(t, model.Style{POV: model.POVOptions[0], Tense: model.TenseOptions[0]})

	m, _ = m.Update(keyMsg("right"))
	m, cmd := m.Update(keyMsg("s"))
	if cmd == nil {
		t.Fatal("save should issue a command")
	}
	if !m.saving {
		t.Fatal("saving flag not set")
	}

	m, _ = m.Update(StyleSavedMsg{Style: m.style})
	if m.saving {
		t.Error("saving flag not cleared")
	}
	if m.Dirty() {
		t.Error("confirmed save should clear the dirty state")
	}
}

func TestSaveWithoutChangesIsNoOp(t *testing.T) {
	m := loadedForm(t, model.Style{POV: model.POVOptions[0], Tense: model.TenseOptions[0]})
	m, cmd := m.Update(keyMsg("s"))
	if cmd != nil {
		t.Error("clean form should not issue a save")
	}
	if m.saving {
		t.Error("saving flag set without a request")
	}
}

func TestSaveErrorKeepsLocalEdits(t *testing.T) {
	m := loadedForm(t, model.Style{POV: model.POVOptions[0], Tense: model.TenseOptions[0]})

	m, _ = m.Update(keyMsg("right"))
	edited := m.style
	m, _ = m.Update(keyMsg("s"))
	m, _ = m.Update(StyleSavedMsg{Style: edited, Err: backend.ErrUnavailable})

	if m.lastError == nil {
		t.Error("error not surfaced")
	}
	if m.style != edited {
		t.Errorf("local edits lost: %+v", m.style)
	}
	if !m.Dirty() {
		t.Error("failed save should stay dirty")
	}
}

func TestViewMarksSelectedOption(t *testing.T) {
	m := loadedForm(t, model.Style{POV: "Second person", Tense: "Past tense"})
	view := m.View(80, styles.NewTheme())

	if !strings.Contains(view, "[Second person]") {
		t.Errorf("selected POV not bracketed: %q", view)
	}
	if !strings.Contains(view, "[Past tense]") {
		t.Errorf("selected tense not bracketed: %q", view)
	}
}
