// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/inkwell-tui/internal/ui/styles"
)

// =============================================================================
// SPINNER
// =============================================================================

// Spinner is the loading indicator shown while a turn is streaming.
type Spinner struct {
	spinner   spinner.Model
	message   string
	startTime time.Time
	isActive  bool

	theme *styles.Theme
}

// NewSpinner creates a spinner with ASCII-compatible frames.
func NewSpinner(theme *styles.Theme) Spinner {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	s.Style = theme.Spinner

	return Spinner{
		spinner: s,
		message: "Thinking",
		theme:   theme,
	}
}

// Start activates the spinner and returns its tick command.
func (s *Spinner) Start(message string) tea.Cmd {
	s.message = message
	s.startTime = time.Now()
	s.isActive = true
	return s.spinner.Tick
}

// Stop deactivates the spinner.
func (s *Spinner) Stop() {
	s.isActive = false
}

// Active reports whether the spinner is running.
func (s *Spinner) Active() bool {
	return s.isActive
}

// SetMessage updates the label without restarting the timer.
func (s *Spinner) SetMessage(message string) {
	s.message = message
}

// Update advances the spinner animation.
func (s *Spinner) Update(msg tea.Msg) tea.Cmd {
	if !s.isActive {
		return nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return cmd
}

// View renders the spinner line, or "" when inactive.
func (s *Spinner) View() string {
	if !s.isActive {
		return ""
	}

	elapsed := time.Since(s.startTime).Round(time.Second)
	line := s.spinner.View() + " " + s.message + "..."
	if elapsed >= time.Second {
		line += " " + s.theme.ThinkingText.Render("("+elapsed.String()+")")
	}
	return line
}
