// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/morganforge/inkwell-tui/internal/ui/styles"
	"github.com/morganforge/inkwell-tui/internal/util"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Status represents the current application status.
type Status int

const (
	StatusReady Status = iota
	StatusRetrieving
	StatusStreaming
	StatusSaving
	StatusError
	StatusOffline
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusRetrieving:
		return "Retrieving..."
	case StatusStreaming:
		return "Writing..."
	case StatusSaving:
		return "Saving..."
	case StatusError:
		return "Error"
	case StatusOffline:
		return "Backend offline"
	default:
		return "Unknown"
	}
}

// Shortcut is one key hint shown in the status bar.
type Shortcut struct {
	Key  string
	Desc string
}

// StatusBar renders the bottom status line.
type StatusBar struct {
	Status    Status
	Message   string // overrides Status.String() when set
	Shortcuts []Shortcut
	Width     int

	theme *styles.Theme
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Status: StatusReady,
		Width:  80,
		theme:  theme,
	}
}

// View renders the status bar.
func (b *StatusBar) View() string {
	label := b.Message
	if label == "" {
		label = b.Status.String()
	}

	var indicator string
	switch b.Status {
	case StatusReady:
		indicator = b.theme.StatusOK.Render("* " + label)
	case StatusError, StatusOffline:
		indicator = b.theme.ErrorTitle.Render("! " + label)
	default:
		indicator = b.theme.StatusBusy.Render("~ " + label)
	}

	hints := make([]string, 0, len(b.Shortcuts))
	for _, sc := range b.Shortcuts {
		hints = append(hints,
			b.theme.ShortcutKey.Render(sc.Key)+b.theme.ShortcutDesc.Render(" "+sc.Desc))
	}
	right := strings.Join(hints, b.theme.ShortcutDesc.Render(" | "))

	left := indicator
	gap := b.Width - util.StringWidth(stripForMeasure(left)) - util.StringWidth(stripForMeasure(right)) - 2
	if gap < 1 {
		gap = 1
	}
	return b.theme.StatusBar.Width(b.Width).Render(left + strings.Repeat(" ", gap) + right)
}

// stripForMeasure removes ANSI escape sequences so padding math uses the
// visible width.
func stripForMeasure(s string) string {
	var out strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		case r == '\x1b':
			inEscape = true
		default:
			out.WriteRune(r)
		}
	}
	return out.String()
}
