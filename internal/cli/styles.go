// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/inkwell-tui/internal/ui/styles"
)

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Indigo).
			Bold(true)

	welcomeStyle = lipgloss.NewStyle().
			Foreground(styles.Teal).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	commandStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald)

	warningStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)

	summaryHeaderStyle = lipgloss.NewStyle().
				Foreground(styles.Indigo).
				Bold(true)
)
