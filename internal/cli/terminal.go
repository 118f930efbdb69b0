// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsStdoutTTY reports whether stdout is attached to a terminal. Markdown
// rendering and ANSI styling are disabled when piping.
func IsStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// IsStderrTTY reports whether stderr is attached to a terminal.
func IsStderrTTY() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// TerminalWidth returns the stdout width, or 80 when it cannot be measured.
func TerminalWidth() int {
	if !IsStdoutTTY() {
		return 80
	}
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// ColorProfile returns the detected terminal color capability.
func ColorProfile() termenv.Profile {
	return termenv.ColorProfile()
}
