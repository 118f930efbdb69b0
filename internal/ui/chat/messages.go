// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file defines the Bubble Tea messages flowing through the chat view.
// Every streaming message carries the turn token it belongs to; the update
// loop discards messages whose token is not the active turn's.
package chat

import (
	"time"

	"github.com/morganforge/inkwell-tui/internal/config"
)

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// StreamQueriesMsg delivers the retrieval query list for a turn.
type StreamQueriesMsg struct {
	TurnID  string
	Queries []string
}

// StreamContextMsg delivers one retrieved passage for a turn.
type StreamContextMsg struct {
	TurnID  string
	Passage string
}

// StreamTokenMsg delivers one chunk of the generated answer.
type StreamTokenMsg struct {
	TurnID string
	Token  string
}

// StreamEndMsg signals successful completion of a turn's stream.
type StreamEndMsg struct {
	TurnID string
}

// StreamErrorMsg signals that a turn's stream failed before its end event.
type StreamErrorMsg struct {
	TurnID string
	Error  error
}

// StreamTickMsg drives the render loop while tokens are buffering.
type StreamTickMsg struct {
	Time time.Time
}

// =============================================================================
// BACKEND MESSAGES
// =============================================================================

// BackendStatusMsg reports the startup health check result.
type BackendStatusMsg struct {
	Err error
}

// =============================================================================
// ARCHIVE MESSAGES
// =============================================================================

// SnapshotSavedMsg reports the result of an explicit transcript save.
type SnapshotSavedMsg struct {
	ID  string
	Err error
}

// =============================================================================
// UI MESSAGES
// =============================================================================

// ConfigReloadedMsg delivers a config picked up by the file watcher.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// ErrorDismissMsg clears the error box.
type ErrorDismissMsg struct{}

// StatusClearMsg clears a transient status-bar message.
type StatusClearMsg struct{}
