// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/inkwell-tui/internal/backend"
	"github.com/morganforge/inkwell-tui/internal/model"
)

// =============================================================================
// STREAM RUNNER
// =============================================================================

// StreamRunner bridges the backend event stream into the Bubble Tea program.
// It runs on its own goroutine and forwards each stream event as a message
// via program.Send; the update loop stays the single consumer of session
// state.
type StreamRunner struct {
	program *tea.Program
	client  *backend.Client
}

// NewStreamRunner creates a stream runner.
func NewStreamRunner(program *tea.Program, client *backend.Client) *StreamRunner {
	return &StreamRunner{program: program, client: client}
}

// Run opens the generation stream for one turn and forwards its events.
// Blocks until the stream ends; call it from a goroutine.
func (r *StreamRunner) Run(ctx context.Context, messages []model.ChatMessage, oldContext, turnID string) {
	if r.program == nil {
		return
	}
	if r.client == nil {
		r.program.Send(StreamErrorMsg{TurnID: turnID, Error: backend.ErrUnavailable})
		return
	}

	err := r.client.Generate(ctx, messages, oldContext, backend.StreamHandler{
		OnQueries: func(queries []string) {
			r.program.Send(StreamQueriesMsg{TurnID: turnID, Queries: queries})
		},
		OnContext: func(passage string) {
			r.program.Send(StreamContextMsg{TurnID: turnID, Passage: passage})
		},
		OnText: func(chunk string) {
			r.program.Send(StreamTokenMsg{TurnID: turnID, Token: chunk})
		},
		OnEnd: func() {
			r.program.Send(StreamEndMsg{TurnID: turnID})
		},
	})
	if err != nil {
		r.program.Send(StreamErrorMsg{TurnID: turnID, Error: err})
	}
}

// CheckBackendCmd probes the backend and reports the result.
func CheckBackendCmd(client *backend.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return BackendStatusMsg{Err: client.CheckRunning(ctx)}
	}
}
