// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session implements the streaming chat session: per-turn scratch
// state and the commit rules that turn it into durable history.
package session

import (
	"errors"
	"strings"

	"github.com/morganforge/inkwell-tui/internal/model"
)

// ErrTurnActive is returned by Begin while a turn is still streaming.
// There is no queue: the caller keeps the submit control disabled until the
// active turn reaches end or error.
var ErrTurnActive = errors.New("a turn is already active")

// Session owns the chat history, the persisted retrieval context and the
// single active turn. All methods must be called from one goroutine (the UI
// event loop); ordering comes from its single-consumer property, not from
// locks.
//
// Every event-applying method takes the turn token it was produced for and
// ignores the call when the token is not the active turn's. This makes late
// events from a superseded or torn-down turn harmless.
type Session struct {
	transcript *model.Transcript
	context    string
	active     *Turn
}

// New creates an empty session.
func New() *Session {
	return &Session{transcript: model.NewTranscript()}
}

// =============================================================================
// TURN LIFECYCLE
// =============================================================================

// Begin starts a new turn for the given prompt. It appends the user message
// to history synchronously, resets scratch state by installing a fresh Turn,
// and returns it. Fails with ErrTurnActive while another turn is streaming.
//
// The request payload for the backend is read afterwards: History() carries
// the prompt as its last message, Context() is the old-context fallback.
func (s *Session) Begin(prompt string) (*Turn, error) {
	if s.active != nil {
		return nil, ErrTurnActive
	}

	s.transcript.Append(model.NewUserMessage(prompt))
	s.active = newTurn()
	return s.active, nil
}

// CommitEnd finalizes the turn on the stream's end event:
//
//  1. The accumulated answer is appended to history as an assistant message,
//     even when empty - an empty answer commits as an empty message rather
//     than silently vanishing.
//  2. The accumulated context replaces the persisted context only when it is
//     non-blank; an empty-context turn leaves the prior context untouched so
//     a partially failed retrieval cannot erase it.
//  3. The turn stops being active, permitting the next one.
//
// Returns false without effect when token is not the active turn's.
func (s *Session) CommitEnd(token string) bool {
	turn := s.activeFor(token)
	if turn == nil {
		return false
	}

	s.transcript.Append(model.NewAssistantMessage(turn.Text()))
	if ctx := turn.Context(); strings.TrimSpace(ctx) != "" {
		s.context = ctx
	}
	s.active = nil
	return true
}

// Fail ends the turn on a transport error. The half-streamed answer is
// discarded rather than committed and the persisted context is untouched;
// the session merely returns to a submittable state.
//
// Returns false without effect when token is not the active turn's.
func (s *Session) Fail(token string) bool {
	if s.activeFor(token) == nil {
		return false
	}
	s.active = nil
	return true
}

// =============================================================================
// EVENT APPLICATION
// =============================================================================

// ApplyQueries replaces the active turn's query list if queries is non-empty.
// Reports whether the event was applied.
func (s *Session) ApplyQueries(token string, queries []string) bool {
	turn := s.activeFor(token)
	if turn == nil {
		return false
	}
	turn.applyQueries(queries)
	return true
}

// ApplyContext appends one retrieved passage to the active turn.
// Reports whether the event was applied.
func (s *Session) ApplyContext(token, passage string) bool {
	turn := s.activeFor(token)
	if turn == nil {
		return false
	}
	turn.applyContext(passage)
	return true
}

// ApplyText appends one answer chunk to the active turn.
// Reports whether the event was applied.
func (s *Session) ApplyText(token, chunk string) bool {
	turn := s.activeFor(token)
	if turn == nil {
		return false
	}
	turn.applyText(chunk)
	return true
}

func (s *Session) activeFor(token string) *Turn {
	if s.active == nil || s.active.token != token {
		return nil
	}
	return s.active
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

// Loading reports whether a turn is currently streaming. While true, the
// submit control must stay disabled.
func (s *Session) Loading() bool {
	return s.active != nil
}

// Active returns the streaming turn, or nil between turns. The returned
// turn's snapshots are the live scratch state for rendering.
func (s *Session) Active() *Turn {
	return s.active
}

// History returns the committed chat history in order.
func (s *Session) History() []model.ChatMessage {
	return s.transcript.Messages()
}

// Transcript exposes the underlying history store, e.g. for archiving.
func (s *Session) Transcript() *model.Transcript {
	return s.transcript
}

// Context returns the persisted retrieval context: the last committed
// non-blank turn context, used as the old_context fallback for the next turn.
func (s *Session) Context() string {
	return s.context
}
