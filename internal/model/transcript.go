// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by the inkwell UI and
// the backend client.
package model

import "github.com/morganforge/inkwell-tui/internal/util"

// Transcript is the append-only chat history for one UI session. The only
// mutation is appending one message; there is no edit or delete. It lives in
// memory for the lifetime of the session and is never written to durable
// storage by the session itself.
type Transcript struct {
	messages []ChatMessage
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

// Append adds one message to the end of the transcript.
func (t *Transcript) Append(msg ChatMessage) {
	t.messages = append(t.messages, msg)
}

// Messages returns a copy of the history in chronological order. Callers may
// hold the returned slice across later appends.
func (t *Transcript) Messages() []ChatMessage {
	out := make([]ChatMessage, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	return len(t.messages)
}

// Last returns the most recent message and true, or a zero message and false
// when the transcript is empty.
func (t *Transcript) Last() (ChatMessage, bool) {
	if len(t.messages) == 0 {
		return ChatMessage{}, false
	}
	return t.messages[len(t.messages)-1], true
}

// Preview returns a short summary taken from the first user message, for
// archive listings.
func (t *Transcript) Preview() string {
	for _, msg := range t.messages {
		if msg.Role == RoleUser && msg.Content != "" {
			return util.TruncateRunes(util.FirstLine(msg.Content), 50)
		}
	}
	return "Empty session"
}
