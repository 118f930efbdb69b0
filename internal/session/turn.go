// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"strings"

	"github.com/google/uuid"
)

// Turn is the scratch state of one in-flight prompt/answer cycle. All three
// accumulators start empty at turn start and are superseded wholesale when
// the next turn begins. A Turn is only ever mutated by the session that owns
// it, on the UI event loop.
//
// Each Turn carries a unique token so late events from an abandoned turn can
// be recognized and discarded instead of bleeding into the next one.
type Turn struct {
	token string

	text    strings.Builder
	context strings.Builder
	queries []string
}

func newTurn() *Turn {
	return &Turn{token: uuid.NewString()}
}

// Token returns the unique identifier of this turn.
func (t *Turn) Token() string {
	return t.token
}

// applyQueries replaces the query list, but only with a non-empty one: a
// backend that emits an empty or redundant list must not blank out queries
// already shown for this turn.
func (t *Turn) applyQueries(queries []string) {
	if len(queries) == 0 {
		return
	}
	t.queries = append([]string(nil), queries...)
}

// applyContext appends one retrieved passage plus a blank-line separator.
func (t *Turn) applyContext(passage string) {
	t.context.WriteString(passage)
	t.context.WriteString("\n\n")
}

// applyText appends one chunk of the generated answer.
func (t *Turn) applyText(chunk string) {
	t.text.WriteString(chunk)
}

// Text returns the answer accumulated so far.
func (t *Turn) Text() string {
	return t.text.String()
}

// Context returns the retrieved passages joined with blank-line separators.
func (t *Turn) Context() string {
	return t.context.String()
}

// Queries returns the most recent non-empty query list.
func (t *Turn) Queries() []string {
	return append([]string(nil), t.queries...)
}
