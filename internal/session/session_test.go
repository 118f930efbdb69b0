// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/morganforge/inkwell-tui/internal/backend"
	"github.com/morganforge/inkwell-tui/internal/model"
)

func begin(t *testing.T, s *Session, prompt string) *Turn {
	t.Helper()
	turn, err := s.Begin(prompt)
	if err != nil {
		t.Fatalf("Begin(%q) failed: %v", prompt, err)
	}
	return turn
}

func TestBeginAppendsUserMessage(t *testing.T) {
	s := New()
	begin(t, s, "Describe the castle.")

	history := s.History()
	if len(history) != 1 {
		t.Fatalf("expected 1 message, got %d", len(history))
	}
	if history[0].Role != model.RoleUser || history[0].Content != "Describe the castle." {
		t.Errorf("unexpected message: %+v", history[0])
	}
	if !s.Loading() {
		t.Error("expected session to be loading after Begin")
	}
}

func TestBeginRejectsWhileActive(t *testing.T) {
	s := New()
	begin(t, s, "first")

	if _, err := s.Begin("second"); !errors.Is(err, ErrTurnActive) {
		t.Fatalf("expected ErrTurnActive, got %v", err)
	}
	if s.Transcript().Len() != 1 {
		t.Errorf("rejected Begin must not append, have %d messages", s.Transcript().Len())
	}
}

func TestApplyQueriesKeepsLastNonEmpty(t *testing.T) {
	s := New()
	turn := begin(t, s, "prompt")
	token := turn.Token()

	s.ApplyQueries(token, []string{"castle history"})
	s.ApplyQueries(token, []string{"castle description", "cliff"})

	got := turn.Queries()
	if len(got) != 2 || got[0] != "castle description" || got[1] != "cliff" {
		t.Errorf("queries = %v, want replacement by latest list", got)
	}

	// An empty list must not blank out what is already shown.
	s.ApplyQueries(token, nil)
	if got := turn.Queries(); len(got) != 2 {
		t.Errorf("empty queries event cleared the list: %v", got)
	}
}

func TestApplyContextAppendsWithSeparator(t *testing.T) {
	s := New()
	turn := begin(t, s, "prompt")
	token := turn.Token()

	s.ApplyContext(token, "First passage.")
	s.ApplyContext(token, "Second passage.")

	want := "First passage.\n\nSecond passage.\n\n"
	if turn.Context() != want {
		t.Errorf("context = %q, want %q", turn.Context(), want)
	}
}

func TestApplyTextConcatenatesChunks(t *testing.T) {
	s := New()
	turn := begin(t, s, "prompt")
	token := turn.Token()

	for _, chunk := range []string{"The", " castle", " looms."} {
		s.ApplyText(token, chunk)
	}
	if turn.Text() != "The castle looms." {
		t.Errorf("text = %q", turn.Text())
	}
}

func TestCommitEndAppendsAssistantAndPromotesContext(t *testing.T) {
	s := New()
	turn := begin(t, s, "prompt")
	token := turn.Token()

	s.ApplyContext(token, "The castle stands on a cliff.")
	s.ApplyText(token, "It looms.")

	if !s.CommitEnd(token) {
		t.Fatal("CommitEnd returned false for active token")
	}

	history := s.History()
	if len(history) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history))
	}
	if history[1].Role != model.RoleAssistant || history[1].Content != "It looms." {
		t.Errorf("assistant message = %+v", history[1])
	}
	if s.Context() != "The castle stands on a cliff.\n\n" {
		t.Errorf("persisted context = %q", s.Context())
	}
	if s.Loading() {
		t.Error("session still loading after commit")
	}
	_ = turn
}

func TestCommitEndEmptyAnswerStillCommits(t *testing.T) {
	s := New()
	turn := begin(t, s, "prompt")

	if !s.CommitEnd(turn.Token()) {
		t.Fatal("CommitEnd returned false")
	}
	last, ok := s.Transcript().Last()
	if !ok || last.Role != model.RoleAssistant || last.Content != "" {
		t.Errorf("expected empty assistant message, got %+v ok=%v", last, ok)
	}
}

func TestCommitEndBlankContextKeepsPrevious(t *testing.T) {
	s := New()

	turn := begin(t, s, "first")
	s.ApplyContext(turn.Token(), "Durable passage.")
	s.CommitEnd(turn.Token())

	turn = begin(t, s, "second")
	s.ApplyText(turn.Token(), "answer")
	s.CommitEnd(turn.Token())

	if s.Context() != "Durable passage.\n\n" {
		t.Errorf("context-free turn overwrote persisted context: %q", s.Context())
	}

	// Whitespace-only context counts as blank too.
	turn = begin(t, s, "third")
	s.ApplyContext(turn.Token(), "   ")
	s.CommitEnd(turn.Token())

	if s.Context() != "Durable passage.\n\n" {
		t.Errorf("blank context overwrote persisted context: %q", s.Context())
	}
}

func TestFailDiscardsTurnWithoutCommit(t *testing.T) {
	s := New()
	turn := begin(t, s, "first")
	s.ApplyContext(turn.Token(), "Kept passage.")
	s.CommitEnd(turn.Token())

	turn = begin(t, s, "second")
	s.ApplyText(turn.Token(), "half an ans")
	s.ApplyContext(turn.Token(), "Partial passage.")

	if !s.Fail(turn.Token()) {
		t.Fatal("Fail returned false for active token")
	}
	if s.Loading() {
		t.Error("session still loading after Fail")
	}
	if got := s.Transcript().Len(); got != 3 {
		t.Errorf("failed turn committed a message, have %d want 3", got)
	}
	if s.Context() != "Kept passage.\n\n" {
		t.Errorf("failed turn changed persisted context: %q", s.Context())
	}

	// The session is submittable again.
	if _, err := s.Begin("third"); err != nil {
		t.Errorf("Begin after Fail: %v", err)
	}
}

func TestStaleTokenEventsDiscarded(t *testing.T) {
	s := New()
	stale := begin(t, s, "first")
	s.Fail(stale.Token())
	fresh := begin(t, s, "second")

	if s.ApplyText(stale.Token(), "ghost") {
		t.Error("ApplyText accepted a stale token")
	}
	if s.ApplyQueries(stale.Token(), []string{"ghost"}) {
		t.Error("ApplyQueries accepted a stale token")
	}
	if s.ApplyContext(stale.Token(), "ghost") {
		t.Error("ApplyContext accepted a stale token")
	}
	if s.CommitEnd(stale.Token()) {
		t.Error("CommitEnd accepted a stale token")
	}
	if s.Fail(stale.Token()) {
		t.Error("Fail accepted a stale token")
	}

	if fresh.Text() != "" || fresh.Context() != "" || len(fresh.Queries()) != 0 {
		t.Error("stale events bled into the fresh turn")
	}
	if !s.Loading() {
		t.Error("stale CommitEnd/Fail ended the fresh turn")
	}
}

// TestGenerateRoundTrip drives a full turn through the backend client against
// a fake SSE endpoint and checks the committed session state.
func TestGenerateRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/generate" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: queries\ndata: [\"castle description\"]\n\n")
		fmt.Fprint(w, "event: context\ndata: \"The castle stands on a cliff.\"\n\n")
		for _, chunk := range []string{"The", " castle", " looms."} {
			fmt.Fprintf(w, "event: text\ndata: %q\n\n", chunk)
		}
		fmt.Fprint(w, "event: end\ndata: \"\"\n\n")
	}))
	defer srv.Close()

	client := backend.NewClientWithConfig(&backend.ClientConfig{BaseURL: srv.URL})
	s := New()
	turn := begin(t, s, "Describe the castle.")
	token := turn.Token()

	err := client.Generate(context.Background(), s.History(), s.Context(), backend.StreamHandler{
		OnQueries: func(qs []string) { s.ApplyQueries(token, qs) },
		OnContext: func(p string) { s.ApplyContext(token, p) },
		OnText:    func(c string) { s.ApplyText(token, c) },
		OnEnd:     func() { s.CommitEnd(token) },
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	history := s.History()
	if len(history) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history))
	}
	if history[1].Content != "The castle looms." {
		t.Errorf("assistant content = %q", history[1].Content)
	}
	if s.Context() != "The castle stands on a cliff.\n\n" {
		t.Errorf("persisted context = %q", s.Context())
	}
	if s.Loading() {
		t.Error("session still loading after end")
	}
}

// TestGenerateInterruptedStream verifies that a stream cut before end leaves
// history uncommitted once the caller routes the error to Fail.
func TestGenerateInterruptedStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: text\ndata: \"half\"\n\n")
	}))
	defer srv.Close()

	client := backend.NewClientWithConfig(&backend.ClientConfig{BaseURL: srv.URL})
	s := New()
	turn := begin(t, s, "prompt")
	token := turn.Token()

	err := client.Generate(context.Background(), s.History(), s.Context(), backend.StreamHandler{
		OnText: func(c string) { s.ApplyText(token, c) },
		OnEnd:  func() { s.CommitEnd(token) },
	})
	if !errors.Is(err, backend.ErrStreamInterrupted) {
		t.Fatalf("expected ErrStreamInterrupted, got %v", err)
	}
	s.Fail(token)

	if got := s.Transcript().Len(); got != 1 {
		t.Errorf("interrupted turn committed a message, have %d want 1", got)
	}
	if s.Loading() {
		t.Error("session still loading after Fail")
	}
}
