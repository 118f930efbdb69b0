// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morganforge/inkwell-tui/internal/model"
)

// fakeBackend is an in-memory stand-in for the inkwell service covering the
// facts and style endpoints.
type fakeBackend struct {
	mu     sync.Mutex
	facts  map[string]model.Fact
	style  model.Style
	nextID int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		facts: make(map[string]model.Fact),
		style: model.DefaultStyle(),
	}
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/facts", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		switch r.Method {
		case http.MethodGet:
			out := make([]model.Fact, 0, len(f.facts))
			for _, fact := range f.facts {
				out = append(out, fact)
			}
			json.NewEncoder(w).Encode(out)
		case http.MethodPost:
			var fact model.Fact
			if err := json.NewDecoder(r.Body).Decode(&fact); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			f.nextID++
			fact.ID = fmt.Sprintf("%d", f.nextID)
			f.facts[fact.ID] = fact
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/facts/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		id := r.URL.Path[len("/facts/"):]
		if _, ok := f.facts[id]; !ok {
			http.NotFound(w, r)
			return
		}

		switch r.Method {
		case http.MethodPut:
			var fact model.Fact
			if err := json.NewDecoder(r.Body).Decode(&fact); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			fact.ID = id
			f.facts[id] = fact
			w.WriteHeader(http.StatusOK)
		case http.MethodDelete:
			delete(f.facts, id)
			w.WriteHeader(http.StatusNoContent)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/getStyle", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		json.NewEncoder(w).Encode(f.style)
	})

	mux.HandleFunc("/postStyle", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		var style model.Style
		if err := json.NewDecoder(r.Body).Decode(&style); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.style = style
		w.WriteHeader(http.StatusOK)
	})

	return mux
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	srv := httptest.NewServer(newFakeBackend().handler())
	t.Cleanup(srv.Close)
	return NewClientWithConfig(&ClientConfig{BaseURL: srv.URL})
}

func TestFactsLifecycle(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	facts, err := client.ListFacts(ctx)
	require.NoError(t, err)
	assert.Empty(t, facts)

	require.NoError(t, client.CreateFact(ctx, model.Fact{
		Text:     "Mira is the keeper of the lighthouse.",
		Category: model.CategoryCharacter,
	}))
	require.NoError(t, client.CreateFact(ctx, model.Fact{
		Text:     "The kingdom taxes salt heavily.",
		Category: model.CategoryWorldbuilding,
	}))

	facts, err = client.ListFacts(ctx)
	require.NoError(t, err)
	require.Len(t, facts, 2)

	var mira model.Fact
	for _, fact := range facts {
		if fact.Category == model.CategoryCharacter {
			mira = fact
		}
	}
	require.NotEmpty(t, mira.ID, "created fact should carry a server-assigned id")

	mira.Text = "Mira abandoned the lighthouse years ago."
	require.NoError(t, client.UpdateFact(ctx, mira))

	facts, err = client.ListFacts(ctx)
	require.NoError(t, err)
	found := false
	for _, fact := range facts {
		if fact.ID == mira.ID {
			found = true
			assert.Equal(t, "Mira abandoned the lighthouse years ago.", fact.Text)
		}
	}
	assert.True(t, found)

	require.NoError(t, client.DeleteFact(ctx, mira.ID))
	facts, err = client.ListFacts(ctx)
	require.NoError(t, err)
	assert.Len(t, facts, 1)
}

func TestDeleteFactNotFound(t *testing.T) {
	client := newTestClient(t)
	err := client.DeleteFact(context.Background(), "does-not-exist")
	require.ErrorIs(t, err, ErrNotFound)
	assert.True(t, IsNotFound(err))
}

func TestUpdateFactRequiresID(t *testing.T) {
	client := newTestClient(t)
	err := client.UpdateFact(context.Background(), model.Fact{Text: "no id"})
	require.Error(t, err)
}

func TestStyleRoundTrip(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	style, err := client.GetStyle(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultStyle(), style)

	want := model.Style{
		POV:   "Third person omniscient",
		Tense: "Present tense",
		Style: "Sparse, clipped sentences. No adverbs.",
	}
	require.NoError(t, client.SaveStyle(ctx, want))

	got, err := client.GetStyle(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCheckRunning(t *testing.T) {
	client := newTestClient(t)
	require.NoError(t, client.CheckRunning(context.Background()))
}

func TestCheckRunningUnreachable(t *testing.T) {
	client := NewClientWithConfig(&ClientConfig{BaseURL: "http://127.0.0.1:1"})
	err := client.CheckRunning(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
	assert.True(t, IsUnavailable(err))
}

func TestClientErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("underlying")
	err := &ClientError{Type: ErrTypeConnection, Message: "wrapped", Cause: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "wrapped")
}
