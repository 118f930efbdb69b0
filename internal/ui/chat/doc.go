// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view: prompt input, streaming answer
// rendering, and the retrieval panes for the active turn.
//
// The view owns a session.Session and is its only mutator. Stream events
// arrive as Bubble Tea messages from a StreamRunner goroutine, tagged with
// the turn token they belong to; events for a superseded turn are dropped
// in Update before they can touch the session.
package chat
