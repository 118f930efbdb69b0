// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by the inkwell UI and
// the backend client.
//
// # Types
//
//   - ChatMessage: one entry in the chat history (role + content)
//   - Transcript: the append-only in-memory chat history for a session
//   - Fact: one record in the story facts knowledge base
//   - Style: the singleton writing-style profile
//
// All types mirror the backend's JSON wire format exactly; see the backend
// package for the endpoints that produce and consume them.
package model
