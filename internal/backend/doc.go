// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the inkwell generation and
// knowledge-base service.
//
// The backend owns all retrieval, generation and persistence; this client is
// a thin wire adapter over its fixed local origin:
//
//   - POST /generate streams one turn as named server-sent events
//     (queries, context, text, end), each payload individually JSON-encoded
//   - GET/POST /facts and PUT/DELETE /facts/{id} manage the facts store
//   - GET /getStyle and POST /postStyle manage the style singleton
//
// Streaming semantics (see Generate): events reach the handler in server
// order, the end callback fires at most once, and a connection that drops
// before end surfaces as exactly one returned error with no retry. The
// client keeps no state between turns.
package backend
