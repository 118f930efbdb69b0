// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the inkwell generation and
// knowledge-base service.
package backend

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/morganforge/inkwell-tui/internal/model"
)

// MaxEventSize is the maximum allowed size for a single SSE event (64KB).
const MaxEventSize = 64 * 1024

// =============================================================================
// STREAM HANDLER
// =============================================================================

// StreamHandler receives the demultiplexed events of one /generate stream.
// Callbacks run synchronously on the stream-reading goroutine, in the exact
// order the server emitted the events. Any nil callback is skipped.
//
// OnEnd fires at most once, only when the server sent its end event. A
// transport failure before end is reported through Generate's return value
// instead, never through OnEnd.
type StreamHandler struct {
	// OnQueries delivers the retrieval query list for this turn.
	OnQueries func(queries []string)

	// OnContext delivers one retrieved passage. May fire zero or more times.
	OnContext func(passage string)

	// OnText delivers one incremental chunk of the generated answer.
	OnText func(chunk string)

	// OnEnd signals successful completion of the stream.
	OnEnd func()
}

// GenerateRequest is the body of POST /generate.
type GenerateRequest struct {
	Messages   []model.ChatMessage `json:"messages"`
	OldContext string              `json:"old_context"`
}

// =============================================================================
// STREAMING GENERATION
// =============================================================================

// Generate opens one event stream for one turn and dispatches its events to
// the handler. Messages is the full prior history including the new user
// message; oldContext is the last committed retrieval context, sent as a
// fallback for the backend's retrieval step.
//
// Returns nil after the server's end event. Returns a non-nil error exactly
// once if the connection cannot be established or drops before end; no retry
// is attempted. Cancelling ctx closes the connection.
func (c *Client) Generate(ctx context.Context, messages []model.ChatMessage, oldContext string, h StreamHandler) error {
	body, err := json.Marshal(GenerateRequest{Messages: messages, OldContext: oldContext})
	if err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return ErrTimeout
		}
		return ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "generate request failed: " + resp.Status,
		}
	}

	return processStream(ctx, resp.Body, h)
}

// processStream reads SSE events until the end event, dispatching each to
// the handler. EOF before end is a transport failure.
func processStream(ctx context.Context, body io.Reader, h StreamHandler) error {
	reader := newSSEReader(body)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		event, data, err := reader.ReadEvent()
		if err != nil {
			if err == io.EOF {
				// The server closes the stream only after end; a bare
				// EOF means the connection dropped mid-turn.
				return ErrStreamInterrupted
			}
			return &ClientError{Type: ErrTypeStreamInterrupted, Message: "stream read failed", Cause: err}
		}

		switch event {
		case "queries":
			// Payload is a JSON array of query strings.
			var queries []string
			if err := json.Unmarshal(data, &queries); err != nil {
				continue // skip malformed payloads
			}
			if h.OnQueries != nil {
				h.OnQueries(queries)
			}

		case "context":
			var passage string
			if err := json.Unmarshal(data, &passage); err != nil {
				continue
			}
			if h.OnContext != nil {
				h.OnContext(passage)
			}

		case "text":
			var chunk string
			if err := json.Unmarshal(data, &chunk); err != nil {
				continue
			}
			if h.OnText != nil {
				h.OnText(chunk)
			}

		case "end":
			if h.OnEnd != nil {
				h.OnEnd()
			}
			return nil

		default:
			// Unknown event names are ignored.
		}
	}
}

// =============================================================================
// SSE READER
// =============================================================================

// sseReader parses Server-Sent Events from a stream.
type sseReader struct {
	reader *bufio.Reader
}

func newSSEReader(r io.Reader) *sseReader {
	return &sseReader{reader: bufio.NewReader(r)}
}

// ReadEvent reads the next SSE event and returns its event name and joined
// data payload. Events with no data field at all are still returned once a
// name was seen (the end event carries no payload). Returns io.EOF when the
// stream closes cleanly between events.
func (s *sseReader) ReadEvent() (string, []byte, error) {
	var eventType string
	var sawEvent bool
	var dataLines [][]byte
	size := 0

	flush := func() (string, []byte, error) {
		return eventType, bytes.Join(dataLines, []byte("\n")), nil
	}

	for {
		line, err := s.reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				if sawEvent || len(dataLines) > 0 {
					return flush()
				}
				return "", nil, io.EOF
			}
			return "", nil, err
		}

		line = bytes.TrimRight(line, "\r\n")

		// Empty line signals end of event.
		if len(line) == 0 {
			if sawEvent || len(dataLines) > 0 {
				return flush()
			}
			continue
		}

		size += len(line)
		if size > MaxEventSize {
			return "", nil, errors.New("sse event exceeds size limit")
		}

		switch {
		case bytes.HasPrefix(line, []byte("event:")):
			eventType = string(bytes.TrimSpace(line[6:]))
			sawEvent = true
		case bytes.HasPrefix(line, []byte("data:")):
			data := line[5:]
			// One optional leading space is part of the field syntax.
			if len(data) > 0 && data[0] == ' ' {
				data = data[1:]
			}
			dataLines = append(dataLines, data)
		default:
			// Ignore id:, retry: and comment lines starting with ':'.
		}
	}
}
