// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file implements streaming optimization for smooth, flicker-free
// rendering while the answer streams in. The StreamingBuffer batches tokens
// and releases them at a capped frame rate so the viewport is not re-rendered
// for every single token.
package chat

import (
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/time/rate"
)

// =============================================================================
// STREAMING BUFFER
// =============================================================================

// StreamingBuffer batches answer tokens for efficient rendering. Tokens
// accumulate until either the batch size threshold is reached or the rate
// limiter permits another frame.
//
// Thread-safety: tokens arrive from the stream goroutine while flushes happen
// on the Bubble Tea loop, so all operations take the mutex.
type StreamingBuffer struct {
	mu         sync.Mutex
	buffer     strings.Builder
	tokenCount int

	batchSize int
	limiter   *rate.Limiter // paces flushes at maxFPS
}

// NewStreamingBuffer creates a streaming buffer with default settings:
// 15 tokens per batch at up to 30 frames per second.
func NewStreamingBuffer() *StreamingBuffer {
	return NewStreamingBufferWithConfig(15, 30)
}

// NewStreamingBufferWithConfig creates a streaming buffer with a custom batch
// size and frame-rate cap.
func NewStreamingBufferWithConfig(batchSize, maxFPS int) *StreamingBuffer {
	if batchSize <= 0 {
		batchSize = 15
	}
	if maxFPS <= 0 || maxFPS > 60 {
		maxFPS = 30
	}

	return &StreamingBuffer{
		batchSize: batchSize,
		limiter:   rate.NewLimiter(rate.Limit(maxFPS), 1),
	}
}

// Write adds a token to the buffer. Called from the stream goroutine.
func (sb *StreamingBuffer) Write(token string) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	sb.buffer.WriteString(token)
	sb.tokenCount++
}

// Flush returns the accumulated content if a flush is due: the batch is full
// or the limiter grants another frame. Called from the Bubble Tea loop.
func (sb *StreamingBuffer) Flush() (string, bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if sb.buffer.Len() == 0 {
		return "", false
	}
	if sb.tokenCount < sb.batchSize && !sb.limiter.Allow() {
		return "", false
	}
	return sb.drainLocked()
}

// ForceFlush immediately returns all buffered content regardless of
// thresholds. Used when the stream ends so no tokens are left unrendered.
func (sb *StreamingBuffer) ForceFlush() (string, bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if sb.buffer.Len() == 0 {
		return "", false
	}
	return sb.drainLocked()
}

// Reset clears the buffer without flushing. Use when a turn fails or a new
// one begins.
func (sb *StreamingBuffer) Reset() {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	sb.buffer.Reset()
	sb.tokenCount = 0
}

// SetMaxFPS replaces the frame-rate cap, clamping to the valid range.
func (sb *StreamingBuffer) SetMaxFPS(maxFPS int) {
	if maxFPS <= 0 || maxFPS > 60 {
		maxFPS = 30
	}
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.limiter.SetLimit(rate.Limit(maxFPS))
}

// Pending returns the number of tokens waiting to be flushed.
func (sb *StreamingBuffer) Pending() int {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.tokenCount
}

func (sb *StreamingBuffer) drainLocked() (string, bool) {
	content := sb.buffer.String()
	sb.buffer.Reset()
	sb.tokenCount = 0
	return content, true
}

// =============================================================================
// STREAMING TICK COMMAND
// =============================================================================

// streamTickCmd schedules the next render tick while a stream is active.
func streamTickCmd() tea.Cmd {
	return tea.Tick(33*time.Millisecond, func(t time.Time) tea.Msg {
		return StreamTickMsg{Time: t}
	})
}

// clearStatusCmd clears a transient status message after a short delay.
func clearStatusCmd() tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return StatusClearMsg{}
	})
}
