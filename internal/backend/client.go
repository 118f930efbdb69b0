// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend provides the HTTP client for the inkwell generation and
// knowledge-base service.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/morganforge/inkwell-tui/internal/model"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the backend client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeUnavailable
	ErrTypeTimeout
	ErrTypeNotFound
	ErrTypeConnection
	ErrTypeInvalidResponse
	ErrTypeStreamInterrupted
)

// Sentinel errors for easy checking.
var (
	ErrUnavailable       = &ClientError{Type: ErrTypeUnavailable, Message: "inkwell backend is not reachable"}
	ErrTimeout           = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrNotFound          = &ClientError{Type: ErrTypeNotFound, Message: "record not found"}
	ErrStreamInterrupted = &ClientError{Type: ErrTypeStreamInterrupted, Message: "stream dropped before end"}
)

// IsUnavailable checks if an error indicates the backend is unreachable.
func IsUnavailable(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeUnavailable
	}
	return false
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeTimeout
	}
	return false
}

// IsNotFound checks if an error is a record-not-found error.
func IsNotFound(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeNotFound
	}
	return false
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL is the backend origin (default: http://127.0.0.1:5000)
	// Note: explicit IPv4 address avoids IPv6 resolution issues on Windows
	BaseURL string

	// Timeout for plain request/response calls (default: 30s)
	Timeout time.Duration
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL: "http://127.0.0.1:5000",
		Timeout: 30 * time.Second,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the inkwell backend. It covers the
// request/response endpoints (facts, style, health) and the streaming
// /generate endpoint (see stream.go).
//
// The Client holds no per-turn state and is safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client

	// No timeout on this one; streaming lifetime is bounded by the
	// request context instead.
	streamClient *http.Client
}

// NewClient creates a backend client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a backend client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://127.0.0.1:5000"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &Client{
		config:       config,
		httpClient:   &http.Client{Timeout: config.Timeout},
		streamClient: &http.Client{},
	}
}

// BaseURL returns the configured backend origin.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// CheckRunning verifies that the backend is reachable.
func (c *Client) CheckRunning(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/facts", nil)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ClientError{
			Type:    ErrTypeConnection,
			Message: "unexpected status from backend: " + resp.Status,
		}
	}
	return nil
}

// =============================================================================
// FACTS
// =============================================================================

// ListFacts retrieves all facts from the knowledge base.
func (c *Client) ListFacts(ctx context.Context) ([]model.Fact, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/facts", nil)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "failed to list facts: " + resp.Status,
		}
	}

	var facts []model.Fact
	if err := json.NewDecoder(resp.Body).Decode(&facts); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode facts", Cause: err}
	}
	return facts, nil
}

// CreateFact adds one fact. The ID may be blank; the backend assigns one.
func (c *Client) CreateFact(ctx context.Context, fact model.Fact) error {
	return c.sendJSON(ctx, http.MethodPost, "/facts", fact)
}

// UpdateFact replaces the fact with the given ID.
func (c *Client) UpdateFact(ctx context.Context, fact model.Fact) error {
	if fact.ID == "" {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "fact has no id"}
	}
	return c.sendJSON(ctx, http.MethodPut, "/facts/"+url.PathEscape(fact.ID), fact)
}

// DeleteFact removes the fact with the given ID.
func (c *Client) DeleteFact(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.config.BaseURL+"/facts/"+url.PathEscape(id), nil)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "failed to delete fact: " + resp.Status,
		}
	}
	return nil
}

// =============================================================================
// STYLE
// =============================================================================

// GetStyle retrieves the singleton writing-style profile.
func (c *Client) GetStyle(ctx context.Context) (model.Style, error) {
	var style model.Style

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/getStyle", nil)
	if err != nil {
		return style, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return style, ErrTimeout
		}
		return style, ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return style, &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: "failed to get style: " + resp.Status,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(&style); err != nil {
		return style, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode style", Cause: err}
	}
	return style, nil
}

// SaveStyle replaces the singleton writing-style profile.
func (c *Client) SaveStyle(ctx context.Context, style model.Style) error {
	return c.sendJSON(ctx, http.MethodPost, "/postStyle", style)
}

// =============================================================================
// HELPERS
// =============================================================================

// sendJSON posts or puts a JSON body and discards the response body.
func (c *Client) sendJSON(ctx context.Context, method, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ClientError{
			Type:    ErrTypeInvalidResponse,
			Message: method + " " + path + " failed: " + resp.Status,
		}
	}
	return nil
}
