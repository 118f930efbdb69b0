// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by the inkwell UI and
// the backend client.
package model

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is a single entry in the chat history. Immutable once created;
// position in the transcript encodes chronology.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewUserMessage creates a user message.
func NewUserMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates an assistant message.
func NewAssistantMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleAssistant, Content: content}
}
