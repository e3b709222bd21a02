// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes provides the entity types shared by the Deck client:
// conversations, plans, memories, projects, usage records, and git status.
//
// All entities are owned and authoritative on the backend. The client holds
// caches of these types (see pkg/store) whose invariant is eventual
// consistency with server state after each mutation's response is applied.
package datatypes

import (
	"sort"
	"time"
)

// =============================================================================
// Conversation
// =============================================================================

// ConversationStatus is the lifecycle state of a conversation.
type ConversationStatus string

const (
	// ConversationActive is a live conversation shown in the sidebar.
	ConversationActive ConversationStatus = "ACTIVE"

	// ConversationArchived is a soft-deleted conversation, hidden by default.
	ConversationArchived ConversationStatus = "ARCHIVED"
)

// Conversation is one chat thread with an agent.
//
// A conversation may reference a project (ProjectID empty means unscoped)
// and may have at most one active plan attached (see Plan.ConversationID).
type Conversation struct {
	ID           string             `json:"id"`
	Title        string             `json:"title"`
	ProjectID    string             `json:"project_id,omitempty"`
	Status       ConversationStatus `json:"status"`
	Tags         []string           `json:"tags,omitempty"`
	Pinned       bool               `json:"pinned"`
	MessageCount int                `json:"message_count"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// LastActivity returns UpdatedAt, falling back to CreatedAt when the
// backend never set an update timestamp. A zero return means the
// conversation carries no usable timestamp at all.
func (c *Conversation) LastActivity() time.Time {
	if !c.UpdatedAt.IsZero() {
		return c.UpdatedAt
	}
	return c.CreatedAt
}

// HasTag reports whether the conversation carries the given tag.
func (c *Conversation) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// SortedTags returns the tag set in lexicographic order without
// mutating the conversation.
func (c *Conversation) SortedTags() []string {
	out := make([]string, len(c.Tags))
	copy(out, c.Tags)
	sort.Strings(out)
	return out
}

// =============================================================================
// Message
// =============================================================================

// MessageRole identifies the author of a chat message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// Message is one turn in a conversation.
type Message struct {
	ID             string      `json:"id"`
	ConversationID string      `json:"conversation_id"`
	Role           MessageRole `json:"role"`
	Content        string      `json:"content"`
	CreatedAt      time.Time   `json:"created_at"`
}
