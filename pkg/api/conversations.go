// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package api

import (
	"context"
	"net/url"

	"github.com/AleutianAI/AleutianDeck/pkg/datatypes"
)

// ConversationPatch is a partial update. Nil fields are left untouched
// by the backend.
type ConversationPatch struct {
	Title     *string                       `json:"title,omitempty"`
	ProjectID *string                       `json:"project_id,omitempty"`
	Status    *datatypes.ConversationStatus `json:"status,omitempty"`
	Tags      *[]string                     `json:"tags,omitempty"`
	Pinned    *bool                         `json:"pinned,omitempty"`
}

// ListConversations fetches every conversation visible to the token.
func (c *Client) ListConversations(ctx context.Context) ([]datatypes.Conversation, error) {
	var out []datatypes.Conversation
	if err := c.get(ctx, "/api/conversations", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetConversation fetches one conversation by id.
func (c *Client) GetConversation(ctx context.Context, id string) (*datatypes.Conversation, error) {
	var out datatypes.Conversation
	if err := c.get(ctx, "/api/conversations/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateConversation starts a new chat, optionally scoped to a project.
func (c *Client) CreateConversation(ctx context.Context, title, projectID string) (*datatypes.Conversation, error) {
	body := map[string]string{"title": title}
	if projectID != "" {
		body["project_id"] = projectID
	}
	var out datatypes.Conversation
	if err := c.post(ctx, "/api/conversations", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateConversation applies a partial update and returns the server's
// reconciled entity.
func (c *Client) UpdateConversation(ctx context.Context, id string, patch ConversationPatch) (*datatypes.Conversation, error) {
	var out datatypes.Conversation
	if err := c.patch(ctx, "/api/conversations/"+url.PathEscape(id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteConversation hard-deletes a conversation.
func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	return c.delete(ctx, "/api/conversations/"+url.PathEscape(id))
}

// ArchiveConversation soft-deletes a conversation.
func (c *Client) ArchiveConversation(ctx context.Context, id string) (*datatypes.Conversation, error) {
	var out datatypes.Conversation
	if err := c.post(ctx, "/api/conversations/"+url.PathEscape(id)+"/archive", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListMessages fetches the messages of one conversation in order.
func (c *Client) ListMessages(ctx context.Context, conversationID string) ([]datatypes.Message, error) {
	var out []datatypes.Message
	path := "/api/conversations/" + url.PathEscape(conversationID) + "/messages"
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}
