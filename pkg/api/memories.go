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
	"fmt"
	"net/url"

	"github.com/AleutianAI/AleutianDeck/pkg/datatypes"
)

// MemoryQuery narrows ListMemories server-side. Zero values are omitted.
type MemoryQuery struct {
	Phase     datatypes.Phase
	Scope     datatypes.Scope
	ProjectID string
	Category  string
}

func (q MemoryQuery) encode() string {
	v := url.Values{}
	if q.Phase != "" {
		v.Set("phase", string(q.Phase))
	}
	if q.Scope != "" {
		v.Set("scope", string(q.Scope))
	}
	if q.ProjectID != "" {
		v.Set("project_id", q.ProjectID)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

// ListMemories fetches memories matching the query.
func (c *Client) ListMemories(ctx context.Context, q MemoryQuery) ([]datatypes.Memory, error) {
	var out []datatypes.Memory
	if err := c.get(ctx, "/api/memories"+q.encode(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchMemories runs a free-text search over memory content.
func (c *Client) SearchMemories(ctx context.Context, query string) ([]datatypes.Memory, error) {
	var out []datatypes.Memory
	path := "/api/memories/search?q=" + url.QueryEscape(query)
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// StoreMemory persists a new memory. The memory is validated client-side
// first; an invalid memory never reaches the wire.
func (c *Client) StoreMemory(ctx context.Context, m datatypes.Memory) (*datatypes.Memory, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("refusing to store: %w", err)
	}
	var out datatypes.Memory
	if err := c.post(ctx, "/api/memories", m, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateMemory replaces a memory's mutable fields. Validated client-side
// like StoreMemory.
func (c *Client) UpdateMemory(ctx context.Context, id string, m datatypes.Memory) (*datatypes.Memory, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("refusing to update: %w", err)
	}
	var out datatypes.Memory
	if err := c.patch(ctx, "/api/memories/"+url.PathEscape(id), m, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteMemory removes a memory permanently.
func (c *Client) DeleteMemory(ctx context.Context, id string) error {
	return c.delete(ctx, "/api/memories/"+url.PathEscape(id))
}
