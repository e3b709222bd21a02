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

// ProjectPatch is a partial project update.
type ProjectPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
	RootPath    *string `json:"root_path,omitempty"`
}

// ListProjects fetches all projects with their derived stats.
func (c *Client) ListProjects(ctx context.Context) ([]datatypes.Project, error) {
	var out []datatypes.Project
	if err := c.get(ctx, "/api/projects", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetProject fetches one project by id.
func (c *Client) GetProject(ctx context.Context, id string) (*datatypes.Project, error) {
	var out datatypes.Project
	if err := c.get(ctx, "/api/projects/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateProject registers a new project rooted at rootPath.
func (c *Client) CreateProject(ctx context.Context, p datatypes.Project) (*datatypes.Project, error) {
	var out datatypes.Project
	if err := c.post(ctx, "/api/projects", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProject applies a partial update.
func (c *Client) UpdateProject(ctx context.Context, id string, patch ProjectPatch) (*datatypes.Project, error) {
	var out datatypes.Project
	if err := c.patch(ctx, "/api/projects/"+url.PathEscape(id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProject removes a project. Conversations keep their history but
// lose the project reference server-side.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.delete(ctx, "/api/projects/"+url.PathEscape(id))
}
