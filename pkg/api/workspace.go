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
	"net/http"
)

// SaveWorkspaceFile pushes the current content of one workspace file to
// the backend. The auto-save loop calls this; the backend treats the
// upload as a whole-file replace, so callers must never send a path
// whose previous save is still in flight.
func (c *Client) SaveWorkspaceFile(ctx context.Context, projectID, path string, content []byte) error {
	body := map[string]string{
		"project_id": projectID,
		"path":       path,
		"content":    string(content),
	}
	return c.do(ctx, http.MethodPut, "/api/workspace/files", body, nil)
}
