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
	"errors"
	"net/url"
	"strconv"

	"github.com/AleutianAI/AleutianDeck/pkg/datatypes"
)

// ErrHookFailure marks a commit rejected by a pre-commit hook. Callers
// can offer remediation (rerunning with the agent's fix flow) when they
// see this error alongside the hook's verbatim output.
var ErrHookFailure = errors.New("pre-commit hook failed")

// CommitResult is the backend's answer to a commit request.
type CommitResult struct {
	Hash       string `json:"hash,omitempty"`
	HookOutput string `json:"hook_output,omitempty"`
	Error      string `json:"error,omitempty"`
}

// GitStatus fetches the current status of the project workspace. The
// result must be treated as stale after any git-mutating action.
func (c *Client) GitStatus(ctx context.Context, projectID string) (*datatypes.GitStatus, error) {
	var out datatypes.GitStatus
	path := "/api/git/status?project_id=" + url.QueryEscape(projectID)
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GitCommit commits the currently staged files. A hook rejection comes
// back as ErrHookFailure wrapped with the hook's output; transport and
// other backend failures surface as usual.
func (c *Client) GitCommit(ctx context.Context, projectID, message string) (*CommitResult, error) {
	body := map[string]string{"project_id": projectID, "message": message}
	var out CommitResult
	if err := c.post(ctx, "/api/git/commit", body, &out); err != nil {
		return nil, err
	}
	if out.Error != "" {
		// The backend distinguishes hook failures by carrying the hook
		// transcript; keep the message verbatim for display.
		if out.HookOutput != "" {
			return &out, errors.Join(ErrHookFailure, errors.New(out.Error))
		}
		return &out, errors.New(out.Error)
	}
	return &out, nil
}

// GitLog fetches up to limit recent commits for the project.
func (c *Client) GitLog(ctx context.Context, projectID string, limit int) ([]datatypes.GitCommit, error) {
	v := url.Values{}
	v.Set("project_id", projectID)
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	var out []datatypes.GitCommit
	if err := c.get(ctx, "/api/git/log?"+v.Encode(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GitDiff fetches the unified diff of the working tree (or of one file
// when path is non-empty). The raw text is parsed by pkg/workspace for
// hunk-level display.
func (c *Client) GitDiff(ctx context.Context, projectID, path string) (string, error) {
	v := url.Values{}
	v.Set("project_id", projectID)
	if path != "" {
		v.Set("path", path)
	}
	var out struct {
		Diff string `json:"diff"`
	}
	if err := c.get(ctx, "/api/git/diff?"+v.Encode(), &out); err != nil {
		return "", err
	}
	return out.Diff, nil
}

// ListPullRequests fetches the open PRs for the project's repository.
func (c *Client) ListPullRequests(ctx context.Context, projectID string) ([]datatypes.PullRequest, error) {
	var out []datatypes.PullRequest
	path := "/api/github/prs?project_id=" + url.QueryEscape(projectID)
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreatePullRequest opens a PR from the plan's working branch.
func (c *Client) CreatePullRequest(ctx context.Context, projectID, title, body string) (*datatypes.PullRequest, error) {
	req := map[string]string{"project_id": projectID, "title": title, "body": body}
	var out datatypes.PullRequest
	if err := c.post(ctx, "/api/github/pr", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
