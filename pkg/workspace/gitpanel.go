// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package workspace

import (
	"context"
	"fmt"
	"sync"

	"github.com/AleutianAI/AleutianDeck/pkg/datatypes"
	"github.com/sourcegraph/go-diff/diff"
	"golang.org/x/sync/singleflight"
)

// GitAPI is the slice of the backend client the git panel needs.
type GitAPI interface {
	GitStatus(ctx context.Context, projectID string) (*datatypes.GitStatus, error)
	GitDiff(ctx context.Context, projectID, path string) (string, error)
	GitLog(ctx context.Context, projectID string, limit int) ([]datatypes.GitCommit, error)
	ListPullRequests(ctx context.Context, projectID string) ([]datatypes.PullRequest, error)
}

// =============================================================================
// Diff model
// =============================================================================

// DiffHunk is one hunk of a unified diff, pre-split for rendering.
type DiffHunk struct {
	Section   string
	OrigStart int32
	NewStart  int32
	Lines     []string
	Added     int
	Removed   int
}

// FileDiff is the parsed diff of one file.
type FileDiff struct {
	OrigName string
	NewName  string
	Hunks    []DiffHunk
}

// ParseDiff parses a unified diff (possibly spanning several files)
// into the panel's render model.
func ParseDiff(unified string) ([]FileDiff, error) {
	if unified == "" {
		return nil, nil
	}
	parsed, err := diff.ParseMultiFileDiff([]byte(unified))
	if err != nil {
		return nil, fmt.Errorf("parse diff: %w", err)
	}

	out := make([]FileDiff, 0, len(parsed))
	for _, fd := range parsed {
		file := FileDiff{OrigName: fd.OrigName, NewName: fd.NewName}
		for _, h := range fd.Hunks {
			hunk := DiffHunk{
				Section:   h.Section,
				OrigStart: h.OrigStartLine,
				NewStart:  h.NewStartLine,
			}
			for _, line := range splitHunkBody(h.Body) {
				hunk.Lines = append(hunk.Lines, line)
				switch {
				case len(line) > 0 && line[0] == '+':
					hunk.Added++
				case len(line) > 0 && line[0] == '-':
					hunk.Removed++
				}
			}
			file.Hunks = append(file.Hunks, hunk)
		}
		out = append(out, file)
	}
	return out, nil
}

func splitHunkBody(body []byte) []string {
	var lines []string
	start := 0
	for i, b := range body {
		if b == '\n' {
			lines = append(lines, string(body[start:i]))
			start = i + 1
		}
	}
	if start < len(body) {
		lines = append(lines, string(body[start:]))
	}
	return lines
}

// =============================================================================
// Panel state
// =============================================================================

// GitPanel holds the git status shown in the sidebar and the PR view.
//
// # Description
//
// Status refreshes are coalesced: while one refresh for a project is
// in flight, further Refresh calls for the same project wait on that
// result instead of issuing duplicate requests. The chat panel, the
// file tree, and the PR panel can all ask for a refresh after an agent
// action without stampeding the backend.
//
// # Thread Safety
//
// Safe for concurrent use.
type GitPanel struct {
	api   GitAPI
	group singleflight.Group

	mu      sync.Mutex
	status  *datatypes.GitStatus
	loading bool
	lastErr string
}

// NewGitPanel creates an empty panel.
func NewGitPanel(api GitAPI) *GitPanel {
	return &GitPanel{api: api}
}

// Status returns the last refreshed status, or nil before the first
// successful refresh.
func (g *GitPanel) Status() *datatypes.GitStatus {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.status == nil {
		return nil
	}
	snap := *g.status
	return &snap
}

// Loading reports whether a refresh is in flight.
func (g *GitPanel) Loading() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.loading
}

// Err returns the last refresh error message, empty after a success.
func (g *GitPanel) Err() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastErr
}

// Refresh fetches git status, coalescing concurrent calls per project.
func (g *GitPanel) Refresh(ctx context.Context, projectID string) (*datatypes.GitStatus, error) {
	g.mu.Lock()
	g.loading = true
	g.mu.Unlock()

	v, err, _ := g.group.Do("status:"+projectID, func() (interface{}, error) {
		return g.api.GitStatus(ctx, projectID)
	})

	g.mu.Lock()
	defer g.mu.Unlock()
	g.loading = false
	if err != nil {
		g.lastErr = err.Error()
		return nil, err
	}
	g.lastErr = ""
	g.status = v.(*datatypes.GitStatus)
	snap := *g.status
	return &snap, nil
}

// Diff fetches and parses the diff for one file.
func (g *GitPanel) Diff(ctx context.Context, projectID, path string) ([]FileDiff, error) {
	unified, err := g.api.GitDiff(ctx, projectID, path)
	if err != nil {
		return nil, err
	}
	return ParseDiff(unified)
}

// Log fetches the recent commit log.
func (g *GitPanel) Log(ctx context.Context, projectID string, limit int) ([]datatypes.GitCommit, error) {
	return g.api.GitLog(ctx, projectID, limit)
}

// PullRequests lists open PRs for the PR panel.
func (g *GitPanel) PullRequests(ctx context.Context, projectID string) ([]datatypes.PullRequest, error) {
	return g.api.ListPullRequests(ctx, projectID)
}
