// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

import "time"

// GitStatus is a point-in-time snapshot of the workspace repository.
// It is refreshed on demand and considered stale after any git-mutating
// action; nothing in the client caches it long-term.
type GitStatus struct {
	Branch    string   `json:"branch"`
	Ahead     int      `json:"ahead"`
	Behind    int      `json:"behind"`
	Staged    []string `json:"staged,omitempty"`
	Modified  []string `json:"modified,omitempty"`
	Untracked []string `json:"untracked,omitempty"`
}

// Clean reports whether the working tree has no staged, modified, or
// untracked files.
func (g GitStatus) Clean() bool {
	return len(g.Staged) == 0 && len(g.Modified) == 0 && len(g.Untracked) == 0
}

// DirtyCount returns the total number of files needing attention.
func (g GitStatus) DirtyCount() int {
	return len(g.Staged) + len(g.Modified) + len(g.Untracked)
}

// GitCommit is one entry from the commit log endpoint.
type GitCommit struct {
	Hash      string    `json:"hash"`
	Author    string    `json:"author"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// PullRequest is the GitHub PR summary shown in the PR panel.
type PullRequest struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	State     string    `json:"state"`
	Branch    string    `json:"branch"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}
