// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianDeck/pkg/datatypes"
	"github.com/AleutianAI/AleutianDeck/pkg/workspace"
)

type stubGitAPI struct {
	status *datatypes.GitStatus
	diff   string
}

func (s *stubGitAPI) GitStatus(ctx context.Context, projectID string) (*datatypes.GitStatus, error) {
	return s.status, nil
}

func (s *stubGitAPI) GitDiff(ctx context.Context, projectID, path string) (string, error) {
	return s.diff, nil
}

func (s *stubGitAPI) GitLog(ctx context.Context, projectID string, limit int) ([]datatypes.GitCommit, error) {
	return nil, nil
}

func (s *stubGitAPI) ListPullRequests(ctx context.Context, projectID string) ([]datatypes.PullRequest, error) {
	return nil, nil
}

func newWorkspaceModel(t *testing.T, api *stubGitAPI) Model {
	t.Helper()
	m := newTestModel()
	m.git = workspace.NewGitPanel(api)
	if api.status != nil {
		_, err := m.git.Refresh(context.Background(), "proj-1")
		require.NoError(t, err)
	}
	m.panel = PanelWorkspace
	return m
}

func TestStatusEntriesOrderStagedFirst(t *testing.T) {
	m := newWorkspaceModel(t, &stubGitAPI{status: &datatypes.GitStatus{
		Branch:    "main",
		Staged:    []string{"a.go"},
		Modified:  []string{"b.go", "c.go"},
		Untracked: []string{"d.go"},
	}})

	entries := m.statusEntries()
	require.Len(t, entries, 4)
	assert.Equal(t, statusEntry{kind: "staged", path: "a.go"}, entries[0])
	assert.Equal(t, "modified", entries[1].kind)
	assert.Equal(t, statusEntry{kind: "untracked", path: "d.go"}, entries[3])
}

func TestWorkspaceCursorClamps(t *testing.T) {
	m := newWorkspaceModel(t, &stubGitAPI{status: &datatypes.GitStatus{
		Branch:   "main",
		Modified: []string{"a.go", "b.go"},
	}})

	for i := 0; i < 5; i++ {
		next, _ := m.Update(key("j"))
		m = next.(Model)
	}
	assert.Equal(t, 1, m.ws.fileIdx)

	for i := 0; i < 5; i++ {
		next, _ := m.Update(key("k"))
		m = next.(Model)
	}
	assert.Equal(t, 0, m.ws.fileIdx)
}

func TestFileChangeListNewestFirstAndCapped(t *testing.T) {
	m := newTestModel()
	for i := 0; i < maxRecentChanges+5; i++ {
		next, _ := m.Update(FileChangedMsg{Change: workspace.Change{
			Path: fileName(i),
			Op:   fsnotify.Write,
		}})
		m = next.(Model)
	}
	require.Len(t, m.ws.changes, maxRecentChanges)
	assert.Equal(t, fileName(maxRecentChanges+4), m.ws.changes[0].Path)
}

func fileName(i int) string {
	return string(rune('a'+i%26)) + ".go"
}

const workspaceSampleDiff = `--- a/pkg/views/groups.go
+++ b/pkg/views/groups.go
@@ -4,2 +4,3 @@ func GroupByDate
 	ctx
-	old
+	new
+	more
`

func TestDiffMsgOpensAndEscCloses(t *testing.T) {
	m := newWorkspaceModel(t, &stubGitAPI{status: &datatypes.GitStatus{Branch: "main"}})

	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = next.(Model)
	require.True(t, m.ws.vpReady)

	files, err := workspace.ParseDiff(workspaceSampleDiff)
	require.NoError(t, err)

	next, _ = m.Update(gitDiffMsg{path: "pkg/views/groups.go", files: files})
	m = next.(Model)
	assert.True(t, m.ws.showDiff)
	assert.Contains(t, m.renderWorkspace(80, 24), "pkg/views/groups.go")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	assert.False(t, m.ws.showDiff)
}

func TestEmptyDiffSetsStatusLine(t *testing.T) {
	m := newWorkspaceModel(t, &stubGitAPI{status: &datatypes.GitStatus{Branch: "main"}})

	next, _ := m.Update(gitDiffMsg{path: "a.go"})
	m = next.(Model)
	assert.False(t, m.ws.showDiff)
	assert.Equal(t, "no changes", m.statusLine)
}

func TestRenderDiffContent(t *testing.T) {
	files, err := workspace.ParseDiff(workspaceSampleDiff)
	require.NoError(t, err)

	out := renderDiffContent(files)
	assert.Contains(t, out, "@@ -4 +4 @@ func GroupByDate")
	assert.Contains(t, out, "+new")
	assert.Contains(t, out, "-old")
}
