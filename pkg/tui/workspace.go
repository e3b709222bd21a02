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
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/AleutianAI/AleutianDeck/pkg/datatypes"
	"github.com/AleutianAI/AleutianDeck/pkg/workspace"
)

// maxRecentChanges caps the watcher event list shown in the panel.
const maxRecentChanges = 15

// =============================================================================
// Messages
// =============================================================================

// FileChangedMsg carries one watcher event into the event loop.
// cmd/deck sends it via Program.Send.
type FileChangedMsg struct {
	Change workspace.Change
}

// gitStatusMsg reports a background git status refresh.
type gitStatusMsg struct {
	err error
}

// gitDiffMsg carries a fetched and parsed diff.
type gitDiffMsg struct {
	path  string
	files []workspace.FileDiff
	err   error
}

// gitLogMsg carries the recent commit log.
type gitLogMsg struct {
	commits []datatypes.GitCommit
	err     error
}

// =============================================================================
// Panel state
// =============================================================================

// statusEntry is one file row in the flattened status list.
type statusEntry struct {
	kind string
	path string
}

// workspacePanel is the git/workspace panel sub-state.
type workspacePanel struct {
	// Diff view, scrolled in a viewport like the code review TUI.
	vp       viewport.Model
	vpReady  bool
	showDiff bool
	diffPath string

	fileIdx int
	commits []datatypes.GitCommit
	changes []workspace.Change
}

// =============================================================================
// Key handling
// =============================================================================

func (m Model) handleWorkspaceKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.ws.showDiff {
		switch msg.String() {
		case "esc":
			m.ws.showDiff = false
		case "j", "down":
			m.ws.vp.LineDown(1)
		case "k", "up":
			m.ws.vp.LineUp(1)
		case "ctrl+d":
			m.ws.vp.HalfViewDown()
		case "ctrl+u":
			m.ws.vp.HalfViewUp()
		case "g", "home":
			m.ws.vp.GotoTop()
		case "G", "end":
			m.ws.vp.GotoBottom()
		}
		return m, nil
	}

	entries := m.statusEntries()
	switch msg.String() {
	case "j", "down":
		if m.ws.fileIdx < len(entries)-1 {
			m.ws.fileIdx++
		}
	case "k", "up":
		if m.ws.fileIdx > 0 {
			m.ws.fileIdx--
		}
	case "enter":
		if m.ws.fileIdx < len(entries) {
			return m, m.fetchDiff(entries[m.ws.fileIdx].path)
		}
	case "D":
		// Whole-tree diff.
		return m, m.fetchDiff("")
	case "l":
		return m, m.fetchLog()
	}
	return m, nil
}

// statusEntries flattens the last git status into cursorable rows,
// staged first, matching the order they render in.
func (m Model) statusEntries() []statusEntry {
	if m.git == nil {
		return nil
	}
	st := m.git.Status()
	if st == nil {
		return nil
	}
	var out []statusEntry
	for _, p := range st.Staged {
		out = append(out, statusEntry{kind: "staged", path: p})
	}
	for _, p := range st.Modified {
		out = append(out, statusEntry{kind: "modified", path: p})
	}
	for _, p := range st.Untracked {
		out = append(out, statusEntry{kind: "untracked", path: p})
	}
	return out
}

// currentProjectID resolves the project the workspace panel acts on:
// the selected conversation's project when set, else the first project.
func (m Model) currentProjectID() string {
	if m.selectedID != "" && m.stores.Conversations != nil {
		if conv, err := m.stores.Conversations.Get(m.selectedID); err == nil && conv.ProjectID != "" {
			return conv.ProjectID
		}
	}
	if m.stores.Projects != nil {
		if items := m.stores.Projects.Items(); len(items) > 0 {
			return items[0].ID
		}
	}
	return ""
}

// =============================================================================
// Fetch commands
// =============================================================================

func (m Model) refreshGit() tea.Cmd {
	g := m.git
	pid := m.currentProjectID()
	if g == nil || pid == "" {
		return nil
	}
	return func() tea.Msg {
		_, err := g.Refresh(context.Background(), pid)
		return gitStatusMsg{err: err}
	}
}

func (m Model) fetchDiff(path string) tea.Cmd {
	g := m.git
	pid := m.currentProjectID()
	if g == nil || pid == "" {
		return nil
	}
	return func() tea.Msg {
		files, err := g.Diff(context.Background(), pid, path)
		return gitDiffMsg{path: path, files: files, err: err}
	}
}

func (m Model) fetchLog() tea.Cmd {
	g := m.git
	pid := m.currentProjectID()
	if g == nil || pid == "" {
		return nil
	}
	return func() tea.Msg {
		commits, err := g.Log(context.Background(), pid, 10)
		return gitLogMsg{commits: commits, err: err}
	}
}

// =============================================================================
// Message handling
// =============================================================================

func (m Model) handleGitDiff(msg gitDiffMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.statusLine = "diff: " + msg.err.Error()
		return m, nil
	}
	if len(msg.files) == 0 {
		m.statusLine = "no changes"
		return m, nil
	}
	m.ws.diffPath = msg.path
	m.ws.showDiff = true
	if m.ws.vpReady {
		m.ws.vp.SetContent(renderDiffContent(msg.files))
		m.ws.vp.GotoTop()
	}
	return m, nil
}

func (m Model) recordFileChange(c workspace.Change) Model {
	m.ws.changes = append([]workspace.Change{c}, m.ws.changes...)
	if len(m.ws.changes) > maxRecentChanges {
		m.ws.changes = m.ws.changes[:maxRecentChanges]
	}
	return m
}

// =============================================================================
// Rendering
// =============================================================================

func (m Model) renderWorkspace(width, height int) string {
	if m.git == nil {
		return dimStyle.Render("workspace not attached (start with --project-root)")
	}
	if m.ws.showDiff {
		header := groupLabelStyle.Render("Diff")
		if m.ws.diffPath != "" {
			header += " " + m.ws.diffPath
		}
		return header + "\n" + m.ws.vp.View() + "\n" +
			helpStyle.Render("j/k:scroll  g/G:top/bottom  esc:back")
	}

	var b strings.Builder
	st := m.git.Status()
	switch {
	case m.git.Loading() && st == nil:
		b.WriteString(dimStyle.Render("refreshing...") + "\n")
	case st == nil:
		b.WriteString(dimStyle.Render("no status yet, r to refresh") + "\n")
	default:
		branch := "⑂ " + st.Branch
		if st.Ahead > 0 {
			branch += fmt.Sprintf(" ↑%d", st.Ahead)
		}
		if st.Behind > 0 {
			branch += fmt.Sprintf(" ↓%d", st.Behind)
		}
		b.WriteString(titleStyle.Render(branch))
		if st.Clean() {
			b.WriteString("  " + connectedStyle.Render("clean"))
		} else {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  %d dirty", st.DirtyCount())))
		}
		b.WriteString("\n\n")
		m.renderStatusRows(&b, width)
	}
	if err := m.git.Err(); err != "" {
		b.WriteString(errorStyle.Render(err) + "\n")
	}

	if len(m.ws.commits) > 0 {
		b.WriteString("\n" + groupLabelStyle.Render("Recent commits") + "\n")
		for _, c := range m.ws.commits {
			hash := c.Hash
			if len(hash) > 7 {
				hash = hash[:7]
			}
			b.WriteString("  " + checkedStyle.Render(hash) + " " + truncate(c.Message, width-12) + "\n")
		}
	}

	if len(m.ws.changes) > 0 {
		b.WriteString("\n" + groupLabelStyle.Render("External changes") + "\n")
		for _, c := range m.ws.changes {
			op := strings.ToLower(c.Op.String())
			if c.Removed {
				op = "removed"
			}
			b.WriteString("  " + dimStyle.Render(op) + " " + truncate(c.Path, width-14) + "\n")
		}
	}

	if m.autoSave != nil && m.autoSave.Pending() {
		b.WriteString("\n" + streamingStyle.Render("auto-save pending") + "\n")
	}
	return b.String()
}

func (m Model) renderStatusRows(b *strings.Builder, width int) {
	entries := m.statusEntries()
	lastKind := ""
	for i, e := range entries {
		if e.kind != lastKind {
			b.WriteString(groupLabelStyle.Render(strings.ToUpper(e.kind[:1])+e.kind[1:]) + "\n")
			lastKind = e.kind
		}
		cursor := "  "
		line := truncate(e.path, width-6)
		if i == m.ws.fileIdx {
			cursor = "> "
			line = selectedStyle.Render(line)
		}
		b.WriteString(cursor + line + "\n")
	}
	if len(entries) > 0 {
		b.WriteString(helpStyle.Render("enter:diff file  D:diff all  l:log") + "\n")
	}
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}

// renderDiffContent builds the viewport body for a parsed diff.
func renderDiffContent(files []workspace.FileDiff) string {
	var b strings.Builder
	for _, f := range files {
		name := f.NewName
		if name == "" {
			name = f.OrigName
		}
		b.WriteString(selectedStyle.Render(name) + "\n")
		for _, h := range f.Hunks {
			header := fmt.Sprintf("@@ -%d +%d @@", h.OrigStart, h.NewStart)
			if h.Section != "" {
				header += " " + h.Section
			}
			b.WriteString(hunkHeaderStyle.Render(header) + "\n")
			for _, line := range h.Lines {
				switch {
				case strings.HasPrefix(line, "+"):
					b.WriteString(diffAddStyle.Render(line) + "\n")
				case strings.HasPrefix(line, "-"):
					b.WriteString(diffDelStyle.Render(line) + "\n")
				default:
					b.WriteString(line + "\n")
				}
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
