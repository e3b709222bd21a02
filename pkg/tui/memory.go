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
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/AleutianAI/AleutianDeck/pkg/api"
	"github.com/AleutianAI/AleutianDeck/pkg/datatypes"
	"github.com/AleutianAI/AleutianDeck/pkg/views"
)

// =============================================================================
// Memory panel state
// =============================================================================

// memoryDraft backs the huh form fields.
type memoryDraft struct {
	Content    string
	Phase      string
	Scope      string
	ProjectID  string
	Category   string
	Importance string
}

// memoryPanel holds the browser state: cursor, sort, filter, and the
// create/edit form when one is open.
type memoryPanel struct {
	idx     int
	sortKey views.MemorySort
	filter  views.MemoryFilter

	form      *huh.Form
	draft     *memoryDraft
	editingID string

	searchForm  *huh.Form
	searchQuery string
}

// memoryFormDoneMsg signals the open form completed or aborted.
type memoryFormDoneMsg struct {
	aborted bool
	search  bool
}

func newMemoryPanel() memoryPanel {
	return memoryPanel{sortKey: views.SortByDate}
}

func (p *memoryPanel) formActive() bool {
	return p.form != nil || p.searchForm != nil
}

func (p *memoryPanel) closeForm() {
	p.form = nil
	p.draft = nil
	p.editingID = ""
	p.searchForm = nil
}

func (p *memoryPanel) query() api.MemoryQuery {
	return api.MemoryQuery{
		Phase:     p.filter.Phase,
		Scope:     p.filter.Scope,
		ProjectID: p.filter.ProjectID,
		Category:  p.filter.Category,
	}
}

// openForm builds the create/edit form. For edits the draft is seeded
// from the existing memory.
func (p *memoryPanel) openForm(seed *datatypes.Memory) {
	draft := &memoryDraft{
		Phase:      string(datatypes.PhaseLearn),
		Scope:      string(datatypes.ScopeGlobal),
		Importance: "0.5",
	}
	if seed != nil {
		draft.Content = seed.Content
		draft.Phase = string(seed.Phase)
		draft.Scope = string(seed.Scope)
		draft.ProjectID = seed.ProjectID
		draft.Category = seed.Category
		draft.Importance = strconv.FormatFloat(seed.Importance, 'f', 2, 64)
		p.editingID = seed.ID
	}

	phaseOpts := huh.NewOptions(
		string(datatypes.PhaseObserve), string(datatypes.PhaseThink),
		string(datatypes.PhasePlan), string(datatypes.PhaseBuild),
		string(datatypes.PhaseExecute), string(datatypes.PhaseVerify),
		string(datatypes.PhaseLearn),
	)

	p.draft = draft
	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Content").
				Value(&draft.Content),
			huh.NewSelect[string]().
				Title("Phase").
				Options(phaseOpts...).
				Value(&draft.Phase),
			huh.NewSelect[string]().
				Title("Scope").
				Options(huh.NewOptions(
					string(datatypes.ScopeGlobal),
					string(datatypes.ScopeProject),
				)...).
				Value(&draft.Scope),
			huh.NewInput().
				Title("Project ID (project scope only)").
				Value(&draft.ProjectID),
			huh.NewInput().
				Title("Category").
				Value(&draft.Category),
			huh.NewInput().
				Title("Importance (0-1)").
				Value(&draft.Importance),
		),
	)
}

func (p *memoryPanel) openSearch() {
	p.searchQuery = ""
	p.searchForm = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Search memories").
				Value(&p.searchQuery),
		),
	)
}

// update feeds one message into whichever form is open and reports
// completion back to the model.
func (p *memoryPanel) update(msg tea.Msg) tea.Cmd {
	if p.form != nil {
		model, cmd := p.form.Update(msg)
		if f, ok := model.(*huh.Form); ok {
			p.form = f
		}
		switch p.form.State {
		case huh.StateCompleted:
			return tea.Batch(cmd, func() tea.Msg { return memoryFormDoneMsg{} })
		case huh.StateAborted:
			return tea.Batch(cmd, func() tea.Msg { return memoryFormDoneMsg{aborted: true} })
		}
		return cmd
	}
	if p.searchForm != nil {
		model, cmd := p.searchForm.Update(msg)
		if f, ok := model.(*huh.Form); ok {
			p.searchForm = f
		}
		switch p.searchForm.State {
		case huh.StateCompleted:
			return tea.Batch(cmd, func() tea.Msg { return memoryFormDoneMsg{search: true} })
		case huh.StateAborted:
			return tea.Batch(cmd, func() tea.Msg { return memoryFormDoneMsg{aborted: true, search: true} })
		}
		return cmd
	}
	return nil
}

// =============================================================================
// Model integration
// =============================================================================

func (m Model) visibleMemories() []datatypes.Memory {
	mems := views.FilterMemories(m.stores.Memories.Items(), m.memory.filter)
	return views.SortMemories(mems, m.memory.sortKey, m.stores.Projects.Names())
}

func (m Model) handleMemoryKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	mems := m.visibleMemories()

	switch msg.String() {
	case "j", "down":
		if m.memory.idx < len(mems)-1 {
			m.memory.idx++
		}
		return m, nil

	case "k", "up":
		if m.memory.idx > 0 {
			m.memory.idx--
		}
		return m, nil

	case "n":
		m.memory.openForm(nil)
		return m, m.memory.form.Init()

	case "e":
		if m.memory.idx < len(mems) {
			m.memory.openForm(&mems[m.memory.idx])
			return m, m.memory.form.Init()
		}
		return m, nil

	case "d":
		if m.memory.idx < len(mems) {
			return m, m.deleteMemory(mems[m.memory.idx].ID)
		}
		return m, nil

	case "/":
		m.memory.openSearch()
		return m, m.memory.searchForm.Init()

	case "s":
		m.memory.sortKey = (m.memory.sortKey + 1) % 4
		return m, nil

	case "f":
		m.memory.filter.Phase = nextPhaseFilter(m.memory.filter.Phase)
		m.memory.idx = 0
		return m, m.fetchMemories()
	}
	return m, nil
}

// nextPhaseFilter cycles no-filter -> each phase -> no-filter.
func nextPhaseFilter(cur datatypes.Phase) datatypes.Phase {
	order := []datatypes.Phase{
		"", datatypes.PhaseObserve, datatypes.PhaseThink, datatypes.PhasePlan,
		datatypes.PhaseBuild, datatypes.PhaseExecute, datatypes.PhaseVerify,
		datatypes.PhaseLearn,
	}
	for i, ph := range order {
		if ph == cur {
			return order[(i+1)%len(order)]
		}
	}
	return ""
}

func (m Model) handleMemoryFormDone(msg memoryFormDoneMsg) (Model, tea.Cmd) {
	if msg.search {
		query := m.memory.searchQuery
		m.memory.closeForm()
		if msg.aborted || strings.TrimSpace(query) == "" {
			return m, nil
		}
		s := m.stores.Memories
		return m, func() tea.Msg {
			return refreshDoneMsg{what: "search", err: s.Search(context.Background(), query)}
		}
	}

	draft := m.memory.draft
	editingID := m.memory.editingID
	m.memory.closeForm()
	if msg.aborted || draft == nil {
		return m, nil
	}

	importance, err := strconv.ParseFloat(strings.TrimSpace(draft.Importance), 64)
	if err != nil {
		importance = 0.5
	}
	mem := datatypes.Memory{
		Content:    draft.Content,
		Phase:      datatypes.Phase(draft.Phase),
		Scope:      datatypes.Scope(draft.Scope),
		ProjectID:  draft.ProjectID,
		Category:   draft.Category,
		Importance: importance,
	}
	if mem.Scope == datatypes.ScopeGlobal {
		mem.ProjectID = ""
	}

	s := m.stores.Memories
	if editingID != "" {
		return m, func() tea.Msg {
			return refreshDoneMsg{what: "update memory", err: s.Update(context.Background(), editingID, mem)}
		}
	}
	return m, func() tea.Msg {
		_, err := s.Create(context.Background(), mem)
		return refreshDoneMsg{what: "create memory", err: err}
	}
}

func (m Model) deleteMemory(id string) tea.Cmd {
	s := m.stores.Memories
	return func() tea.Msg {
		return refreshDoneMsg{what: "delete memory", err: s.Delete(context.Background(), id)}
	}
}

// =============================================================================
// Rendering
// =============================================================================

var sortNames = map[views.MemorySort]string{
	views.SortByDate:       "date",
	views.SortByImportance: "importance",
	views.SortByPhase:      "phase",
	views.SortByProject:    "project",
}

func (m Model) renderMemory(width, height int) string {
	if m.memory.form != nil {
		return m.memory.form.View()
	}
	if m.memory.searchForm != nil {
		return m.memory.searchForm.View()
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Memory"))
	b.WriteString(dimStyle.Render("  sort:" + sortNames[m.memory.sortKey]))
	if m.memory.filter.Phase != "" {
		b.WriteString(dimStyle.Render("  phase:" + string(m.memory.filter.Phase)))
	}
	if m.stores.Memories.Loading() {
		b.WriteString(dimStyle.Render(" (loading)"))
	}
	b.WriteString("\n")
	if errMsg := m.stores.Memories.Err(); errMsg != "" {
		b.WriteString(errorStyle.Render(errMsg) + "\n")
	}

	mems := m.visibleMemories()
	if len(mems) == 0 {
		b.WriteString(dimStyle.Render("no memories"))
		return b.String()
	}

	names := m.stores.Projects.Names()
	for i := range mems {
		if i >= height-4 {
			b.WriteString(dimStyle.Render(fmt.Sprintf("… %d more", len(mems)-i)))
			break
		}
		b.WriteString(m.renderMemoryRow(&mems[i], i, width, names))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("n:new  e:edit  d:delete  /:search  s:sort  f:phase filter"))
	return b.String()
}

func (m Model) renderMemoryRow(mem *datatypes.Memory, idx, width int, names map[string]string) string {
	scope := "global"
	if mem.Scope == datatypes.ScopeProject {
		scope = names[mem.ProjectID]
		if scope == "" {
			scope = mem.ProjectID
		}
	}

	content := mem.Content
	if maxLen := width - 30; maxLen > 0 && len(content) > maxLen {
		content = content[:maxLen] + "…"
	}

	row := fmt.Sprintf("%-8s %-12s %.1f  %s",
		mem.Phase, scope, mem.Importance, content)
	if idx == m.memory.idx {
		return selectedStyle.Render("> " + row)
	}
	return "  " + row
}
