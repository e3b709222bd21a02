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
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/AleutianAI/AleutianDeck/pkg/datatypes"
	"github.com/AleutianAI/AleutianDeck/pkg/views"
)

func (m Model) handlePlanKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	plans := m.stores.Plans.Items()

	switch msg.String() {
	case "j", "down":
		if m.planIdx < len(plans)-1 {
			m.planIdx++
		}
		return m, nil

	case "k", "up":
		if m.planIdx > 0 {
			m.planIdx--
		}
		return m, nil

	case "a":
		return m.planAction("approve", m.stores.Plans.Approve)

	case "x":
		return m.planAction("reject", m.stores.Plans.Reject)

	case "z":
		return m.planAction("pause", m.stores.Plans.Pause)

	case "s":
		return m.planAction("resume", m.stores.Plans.Resume)
	}
	return m, nil
}

type planActionFunc func(ctx context.Context, id string) error

// planAction runs one pessimistic plan mutation on the highlighted
// plan. The store only updates after the backend acks.
func (m Model) planAction(name string, fn planActionFunc) (Model, tea.Cmd) {
	plans := m.stores.Plans.Items()
	if m.planIdx < 0 || m.planIdx >= len(plans) {
		return m, nil
	}
	id := plans[m.planIdx].ID
	return m, func() tea.Msg {
		return refreshDoneMsg{what: name, err: fn(context.Background(), id)}
	}
}

func (m Model) fetchPlans(conversationID string) tea.Cmd {
	s := m.stores.Plans
	return func() tea.Msg {
		return refreshDoneMsg{what: "plans", err: s.FetchAll(context.Background(), conversationID)}
	}
}

func (m Model) fetchMemories() tea.Cmd {
	s := m.stores.Memories
	q := m.memory.query()
	return func() tea.Msg {
		return refreshDoneMsg{what: "memories", err: s.FetchAll(context.Background(), q)}
	}
}

func (m Model) renderPlans(width, height int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Plans"))
	if m.stores.Plans.Loading() {
		b.WriteString(dimStyle.Render(" (loading)"))
	}
	b.WriteString("\n")
	if errMsg := m.stores.Plans.Err(); errMsg != "" {
		b.WriteString(errorStyle.Render(errMsg) + "\n")
	}

	plans := m.stores.Plans.Items()
	if len(plans) == 0 {
		b.WriteString(dimStyle.Render("no plans for this conversation"))
		return b.String()
	}

	for i := range plans {
		p := &plans[i]
		b.WriteString(m.renderPlanRow(p, i))
		b.WriteString("\n")
		if i == m.planIdx {
			b.WriteString(renderSteps(p, width))
		}
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("a:approve  x:reject  z:pause  s:resume"))
	return b.String()
}

func (m Model) renderPlanRow(p *datatypes.Plan, idx int) string {
	label := views.PlanLabel(p)
	var styled string
	switch label {
	case views.LabelExecuting:
		styled = planRunningStyle.Render(label)
	case views.LabelStuck:
		styled = planStuckStyle.Render(label)
	case views.LabelRejected, views.LabelCompleted:
		styled = dimStyle.Render(label)
	default:
		styled = groupLabelStyle.Render(label)
	}

	row := p.Title + "  " + styled + "  " + dimStyle.Render(views.PlanProgress(p))
	if idx == m.planIdx {
		return selectedStyle.Render("> ") + row
	}
	return "  " + row
}

func renderSteps(p *datatypes.Plan, width int) string {
	var b strings.Builder
	for i, step := range p.Steps {
		marker := "  ○"
		switch step.Status {
		case datatypes.StepCompleted:
			marker = connectedStyle.Render("  ✓")
		case datatypes.StepInProgress:
			marker = planRunningStyle.Render("  ▶")
		case datatypes.StepFailed:
			marker = planStuckStyle.Render("  ✗")
		case datatypes.StepSkipped:
			marker = dimStyle.Render("  -")
		}
		desc := step.Description
		if width > 10 && len(desc) > width-10 {
			desc = desc[:width-10] + "…"
		}
		line := marker + " " + desc
		if cur, ok := p.CurrentStep(); ok && cur == &p.Steps[i] {
			line += dimStyle.Render("  (current)")
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
