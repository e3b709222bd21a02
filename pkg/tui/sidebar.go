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
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/AleutianAI/AleutianDeck/pkg/datatypes"
	"github.com/AleutianAI/AleutianDeck/pkg/views"
)

// flatConversations returns the sidebar's conversations in display
// order: grouped by date with Pinned first.
func (m Model) flatConversations() []datatypes.Conversation {
	groups := views.GroupByDate(m.stores.Conversations.Items(), m.pinned, time.Now())
	var flat []datatypes.Conversation
	for _, g := range groups {
		flat = append(flat, g.Conversations...)
	}
	return flat
}

func (m Model) currentConversation() (datatypes.Conversation, bool) {
	flat := m.flatConversations()
	if m.sidebarIdx < 0 || m.sidebarIdx >= len(flat) {
		return datatypes.Conversation{}, false
	}
	return flat[m.sidebarIdx], true
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	sel := m.stores.Selection

	switch msg.String() {
	case "j", "down":
		if m.sidebarIdx < len(m.flatConversations())-1 {
			m.sidebarIdx++
		}
		return m, nil

	case "k", "up":
		if m.sidebarIdx > 0 {
			m.sidebarIdx--
		}
		return m, nil

	case "enter":
		c, ok := m.currentConversation()
		if !ok {
			return m, nil
		}
		m.selectedID = c.ID
		m.statusLine = ""
		return m, m.selectConversation(c.ID)

	case "i":
		if m.selectedID != "" {
			m.typing = true
			m.chatInput = ""
		}
		return m, nil

	case "p":
		c, ok := m.currentConversation()
		if !ok {
			return m, nil
		}
		m.pinned[c.ID] = !m.pinned[c.ID]
		if !m.pinned[c.ID] {
			delete(m.pinned, c.ID)
		}
		if m.stores.Prefs != nil {
			_ = m.stores.Prefs.SetPinned(c.ID, m.pinned[c.ID])
		}
		return m, m.togglePin(c.ID)

	case "v":
		sel.ToggleMode()
		return m, nil

	case " ":
		if c, ok := m.currentConversation(); ok {
			sel.Toggle(c.ID)
		}
		return m, nil

	case "a":
		if c, ok := m.currentConversation(); ok {
			return m, m.archiveConversation(c.ID)
		}
		return m, nil

	case "d":
		if sel.Active() && sel.Count() > 0 {
			ids := sel.IDs()
			sel.ToggleMode()
			return m, m.bulkDelete(ids)
		}
		if c, ok := m.currentConversation(); ok {
			return m, m.deleteConversation(c.ID)
		}
		return m, nil
	}
	return m, nil
}

func (m Model) renderSidebar(width, height int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Conversations"))
	if m.stores.Conversations.Loading() {
		b.WriteString(dimStyle.Render(" (loading)"))
	}
	b.WriteString("\n")
	if errMsg := m.stores.Conversations.Err(); errMsg != "" {
		b.WriteString(errorStyle.Render(errMsg) + "\n")
	}

	groups := views.GroupByDate(m.stores.Conversations.Items(), m.pinned, time.Now())
	idx := 0
	lines := 2
	for _, g := range groups {
		if lines >= height {
			break
		}
		b.WriteString(groupLabelStyle.Render(g.Label) + "\n")
		lines++
		for _, c := range g.Conversations {
			if lines >= height {
				break
			}
			b.WriteString(m.renderSidebarRow(c, idx, width))
			b.WriteString("\n")
			idx++
			lines++
		}
	}
	if idx == 0 && !m.stores.Conversations.Loading() {
		b.WriteString(dimStyle.Render("no conversations"))
	}
	return b.String()
}

func (m Model) renderSidebarRow(c datatypes.Conversation, idx, width int) string {
	marker := "  "
	if m.stores.Selection.Active() {
		if m.stores.Selection.Selected(c.ID) {
			marker = checkedStyle.Render("✓ ")
		} else {
			marker = "· "
		}
	}

	title := c.Title
	if title == "" {
		title = "(untitled)"
	}
	if maxLen := width - 8; maxLen > 0 && len(title) > maxLen {
		title = title[:maxLen] + "…"
	}

	row := marker + title
	if c.Pinned || m.pinned[c.ID] {
		row += " ¤"
	}
	if c.Status == datatypes.ConversationArchived {
		row = dimStyle.Render(row)
	}
	if idx == m.sidebarIdx {
		return selectedStyle.Render("> " + row)
	}
	return "  " + row
}

// =============================================================================
// Sidebar commands
// =============================================================================

// selectConversation fetches the message log and plans for the chosen
// conversation, in that order.
func (m Model) selectConversation(id string) tea.Cmd {
	msgs := m.stores.Messages
	plans := m.stores.Plans
	return func() tea.Msg {
		ctx := context.Background()
		if err := msgs.Fetch(ctx, id); err != nil {
			return conversationSelectedMsg{id: id, err: err}
		}
		return conversationSelectedMsg{id: id, err: plans.FetchAll(ctx, id)}
	}
}

func (m Model) togglePin(id string) tea.Cmd {
	s := m.stores.Conversations
	return func() tea.Msg {
		return refreshDoneMsg{what: "pin", err: s.TogglePin(context.Background(), id)}
	}
}

func (m Model) archiveConversation(id string) tea.Cmd {
	s := m.stores.Conversations
	return func() tea.Msg {
		return refreshDoneMsg{what: "archive", err: s.Archive(context.Background(), id)}
	}
}

func (m Model) deleteConversation(id string) tea.Cmd {
	s := m.stores.Conversations
	return func() tea.Msg {
		return refreshDoneMsg{what: "delete", err: s.Delete(context.Background(), id)}
	}
}

func (m Model) bulkDelete(ids []string) tea.Cmd {
	s := m.stores.Conversations
	return func() tea.Msg {
		res := s.BulkDelete(context.Background(), ids)
		if len(res.Failed) > 0 {
			return refreshDoneMsg{
				what: "bulk delete",
				err:  fmt.Errorf("%d of %d failed", len(res.Failed), len(ids)),
			}
		}
		return refreshDoneMsg{what: "bulk delete"}
	}
}
