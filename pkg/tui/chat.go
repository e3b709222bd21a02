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
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/AleutianAI/AleutianDeck/pkg/datatypes"
)

// handleChatInput runs while the user is composing a message.
func (m Model) handleChatInput(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.typing = false
		m.chatInput = ""
		return m, nil

	case "enter":
		text := strings.TrimSpace(m.chatInput)
		m.typing = false
		m.chatInput = ""
		if text == "" || m.chat == nil || m.selectedID == "" {
			return m, nil
		}
		// Slash-commands go out as command frames, everything else as
		// a user message. Either way the socket queues while down.
		id := m.selectedID
		chat := m.chat
		return m, func() tea.Msg {
			var err error
			if strings.HasPrefix(text, "/") {
				err = chat.SendCommand(id, text)
			} else {
				err = chat.SendMessage(id, text)
			}
			return refreshDoneMsg{what: "send", err: err}
		}

	case "backspace":
		if len(m.chatInput) > 0 {
			m.chatInput = m.chatInput[:len(m.chatInput)-1]
		}
		return m, nil

	default:
		switch msg.Type {
		case tea.KeyRunes:
			m.chatInput += string(msg.Runes)
		case tea.KeySpace:
			m.chatInput += " "
		}
		return m, nil
	}
}

func (m Model) renderChat(width, height int) string {
	var b strings.Builder

	if m.selectedID == "" {
		b.WriteString(dimStyle.Render("select a conversation (enter) to open its chat"))
		return b.String()
	}

	log := m.stores.Messages
	if log.Loading() {
		b.WriteString(dimStyle.Render("loading messages...\n"))
	}
	if errMsg := log.Err(); errMsg != "" {
		b.WriteString(errorStyle.Render(errMsg) + "\n")
	}

	msgs := log.Messages()
	// Show the newest messages that fit; 2 lines reserved for input.
	budget := height - 3
	start := 0
	if len(msgs) > budget/2 {
		start = len(msgs) - budget/2
		if start < 0 {
			start = 0
		}
	}
	for _, msg := range msgs[start:] {
		b.WriteString(m.renderMessage(msg, width))
		b.WriteString("\n")
	}
	if log.Streaming() {
		b.WriteString(streamingStyle.Render("▌ streaming...") + "\n")
	}

	b.WriteString("\n")
	if m.typing {
		b.WriteString(selectedStyle.Render("> ") + m.chatInput + "█")
	} else {
		b.WriteString(dimStyle.Render("press i to write, / for commands"))
	}
	return b.String()
}

func (m Model) renderMessage(msg datatypes.Message, width int) string {
	content := msg.Content
	if width > 4 && len(content) > width-4 {
		content = content[:width-4] + "…"
	}
	switch msg.Role {
	case datatypes.RoleUser:
		return userMsgStyle.Render("you ") + content
	case datatypes.RoleAssistant:
		return assistantMsgStyle.Render("agent ") + content
	default:
		return dimStyle.Render(string(msg.Role)+" ") + content
	}
}
