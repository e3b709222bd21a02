// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package tui implements the dashboard terminal interface using
// bubbletea.
//
// # Description
//
// The dashboard is a panel layout: a conversation sidebar on the left
// and one of chat, plans, memory, or usage on the right. Panels read
// the process-wide entity stores; mutations go through store action
// methods, never by direct assignment.
//
// # Thread Safety
//
// The model is single-threaded inside the bubbletea event loop.
// Realtime socket events reach it as messages via Program.Send.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/AleutianAI/AleutianDeck/pkg/prefs"
	"github.com/AleutianAI/AleutianDeck/pkg/store"
	"github.com/AleutianAI/AleutianDeck/pkg/transport"
	"github.com/AleutianAI/AleutianDeck/pkg/workspace"
)

// =============================================================================
// Panels
// =============================================================================

// Panel identifies the focused right-hand panel.
type Panel int

const (
	// PanelChat shows the message stream for the selected conversation.
	PanelChat Panel = iota

	// PanelPlans shows plans and step progress.
	PanelPlans

	// PanelMemory shows the memory browser.
	PanelMemory

	// PanelUsage shows daily usage and budget alerts.
	PanelUsage

	// PanelWorkspace shows git status, diffs, and external file changes.
	PanelWorkspace
)

// panelCount is the number of cyclable panels.
const panelCount = 5

// String returns the panel's tab label.
func (p Panel) String() string {
	switch p {
	case PanelChat:
		return "Chat"
	case PanelPlans:
		return "Plans"
	case PanelMemory:
		return "Memory"
	case PanelUsage:
		return "Usage"
	case PanelWorkspace:
		return "Workspace"
	default:
		return "?"
	}
}

// =============================================================================
// Messages
// =============================================================================

// StoreChangedMsg tells the model a store mutated outside the event
// loop (socket dispatch). cmd/deck sends it via Program.Send.
type StoreChangedMsg struct{}

// SocketStateMsg carries a chat socket transition for the indicator.
type SocketStateMsg struct {
	State transport.State
}

// refreshDoneMsg reports a background store fetch.
type refreshDoneMsg struct {
	what string
	err  error
}

// conversationSelectedMsg reports the message/plan fetch after a
// sidebar selection.
type conversationSelectedMsg struct {
	id  string
	err error
}

// =============================================================================
// Stores
// =============================================================================

// Stores bundles the process-wide entity stores the dashboard reads.
type Stores struct {
	Conversations *store.ConversationStore
	Plans         *store.PlanStore
	Memories      *store.MemoryStore
	Projects      *store.ProjectStore
	Usage         *store.UsageStore
	Messages      *store.MessageLog
	Selection     *store.Selection
	Prefs         *prefs.Store
}

// Config configures the dashboard model.
type Config struct {
	Stores Stores

	// Chat is the realtime socket; may be nil in tests.
	Chat *transport.ChatSocket

	// Git backs the workspace panel; nil hides git state.
	Git *workspace.GitPanel

	// AutoSave is read for the pending indicator; may be nil.
	AutoSave *workspace.AutoSaver
}

// =============================================================================
// Model
// =============================================================================

// Model is the bubbletea model for the dashboard.
type Model struct {
	stores   Stores
	chat     *transport.ChatSocket
	git      *workspace.GitPanel
	autoSave *workspace.AutoSaver

	panel       Panel
	sidebarIdx  int
	selectedID  string
	socketState transport.State

	// Client-local pinned set, loaded from prefs at startup.
	pinned map[string]bool

	// Panel sub-state
	planIdx   int
	memory    memoryPanel
	ws        workspacePanel
	chatInput string
	typing    bool

	width  int
	height int

	statusLine string
	quitting   bool
}

// NewModel creates the dashboard model.
func NewModel(cfg Config) Model {
	pinned := map[string]bool{}
	if cfg.Stores.Prefs != nil {
		if p, err := cfg.Stores.Prefs.Pinned(); err == nil {
			pinned = p
		}
	}
	return Model{
		stores:      cfg.Stores,
		chat:        cfg.Chat,
		git:         cfg.Git,
		autoSave:    cfg.AutoSave,
		panel:       PanelChat,
		pinned:      pinned,
		socketState: transport.StateDisconnected,
		memory:      newMemoryPanel(),
	}
}

// Init implements tea.Model: kick off the initial fetches.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.fetchConversations(),
		m.fetchProjects(),
		m.fetchMemories(),
		m.fetchUsage(),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := m.height - 7
		if vpHeight < 3 {
			vpHeight = 3
		}
		if !m.ws.vpReady {
			m.ws.vp = viewport.New(m.mainWidth(), vpHeight)
			m.ws.vpReady = true
		} else {
			m.ws.vp.Width = m.mainWidth()
			m.ws.vp.Height = vpHeight
		}
		return m, nil

	case StoreChangedMsg:
		return m, nil

	case SocketStateMsg:
		m.socketState = msg.State
		return m, nil

	case refreshDoneMsg:
		if msg.err != nil {
			m.statusLine = msg.what + ": " + msg.err.Error()
		}
		return m, nil

	case conversationSelectedMsg:
		if msg.err != nil {
			m.statusLine = "load conversation: " + msg.err.Error()
		}
		return m, nil

	case memoryFormDoneMsg:
		return m.handleMemoryFormDone(msg)

	case gitStatusMsg:
		if msg.err != nil {
			m.statusLine = "git status: " + msg.err.Error()
		}
		return m, nil

	case gitDiffMsg:
		return m.handleGitDiff(msg)

	case gitLogMsg:
		if msg.err != nil {
			m.statusLine = "git log: " + msg.err.Error()
		} else {
			m.ws.commits = msg.commits
		}
		return m, nil

	case FileChangedMsg:
		return m.recordFileChange(msg.Change), nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// A visible memory form consumes everything else (blink ticks etc).
	if m.memory.formActive() {
		cmd := m.memory.update(msg)
		return m, cmd
	}
	return m, nil
}

// handleKey routes keys: typing mode and the memory form swallow most
// of them; otherwise globals first, then the focused panel.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.memory.formActive() {
		if msg.String() == "esc" {
			m.memory.closeForm()
			return m, nil
		}
		cmd := m.memory.update(msg)
		return m, cmd
	}

	if m.typing {
		return m.handleChatInput(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit

	case "tab":
		m.panel = (m.panel + 1) % panelCount
		return m, nil

	case "shift+tab":
		m.panel = (m.panel + panelCount - 1) % panelCount
		return m, nil

	case "r":
		return m, m.refreshFocused()
	}

	switch m.panel {
	case PanelChat:
		return m.handleSidebarKey(msg)
	case PanelPlans:
		return m.handlePlanKey(msg)
	case PanelMemory:
		return m.handleMemoryKey(msg)
	case PanelUsage:
		return m, nil
	case PanelWorkspace:
		return m.handleWorkspaceKey(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "Loading...\n"
	}

	sidebarWidth := m.sidebarWidth()
	mainWidth := m.mainWidth()
	bodyHeight := m.height - 4

	sidebar := m.renderSidebar(sidebarWidth, bodyHeight)
	var main string
	switch m.panel {
	case PanelChat:
		main = m.renderChat(mainWidth, bodyHeight)
	case PanelPlans:
		main = m.renderPlans(mainWidth, bodyHeight)
	case PanelMemory:
		main = m.renderMemory(mainWidth, bodyHeight)
	case PanelUsage:
		main = m.renderUsage(mainWidth, bodyHeight)
	case PanelWorkspace:
		main = m.renderWorkspace(mainWidth, bodyHeight)
	}

	sidebarBox := blurredBorder.Width(sidebarWidth).Height(bodyHeight).Render(sidebar)
	mainBox := focusedBorder.Width(mainWidth).Height(bodyHeight).Render(main)

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, sidebarBox, mainBox))
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) sidebarWidth() int {
	w := m.width / 3
	if w > 44 {
		w = 44
	}
	return w
}

func (m Model) mainWidth() int {
	return m.width - m.sidebarWidth() - 6
}

func (m Model) renderHeader() string {
	var tabs []string
	for p := PanelChat; p < Panel(panelCount); p++ {
		label := p.String()
		if p == m.panel {
			label = selectedStyle.Render("[" + label + "]")
		} else {
			label = dimStyle.Render(" " + label + " ")
		}
		tabs = append(tabs, label)
	}
	return titleStyle.Render("Aleutian Deck") + "  " +
		strings.Join(tabs, " ") + "  " + m.renderSocketState()
}

func (m Model) renderSocketState() string {
	switch m.socketState {
	case transport.StateConnected:
		return connectedStyle.Render("● connected")
	case transport.StateReconnecting:
		return reconnectStyle.Render("◌ reconnecting")
	case transport.StateConnecting:
		return reconnectStyle.Render("◌ connecting")
	default:
		return dimStyle.Render("○ offline")
	}
}

func (m Model) renderFooter() string {
	if m.statusLine != "" {
		return errorStyle.Render(m.statusLine)
	}
	if m.stores.Selection != nil && m.stores.Selection.Active() {
		return checkedStyle.Render("SELECT") + helpStyle.Render(
			"  space:toggle  d:delete selected  v:exit  q:quit")
	}
	return helpStyle.Render(
		"tab:panel  j/k:move  enter:open  i:message  p:pin  v:select  a:archive  d:delete  r:refresh  q:quit")
}

// =============================================================================
// Fetch commands
// =============================================================================

func (m Model) fetchConversations() tea.Cmd {
	s := m.stores.Conversations
	return func() tea.Msg {
		return refreshDoneMsg{what: "conversations", err: s.FetchAll(context.Background())}
	}
}

func (m Model) fetchProjects() tea.Cmd {
	s := m.stores.Projects
	return func() tea.Msg {
		return refreshDoneMsg{what: "projects", err: s.FetchAll(context.Background())}
	}
}

func (m Model) fetchUsage() tea.Cmd {
	s := m.stores.Usage
	return func() tea.Msg {
		to := time.Now()
		from := to.AddDate(0, 0, -30)
		return refreshDoneMsg{what: "usage", err: s.FetchAll(context.Background(), from, to)}
	}
}

func (m Model) refreshFocused() tea.Cmd {
	switch m.panel {
	case PanelPlans:
		return m.fetchPlans(m.selectedID)
	case PanelMemory:
		return m.fetchMemories()
	case PanelUsage:
		return m.fetchUsage()
	case PanelWorkspace:
		return m.refreshGit()
	default:
		return m.fetchConversations()
	}
}
