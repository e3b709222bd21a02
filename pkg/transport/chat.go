// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package transport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/AleutianAI/AleutianDeck/pkg/datatypes"
	"github.com/AleutianAI/AleutianDeck/pkg/store"
	"github.com/gorilla/websocket"
)

// =============================================================================
// Wire frames
// =============================================================================

// chatOutbound is a client frame on the chat socket.
type chatOutbound struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id,omitempty"`
	Content        string `json:"content,omitempty"`
	Command        string `json:"command,omitempty"`
}

// chatInbound is the envelope of a server frame. Only Type is decoded
// up front; the payload fields are populated per type.
type chatInbound struct {
	Type    string          `json:"type"`
	Delta   string          `json:"delta,omitempty"`
	Content string          `json:"content,omitempty"`
	PlanID  string          `json:"plan_id,omitempty"`
	Plan    *datatypes.Plan `json:"plan,omitempty"`
	Step    *datatypes.Step `json:"step,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Inbound frame types the chat surface understands.
const (
	chatFrameToken      = "token"
	chatFrameDone       = "done"
	chatFramePlanUpdate = "plan_update"
	chatFrameStepUpdate = "step_update"
	chatFrameReasoning  = "reasoning"
	chatFrameError      = "error"
)

// =============================================================================
// Chat adapter
// =============================================================================

// ChatConfig configures a ChatSocket.
type ChatConfig struct {
	// URL is the chat WebSocket endpoint. Required.
	URL string

	// Token is the bearer token sent on the upgrade request.
	Token string

	// Messages receives token deltas and stream completion.
	Messages *store.MessageLog

	// Plans receives realtime plan and step updates.
	Plans *store.PlanStore

	// OnReasoning observes supervisor-reasoning events. Optional.
	OnReasoning func(content string)

	// OnError observes backend-reported stream errors. Optional.
	OnError func(message string)

	// OnStateChange observes connection transitions. Optional.
	OnStateChange func(State)

	// OnEvent fires after every dispatched inbound frame, once the
	// owning store has been updated. The dashboard uses it to trigger
	// a redraw. Optional.
	OnEvent func()

	// Logger, Dial: test and wiring overrides.
	Logger *slog.Logger
	Dial   Dialer
}

// ChatSocket streams a conversation: user messages and slash-commands
// out, token deltas and plan/step updates in.
//
// Outbound messages are queued in FIFO order while the socket is down
// and flushed once Connected, so a message typed during a reconnect is
// never lost. Reconnects use the fixed default delay.
type ChatSocket struct {
	sock *Socket
	cfg  ChatConfig
	log  *slog.Logger
}

// NewChatSocket creates the adapter. Nothing connects until Connect.
func NewChatSocket(cfg ChatConfig) *ChatSocket {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &ChatSocket{cfg: cfg, log: logger}

	header := http.Header{}
	if cfg.Token != "" {
		header.Set("Authorization", "Bearer "+cfg.Token)
	}
	c.sock = NewSocket(Options{
		URL:            cfg.URL,
		Header:         header,
		Dial:           cfg.Dial,
		ReconnectDelay: DefaultReconnectDelay,
		QueueOutbound:  true,
		OnMessage:      c.dispatch,
		OnStateChange:  cfg.OnStateChange,
		Logger:         logger,
	})
	return c
}

// SetCallbacks installs the state and frame observers. The dashboard
// builds its program after the socket, so the observers arrive late;
// must be called before Connect.
func (c *ChatSocket) SetCallbacks(onState func(State), onEvent func()) {
	c.cfg.OnStateChange = onState
	c.cfg.OnEvent = onEvent
	c.sock.opts.OnStateChange = onState
}

// Connect opens the stream. Called by the chat panel once it has a
// conversation selected and a token present.
func (c *ChatSocket) Connect(ctx context.Context) error {
	return c.sock.Connect(ctx)
}

// State returns the connection state for the panel's indicator.
func (c *ChatSocket) State() State {
	return c.sock.State()
}

// Close shuts the stream down and cancels any pending reconnect.
func (c *ChatSocket) Close() error {
	return c.sock.Close()
}

// SendMessage queues or sends one user message. The message also lands
// in the local log immediately so the panel renders it without waiting
// for the socket.
func (c *ChatSocket) SendMessage(conversationID, content string) error {
	if c.cfg.Messages != nil {
		c.cfg.Messages.AppendLocal(content)
	}
	return c.sendJSON(chatOutbound{
		Type:           "message",
		ConversationID: conversationID,
		Content:        content,
	})
}

// SendCommand sends a slash-command (e.g. "/compact").
func (c *ChatSocket) SendCommand(conversationID, command string) error {
	return c.sendJSON(chatOutbound{
		Type:           "command",
		ConversationID: conversationID,
		Command:        command,
	})
}

func (c *ChatSocket) sendJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.sock.Send(websocket.TextMessage, data)
}

// dispatch routes one inbound frame to the owning store. Unknown types
// are logged and dropped; a malformed frame never crashes the adapter.
func (c *ChatSocket) dispatch(messageType int, data []byte) {
	var in chatInbound
	if err := json.Unmarshal(data, &in); err != nil {
		c.log.Warn("dropping malformed chat frame", "error", err)
		return
	}

	switch in.Type {
	case chatFrameToken:
		if c.cfg.Messages != nil {
			c.cfg.Messages.ApplyToken(in.Delta)
		}
	case chatFrameDone:
		if c.cfg.Messages != nil {
			c.cfg.Messages.FinishStream()
		}
	case chatFramePlanUpdate:
		if c.cfg.Plans != nil && in.Plan != nil {
			c.cfg.Plans.ApplyPlan(*in.Plan)
		}
	case chatFrameStepUpdate:
		if c.cfg.Plans != nil && in.Step != nil {
			c.cfg.Plans.ApplyStep(in.PlanID, *in.Step)
		}
	case chatFrameReasoning:
		if c.cfg.OnReasoning != nil {
			c.cfg.OnReasoning(in.Content)
		}
	case chatFrameError:
		if c.cfg.OnError != nil {
			c.cfg.OnError(in.Error)
		}
	default:
		c.log.Warn("dropping unknown chat frame", "type", in.Type)
		return
	}

	if c.cfg.OnEvent != nil {
		c.cfg.OnEvent()
	}
}
