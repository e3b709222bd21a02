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

	"github.com/gorilla/websocket"
)

// =============================================================================
// Wire frames
// =============================================================================

// browserOutbound is a client command on the browser-automation socket.
type browserOutbound struct {
	Type     string `json:"type"`
	URL      string `json:"url,omitempty"`
	X        int    `json:"x,omitempty"`
	Y        int    `json:"y,omitempty"`
	DeltaX   int    `json:"delta_x,omitempty"`
	DeltaY   int    `json:"delta_y,omitempty"`
	PromptID string `json:"prompt_id,omitempty"`
	Approve  bool   `json:"approve,omitempty"`
}

// browserInbound is the envelope of a server frame.
type browserInbound struct {
	Type     string `json:"type"`
	Image    string `json:"image,omitempty"` // base64 frame
	Level    string `json:"level,omitempty"`
	Message  string `json:"message,omitempty"`
	Method   string `json:"method,omitempty"`
	URL      string `json:"url,omitempty"`
	Status   int    `json:"status,omitempty"`
	PromptID string `json:"prompt_id,omitempty"`
}

const (
	browserFrameImage   = "frame"
	browserFrameConsole = "console_event"
	browserFrameNetwork = "network_event"
	browserFramePrompt  = "browser_prompt"
)

// ConsoleEvent is a browser console line surfaced to the panel.
type ConsoleEvent struct {
	Level   string
	Message string
}

// NetworkEvent is one request/response pair surfaced to the panel.
type NetworkEvent struct {
	Method string
	URL    string
	Status int
}

// AuthPrompt is a `browser_prompt` challenge requiring a user decision
// before the automation continues.
type AuthPrompt struct {
	PromptID string
	Message  string
}

// =============================================================================
// Browser adapter
// =============================================================================

// BrowserConfig configures a BrowserSocket.
type BrowserConfig struct {
	// URL is the browser-automation WebSocket endpoint. Required.
	URL string

	// Token is the bearer token sent on the upgrade request.
	Token string

	// OnFrame receives base64-encoded page frames.
	OnFrame func(imageBase64 string)

	// OnConsole and OnNetwork receive log events. Optional.
	OnConsole func(ConsoleEvent)
	OnNetwork func(NetworkEvent)

	// OnPrompt receives auth challenges the user must decide.
	OnPrompt func(AuthPrompt)

	// OnStateChange observes connection transitions. Optional.
	OnStateChange func(State)

	Logger *slog.Logger
	Dial   Dialer
}

// BrowserSocket drives the backend's browser automation: navigation,
// clicks, and scrolls out; page frames, console/network events, and
// auth prompts in. Reconnects after a drop with the fixed default
// delay.
type BrowserSocket struct {
	sock *Socket
	cfg  BrowserConfig
	log  *slog.Logger
}

// NewBrowserSocket creates the adapter. Nothing connects until Connect.
func NewBrowserSocket(cfg BrowserConfig) *BrowserSocket {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	b := &BrowserSocket{cfg: cfg, log: logger}

	header := http.Header{}
	if cfg.Token != "" {
		header.Set("Authorization", "Bearer "+cfg.Token)
	}
	b.sock = NewSocket(Options{
		URL:            cfg.URL,
		Header:         header,
		Dial:           cfg.Dial,
		ReconnectDelay: DefaultReconnectDelay,
		QueueOutbound:  false,
		OnMessage:      b.dispatch,
		OnStateChange:  cfg.OnStateChange,
		Logger:         logger,
	})
	return b
}

// Connect opens the automation stream.
func (b *BrowserSocket) Connect(ctx context.Context) error {
	return b.sock.Connect(ctx)
}

// State returns the connection state.
func (b *BrowserSocket) State() State {
	return b.sock.State()
}

// Close shuts the stream down and cancels any pending reconnect.
func (b *BrowserSocket) Close() error {
	return b.sock.Close()
}

// Navigate loads a URL in the automated browser.
func (b *BrowserSocket) Navigate(url string) error {
	return b.send(browserOutbound{Type: "navigate", URL: url})
}

// Click clicks at page coordinates.
func (b *BrowserSocket) Click(x, y int) error {
	return b.send(browserOutbound{Type: "click", X: x, Y: y})
}

// Scroll scrolls the page by the given deltas.
func (b *BrowserSocket) Scroll(dx, dy int) error {
	return b.send(browserOutbound{Type: "scroll", DeltaX: dx, DeltaY: dy})
}

// RespondToPrompt answers an auth challenge.
func (b *BrowserSocket) RespondToPrompt(promptID string, approve bool) error {
	return b.send(browserOutbound{Type: "auth_decision", PromptID: promptID, Approve: approve})
}

func (b *BrowserSocket) send(v browserOutbound) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.sock.Send(websocket.TextMessage, data)
}

// dispatch routes one inbound frame. Unknown types are logged and
// dropped.
func (b *BrowserSocket) dispatch(messageType int, data []byte) {
	var in browserInbound
	if err := json.Unmarshal(data, &in); err != nil {
		b.log.Warn("dropping malformed browser frame", "error", err)
		return
	}

	switch in.Type {
	case browserFrameImage:
		if b.cfg.OnFrame != nil {
			b.cfg.OnFrame(in.Image)
		}
	case browserFrameConsole:
		if b.cfg.OnConsole != nil {
			b.cfg.OnConsole(ConsoleEvent{Level: in.Level, Message: in.Message})
		}
	case browserFrameNetwork:
		if b.cfg.OnNetwork != nil {
			b.cfg.OnNetwork(NetworkEvent{Method: in.Method, URL: in.URL, Status: in.Status})
		}
	case browserFramePrompt:
		if b.cfg.OnPrompt != nil {
			b.cfg.OnPrompt(AuthPrompt{PromptID: in.PromptID, Message: in.Message})
		}
	default:
		b.log.Warn("dropping unknown browser frame", "type", in.Type)
	}
}
