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

// terminalControl is a JSON control frame on the terminal socket.
// Keystrokes travel as raw binary frames, not JSON.
type terminalControl struct {
	Type string `json:"type"`
	Rows int    `json:"rows,omitempty"`
	Cols int    `json:"cols,omitempty"`
}

// TerminalConfig configures a TerminalSocket.
type TerminalConfig struct {
	// URL is the terminal WebSocket endpoint. Required.
	URL string

	// Token is the bearer token sent on the upgrade request.
	Token string

	// OnOutput receives raw PTY output bytes.
	OnOutput func(data []byte)

	// OnStateChange observes connection transitions. Optional.
	OnStateChange func(State)

	Logger *slog.Logger
	Dial   Dialer
}

// TerminalSocket carries raw keystrokes to a backend PTY and raw PTY
// output back.
//
// The terminal does not auto-reconnect: a dropped PTY session cannot be
// transparently resumed, so the panel shows the drop and the user
// reconnects explicitly. Keystrokes typed before the socket is open are
// queued and replayed in order once it is.
type TerminalSocket struct {
	sock *Socket
	cfg  TerminalConfig
}

// NewTerminalSocket creates the adapter. Nothing connects until Connect.
func NewTerminalSocket(cfg TerminalConfig) *TerminalSocket {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	t := &TerminalSocket{cfg: cfg}

	header := http.Header{}
	if cfg.Token != "" {
		header.Set("Authorization", "Bearer "+cfg.Token)
	}
	t.sock = NewSocket(Options{
		URL:    cfg.URL,
		Header: header,
		Dial:   cfg.Dial,
		// No auto-reconnect for PTY sessions.
		ReconnectDelay: 0,
		QueueOutbound:  true,
		OnMessage: func(_ int, data []byte) {
			if cfg.OnOutput != nil {
				cfg.OnOutput(data)
			}
		},
		OnStateChange: cfg.OnStateChange,
		Logger:        logger,
	})
	return t
}

// Connect opens the PTY stream.
func (t *TerminalSocket) Connect(ctx context.Context) error {
	return t.sock.Connect(ctx)
}

// State returns the connection state.
func (t *TerminalSocket) State() State {
	return t.sock.State()
}

// Close shuts the stream down.
func (t *TerminalSocket) Close() error {
	return t.sock.Close()
}

// SendKeystrokes forwards raw UTF-8 bytes to the PTY.
func (t *TerminalSocket) SendKeystrokes(data []byte) error {
	return t.sock.Send(websocket.BinaryMessage, data)
}

// Resize tells the backend PTY the panel's new dimensions.
func (t *TerminalSocket) Resize(rows, cols int) error {
	return t.sendControl(terminalControl{Type: "resize", Rows: rows, Cols: cols})
}

// TmuxRefresh asks the backend to redraw the tmux client.
func (t *TerminalSocket) TmuxRefresh() error {
	return t.sendControl(terminalControl{Type: "tmux-refresh"})
}

func (t *TerminalSocket) sendControl(c terminalControl) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return t.sock.Send(websocket.TextMessage, data)
}
