// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package transport provides the realtime WebSocket adapters: chat
// stream, terminal, and browser automation.
//
// Each adapter owns one Socket, a small connection state machine:
//
//	Disconnected → Connecting → Connected
//	                     ↑            │ error/close
//	                     └ Reconnecting ←┘
//
// Reconnects use a single owned timer with a fixed delay, not
// exponential backoff. These are low-volume, user-supervised panels;
// the fixed delay is intentional. Close always cancels the pending
// timer and closes the socket, so a closed panel can never be
// reconnected by a stale timer.
//
// A socket never connects on its own: the owning panel requests the
// initial connection explicitly once it has credentials and project
// context.
package transport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// State is the connection state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
)

// String returns the state name for logs.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// DefaultReconnectDelay is the fixed delay between a drop and the
// single scheduled reconnect attempt.
const DefaultReconnectDelay = 3 * time.Second

// ErrClosed is returned by Send after Close.
var ErrClosed = errors.New("transport: socket closed")

// Conn is the subset of *websocket.Conn the socket needs. Tests
// substitute an in-memory implementation.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Dialer opens a Conn. The default wraps gorilla's dialer.
type Dialer func(ctx context.Context, url string, header http.Header) (Conn, error)

func gorillaDial(ctx context.Context, url string, header http.Header) (Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Options configures a Socket.
type Options struct {
	// URL is the WebSocket endpoint. Required.
	URL string

	// Header carries auth and project context on the upgrade request.
	Header http.Header

	// Dial overrides the dialer. Default: gorilla.
	Dial Dialer

	// ReconnectDelay is the fixed delay before the single reconnect
	// attempt after a drop. Zero disables auto-reconnect entirely
	// (the terminal panel's policy: the user reconnects explicitly).
	ReconnectDelay time.Duration

	// QueueOutbound buffers Send calls while not connected and flushes
	// them in FIFO order once connected. When false, Send fails fast
	// while disconnected.
	QueueOutbound bool

	// OnMessage receives every inbound frame. Called from the read
	// loop goroutine.
	OnMessage func(messageType int, data []byte)

	// OnStateChange observes transitions. Optional.
	OnStateChange func(State)

	// Logger receives connection lifecycle logs. Default: slog.Default().
	Logger *slog.Logger
}

type frame struct {
	messageType int
	data        []byte
}

// Socket is one owned WebSocket connection with reconnect handling.
// Exclusively owned by the panel that opened it; panels never share.
type Socket struct {
	opts Options
	log  *slog.Logger

	mu        sync.Mutex
	state     State
	conn      Conn
	queue     []frame
	reconnect *time.Timer
	closed    bool
	gen       int // connection generation, guards stale read loops

	// State notifications are queued and drained by one goroutine so
	// observers see transitions in the order they happened.
	notifyMu  sync.Mutex
	notifyQ   []State
	notifying bool
}

// NewSocket creates a Socket in the Disconnected state. Nothing is
// dialed until Connect.
func NewSocket(opts Options) *Socket {
	if opts.Dial == nil {
		opts.Dial = gorillaDial
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Socket{opts: opts, log: logger, state: StateDisconnected}
}

// State returns the current connection state.
func (s *Socket) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Connect dials the endpoint. Only valid from Disconnected; a no-op
// error is returned otherwise so panels cannot double-connect.
func (s *Socket) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.state != StateDisconnected {
		s.mu.Unlock()
		return errors.New("transport: already connecting or connected")
	}
	s.setStateLocked(StateConnecting)
	s.mu.Unlock()

	return s.dial(ctx)
}

// dial performs one connection attempt from Connecting or Reconnecting.
func (s *Socket) dial(ctx context.Context) error {
	conn, err := s.opts.Dial(ctx, s.opts.URL, s.opts.Header)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return ErrClosed
	}
	if err != nil {
		s.log.Warn("websocket dial failed", "url", s.opts.URL, "error", err)
		s.scheduleReconnectLocked()
		s.mu.Unlock()
		return err
	}

	s.conn = conn
	s.gen++
	gen := s.gen
	s.setStateLocked(StateConnected)
	pending := s.queue
	s.queue = nil
	s.mu.Unlock()

	// Replay frames queued while the socket was down, in FIFO order.
	// A failed write puts the unsent remainder back at the head of the
	// queue so the next connection replays it.
	for i, f := range pending {
		if werr := conn.WriteMessage(f.messageType, f.data); werr != nil {
			s.log.Warn("flushing queued frame failed", "error", werr)
			s.mu.Lock()
			if !s.closed {
				s.queue = append(pending[i:], s.queue...)
			}
			s.mu.Unlock()
			break
		}
	}

	go s.readLoop(conn, gen)
	return nil
}

// Send writes one frame, or queues it while disconnected when
// QueueOutbound is set.
func (s *Socket) Send(messageType int, data []byte) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.state != StateConnected {
		if s.opts.QueueOutbound {
			s.queue = append(s.queue, frame{messageType, data})
			s.mu.Unlock()
			return nil
		}
		s.mu.Unlock()
		return errors.New("transport: not connected")
	}
	conn := s.conn
	s.mu.Unlock()

	return conn.WriteMessage(messageType, data)
}

// Close tears the socket down: cancels any pending reconnect timer,
// closes the connection, and moves to Disconnected permanently. Safe to
// call more than once.
func (s *Socket) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.reconnect != nil {
		s.reconnect.Stop()
		s.reconnect = nil
	}
	conn := s.conn
	s.conn = nil
	s.setStateLocked(StateDisconnected)
	s.mu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}

// readLoop pumps inbound frames until the connection drops. gen guards
// against a stale loop from a previous connection touching state.
func (s *Socket) readLoop(conn Conn, gen int) {
	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			s.onReadError(gen, err)
			return
		}
		if s.opts.OnMessage != nil {
			s.opts.OnMessage(mt, data)
		}
	}
}

func (s *Socket) onReadError(gen int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.gen {
		return
	}
	s.log.Warn("websocket read failed", "url", s.opts.URL, "error", err)
	s.conn = nil
	s.scheduleReconnectLocked()
}

// scheduleReconnectLocked arranges exactly one reconnect attempt after
// the fixed delay, or settles in Disconnected when auto-reconnect is
// off. Caller holds s.mu.
func (s *Socket) scheduleReconnectLocked() {
	if s.opts.ReconnectDelay <= 0 {
		s.setStateLocked(StateDisconnected)
		return
	}
	s.setStateLocked(StateReconnecting)
	if s.reconnect != nil {
		s.reconnect.Stop()
	}
	s.reconnect = time.AfterFunc(s.opts.ReconnectDelay, func() {
		s.mu.Lock()
		if s.closed || s.state != StateReconnecting {
			s.mu.Unlock()
			return
		}
		s.reconnect = nil
		s.mu.Unlock()
		_ = s.dial(context.Background())
	})
}

// setStateLocked transitions and queues the notification. Caller holds
// s.mu.
func (s *Socket) setStateLocked(next State) {
	if s.state == next {
		return
	}
	s.state = next
	if s.opts.OnStateChange != nil {
		s.notifyState(next)
	}
}

// notifyState delivers transitions off the lock, in order. The first
// caller starts the drain goroutine; later transitions append to the
// queue it is working through, so observers can call back into the
// socket without seeing transitions out of order.
func (s *Socket) notifyState(next State) {
	s.notifyMu.Lock()
	s.notifyQ = append(s.notifyQ, next)
	if s.notifying {
		s.notifyMu.Unlock()
		return
	}
	s.notifying = true
	s.notifyMu.Unlock()

	cb := s.opts.OnStateChange
	go func() {
		for {
			s.notifyMu.Lock()
			if len(s.notifyQ) == 0 {
				s.notifying = false
				s.notifyMu.Unlock()
				return
			}
			st := s.notifyQ[0]
			s.notifyQ = s.notifyQ[1:]
			s.notifyMu.Unlock()
			cb(st)
		}
	}()
}
