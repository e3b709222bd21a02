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
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn is an in-memory Conn fed by the test.
type fakeConn struct {
	in         chan []byte
	mu         sync.Mutex
	writes     [][]byte
	failWrites bool
	closed     chan struct{}
	once       sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{in: make(chan []byte, 16), closed: make(chan struct{})}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case data := <-f.in:
		return websocket.TextMessage, data, nil
	case <-f.closed:
		return 0, nil, errors.New("connection dropped")
	}
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	select {
	case <-f.closed:
		return errors.New("write on closed conn")
	default:
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return errors.New("write refused")
	}
	f.writes = append(f.writes, append([]byte(nil), data...))
	return nil
}

func (f *fakeConn) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeConn) written() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.writes))
	for i, w := range f.writes {
		out[i] = string(w)
	}
	return out
}

// fakeDialer hands out fresh conns and counts dials.
type fakeDialer struct {
	mu         sync.Mutex
	conns      []*fakeConn
	fail       bool
	failWrites bool
}

func (d *fakeDialer) dial(ctx context.Context, url string, header http.Header) (Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail {
		return nil, errors.New("dial refused")
	}
	c := newFakeConn()
	c.failWrites = d.failWrites
	d.conns = append(d.conns, c)
	return c, nil
}

func (d *fakeDialer) setFailWrites(v bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failWrites = v
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.conns)
}

func (d *fakeDialer) last() *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.conns) == 0 {
		return nil
	}
	return d.conns[len(d.conns)-1]
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestSocketStartsDisconnected(t *testing.T) {
	s := NewSocket(Options{URL: "ws://x", Dial: (&fakeDialer{}).dial})
	assert.Equal(t, StateDisconnected, s.State())
}

func TestSocketConnectTransitions(t *testing.T) {
	d := &fakeDialer{}
	s := NewSocket(Options{URL: "ws://x", Dial: d.dial})

	require.NoError(t, s.Connect(context.Background()))
	assert.Equal(t, StateConnected, s.State())
	assert.Equal(t, 1, d.dialCount())

	// Double connect is refused.
	assert.Error(t, s.Connect(context.Background()))
}

func TestSocketQueuedFramesFlushFIFO(t *testing.T) {
	d := &fakeDialer{}
	s := NewSocket(Options{URL: "ws://x", Dial: d.dial, QueueOutbound: true})

	require.NoError(t, s.Send(websocket.TextMessage, []byte("first")))
	require.NoError(t, s.Send(websocket.TextMessage, []byte("second")))
	require.NoError(t, s.Send(websocket.TextMessage, []byte("third")))

	require.NoError(t, s.Connect(context.Background()))

	conn := d.last()
	waitFor(t, func() bool { return len(conn.written()) == 3 }, "queued frames not flushed")
	assert.Equal(t, []string{"first", "second", "third"}, conn.written())
}

func TestSocketSendWithoutQueueFailsFast(t *testing.T) {
	s := NewSocket(Options{URL: "ws://x", Dial: (&fakeDialer{}).dial})
	assert.Error(t, s.Send(websocket.TextMessage, []byte("x")))
}

func TestSocketReconnectAfterDrop(t *testing.T) {
	d := &fakeDialer{}
	s := NewSocket(Options{
		URL: "ws://x", Dial: d.dial,
		ReconnectDelay: 20 * time.Millisecond,
	})
	require.NoError(t, s.Connect(context.Background()))

	// Drop the connection; the socket schedules one fixed-delay retry.
	d.last().Close()
	waitFor(t, func() bool { return s.State() == StateReconnecting }, "never entered Reconnecting")
	waitFor(t, func() bool { return s.State() == StateConnected }, "never reconnected")
	assert.Equal(t, 2, d.dialCount())

	s.Close()
}

func TestSocketNoAutoReconnectWhenDisabled(t *testing.T) {
	d := &fakeDialer{}
	s := NewSocket(Options{URL: "ws://x", Dial: d.dial}) // ReconnectDelay zero
	require.NoError(t, s.Connect(context.Background()))

	d.last().Close()
	waitFor(t, func() bool { return s.State() == StateDisconnected }, "never settled Disconnected")

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, d.dialCount(), "terminal-style sockets must not redial")
}

func TestSocketCloseCancelsPendingReconnect(t *testing.T) {
	d := &fakeDialer{}
	s := NewSocket(Options{
		URL: "ws://x", Dial: d.dial,
		ReconnectDelay: 30 * time.Millisecond,
	})
	require.NoError(t, s.Connect(context.Background()))

	d.last().Close()
	waitFor(t, func() bool { return s.State() == StateReconnecting }, "never entered Reconnecting")

	// Closing the panel while a reconnect is pending must cancel it:
	// a dangling timer reconnecting a closed panel is forbidden.
	require.NoError(t, s.Close())
	time.Sleep(80 * time.Millisecond)

	assert.Equal(t, 1, d.dialCount(), "reconnect fired after Close")
	assert.Equal(t, StateDisconnected, s.State())
	assert.ErrorIs(t, s.Send(websocket.TextMessage, []byte("x")), ErrClosed)
}

func TestSocketInboundDispatch(t *testing.T) {
	var got atomic.Value
	d := &fakeDialer{}
	s := NewSocket(Options{
		URL: "ws://x", Dial: d.dial,
		OnMessage: func(_ int, data []byte) { got.Store(string(data)) },
	})
	require.NoError(t, s.Connect(context.Background()))

	d.last().in <- []byte(`{"type":"token"}`)
	waitFor(t, func() bool { return got.Load() != nil }, "inbound frame not dispatched")
	assert.Equal(t, `{"type":"token"}`, got.Load())

	s.Close()
}

func TestSocketConnectAfterCloseRefused(t *testing.T) {
	s := NewSocket(Options{URL: "ws://x", Dial: (&fakeDialer{}).dial})
	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Connect(context.Background()), ErrClosed)
}

func TestSocketFlushFailureRequeuesRemainder(t *testing.T) {
	d := &fakeDialer{}
	s := NewSocket(Options{
		URL: "ws://x", Dial: d.dial,
		QueueOutbound:  true,
		ReconnectDelay: 20 * time.Millisecond,
	})

	require.NoError(t, s.Send(websocket.TextMessage, []byte("first")))
	require.NoError(t, s.Send(websocket.TextMessage, []byte("second")))

	// First connection refuses every write, so the flush fails on the
	// very first queued frame.
	d.setFailWrites(true)
	require.NoError(t, s.Connect(context.Background()))
	require.Equal(t, 1, d.dialCount())

	// Drop it; the second connection accepts writes and must replay the
	// whole queue in order, nothing lost.
	d.setFailWrites(false)
	d.last().Close()
	waitFor(t, func() bool { return d.dialCount() == 2 }, "never redialed")

	conn := d.last()
	waitFor(t, func() bool { return len(conn.written()) == 2 }, "requeued frames not flushed")
	assert.Equal(t, []string{"first", "second"}, conn.written())

	s.Close()
}

func TestSocketStateNotificationsOrdered(t *testing.T) {
	var mu sync.Mutex
	var seen []State

	d := &fakeDialer{}
	s := NewSocket(Options{
		URL: "ws://x", Dial: d.dial,
		ReconnectDelay: 20 * time.Millisecond,
		OnStateChange: func(st State) {
			// Slow observer: out-of-order delivery would surface here.
			time.Sleep(2 * time.Millisecond)
			mu.Lock()
			seen = append(seen, st)
			mu.Unlock()
		},
	})
	require.NoError(t, s.Connect(context.Background()))

	d.last().Close()
	waitFor(t, func() bool { return s.State() == StateConnected && d.dialCount() == 2 }, "never reconnected")
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) >= 4
	}, "transitions not delivered")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{StateConnecting, StateConnected, StateReconnecting, StateConnected}, seen[:4])

	s.Close()
}
