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
	"testing"

	"github.com/AleutianAI/AleutianDeck/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatHarness(t *testing.T) (*ChatSocket, *fakeDialer, *store.MessageLog) {
	t.Helper()
	d := &fakeDialer{}
	log := store.NewMessageLog(nil)
	c := NewChatSocket(ChatConfig{
		URL:      "ws://x/chat",
		Messages: log,
		Dial:     d.dial,
	})
	require.NoError(t, c.Connect(context.Background()))
	t.Cleanup(func() { c.Close() })
	return c, d, log
}

func TestChatTokensBuildPendingMessage(t *testing.T) {
	_, d, log := newChatHarness(t)
	conn := d.last()

	conn.in <- []byte(`{"type":"token","delta":"Hel"}`)
	conn.in <- []byte(`{"type":"token","delta":"lo"}`)
	waitFor(t, func() bool {
		msgs := log.Messages()
		return len(msgs) == 1 && msgs[0].Content == "Hello"
	}, "token deltas not accumulated")
	assert.True(t, log.Streaming())

	conn.in <- []byte(`{"type":"done"}`)
	waitFor(t, func() bool { return !log.Streaming() }, "done frame did not finish stream")
}

func TestChatUnknownFrameDropped(t *testing.T) {
	c, d, log := newChatHarness(t)
	conn := d.last()

	conn.in <- []byte(`{"type":"telemetry_v2","payload":{"x":1}}`)
	conn.in <- []byte(`not json at all`)
	conn.in <- []byte(`{"type":"token","delta":"ok"}`)

	// The socket survives both the unknown type and the malformed frame.
	waitFor(t, func() bool {
		msgs := log.Messages()
		return len(msgs) == 1 && msgs[0].Content == "ok"
	}, "socket did not survive unknown frames")
	assert.Equal(t, StateConnected, c.State())
}

func TestChatSendMessageQueuesWhileDown(t *testing.T) {
	d := &fakeDialer{}
	log := store.NewMessageLog(nil)
	c := NewChatSocket(ChatConfig{URL: "ws://x/chat", Messages: log, Dial: d.dial})

	// Not connected yet: the message queues, but lands locally at once.
	require.NoError(t, c.SendMessage("conv-1", "hi there"))
	msgs := log.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "hi there", msgs[0].Content)

	require.NoError(t, c.Connect(context.Background()))
	conn := d.last()
	waitFor(t, func() bool { return len(conn.written()) == 1 }, "queued message not flushed")

	var out chatOutbound
	require.NoError(t, json.Unmarshal([]byte(conn.written()[0]), &out))
	assert.Equal(t, "message", out.Type)
	assert.Equal(t, "conv-1", out.ConversationID)
	assert.Equal(t, "hi there", out.Content)

	c.Close()
}

func TestChatSendCommand(t *testing.T) {
	c, d, _ := newChatHarness(t)
	require.NoError(t, c.SendCommand("conv-1", "/compact"))

	conn := d.last()
	waitFor(t, func() bool { return len(conn.written()) == 1 }, "command not written")

	var out chatOutbound
	require.NoError(t, json.Unmarshal([]byte(conn.written()[0]), &out))
	assert.Equal(t, "command", out.Type)
	assert.Equal(t, "/compact", out.Command)
}
