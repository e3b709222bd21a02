// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package store

import (
	"context"
	"sync"
	"time"

	"github.com/AleutianAI/AleutianDeck/pkg/datatypes"
	"github.com/google/uuid"
)

// MessageAPI is the backend surface the message log needs.
type MessageAPI interface {
	ListMessages(ctx context.Context, conversationID string) ([]datatypes.Message, error)
}

// MessageLog holds the chat history of the selected conversation plus
// the assistant message currently streaming in over the chat socket.
//
// Inbound token deltas are folded into a pending assistant message that
// becomes part of the history when the stream finishes. Switching
// conversations discards any pending stream.
type MessageLog struct {
	mu             sync.Mutex
	backend        MessageAPI
	conversationID string
	messages       []datatypes.Message
	pending        *datatypes.Message
	loading        bool
	lastErr        string
}

// NewMessageLog creates an empty log over the given backend.
func NewMessageLog(backend MessageAPI) *MessageLog {
	return &MessageLog{backend: backend}
}

// ConversationID returns the conversation this log is showing.
func (l *MessageLog) ConversationID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conversationID
}

// Messages returns the history plus the streaming message, if any.
func (l *MessageLog) Messages() []datatypes.Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]datatypes.Message, len(l.messages), len(l.messages)+1)
	copy(out, l.messages)
	if l.pending != nil {
		out = append(out, *l.pending)
	}
	return out
}

// Loading reports whether a fetch is in flight.
func (l *MessageLog) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

// Err returns the last surfaced error message.
func (l *MessageLog) Err() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}

// Reset clears the log.
func (l *MessageLog) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.conversationID = ""
	l.messages = nil
	l.pending = nil
	l.loading = false
	l.lastErr = ""
}

// Fetch loads the history of a conversation, replacing the log. Any
// in-flight stream for a previous conversation is discarded.
func (l *MessageLog) Fetch(ctx context.Context, conversationID string) error {
	l.mu.Lock()
	l.loading = true
	l.mu.Unlock()

	msgs, err := l.backend.ListMessages(ctx, conversationID)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.loading = false
	if err != nil {
		l.lastErr = errString(err)
		return err
	}
	l.conversationID = conversationID
	l.messages = msgs
	l.pending = nil
	l.lastErr = ""
	return nil
}

// AppendLocal records the user's outbound message immediately so the
// panel shows it while the socket delivers it. The backend echoes it
// back in history on the next fetch; identity is client-assigned until
// then.
func (l *MessageLog) AppendLocal(content string) datatypes.Message {
	msg := datatypes.Message{
		ID:        uuid.NewString(),
		Role:      datatypes.RoleUser,
		Content:   content,
		CreatedAt: time.Now(),
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	msg.ConversationID = l.conversationID
	l.messages = append(l.messages, msg)
	return msg
}

// ApplyToken folds a streamed token delta into the pending assistant
// message, starting one if none is open.
func (l *MessageLog) ApplyToken(delta string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pending == nil {
		l.pending = &datatypes.Message{
			ID:             uuid.NewString(),
			ConversationID: l.conversationID,
			Role:           datatypes.RoleAssistant,
			CreatedAt:      time.Now(),
		}
	}
	l.pending.Content += delta
}

// FinishStream promotes the pending assistant message into history.
// No-op when nothing is streaming.
func (l *MessageLog) FinishStream() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pending == nil {
		return
	}
	l.messages = append(l.messages, *l.pending)
	l.pending = nil
}

// Streaming reports whether an assistant message is mid-stream.
func (l *MessageLog) Streaming() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending != nil
}
