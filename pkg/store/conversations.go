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

	"github.com/AleutianAI/AleutianDeck/pkg/api"
	"github.com/AleutianAI/AleutianDeck/pkg/datatypes"
)

// ConversationAPI is the backend surface the conversation store needs.
// *api.Client satisfies it; tests substitute a fake.
type ConversationAPI interface {
	ListConversations(ctx context.Context) ([]datatypes.Conversation, error)
	GetConversation(ctx context.Context, id string) (*datatypes.Conversation, error)
	CreateConversation(ctx context.Context, title, projectID string) (*datatypes.Conversation, error)
	UpdateConversation(ctx context.Context, id string, patch api.ConversationPatch) (*datatypes.Conversation, error)
	DeleteConversation(ctx context.Context, id string) error
	ArchiveConversation(ctx context.Context, id string) (*datatypes.Conversation, error)
}

// ConversationStore caches the conversation list for the sidebar.
type ConversationStore struct {
	mu      sync.Mutex
	backend ConversationAPI
	items   []datatypes.Conversation
	loading bool
	lastErr string
}

// NewConversationStore creates an empty store over the given backend.
func NewConversationStore(backend ConversationAPI) *ConversationStore {
	return &ConversationStore{backend: backend}
}

// Items returns a copy of the cached conversations in server order.
func (s *ConversationStore) Items() []datatypes.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]datatypes.Conversation, len(s.items))
	copy(out, s.items)
	return out
}

// Get returns the cached conversation with the given id.
func (s *ConversationStore) Get(id string) (datatypes.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.items[i], nil
	}
	return datatypes.Conversation{}, ErrNotInCache
}

// Loading reports whether a FetchAll is in flight.
func (s *ConversationStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the last surfaced error message, empty when clear. It is
// cleared by the next successful action.
func (s *ConversationStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Reset clears the cache and flags. Used on logout.
func (s *ConversationStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.loading = false
	s.lastErr = ""
}

// FetchAll replaces the cache wholesale with the server's list. Calls
// are not coalesced: when two overlap, the most recent response wins.
func (s *ConversationStore) FetchAll(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	items, err := s.backend.ListConversations(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.lastErr = errString(err)
		return err
	}
	s.items = items
	s.lastErr = ""
	return nil
}

// FetchOne refreshes a single conversation in place, appending it when
// it was not cached yet.
func (s *ConversationStore) FetchOne(ctx context.Context, id string) (*datatypes.Conversation, error) {
	conv, err := s.backend.GetConversation(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = errString(err)
		return nil, err
	}
	s.upsert(*conv)
	s.lastErr = ""
	return conv, nil
}

// Create starts a new conversation. Pessimistic: the cache gains the
// entry only after the server ack, so a failed create is never
// clickable.
func (s *ConversationStore) Create(ctx context.Context, title, projectID string) (*datatypes.Conversation, error) {
	conv, err := s.backend.CreateConversation(ctx, title, projectID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = errString(err)
		return nil, err
	}
	s.items = append([]datatypes.Conversation{*conv}, s.items...)
	s.lastErr = ""
	return conv, nil
}

// Rename updates the title. Optimistic: applied locally first, reverted
// on failure.
func (s *ConversationStore) Rename(ctx context.Context, id, title string) error {
	return s.optimisticUpdate(ctx, id,
		func(c *datatypes.Conversation) { c.Title = title },
		api.ConversationPatch{Title: &title})
}

// TogglePin flips the pinned flag. Optimistic.
func (s *ConversationStore) TogglePin(ctx context.Context, id string) error {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return ErrNotInCache
	}
	pinned := !s.items[i].Pinned
	s.mu.Unlock()

	return s.optimisticUpdate(ctx, id,
		func(c *datatypes.Conversation) { c.Pinned = pinned },
		api.ConversationPatch{Pinned: &pinned})
}

// SetTags replaces the tag set. Optimistic.
func (s *ConversationStore) SetTags(ctx context.Context, id string, tags []string) error {
	return s.optimisticUpdate(ctx, id,
		func(c *datatypes.Conversation) { c.Tags = tags },
		api.ConversationPatch{Tags: &tags})
}

// optimisticUpdate snapshots the entity, applies the local mutation,
// calls the backend, and either reconciles with the server entity or
// reverts to the snapshot.
func (s *ConversationStore) optimisticUpdate(ctx context.Context, id string,
	apply func(*datatypes.Conversation), patch api.ConversationPatch) error {

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return ErrNotInCache
	}
	snapshot := s.items[i]
	apply(&s.items[i])
	s.mu.Unlock()

	updated, err := s.backend.UpdateConversation(ctx, id, patch)

	s.mu.Lock()
	defer s.mu.Unlock()
	j := s.indexOf(id)
	if err != nil {
		if j >= 0 {
			s.items[j] = snapshot
		}
		s.lastErr = errString(err)
		return err
	}
	if j >= 0 {
		s.items[j] = *updated
	}
	s.lastErr = ""
	return nil
}

// Delete removes a conversation. Pessimistic: the entry stays visible
// until the server confirms, so a failed delete is never shown as gone.
func (s *ConversationStore) Delete(ctx context.Context, id string) error {
	err := s.backend.DeleteConversation(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = errString(err)
		return err
	}
	s.remove(id)
	s.lastErr = ""
	return nil
}

// Archive soft-deletes a conversation. Pessimistic.
func (s *ConversationStore) Archive(ctx context.Context, id string) error {
	conv, err := s.backend.ArchiveConversation(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = errString(err)
		return err
	}
	s.upsert(*conv)
	s.lastErr = ""
	return nil
}

// BulkDeleteResult reports a bulk delete's partial outcome.
type BulkDeleteResult struct {
	// Deleted lists ids confirmed removed by the backend.
	Deleted []string

	// Failed maps each failing id to its error message.
	Failed map[string]string
}

// BulkDelete deletes each id via an independent backend call. A failure
// on one id does not roll back ids already deleted; partial success is
// kept and only the failing ids are reported.
func (s *ConversationStore) BulkDelete(ctx context.Context, ids []string) BulkDeleteResult {
	res := BulkDeleteResult{Failed: map[string]string{}}

	for _, id := range ids {
		if err := s.backend.DeleteConversation(ctx, id); err != nil {
			res.Failed[id] = errString(err)
			continue
		}
		s.mu.Lock()
		s.remove(id)
		s.mu.Unlock()
		res.Deleted = append(res.Deleted, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(res.Failed) > 0 {
		s.lastErr = bulkErrSummary(res)
	} else {
		s.lastErr = ""
	}
	return res
}

func bulkErrSummary(res BulkDeleteResult) string {
	for id, msg := range res.Failed {
		if len(res.Failed) == 1 {
			return "failed to delete " + id + ": " + msg
		}
		break
	}
	return "some conversations could not be deleted"
}

// Callers hold s.mu for the helpers below.

func (s *ConversationStore) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *ConversationStore) upsert(c datatypes.Conversation) {
	if i := s.indexOf(c.ID); i >= 0 {
		s.items[i] = c
		return
	}
	s.items = append(s.items, c)
}

func (s *ConversationStore) remove(id string) {
	if i := s.indexOf(id); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
}
