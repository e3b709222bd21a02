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
	"fmt"
	"sync"

	"github.com/AleutianAI/AleutianDeck/pkg/api"
	"github.com/AleutianAI/AleutianDeck/pkg/datatypes"
)

// MemoryAPI is the backend surface the memory store needs.
type MemoryAPI interface {
	ListMemories(ctx context.Context, q api.MemoryQuery) ([]datatypes.Memory, error)
	SearchMemories(ctx context.Context, query string) ([]datatypes.Memory, error)
	StoreMemory(ctx context.Context, m datatypes.Memory) (*datatypes.Memory, error)
	UpdateMemory(ctx context.Context, id string, m datatypes.Memory) (*datatypes.Memory, error)
	DeleteMemory(ctx context.Context, id string) error
}

// MemoryStore caches memories for the memory browser.
type MemoryStore struct {
	mu      sync.Mutex
	backend MemoryAPI
	items   []datatypes.Memory
	loading bool
	lastErr string
}

// NewMemoryStore creates an empty store over the given backend.
func NewMemoryStore(backend MemoryAPI) *MemoryStore {
	return &MemoryStore{backend: backend}
}

// Items returns a copy of the cached memories in server order.
func (s *MemoryStore) Items() []datatypes.Memory {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]datatypes.Memory, len(s.items))
	copy(out, s.items)
	return out
}

// Loading reports whether a fetch is in flight.
func (s *MemoryStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the last surfaced error message.
func (s *MemoryStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Reset clears the cache and flags.
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.loading = false
	s.lastErr = ""
}

// FetchAll replaces the cache wholesale with the query's result.
func (s *MemoryStore) FetchAll(ctx context.Context, q api.MemoryQuery) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	items, err := s.backend.ListMemories(ctx, q)

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

// Search replaces the cache with free-text search results.
func (s *MemoryStore) Search(ctx context.Context, query string) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	items, err := s.backend.SearchMemories(ctx, query)

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

// Create validates and stores a new memory. Pessimistic: the cache
// gains the entry only after the server assigns identity. Validation
// failures never reach the backend.
func (s *MemoryStore) Create(ctx context.Context, m datatypes.Memory) (*datatypes.Memory, error) {
	if err := m.Validate(); err != nil {
		s.mu.Lock()
		s.lastErr = errString(err)
		s.mu.Unlock()
		return nil, err
	}

	stored, err := s.backend.StoreMemory(ctx, m)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = errString(err)
		return nil, err
	}
	s.items = append([]datatypes.Memory{*stored}, s.items...)
	s.lastErr = ""
	return stored, nil
}

// Update validates and replaces a memory's fields. Pessimistic.
func (s *MemoryStore) Update(ctx context.Context, id string, m datatypes.Memory) error {
	if err := m.Validate(); err != nil {
		s.mu.Lock()
		s.lastErr = errString(err)
		s.mu.Unlock()
		return err
	}

	updated, err := s.backend.UpdateMemory(ctx, id, m)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = errString(err)
		return err
	}
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i] = *updated
			break
		}
	}
	s.lastErr = ""
	return nil
}

// Delete removes a memory. Pessimistic.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	err := s.backend.DeleteMemory(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = errString(err)
		return err
	}
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	s.lastErr = ""
	return nil
}

// Export converts the cached memories with the given ids to their
// portable form, preserving cache order. Unknown ids are skipped.
func (s *MemoryStore) Export(ids []string) []datatypes.ExportedMemory {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]datatypes.ExportedMemory, 0, len(ids))
	for i := range s.items {
		if want[s.items[i].ID] {
			out = append(out, s.items[i].Export())
		}
	}
	return out
}

// ImportResult reports a bulk import's partial outcome.
type ImportResult struct {
	Stored int
	Errors []string
}

// Import stores each exported memory via an independent backend call.
// Mirrors bulk delete: partial success is kept and only failures are
// reported.
func (s *MemoryStore) Import(ctx context.Context, mems []datatypes.ExportedMemory) ImportResult {
	var res ImportResult
	for i, e := range mems {
		if _, err := s.Create(ctx, e.Materialize()); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("memory %d: %v", i+1, err))
			continue
		}
		res.Stored++
	}
	return res
}
