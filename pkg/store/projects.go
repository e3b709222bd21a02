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

// ProjectAPI is the backend surface the project store needs.
type ProjectAPI interface {
	ListProjects(ctx context.Context) ([]datatypes.Project, error)
	CreateProject(ctx context.Context, p datatypes.Project) (*datatypes.Project, error)
	UpdateProject(ctx context.Context, id string, patch api.ProjectPatch) (*datatypes.Project, error)
	DeleteProject(ctx context.Context, id string) error
}

// ProjectStore caches projects and their derived stats.
type ProjectStore struct {
	mu      sync.Mutex
	backend ProjectAPI
	items   []datatypes.Project
	loading bool
	lastErr string
}

// NewProjectStore creates an empty store over the given backend.
func NewProjectStore(backend ProjectAPI) *ProjectStore {
	return &ProjectStore{backend: backend}
}

// Items returns a copy of the cached projects.
func (s *ProjectStore) Items() []datatypes.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]datatypes.Project, len(s.items))
	copy(out, s.items)
	return out
}

// Names returns an id to display-name map for the derived-view layer.
func (s *ProjectStore) Names() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.items))
	for i := range s.items {
		out[s.items[i].ID] = s.items[i].Name
	}
	return out
}

// Get returns the cached project with the given id.
func (s *ProjectStore) Get(id string) (datatypes.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			return s.items[i], nil
		}
	}
	return datatypes.Project{}, ErrNotInCache
}

// Loading reports whether a FetchAll is in flight.
func (s *ProjectStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the last surfaced error message.
func (s *ProjectStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Reset clears the cache and flags.
func (s *ProjectStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.loading = false
	s.lastErr = ""
}

// FetchAll replaces the cache wholesale.
func (s *ProjectStore) FetchAll(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	items, err := s.backend.ListProjects(ctx)

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

// Create registers a project. Pessimistic.
func (s *ProjectStore) Create(ctx context.Context, p datatypes.Project) (*datatypes.Project, error) {
	created, err := s.backend.CreateProject(ctx, p)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = errString(err)
		return nil, err
	}
	s.items = append(s.items, *created)
	s.lastErr = ""
	return created, nil
}

// Update applies a partial update. Pessimistic: project settings affect
// workspace anchoring, so the cache waits for the ack.
func (s *ProjectStore) Update(ctx context.Context, id string, patch api.ProjectPatch) error {
	updated, err := s.backend.UpdateProject(ctx, id, patch)

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

// Delete removes a project. Pessimistic.
func (s *ProjectStore) Delete(ctx context.Context, id string) error {
	err := s.backend.DeleteProject(ctx, id)

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
