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

import "sync"

// Selection tracks the multi-select state of a list panel. It is a pure
// UI concern layered over a store: toggling select mode or clearing the
// set never touches the underlying entity cache.
type Selection struct {
	mu     sync.Mutex
	active bool
	ids    map[string]bool
}

// NewSelection returns an inactive, empty selection.
func NewSelection() *Selection {
	return &Selection{ids: map[string]bool{}}
}

// Active reports whether select mode is on.
func (s *Selection) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// ToggleMode flips select mode. Leaving select mode clears the set.
func (s *Selection) ToggleMode() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = !s.active
	if !s.active {
		s.ids = map[string]bool{}
	}
}

// Toggle flips membership of one id. No-op outside select mode.
func (s *Selection) Toggle(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	if s.ids[id] {
		delete(s.ids, id)
	} else {
		s.ids[id] = true
	}
}

// Selected reports membership of one id.
func (s *Selection) Selected(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ids[id]
}

// IDs returns the selected ids in unspecified order.
func (s *Selection) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	return out
}

// Count returns the number of selected ids.
func (s *Selection) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// Clear empties the set without leaving select mode.
func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = map[string]bool{}
}
