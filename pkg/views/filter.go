// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package views

import "github.com/AleutianAI/AleutianDeck/pkg/datatypes"

// =============================================================================
// Memory Filters
// =============================================================================

// MemoryFilter is the active filter set for the memory browser.
// Zero-valued fields are inactive; active fields combine with AND.
type MemoryFilter struct {
	Phase     datatypes.Phase
	Category  string
	Scope     datatypes.Scope
	ProjectID string
}

// Empty reports whether no filter is active.
func (f MemoryFilter) Empty() bool {
	return f.Phase == "" && f.Category == "" && f.Scope == "" && f.ProjectID == ""
}

// Matches reports whether m passes every active predicate.
func (f MemoryFilter) Matches(m *datatypes.Memory) bool {
	if f.Phase != "" && m.Phase != f.Phase {
		return false
	}
	if f.Category != "" && m.Category != f.Category {
		return false
	}
	if f.Scope != "" && m.Scope != f.Scope {
		return false
	}
	if f.ProjectID != "" && m.ProjectID != f.ProjectID {
		return false
	}
	return true
}

// FilterMemories returns the memories passing f, preserving input order.
func FilterMemories(mems []datatypes.Memory, f MemoryFilter) []datatypes.Memory {
	if f.Empty() {
		out := make([]datatypes.Memory, len(mems))
		copy(out, mems)
		return out
	}
	out := make([]datatypes.Memory, 0, len(mems))
	for i := range mems {
		if f.Matches(&mems[i]) {
			out = append(out, mems[i])
		}
	}
	return out
}

// =============================================================================
// Conversation Filters
// =============================================================================

// ConversationFilter is the active filter set for the sidebar.
// Tags require every listed tag to be present (set intersection);
// the other fields are exact matches. All combine with AND.
type ConversationFilter struct {
	Tags      []string
	ProjectID string
	Status    datatypes.ConversationStatus
}

// Empty reports whether no filter is active.
func (f ConversationFilter) Empty() bool {
	return len(f.Tags) == 0 && f.ProjectID == "" && f.Status == ""
}

// Matches reports whether c passes every active predicate.
func (f ConversationFilter) Matches(c *datatypes.Conversation) bool {
	for _, tag := range f.Tags {
		if !c.HasTag(tag) {
			return false
		}
	}
	if f.ProjectID != "" && c.ProjectID != f.ProjectID {
		return false
	}
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	return true
}

// FilterConversations returns the conversations passing f, preserving
// input order.
func FilterConversations(convs []datatypes.Conversation, f ConversationFilter) []datatypes.Conversation {
	if f.Empty() {
		out := make([]datatypes.Conversation, len(convs))
		copy(out, convs)
		return out
	}
	out := make([]datatypes.Conversation, 0, len(convs))
	for i := range convs {
		if f.Matches(&convs[i]) {
			out = append(out, convs[i])
		}
	}
	return out
}
