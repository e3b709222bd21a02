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

import (
	"sort"

	"github.com/AleutianAI/AleutianDeck/pkg/datatypes"
)

// MemorySort selects the memory browser ordering.
type MemorySort int

const (
	// SortByDate orders newest first.
	SortByDate MemorySort = iota

	// SortByImportance orders highest importance first.
	SortByImportance

	// SortByPhase orders phases lexicographically.
	SortByPhase

	// SortByProject orders by project name lexicographically; memories
	// without a project (or with an unknown project id) sort last.
	SortByProject

	// SortByScope orders scopes lexicographically (global before project).
	SortByScope
)

// SortMemories returns a sorted copy of mems under the given key. All
// orders are stable: ties preserve the input's relative order. The
// projectNames map resolves project ids for SortByProject; a missing
// entry is treated like no project.
func SortMemories(mems []datatypes.Memory, key MemorySort, projectNames map[string]string) []datatypes.Memory {
	out := make([]datatypes.Memory, len(mems))
	copy(out, mems)

	switch key {
	case SortByDate:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	case SortByImportance:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Importance > out[j].Importance
		})
	case SortByPhase:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Phase < out[j].Phase
		})
	case SortByProject:
		sort.SliceStable(out, func(i, j int) bool {
			ni, iok := resolveProject(&out[i], projectNames)
			nj, jok := resolveProject(&out[j], projectNames)
			if iok != jok {
				return iok // named projects before null
			}
			return ni < nj
		})
	case SortByScope:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Scope < out[j].Scope
		})
	}
	return out
}

// resolveProject returns the display name for a memory's project and
// whether one exists.
func resolveProject(m *datatypes.Memory, names map[string]string) (string, bool) {
	if m.ProjectID == "" {
		return "", false
	}
	name, ok := names[m.ProjectID]
	if !ok || name == "" {
		return "", false
	}
	return name, true
}
