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
	"testing"
	"time"

	"github.com/AleutianAI/AleutianDeck/pkg/datatypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mem(id string, importance float64, phase datatypes.Phase) datatypes.Memory {
	return datatypes.Memory{
		ID:         id,
		Content:    "content " + id,
		Phase:      phase,
		Scope:      datatypes.ScopeGlobal,
		Importance: importance,
	}
}

func idsOf(mems []datatypes.Memory) []string {
	out := make([]string, 0, len(mems))
	for _, m := range mems {
		out = append(out, m.ID)
	}
	return out
}

func TestSortMemoriesByImportanceStable(t *testing.T) {
	in := []datatypes.Memory{
		mem("a", 0.5, datatypes.PhaseLearn),
		mem("b", 0.9, datatypes.PhaseLearn),
		mem("c", 0.5, datatypes.PhaseLearn),
		mem("d", 0.5, datatypes.PhaseLearn),
		mem("e", 0.1, datatypes.PhaseLearn),
	}

	got := SortMemories(in, SortByImportance, nil)

	// Equal importance keeps input order: a before c before d.
	assert.Equal(t, []string{"b", "a", "c", "d", "e"}, idsOf(got))
	// Input untouched.
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, idsOf(in))
}

func TestSortMemoriesByDate(t *testing.T) {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	in := []datatypes.Memory{
		{ID: "old", CreatedAt: base},
		{ID: "new", CreatedAt: base.Add(48 * time.Hour)},
		{ID: "mid", CreatedAt: base.Add(24 * time.Hour)},
	}

	got := SortMemories(in, SortByDate, nil)

	assert.Equal(t, []string{"new", "mid", "old"}, idsOf(got))
}

func TestSortMemoriesByPhase(t *testing.T) {
	in := []datatypes.Memory{
		mem("v", 0, datatypes.PhaseVerify),
		mem("b", 0, datatypes.PhaseBuild),
		mem("o", 0, datatypes.PhaseObserve),
	}

	got := SortMemories(in, SortByPhase, nil)

	// Lexicographic, not workflow order: build < observe < verify.
	assert.Equal(t, []string{"b", "o", "v"}, idsOf(got))
}

func TestSortMemoriesByProjectNullLast(t *testing.T) {
	names := map[string]string{"p1": "zephyr", "p2": "anchor"}
	in := []datatypes.Memory{
		{ID: "none"},
		{ID: "z", ProjectID: "p1"},
		{ID: "a", ProjectID: "p2"},
		{ID: "unknown", ProjectID: "p3"}, // unresolvable id sorts with null
	}

	got := SortMemories(in, SortByProject, names)

	require.Len(t, got, 4)
	assert.Equal(t, []string{"a", "z", "none", "unknown"}, idsOf(got))
}

func TestSortMemoriesByScope(t *testing.T) {
	in := []datatypes.Memory{
		{ID: "p", Scope: datatypes.ScopeProject, ProjectID: "x"},
		{ID: "g", Scope: datatypes.ScopeGlobal},
	}

	got := SortMemories(in, SortByScope, nil)

	assert.Equal(t, []string{"g", "p"}, idsOf(got))
}
