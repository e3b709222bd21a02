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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectionLifecycle(t *testing.T) {
	sel := NewSelection()
	assert.False(t, sel.Active())

	sel.ToggleMode()
	assert.True(t, sel.Active())

	sel.Toggle("a")
	sel.Toggle("b")
	assert.Equal(t, 2, sel.Count())
	assert.True(t, sel.Selected("a"))

	sel.Toggle("a")
	assert.False(t, sel.Selected("a"))
	assert.Equal(t, 1, sel.Count())

	sel.Clear()
	assert.Equal(t, 0, sel.Count())
	assert.True(t, sel.Active(), "clear keeps select mode on")
}

func TestSelectionIgnoredOutsideSelectMode(t *testing.T) {
	sel := NewSelection()
	sel.Toggle("a")
	assert.Equal(t, 0, sel.Count())
}

func TestLeavingSelectModeClearsSet(t *testing.T) {
	sel := NewSelection()
	sel.ToggleMode()
	sel.Toggle("a")
	sel.ToggleMode()
	assert.False(t, sel.Active())
	assert.Empty(t, sel.IDs())
}

// Select-mode churn must never touch the entity cache.
func TestSelectionDoesNotAffectEntityList(t *testing.T) {
	s, _ := seededStore("a", "b", "c")
	sel := NewSelection()

	sel.ToggleMode()
	sel.Toggle("a")
	sel.Toggle("b")
	sel.Clear()
	sel.ToggleMode()

	require.Len(t, s.Items(), 3)
	assert.Empty(t, sel.IDs())
}
