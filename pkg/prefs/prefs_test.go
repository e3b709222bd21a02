// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package prefs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDefaultsWhenNeverSet(t *testing.T) {
	s := openTestStore(t)

	size, err := s.FontSize()
	require.NoError(t, err)
	assert.Equal(t, DefaultFontSize, size)

	preset, err := s.ViewportPreset()
	require.NoError(t, err)
	assert.Equal(t, DefaultViewportPreset, preset)

	pinned, err := s.Pinned()
	require.NoError(t, err)
	assert.Empty(t, pinned)
}

func TestFontSizeRoundTrip(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SetFontSize(18))
	size, err := s.FontSize()
	require.NoError(t, err)
	assert.Equal(t, 18, size)
}

func TestFontSizeClamping(t *testing.T) {
	s := openTestStore(t)

	t.Run("below minimum", func(t *testing.T) {
		require.NoError(t, s.SetFontSize(2))
		size, err := s.FontSize()
		require.NoError(t, err)
		assert.Equal(t, MinFontSize, size)
	})

	t.Run("above maximum", func(t *testing.T) {
		require.NoError(t, s.SetFontSize(96))
		size, err := s.FontSize()
		require.NoError(t, err)
		assert.Equal(t, MaxFontSize, size)
	})
}

func TestViewportPresetIndependentOfFontSize(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SetFontSize(20))
	require.NoError(t, s.SetViewportPreset("mobile"))

	size, err := s.FontSize()
	require.NoError(t, err)
	assert.Equal(t, 20, size)

	preset, err := s.ViewportPreset()
	require.NoError(t, err)
	assert.Equal(t, "mobile", preset)
}

func TestPinnedSet(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.SetPinned("conv-a", true))
	require.NoError(t, s.SetPinned("conv-b", true))
	require.NoError(t, s.SetPinned("conv-a", false))

	pinned, err := s.Pinned()
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"conv-b": true}, pinned)

	// Unpinning something never pinned is a no-op.
	require.NoError(t, s.SetPinned("conv-c", false))
	pinned, err = s.Pinned()
	require.NoError(t, err)
	assert.Len(t, pinned, 1)
}

func TestSetPinnedRejectsEmptyID(t *testing.T) {
	s := openTestStore(t)
	assert.Error(t, s.SetPinned("", true))
}
