// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianDeck/pkg/prefs"
)

func TestShowPrefsDefaults(t *testing.T) {
	s, err := prefs.OpenInMemory()
	require.NoError(t, err)
	defer s.Close()

	var out bytes.Buffer
	require.NoError(t, showPrefs(&out, s))

	assert.Contains(t, out.String(), fmt.Sprintf("font-size: %d", prefs.DefaultFontSize))
	assert.Contains(t, out.String(), "viewport:  "+prefs.DefaultViewportPreset)
}

func TestSetFontSizePref(t *testing.T) {
	s, err := prefs.OpenInMemory()
	require.NoError(t, err)
	defer s.Close()

	t.Run("valid value persists", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, setFontSizePref(&out, s, "18"))
		assert.Contains(t, out.String(), "font-size set to 18")

		size, err := s.FontSize()
		require.NoError(t, err)
		assert.Equal(t, 18, size)
	})

	t.Run("out of range is clamped and reported", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, setFontSizePref(&out, s, "99"))
		assert.Contains(t, out.String(), fmt.Sprintf("font-size set to %d", prefs.MaxFontSize))
	})

	t.Run("non-numeric input is rejected", func(t *testing.T) {
		var out bytes.Buffer
		err := setFontSizePref(&out, s, "big")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be a number")
	})
}

func TestSetViewportPref(t *testing.T) {
	s, err := prefs.OpenInMemory()
	require.NoError(t, err)
	defer s.Close()

	var out bytes.Buffer
	require.NoError(t, setViewportPref(&out, s, "mobile"))
	assert.Contains(t, out.String(), "viewport set to mobile")

	preset, err := s.ViewportPreset()
	require.NoError(t, err)
	assert.Equal(t, "mobile", preset)
}
