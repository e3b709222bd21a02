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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearDeckEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"ALEUTIAN_DECK_API_URL", "ALEUTIAN_DECK_WS_URL",
		"ALEUTIAN_DECK_TOKEN", "ALEUTIAN_DECK_LOG_LEVEL",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearDeckEnv(t)

	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"), Config{})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.APIURL)
	assert.Equal(t, "ws://localhost:8080", cfg.WSURL)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfigFileOverridesDefaults(t *testing.T) {
	clearDeckEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"api_url: https://deck.example.com\ntoken: file-token\n"), 0640))

	cfg, err := loadConfig(path, Config{})
	require.NoError(t, err)
	assert.Equal(t, "https://deck.example.com", cfg.APIURL)
	assert.Equal(t, "file-token", cfg.Token)
	// Untouched fields keep defaults.
	assert.Equal(t, "ws://localhost:8080", cfg.WSURL)
}

func TestLoadConfigEnvBeatsFile(t *testing.T) {
	clearDeckEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("token: file-token\n"), 0640))
	t.Setenv("ALEUTIAN_DECK_TOKEN", "env-token")

	cfg, err := loadConfig(path, Config{})
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Token)
}

func TestLoadConfigFlagBeatsEnv(t *testing.T) {
	clearDeckEnv(t)
	t.Setenv("ALEUTIAN_DECK_API_URL", "http://env:1234")

	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"),
		Config{APIURL: "http://flag:5678"})
	require.NoError(t, err)
	assert.Equal(t, "http://flag:5678", cfg.APIURL)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	clearDeckEnv(t)

	t.Run("bad url", func(t *testing.T) {
		_, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"),
			Config{APIURL: "not a url"})
		assert.Error(t, err)
	})

	t.Run("bad log level", func(t *testing.T) {
		_, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"),
			Config{LogLevel: "verbose"})
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("api_url: [\n"), 0640))
		_, err := loadConfig(path, Config{})
		assert.Error(t, err)
	})
}
