// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(42), "UNKNOWN"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.level.String())
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel(""))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
}

func logFileName() string {
	return "deck_" + time.Now().Format("2006-01-02") + ".log"
}

func TestFileLoggingWritesJSON(t *testing.T) {
	dir := t.TempDir()

	logger := New(Config{
		Level:  LevelInfo,
		LogDir: dir,
		Quiet:  true,
	})
	logger.Info("socket connected", "url", "ws://localhost/chat")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(filepath.Join(dir, logFileName()))
	require.NoError(t, err)

	var entry map[string]any
	line := strings.TrimSpace(string(data))
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "socket connected", entry["msg"])
	assert.Equal(t, "ws://localhost/chat", entry["url"])
}

func TestFileLoggingRespectsLevel(t *testing.T) {
	dir := t.TempDir()

	logger := New(Config{
		Level:  LevelWarn,
		LogDir: dir,
		Quiet:  true,
	})
	logger.Debug("noise")
	logger.Info("noise")
	logger.Warn("kept")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(filepath.Join(dir, logFileName()))
	require.NoError(t, err)

	content := string(data)
	assert.NotContains(t, content, "noise")
	assert.Contains(t, content, "kept")
}

func TestWithCarriesAttributes(t *testing.T) {
	dir := t.TempDir()

	logger := New(Config{LogDir: dir, Quiet: true})
	child := logger.With("conversation_id", "conv-7")
	child.Info("selected")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(filepath.Join(dir, logFileName()))
	require.NoError(t, err)
	assert.Contains(t, string(data), "conv-7")
}

func TestCloseWithoutFileIsNoOp(t *testing.T) {
	logger := New(Config{Quiet: true})
	assert.NoError(t, logger.Close())
	assert.NoError(t, logger.Close())
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".aleutiandeck/logs"), expandPath("~/.aleutiandeck/logs"))
	assert.Equal(t, "/var/log/deck", expandPath("/var/log/deck"))
}
