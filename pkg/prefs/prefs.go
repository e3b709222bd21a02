// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package prefs persists per-user dashboard preferences in an embedded
// BadgerDB instance under the user's config directory.
//
// Preferences are purely local: the backend never sees them, and losing
// the database only resets cosmetic state (font size, viewport preset,
// pinned conversations).
//
// License: BadgerDB is Apache 2.0 licensed (github.com/dgraph-io/badger).
package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
)

// =============================================================================
// Configuration
// =============================================================================

const (
	// DefaultFontSize is the terminal panel font size used until the
	// user changes it.
	DefaultFontSize = 14

	// MinFontSize and MaxFontSize bound SetFontSize. Values outside the
	// range are clamped, not rejected.
	MinFontSize = 8
	MaxFontSize = 32

	// DefaultViewportPreset is the browser panel viewport used until
	// the user changes it.
	DefaultViewportPreset = "desktop"
)

const (
	settingsKey  = "settings"
	pinnedPrefix = "pinned:"
)

// Config holds configuration for the preferences store.
type Config struct {
	// Path is the directory for the BadgerDB files.
	// Required unless InMemory is true.
	Path string

	// InMemory enables in-memory mode. Useful for testing.
	InMemory bool

	// Logger receives BadgerDB's internal log output.
	// If nil, BadgerDB logging is disabled.
	Logger *slog.Logger
}

// settings is the JSON blob stored under settingsKey. Pinned
// conversations live under their own keys so toggling one pin never
// rewrites the whole blob.
type settings struct {
	FontSize       int    `json:"font_size"`
	ViewportPreset string `json:"viewport_preset"`
}

// =============================================================================
// Store
// =============================================================================

// Store is the preferences database.
//
// # Thread Safety
//
// Safe for concurrent use; BadgerDB serializes transactions internally.
type Store struct {
	db *badger.DB
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Open creates and opens the preferences store.
//
// Description:
//
//	Opens a BadgerDB database at the configured path, or in memory when
//	InMemory is true. Creates the directory if it doesn't exist.
//
// Outputs:
//
//	*Store - The opened store. Caller must call Close() when done.
//	error - Non-nil if the path is invalid or the database cannot open.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent preferences")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create preferences directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open preferences database: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens a throwaway store for testing.
func OpenInMemory() (*Store, error) {
	return Open(Config{InMemory: true})
}

// Close closes the database. Safe to call once.
func (s *Store) Close() error {
	return s.db.Close()
}

// =============================================================================
// Settings blob
// =============================================================================

func (s *Store) loadSettings() (settings, error) {
	out := settings{
		FontSize:       DefaultFontSize,
		ViewportPreset: DefaultViewportPreset,
	}
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(settingsKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &out)
		})
	})
	if err != nil {
		return out, fmt.Errorf("load settings: %w", err)
	}
	return out, nil
}

func (s *Store) saveSettings(v settings) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(settingsKey), data)
	})
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// FontSize returns the terminal panel font size, or DefaultFontSize if
// never set.
func (s *Store) FontSize() (int, error) {
	v, err := s.loadSettings()
	if err != nil {
		return DefaultFontSize, err
	}
	return v.FontSize, nil
}

// SetFontSize persists the terminal panel font size. Values outside
// [MinFontSize, MaxFontSize] are clamped.
func (s *Store) SetFontSize(size int) error {
	if size < MinFontSize {
		size = MinFontSize
	}
	if size > MaxFontSize {
		size = MaxFontSize
	}
	v, err := s.loadSettings()
	if err != nil {
		return err
	}
	v.FontSize = size
	return s.saveSettings(v)
}

// ViewportPreset returns the browser panel viewport preset.
func (s *Store) ViewportPreset() (string, error) {
	v, err := s.loadSettings()
	if err != nil {
		return DefaultViewportPreset, err
	}
	return v.ViewportPreset, nil
}

// SetViewportPreset persists the browser panel viewport preset. The
// name is stored as-is; unknown presets fall back to desktop at render
// time.
func (s *Store) SetViewportPreset(name string) error {
	v, err := s.loadSettings()
	if err != nil {
		return err
	}
	v.ViewportPreset = name
	return s.saveSettings(v)
}

// =============================================================================
// Pinned conversations
// =============================================================================

// SetPinned records or clears the local pin for one conversation.
func (s *Store) SetPinned(conversationID string, pinned bool) error {
	if conversationID == "" {
		return errors.New("conversation id must not be empty")
	}
	key := []byte(pinnedPrefix + conversationID)
	err := s.db.Update(func(txn *badger.Txn) error {
		if pinned {
			return txn.Set(key, []byte{1})
		}
		err := txn.Delete(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("set pinned %s: %w", conversationID, err)
	}
	return nil
}

// Pinned returns the set of locally pinned conversation IDs.
//
// Outputs:
//
//	map[string]bool - Membership set; absent IDs are unpinned.
//	error - Non-nil if the scan fails.
func (s *Store) Pinned() (map[string]bool, error) {
	out := make(map[string]bool)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(pinnedPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			id := string(it.Item().Key()[len(pinnedPrefix):])
			out[id] = true
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan pinned conversations: %w", err)
	}
	return out, nil
}
