// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package workspace

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Change is one observed filesystem event, reduced to what the file
// tree needs to redraw.
type Change struct {
	Path    string
	Op      fsnotify.Op
	IsDir   bool
	Removed bool
}

// Watcher surfaces external edits under the project root so the file
// tree stays current while an agent modifies files.
//
// # Thread Safety
//
// Changes() is the only consumer-facing channel; a single goroutine
// should drain it. Close is safe from any goroutine.
type Watcher struct {
	root    string
	fsw     *fsnotify.Watcher
	changes chan Change
	log     *slog.Logger
	doneCh  chan struct{}
}

// NewWatcher watches root and every directory beneath it, skipping
// .git and node_modules. Newly created directories are added to the
// watch automatically.
func NewWatcher(root string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		root:    root,
		fsw:     fsw,
		changes: make(chan Change, 64),
		log:     logger,
		doneCh:  make(chan struct{}),
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if ignoredDir(d.Name()) && path != root {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}

	go w.run()
	return w, nil
}

// Changes returns the event stream. Closed when the watcher closes.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Close stops watching and closes the Changes channel.
func (w *Watcher) Close() error {
	err := w.fsw.Close()
	<-w.doneCh
	return err
}

func (w *Watcher) run() {
	defer close(w.doneCh)
	defer close(w.changes)

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("workspace watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ignoredPath(ev.Name) {
		return
	}

	isDir := false
	if ev.Op.Has(fsnotify.Create) {
		if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
			isDir = true
			// A new directory must join the watch or edits inside it
			// are invisible.
			if addErr := w.fsw.Add(ev.Name); addErr != nil {
				w.log.Warn("cannot watch new directory", "path", ev.Name, "error", addErr)
			}
		}
	}

	change := Change{
		Path:    ev.Name,
		Op:      ev.Op,
		IsDir:   isDir,
		Removed: ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename),
	}

	select {
	case w.changes <- change:
	default:
		// The TUI redraws the whole tree on any event, so dropping a
		// burst event loses nothing.
	}
}

func ignoredDir(name string) bool {
	switch name {
	case ".git", "node_modules", ".aleutian":
		return true
	}
	return false
}

func ignoredPath(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if ignoredDir(part) {
			return true
		}
	}
	return false
}
