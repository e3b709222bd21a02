// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package workspace provides the project-workspace features of the
// dashboard: debounced auto-save, a local file-change watcher, and the
// git/PR panel state.
package workspace

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// DefaultAutoSaveInterval is the debounce tick for auto-save.
const DefaultAutoSaveInterval = 2 * time.Second

// SaveFunc persists one file. Implementations are expected to be slow
// (a backend round-trip); the saver never invokes it twice concurrently
// for the same path.
type SaveFunc func(ctx context.Context, path string) error

// AutoSaver batches dirty file paths and saves them on a fixed tick.
//
// # Description
//
// Edits mark a path dirty; every interval the saver picks up the dirty
// set and saves each path on its own goroutine. A path whose save is
// still in flight is skipped on the next tick and retried once the
// earlier save completes, so two saves of the same file never overlap.
// A failed save re-marks the path dirty.
//
// # Thread Safety
//
// Safe for concurrent use.
type AutoSaver struct {
	save     SaveFunc
	interval time.Duration
	log      *slog.Logger

	mu       sync.Mutex
	dirty    map[string]struct{}
	inFlight map[string]struct{}
	started  bool
	stopped  bool

	stopCh chan struct{}
	doneCh chan struct{}
	wg     sync.WaitGroup
}

// NewAutoSaver creates a stopped saver. Call Start to begin ticking.
func NewAutoSaver(save SaveFunc, interval time.Duration, logger *slog.Logger) (*AutoSaver, error) {
	if save == nil {
		return nil, errors.New("save function must not be nil")
	}
	if interval <= 0 {
		interval = DefaultAutoSaveInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AutoSaver{
		save:     save,
		interval: interval,
		log:      logger,
		dirty:    make(map[string]struct{}),
		inFlight: make(map[string]struct{}),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// MarkDirty queues a path for the next tick. Marking a path that is
// currently being saved queues one follow-up save.
func (a *AutoSaver) MarkDirty(path string) {
	if path == "" {
		return
	}
	a.mu.Lock()
	a.dirty[path] = struct{}{}
	a.mu.Unlock()
}

// Pending reports whether any path is dirty or mid-save.
func (a *AutoSaver) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.dirty) > 0 || len(a.inFlight) > 0
}

// Start begins the tick loop. Calling Start twice, or after Stop, is a
// no-op.
func (a *AutoSaver) Start() {
	a.mu.Lock()
	if a.started || a.stopped {
		a.mu.Unlock()
		return
	}
	a.started = true
	a.mu.Unlock()
	go a.run()
}

// Stop halts the tick loop and waits for in-flight saves to finish.
// Dirty paths that never got a tick are not saved; callers wanting a
// final save should call Flush first. Safe to call more than once; a
// stopped saver stays stopped.
func (a *AutoSaver) Stop() {
	a.mu.Lock()
	if !a.started || a.stopped {
		a.mu.Unlock()
		return
	}
	a.stopped = true
	a.mu.Unlock()

	close(a.stopCh)
	<-a.doneCh
	a.wg.Wait()
}

// Flush synchronously saves every dirty path not already in flight.
// Used on panel unmount so edits survive navigation.
func (a *AutoSaver) Flush(ctx context.Context) error {
	paths := a.claimDirty()
	var errs []error
	for _, p := range paths {
		if err := a.save(ctx, p); err != nil {
			errs = append(errs, err)
			a.MarkDirty(p)
		}
		a.release(p)
	}
	return errors.Join(errs...)
}

func (a *AutoSaver) run() {
	defer close(a.doneCh)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-a.stopCh:
			return
		case <-ticker.C:
			a.tick()
		}
	}
}

// tick claims the dirty paths that are not mid-save and launches one
// save goroutine per path.
func (a *AutoSaver) tick() {
	for _, path := range a.claimDirty() {
		a.wg.Add(1)
		go func(p string) {
			defer a.wg.Done()
			defer a.release(p)
			if err := a.save(context.Background(), p); err != nil {
				a.log.Warn("auto-save failed", "path", p, "error", err)
				a.MarkDirty(p)
			}
		}(path)
	}
}

// claimDirty moves every dirty path that is not in flight into the
// in-flight set and returns them. Paths still saving stay dirty and
// are picked up on a later tick.
func (a *AutoSaver) claimDirty() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	var claimed []string
	for p := range a.dirty {
		if _, saving := a.inFlight[p]; saving {
			continue
		}
		delete(a.dirty, p)
		a.inFlight[p] = struct{}{}
		claimed = append(claimed, p)
	}
	return claimed
}

func (a *AutoSaver) release(path string) {
	a.mu.Lock()
	delete(a.inFlight, path)
	a.mu.Unlock()
}
