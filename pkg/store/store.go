// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package store provides the client-side entity caches: conversations,
// plans, memories, projects, and usage.
//
// Each store follows the same contract: a plain cache (ordered list),
// Loading and Err flags, fetch operations that replace the cache
// wholesale (most recent response wins), and mutations that are either
// optimistic or pessimistic:
//
//   - Optimistic (pin, tag edits): snapshot, apply locally, call the
//     backend, revert to the snapshot and surface the error on failure,
//     reconcile with the server entity on success.
//   - Pessimistic (delete, archive, plan pause/resume): wait for the
//     server ack before touching the cache, so a failed destructive
//     action never leaves the UI showing an impossible state.
//
// Stores are process-wide singletons with page-session lifetime, read
// by many panels but mutated only through their action methods. Reset
// supports logout. All methods are safe for concurrent use.
package store

import "errors"

// ErrNotInCache indicates the requested entity is not in the local
// cache. It is a cache miss, not a backend 404.
var ErrNotInCache = errors.New("entity not in cache")

// errString renders an error for the store's Err field. Backend
// messages pass through verbatim.
func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
