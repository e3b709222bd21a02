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
	"context"
	"sync"
	"time"

	"github.com/AleutianAI/AleutianDeck/pkg/datatypes"
)

// UsageAPI is the backend surface the usage store needs.
type UsageAPI interface {
	DailyUsage(ctx context.Context, from, to time.Time) ([]datatypes.UsageRecord, error)
	BudgetAlerts(ctx context.Context) ([]datatypes.BudgetAlert, error)
}

// UsageStore caches usage records and budget alerts for the analytics
// panel. Read-only: budgets are configured elsewhere, the panel just
// displays spend against them.
type UsageStore struct {
	mu      sync.Mutex
	backend UsageAPI
	records []datatypes.UsageRecord
	budgets []datatypes.BudgetAlert
	loading bool
	lastErr string
}

// NewUsageStore creates an empty store over the given backend.
func NewUsageStore(backend UsageAPI) *UsageStore {
	return &UsageStore{backend: backend}
}

// Records returns a copy of the cached daily records.
func (s *UsageStore) Records() []datatypes.UsageRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]datatypes.UsageRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Budgets returns a copy of the cached budget alerts.
func (s *UsageStore) Budgets() []datatypes.BudgetAlert {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]datatypes.BudgetAlert, len(s.budgets))
	copy(out, s.budgets)
	return out
}

// TotalCost sums the cached records' cost.
func (s *UsageStore) TotalCost() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for _, r := range s.records {
		total += r.CostUSD
	}
	return total
}

// Loading reports whether a fetch is in flight.
func (s *UsageStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the last surfaced error message.
func (s *UsageStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Reset clears the cache and flags.
func (s *UsageStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.budgets = nil
	s.loading = false
	s.lastErr = ""
}

// FetchAll refreshes records for the window and the budget alerts.
// Records and budgets are independent server resources; a failure on
// either surfaces one error and leaves the other's prior cache intact.
func (s *UsageStore) FetchAll(ctx context.Context, from, to time.Time) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	records, recErr := s.backend.DailyUsage(ctx, from, to)
	budgets, budErr := s.backend.BudgetAlerts(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	if recErr == nil {
		s.records = records
	}
	if budErr == nil {
		s.budgets = budgets
	}

	switch {
	case recErr != nil:
		s.lastErr = errString(recErr)
		return recErr
	case budErr != nil:
		s.lastErr = errString(budErr)
		return budErr
	default:
		s.lastErr = ""
		return nil
	}
}
