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

	"github.com/AleutianAI/AleutianDeck/pkg/datatypes"
)

// PlanAPI is the backend surface the plan store needs.
type PlanAPI interface {
	ListPlans(ctx context.Context, conversationID string) ([]datatypes.Plan, error)
	GetPlan(ctx context.Context, id string) (*datatypes.Plan, error)
	ApprovePlan(ctx context.Context, id string) (*datatypes.Plan, error)
	RejectPlan(ctx context.Context, id string) (*datatypes.Plan, error)
	PausePlan(ctx context.Context, id string) (*datatypes.Plan, error)
	ResumePlan(ctx context.Context, id string) (*datatypes.Plan, error)
}

// PlanStore caches plans for the plan panel. Every state-changing
// action (approve, reject, pause, resume) is pessimistic: the cache
// only reflects what the server has acknowledged, because showing a
// paused plan that is actually running is an impossible state the UI
// must never present.
//
// Realtime step updates arrive through the chat transport and land via
// ApplyPlan / ApplyStep.
type PlanStore struct {
	mu      sync.Mutex
	backend PlanAPI
	items   []datatypes.Plan
	loading bool
	lastErr string
}

// NewPlanStore creates an empty store over the given backend.
func NewPlanStore(backend PlanAPI) *PlanStore {
	return &PlanStore{backend: backend}
}

// Items returns a copy of the cached plans.
func (s *PlanStore) Items() []datatypes.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]datatypes.Plan, len(s.items))
	copy(out, s.items)
	return out
}

// Get returns the cached plan with the given id.
func (s *PlanStore) Get(id string) (datatypes.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.items[i], nil
	}
	return datatypes.Plan{}, ErrNotInCache
}

// ActiveForConversation returns the conversation's plan, if any. A
// conversation has at most one active plan.
func (s *PlanStore) ActiveForConversation(conversationID string) (datatypes.Plan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		p := &s.items[i]
		if p.ConversationID != conversationID {
			continue
		}
		if p.Status == datatypes.PlanRejected || p.Status == datatypes.PlanCompleted {
			continue
		}
		return *p, true
	}
	return datatypes.Plan{}, false
}

// Loading reports whether a FetchAll is in flight.
func (s *PlanStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the last surfaced error message.
func (s *PlanStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Reset clears the cache and flags.
func (s *PlanStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.loading = false
	s.lastErr = ""
}

// FetchAll replaces the cache wholesale. Most recent response wins.
func (s *PlanStore) FetchAll(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	items, err := s.backend.ListPlans(ctx, conversationID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.lastErr = errString(err)
		return err
	}
	s.items = items
	s.lastErr = ""
	return nil
}

// FetchOne refreshes a single plan in place.
func (s *PlanStore) FetchOne(ctx context.Context, id string) (*datatypes.Plan, error) {
	plan, err := s.backend.GetPlan(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = errString(err)
		return nil, err
	}
	s.upsert(*plan)
	s.lastErr = ""
	return plan, nil
}

// Approve asks the backend to approve the plan and reconciles the cache
// with the acknowledged entity.
func (s *PlanStore) Approve(ctx context.Context, id string) error {
	return s.action(ctx, id, s.backend.ApprovePlan)
}

// Reject asks the backend to reject the plan.
func (s *PlanStore) Reject(ctx context.Context, id string) error {
	return s.action(ctx, id, s.backend.RejectPlan)
}

// Pause halts execution. Pessimistic by design.
func (s *PlanStore) Pause(ctx context.Context, id string) error {
	return s.action(ctx, id, s.backend.PausePlan)
}

// Resume restarts execution. Pessimistic by design.
func (s *PlanStore) Resume(ctx context.Context, id string) error {
	return s.action(ctx, id, s.backend.ResumePlan)
}

func (s *PlanStore) action(ctx context.Context, id string,
	call func(context.Context, string) (*datatypes.Plan, error)) error {

	plan, err := call(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = errString(err)
		return err
	}
	s.upsert(*plan)
	s.lastErr = ""
	return nil
}

// ApplyPlan folds a realtime plan update into the cache. Called by the
// chat transport dispatcher; never fails, unknown plans are inserted.
func (s *PlanStore) ApplyPlan(p datatypes.Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsert(p)
}

// ApplyStep folds a realtime step update into its plan. Updates for
// unknown plans or steps are dropped; a stale panel refetches on focus.
func (s *PlanStore) ApplyStep(planID string, step datatypes.Step) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(planID)
	if i < 0 {
		return
	}
	for j := range s.items[i].Steps {
		if s.items[i].Steps[j].ID == step.ID {
			s.items[i].Steps[j] = step
			return
		}
	}
}

func (s *PlanStore) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *PlanStore) upsert(p datatypes.Plan) {
	if i := s.indexOf(p.ID); i >= 0 {
		s.items[i] = p
		return
	}
	s.items = append(s.items, p)
}
