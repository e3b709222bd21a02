// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// =============================================================================
// Phase / Scope
// =============================================================================

// Phase is the fixed workflow stage a memory is associated with.
type Phase string

const (
	PhaseObserve Phase = "observe"
	PhaseThink   Phase = "think"
	PhasePlan    Phase = "plan"
	PhaseBuild   Phase = "build"
	PhaseExecute Phase = "execute"
	PhaseVerify  Phase = "verify"
	PhaseLearn   Phase = "learn"
)

// Phases lists all valid phases in workflow order.
func Phases() []Phase {
	return []Phase{
		PhaseObserve, PhaseThink, PhasePlan, PhaseBuild,
		PhaseExecute, PhaseVerify, PhaseLearn,
	}
}

// Valid reports whether p is one of the seven workflow phases.
func (p Phase) Valid() bool {
	switch p {
	case PhaseObserve, PhaseThink, PhasePlan, PhaseBuild,
		PhaseExecute, PhaseVerify, PhaseLearn:
		return true
	}
	return false
}

// Scope determines memory visibility: across all projects or one.
type Scope string

const (
	ScopeGlobal  Scope = "global"
	ScopeProject Scope = "project"
)

// =============================================================================
// Memory
// =============================================================================

// memoryValidate is the shared validator for memory payloads.
var memoryValidate = validator.New()

// Memory is a persisted fact or outcome the agent system can recall in
// future sessions.
//
// # Invariants
//
//   - Scope=project requires a non-empty ProjectID.
//   - Scope=global forbids a ProjectID.
//
// Both are enforced client-side by Validate before any backend call is
// issued; the UI must never round-trip an invalid memory.
type Memory struct {
	ID         string    `json:"id,omitempty"`
	Content    string    `json:"content" validate:"required"`
	Phase      Phase     `json:"phase" validate:"required,oneof=observe think plan build execute verify learn"`
	Category   string    `json:"category,omitempty"`
	Outcome    string    `json:"outcome,omitempty"`
	Scope      Scope     `json:"scope" validate:"required,oneof=global project"`
	ProjectID  string    `json:"project_id,omitempty" validate:"required_if=Scope project,excluded_if=Scope global"`
	Importance float64   `json:"importance"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}

// Validate checks the memory against its invariants. The returned error
// is suitable for direct display in a form's inline error state.
func (m *Memory) Validate() error {
	if err := memoryValidate.Struct(m); err != nil {
		var verrs validator.ValidationErrors
		if ok := asValidationErrors(err, &verrs); ok && len(verrs) > 0 {
			return fmt.Errorf("memory validation failed on field %q (%s)",
				verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("memory validation failed: %w", err)
	}
	return nil
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	if verrs, ok := err.(validator.ValidationErrors); ok {
		*target = verrs
		return true
	}
	return false
}

// ExportedMemory is the portable subset written by memory export and
// accepted by memory import. Lossy fields (id, timestamps) are dropped on
// purpose: a round-trip preserves content, phase, category, outcome,
// scope, project, and importance, and lets the backend assign fresh
// identity.
type ExportedMemory struct {
	Content    string  `json:"content"`
	Phase      Phase   `json:"phase"`
	Category   string  `json:"category,omitempty"`
	Outcome    string  `json:"outcome,omitempty"`
	Scope      Scope   `json:"scope"`
	ProjectID  string  `json:"project_id,omitempty"`
	Importance float64 `json:"importance"`
}

// Export converts a memory to its portable form.
func (m *Memory) Export() ExportedMemory {
	return ExportedMemory{
		Content:    m.Content,
		Phase:      m.Phase,
		Category:   m.Category,
		Outcome:    m.Outcome,
		Scope:      m.Scope,
		ProjectID:  m.ProjectID,
		Importance: m.Importance,
	}
}

// Materialize converts an exported memory back to a Memory ready for the
// store endpoint. Identity and timestamps are left for the backend.
func (e ExportedMemory) Materialize() Memory {
	return Memory{
		Content:    e.Content,
		Phase:      e.Phase,
		Category:   e.Category,
		Outcome:    e.Outcome,
		Scope:      e.Scope,
		ProjectID:  e.ProjectID,
		Importance: e.Importance,
	}
}
