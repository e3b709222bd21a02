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

import "time"

// =============================================================================
// Plan Status
// =============================================================================

// PlanStatus is the approval lifecycle state of a plan.
//
// Runtime qualities like "executing" or "stuck" are not statuses; they are
// derived from step states while the plan is APPROVED (see IsRunning and
// IsStuck, and pkg/views for the display labels).
type PlanStatus string

const (
	PlanDraft     PlanStatus = "DRAFT"
	PlanPending   PlanStatus = "PENDING"
	PlanApproved  PlanStatus = "APPROVED"
	PlanRejected  PlanStatus = "REJECTED"
	PlanCompleted PlanStatus = "COMPLETED"
)

// StepStatus is the execution state of a single plan step.
// Exactly one status applies to a step at any time.
type StepStatus string

const (
	StepPending    StepStatus = "pending"
	StepInProgress StepStatus = "in_progress"
	StepCompleted  StepStatus = "completed"
	StepFailed     StepStatus = "failed"
	StepSkipped    StepStatus = "skipped"
)

// Terminal reports whether the step will not change state again
// without operator intervention.
func (s StepStatus) Terminal() bool {
	switch s {
	case StepCompleted, StepFailed, StepSkipped:
		return true
	default:
		return false
	}
}

// =============================================================================
// Plan / Step / Todo
// =============================================================================

// TodoItem is one checklist entry inside a step.
type TodoItem struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Step is one unit of work within a plan.
type Step struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Agent       string     `json:"agent,omitempty"`
	Status      StepStatus `json:"status"`
	Todos       []TodoItem `json:"todos,omitempty"`
	Output      string     `json:"output,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// Plan is a structured, ordered task breakdown proposed by an agent,
// subject to user approval and step-by-step execution tracking.
//
// # Invariants
//
//   - CompletedSteps() <= TotalSteps() always.
//   - CurrentStepIndex is meaningful only while Status is APPROVED and
//     Steps is non-empty; CurrentStep enforces this.
//   - A conversation has at most one active plan.
type Plan struct {
	ID               string     `json:"id"`
	ConversationID   string     `json:"conversation_id,omitempty"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	Status           PlanStatus `json:"status"`
	Steps            []Step     `json:"steps,omitempty"`
	CurrentStepIndex int        `json:"current_step_index"`
	SourceBranch     string     `json:"source_branch,omitempty"`
	WorkingBranch    string     `json:"working_branch,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	ApprovedAt       *time.Time `json:"approved_at,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

// TotalSteps returns the number of steps in the plan.
func (p *Plan) TotalSteps() int { return len(p.Steps) }

// CompletedSteps counts steps that finished successfully or were skipped.
func (p *Plan) CompletedSteps() int {
	n := 0
	for i := range p.Steps {
		if p.Steps[i].Status == StepCompleted || p.Steps[i].Status == StepSkipped {
			n++
		}
	}
	return n
}

// IsRunning reports whether the plan is actively executing: APPROVED
// with at least one step in progress.
func (p *Plan) IsRunning() bool {
	if p.Status != PlanApproved {
		return false
	}
	for i := range p.Steps {
		if p.Steps[i].Status == StepInProgress {
			return true
		}
	}
	return false
}

// IsStuck reports whether an APPROVED plan has stalled: a failed step
// with nothing in progress and work still remaining.
func (p *Plan) IsStuck() bool {
	if p.Status != PlanApproved || p.IsRunning() {
		return false
	}
	failed := false
	for i := range p.Steps {
		if p.Steps[i].Status == StepFailed {
			failed = true
			break
		}
	}
	return failed
}

// CurrentStep returns the step at CurrentStepIndex. The second return is
// false when the plan is not APPROVED, has no steps, or the index is out
// of range; callers must not fall back to index 0 in that case.
func (p *Plan) CurrentStep() (*Step, bool) {
	if p.Status != PlanApproved || len(p.Steps) == 0 {
		return nil, false
	}
	if p.CurrentStepIndex < 0 || p.CurrentStepIndex >= len(p.Steps) {
		return nil, false
	}
	return &p.Steps[p.CurrentStepIndex], true
}
