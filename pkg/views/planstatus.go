// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package views

import (
	"fmt"

	"github.com/AleutianAI/AleutianDeck/pkg/datatypes"
)

// Display labels for plan runtime state.
const (
	LabelDraft     = "Draft"
	LabelPending   = "Pending Approval"
	LabelExecuting = "Executing"
	LabelPaused    = "Paused"
	LabelStuck     = "Stuck"
	LabelApproved  = "Approved"
	LabelRejected  = "Rejected"
	LabelCompleted = "Completed"
)

// PlanLabel derives the plan panel's status label.
//
// For an APPROVED plan the label follows step state:
//
//   - "Executing" iff at least one step is in progress.
//   - "Paused" iff nothing is in progress but at least one step is
//     still pending.
//   - "Stuck" iff a step failed, nothing is in progress, and nothing
//     is left pending.
//   - "Approved" otherwise (all steps terminal but not yet marked
//     COMPLETED by the backend).
//
// Non-APPROVED statuses map directly to their labels.
func PlanLabel(p *datatypes.Plan) string {
	switch p.Status {
	case datatypes.PlanDraft:
		return LabelDraft
	case datatypes.PlanPending:
		return LabelPending
	case datatypes.PlanRejected:
		return LabelRejected
	case datatypes.PlanCompleted:
		return LabelCompleted
	case datatypes.PlanApproved:
		if p.IsRunning() {
			return LabelExecuting
		}
		if hasStepStatus(p, datatypes.StepPending) {
			return LabelPaused
		}
		if p.IsStuck() {
			return LabelStuck
		}
		return LabelApproved
	default:
		return string(p.Status)
	}
}

// PlanProgress renders "completed/total" for the panel header.
func PlanProgress(p *datatypes.Plan) string {
	return fmt.Sprintf("%d/%d", p.CompletedSteps(), p.TotalSteps())
}

func hasStepStatus(p *datatypes.Plan, status datatypes.StepStatus) bool {
	for i := range p.Steps {
		if p.Steps[i].Status == status {
			return true
		}
	}
	return false
}
