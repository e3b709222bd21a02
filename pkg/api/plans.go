// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package api

import (
	"context"
	"net/url"

	"github.com/AleutianAI/AleutianDeck/pkg/datatypes"
)

// ListPlans fetches all plans, optionally restricted to one conversation.
func (c *Client) ListPlans(ctx context.Context, conversationID string) ([]datatypes.Plan, error) {
	path := "/api/plans"
	if conversationID != "" {
		path += "?conversation_id=" + url.QueryEscape(conversationID)
	}
	var out []datatypes.Plan
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetPlan fetches one plan with its full step list.
func (c *Client) GetPlan(ctx context.Context, id string) (*datatypes.Plan, error) {
	var out datatypes.Plan
	if err := c.get(ctx, "/api/plans/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ApprovePlan moves a PENDING plan to APPROVED, starting execution.
func (c *Client) ApprovePlan(ctx context.Context, id string) (*datatypes.Plan, error) {
	return c.planAction(ctx, id, "approve")
}

// RejectPlan moves a PENDING plan to REJECTED.
func (c *Client) RejectPlan(ctx context.Context, id string) (*datatypes.Plan, error) {
	return c.planAction(ctx, id, "reject")
}

// PausePlan halts step execution of an APPROVED plan. The plan stays
// APPROVED; the backend simply stops dispatching steps.
func (c *Client) PausePlan(ctx context.Context, id string) (*datatypes.Plan, error) {
	return c.planAction(ctx, id, "pause")
}

// ResumePlan resumes step execution of a paused plan.
func (c *Client) ResumePlan(ctx context.Context, id string) (*datatypes.Plan, error) {
	return c.planAction(ctx, id, "resume")
}

func (c *Client) planAction(ctx context.Context, id, action string) (*datatypes.Plan, error) {
	var out datatypes.Plan
	path := "/api/plans/" + url.PathEscape(id) + "/" + action
	if err := c.post(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
