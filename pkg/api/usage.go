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
	"time"

	"github.com/AleutianAI/AleutianDeck/pkg/datatypes"
)

// DailyUsage fetches per-day usage aggregates for the inclusive range
// [from, to]. Zero times leave the bound to the backend's default
// window.
func (c *Client) DailyUsage(ctx context.Context, from, to time.Time) ([]datatypes.UsageRecord, error) {
	v := url.Values{}
	if !from.IsZero() {
		v.Set("from", from.Format("2006-01-02"))
	}
	if !to.IsZero() {
		v.Set("to", to.Format("2006-01-02"))
	}
	path := "/api/usage/daily"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}

	var out []datatypes.UsageRecord
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// BudgetAlerts fetches the configured budget alerts with current spend.
func (c *Client) BudgetAlerts(ctx context.Context) ([]datatypes.BudgetAlert, error) {
	var out []datatypes.BudgetAlert
	if err := c.get(ctx, "/api/usage/budgets", &out); err != nil {
		return nil, err
	}
	return out, nil
}
