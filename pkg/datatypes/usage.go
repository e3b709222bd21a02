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

// UsageRecord is a per-day aggregate of token consumption and cost.
// The backend pre-aggregates; the client never sees per-request rows.
type UsageRecord struct {
	Date         string  `json:"date"` // YYYY-MM-DD
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
	CachedTokens int64   `json:"cached_tokens"`
	CostUSD      float64 `json:"cost_usd"`
	Requests     int     `json:"requests"`
}

// TotalTokens returns input + output + cached for the day.
func (u UsageRecord) TotalTokens() int64 {
	return u.InputTokens + u.OutputTokens + u.CachedTokens
}

// BudgetPeriod is the window a budget alert applies to.
type BudgetPeriod string

const (
	BudgetDaily   BudgetPeriod = "daily"
	BudgetWeekly  BudgetPeriod = "weekly"
	BudgetMonthly BudgetPeriod = "monthly"
)

// BudgetAlert tracks spend against a configured threshold. It is
// independent of per-request usage but compared against it for the
// percentage-used display.
type BudgetAlert struct {
	ID           string       `json:"id"`
	Threshold    float64      `json:"threshold"`
	Period       BudgetPeriod `json:"period"`
	CurrentSpend float64      `json:"current_spend"`
	TriggerCount int          `json:"trigger_count"`
}

// PercentUsed returns CurrentSpend as a percentage of Threshold,
// clamped to [0, 100]. A zero threshold reads as fully used so the UI
// flags the misconfiguration instead of dividing by zero.
func (b BudgetAlert) PercentUsed() float64 {
	if b.Threshold <= 0 {
		return 100
	}
	pct := b.CurrentSpend / b.Threshold * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
