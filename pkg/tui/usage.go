// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tui

import (
	"fmt"
	"strings"
)

func (m Model) renderUsage(width, height int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Usage (last 30 days)"))
	if m.stores.Usage.Loading() {
		b.WriteString(dimStyle.Render(" (loading)"))
	}
	b.WriteString("\n")
	if errMsg := m.stores.Usage.Err(); errMsg != "" {
		b.WriteString(errorStyle.Render(errMsg) + "\n")
	}

	for _, alert := range m.stores.Usage.Budgets() {
		pct := alert.PercentUsed()
		line := fmt.Sprintf("%s budget: $%.2f / $%.2f (%.0f%%)",
			alert.Period, alert.CurrentSpend, alert.Threshold, pct)
		if pct >= 80 {
			b.WriteString(budgetWarnStyle.Render(line))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	records := m.stores.Usage.Records()
	if len(records) == 0 {
		b.WriteString(dimStyle.Render("no usage recorded"))
		return b.String()
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%-12s %10s %10s %8s %9s", "date", "in", "out", "reqs", "cost")))
	b.WriteString("\n")

	shown := 0
	for i := len(records) - 1; i >= 0 && shown < height-8; i-- {
		r := records[i]
		b.WriteString(fmt.Sprintf("%-12s %10d %10d %8d %8.2f$\n",
			r.Date, r.InputTokens, r.OutputTokens, r.Requests, r.CostUSD))
		shown++
	}

	b.WriteString("\n")
	b.WriteString(titleStyle.Render(fmt.Sprintf("total: $%.2f", m.stores.Usage.TotalCost())))
	return b.String()
}
