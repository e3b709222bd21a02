// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package views provides the derived-view layer: pure functions that
// group, filter, sort, and label entities for display.
//
// Every function here is a pure function of (entities, parameters) with
// no store or UI dependency, so placement rules can be asserted in unit
// tests without rendering anything. Inputs are never mutated; functions
// return fresh slices.
package views

import (
	"time"

	"github.com/AleutianAI/AleutianDeck/pkg/datatypes"
)

// =============================================================================
// Date Grouping
// =============================================================================

// Sidebar group labels, in display order.
const (
	GroupPinned    = "Pinned"
	GroupToday     = "Today"
	GroupYesterday = "Yesterday"
	GroupLast7     = "Last 7 Days"
	GroupLast30    = "Last 30 Days"
	GroupOlder     = "Older"
)

// groupOrder fixes the sidebar ordering.
var groupOrder = []string{
	GroupPinned, GroupToday, GroupYesterday, GroupLast7, GroupLast30, GroupOlder,
}

// ConversationGroup is one labeled section of the conversation sidebar.
type ConversationGroup struct {
	Label         string
	Conversations []datatypes.Conversation
}

// GroupByDate partitions conversations into sidebar sections using
// wall-clock day-boundary arithmetic on each conversation's last
// activity (UpdatedAt, falling back to CreatedAt).
//
// Placement rules:
//
//   - Pinned membership is checked first (the entity's Pinned flag or the
//     client-local pinned set) and removes the conversation from date
//     bucketing entirely, even if it would also match Today.
//   - 0 calendar days ago (or a future timestamp) -> Today.
//   - 1 day -> Yesterday; 2..7 -> Last 7 Days; 8..30 -> Last 30 Days.
//   - Anything older, or a zero/unusable timestamp -> Older.
//
// Every conversation lands in exactly one group. Empty groups are
// omitted from the result; present groups keep the fixed display order.
// Within a group, input order is preserved.
func GroupByDate(convs []datatypes.Conversation, pinned map[string]bool, now time.Time) []ConversationGroup {
	buckets := make(map[string][]datatypes.Conversation, len(groupOrder))

	today := startOfDay(now)
	for _, c := range convs {
		label := bucketFor(&c, pinned, today)
		buckets[label] = append(buckets[label], c)
	}

	out := make([]ConversationGroup, 0, len(groupOrder))
	for _, label := range groupOrder {
		if items := buckets[label]; len(items) > 0 {
			out = append(out, ConversationGroup{Label: label, Conversations: items})
		}
	}
	return out
}

// bucketFor decides the single group a conversation belongs to.
func bucketFor(c *datatypes.Conversation, pinned map[string]bool, today time.Time) string {
	if c.Pinned || pinned[c.ID] {
		return GroupPinned
	}

	ts := c.LastActivity()
	if ts.IsZero() {
		return GroupOlder
	}

	days := daysBetween(startOfDay(ts.In(today.Location())), today)
	switch {
	case days <= 0:
		return GroupToday
	case days == 1:
		return GroupYesterday
	case days <= 7:
		return GroupLast7
	case days <= 30:
		return GroupLast30
	default:
		return GroupOlder
	}
}

// startOfDay truncates t to its local midnight.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days from a to b (both at midnight).
// Negative when a is after b. Counted from date components, not elapsed
// hours: a DST-shortened day is still one calendar day.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	au := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	bu := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au).Hours() / 24)
}
