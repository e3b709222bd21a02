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
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/AleutianAI/AleutianDeck/pkg/datatypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedNow sits at midday so that a 25h offset lands on the previous
// calendar day regardless of arithmetic details.
var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func conv(id string, updated time.Time) datatypes.Conversation {
	return datatypes.Conversation{
		ID:        id,
		Title:     "conv " + id,
		Status:    datatypes.ConversationActive,
		UpdatedAt: updated,
	}
}

func labelsOf(groups []ConversationGroup) []string {
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.Label)
	}
	return out
}

func findGroup(t *testing.T, groups []ConversationGroup, label string) ConversationGroup {
	t.Helper()
	for _, g := range groups {
		if g.Label == label {
			return g
		}
	}
	t.Fatalf("group %q not found (have %v)", label, labelsOf(groups))
	return ConversationGroup{}
}

func TestGroupByDateBuckets(t *testing.T) {
	convs := []datatypes.Conversation{
		conv("today", fixedNow.Add(-1*time.Hour)),
		conv("yesterday", fixedNow.Add(-25*time.Hour)),
		conv("week", fixedNow.Add(-4*24*time.Hour)),
		conv("month", fixedNow.Add(-20*24*time.Hour)),
		conv("older", fixedNow.Add(-90*24*time.Hour)),
	}

	groups := GroupByDate(convs, nil, fixedNow)

	require.Equal(t, []string{GroupToday, GroupYesterday, GroupLast7, GroupLast30, GroupOlder}, labelsOf(groups))
	for _, g := range groups {
		require.Len(t, g.Conversations, 1, "group %s", g.Label)
	}
	assert.Equal(t, "today", findGroup(t, groups, GroupToday).Conversations[0].ID)
	assert.Equal(t, "yesterday", findGroup(t, groups, GroupYesterday).Conversations[0].ID)
	assert.Equal(t, "older", findGroup(t, groups, GroupOlder).Conversations[0].ID)
}

func TestGroupByDateScenario(t *testing.T) {
	convs := []datatypes.Conversation{
		conv("c1", fixedNow),
		conv("c2", fixedNow.Add(-25*time.Hour)),
		conv("c3", fixedNow.Add(-10*24*time.Hour)),
	}

	groups := GroupByDate(convs, nil, fixedNow)

	assert.Equal(t, "c1", findGroup(t, groups, GroupToday).Conversations[0].ID)
	assert.Equal(t, "c2", findGroup(t, groups, GroupYesterday).Conversations[0].ID)
	assert.Equal(t, "c3", findGroup(t, groups, GroupLast30).Conversations[0].ID)
}

func TestGroupByDateExactlyOneBucket(t *testing.T) {
	convs := []datatypes.Conversation{
		conv("a", fixedNow),
		conv("b", fixedNow.Add(-25*time.Hour)),
		conv("c", fixedNow.Add(-3*24*time.Hour)),
		conv("d", fixedNow.Add(-15*24*time.Hour)),
		conv("e", fixedNow.Add(-200*24*time.Hour)),
		conv("f", time.Time{}),
	}
	convs[0].Pinned = true

	groups := GroupByDate(convs, map[string]bool{"c": true}, fixedNow)

	seen := map[string]int{}
	total := 0
	for _, g := range groups {
		for _, c := range g.Conversations {
			seen[c.ID]++
			total++
		}
	}
	assert.Equal(t, len(convs), total)
	for id, n := range seen {
		assert.Equal(t, 1, n, "conversation %s appears %d times", id, n)
	}
}

func TestGroupByDatePinnedWinsOverToday(t *testing.T) {
	c := conv("p", fixedNow)
	c.Pinned = true

	groups := GroupByDate([]datatypes.Conversation{c}, nil, fixedNow)

	require.Len(t, groups, 1)
	assert.Equal(t, GroupPinned, groups[0].Label)
}

func TestGroupByDateClientLocalPin(t *testing.T) {
	groups := GroupByDate([]datatypes.Conversation{conv("x", fixedNow)}, map[string]bool{"x": true}, fixedNow)

	require.Len(t, groups, 1)
	assert.Equal(t, GroupPinned, groups[0].Label)
}

func TestGroupByDateMissingTimestampGoesOlder(t *testing.T) {
	groups := GroupByDate([]datatypes.Conversation{conv("z", time.Time{})}, nil, fixedNow)

	require.Len(t, groups, 1)
	assert.Equal(t, GroupOlder, groups[0].Label)
}

func TestGroupByDateCreatedAtFallback(t *testing.T) {
	c := datatypes.Conversation{ID: "f", CreatedAt: fixedNow.Add(-2 * time.Hour)}

	groups := GroupByDate([]datatypes.Conversation{c}, nil, fixedNow)

	require.Len(t, groups, 1)
	assert.Equal(t, GroupToday, groups[0].Label)
}

func TestGroupByDateFutureTimestampIsToday(t *testing.T) {
	groups := GroupByDate([]datatypes.Conversation{conv("fut", fixedNow.Add(48*time.Hour))}, nil, fixedNow)

	require.Len(t, groups, 1)
	assert.Equal(t, GroupToday, groups[0].Label)
}

func TestGroupByDateBoundary(t *testing.T) {
	t.Run("7 days ago is Last 7 Days", func(t *testing.T) {
		groups := GroupByDate([]datatypes.Conversation{conv("b7", fixedNow.Add(-7*24*time.Hour))}, nil, fixedNow)
		require.Len(t, groups, 1)
		assert.Equal(t, GroupLast7, groups[0].Label)
	})

	t.Run("8 days ago is Last 30 Days", func(t *testing.T) {
		groups := GroupByDate([]datatypes.Conversation{conv("b8", fixedNow.Add(-8*24*time.Hour))}, nil, fixedNow)
		require.Len(t, groups, 1)
		assert.Equal(t, GroupLast30, groups[0].Label)
	})

	t.Run("31 days ago is Older", func(t *testing.T) {
		groups := GroupByDate([]datatypes.Conversation{conv("b31", fixedNow.Add(-31*24*time.Hour))}, nil, fixedNow)
		require.Len(t, groups, 1)
		assert.Equal(t, GroupOlder, groups[0].Label)
	})
}

func TestGroupByDateAcrossDSTChange(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 2025-03-09 is a 23-hour day in this zone (spring forward). A
	// conversation updated that evening must still be Yesterday on the
	// 10th: day deltas count calendar days, not elapsed 24h blocks.
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, loc)
	updated := time.Date(2025, 3, 9, 20, 0, 0, 0, loc)

	groups := GroupByDate([]datatypes.Conversation{conv("c1", updated)}, nil, now)
	require.Len(t, groups, 1)
	assert.Equal(t, GroupYesterday, groups[0].Label)
}
