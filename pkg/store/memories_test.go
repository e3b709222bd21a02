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
	"errors"
	"fmt"
	"testing"

	"github.com/AleutianAI/AleutianDeck/pkg/api"
	"github.com/AleutianAI/AleutianDeck/pkg/datatypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMemoryAPI struct {
	items    []datatypes.Memory
	storeErr map[int]error // keyed by call ordinal, 1-based
	calls    int
	nextID   int
}

func (f *fakeMemoryAPI) ListMemories(ctx context.Context, q api.MemoryQuery) ([]datatypes.Memory, error) {
	return f.items, nil
}

func (f *fakeMemoryAPI) SearchMemories(ctx context.Context, query string) ([]datatypes.Memory, error) {
	var out []datatypes.Memory
	for _, m := range f.items {
		if query == "" || m.Content == query {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMemoryAPI) StoreMemory(ctx context.Context, m datatypes.Memory) (*datatypes.Memory, error) {
	f.calls++
	if err := f.storeErr[f.calls]; err != nil {
		return nil, err
	}
	f.nextID++
	m.ID = fmt.Sprintf("srv-%d", f.nextID)
	f.items = append(f.items, m)
	return &m, nil
}

func (f *fakeMemoryAPI) UpdateMemory(ctx context.Context, id string, m datatypes.Memory) (*datatypes.Memory, error) {
	m.ID = id
	return &m, nil
}

func (f *fakeMemoryAPI) DeleteMemory(ctx context.Context, id string) error {
	return nil
}

func globalMem(id, content string) datatypes.Memory {
	return datatypes.Memory{
		ID: id, Content: content,
		Phase: datatypes.PhaseLearn, Scope: datatypes.ScopeGlobal,
	}
}

func TestMemoryCreateValidatesBeforeCall(t *testing.T) {
	fake := &fakeMemoryAPI{storeErr: map[int]error{}}
	s := NewMemoryStore(fake)

	_, err := s.Create(context.Background(), datatypes.Memory{
		Content: "x", Phase: datatypes.PhaseBuild, Scope: datatypes.ScopeProject,
	})
	require.Error(t, err)
	assert.Zero(t, fake.calls, "invalid memory must not reach the backend")
	assert.NotEmpty(t, s.Err())
}

func TestMemoryCreatePessimistic(t *testing.T) {
	fake := &fakeMemoryAPI{storeErr: map[int]error{1: errors.New("quota exceeded")}}
	s := NewMemoryStore(fake)

	_, err := s.Create(context.Background(), globalMem("", "will fail"))
	require.Error(t, err)
	assert.Empty(t, s.Items(), "failed create must not appear in cache")

	stored, err := s.Create(context.Background(), globalMem("", "will pass"))
	require.NoError(t, err)
	assert.Equal(t, "srv-1", stored.ID)
	assert.Len(t, s.Items(), 1)
	assert.Empty(t, s.Err())
}

func TestMemoryExportImportRoundTrip(t *testing.T) {
	fake := &fakeMemoryAPI{storeErr: map[int]error{}}
	s := NewMemoryStore(fake)
	fake.items = []datatypes.Memory{
		{ID: "m1", Content: "use context everywhere", Phase: datatypes.PhaseBuild,
			Category: "style", Scope: datatypes.ScopeGlobal, Importance: 0.7},
		{ID: "m2", Content: "pin the toolchain", Phase: datatypes.PhaseVerify,
			Scope: datatypes.ScopeProject, ProjectID: "p1", Importance: 0.4},
	}
	require.NoError(t, s.FetchAll(context.Background(), api.MemoryQuery{}))

	exported := s.Export([]string{"m1", "m2", "missing"})
	require.Len(t, exported, 2)

	fresh := NewMemoryStore(&fakeMemoryAPI{storeErr: map[int]error{}})
	res := fresh.Import(context.Background(), exported)
	require.Empty(t, res.Errors)
	assert.Equal(t, 2, res.Stored)

	got := fresh.Items()
	require.Len(t, got, 2)
	// Content, phase, and category survive; ids are backend-assigned.
	byContent := map[string]datatypes.Memory{}
	for _, m := range got {
		byContent[m.Content] = m
	}
	assert.Equal(t, datatypes.PhaseBuild, byContent["use context everywhere"].Phase)
	assert.Equal(t, "style", byContent["use context everywhere"].Category)
	assert.Equal(t, "p1", byContent["pin the toolchain"].ProjectID)
	assert.NotEqual(t, "m1", byContent["use context everywhere"].ID)
}

func TestMemoryImportPartialFailure(t *testing.T) {
	fake := &fakeMemoryAPI{storeErr: map[int]error{2: errors.New("backend hiccup")}}
	s := NewMemoryStore(fake)

	res := s.Import(context.Background(), []datatypes.ExportedMemory{
		{Content: "one", Phase: datatypes.PhaseLearn, Scope: datatypes.ScopeGlobal},
		{Content: "two", Phase: datatypes.PhaseLearn, Scope: datatypes.ScopeGlobal},
		{Content: "three", Phase: datatypes.PhaseLearn, Scope: datatypes.ScopeGlobal},
	})

	assert.Equal(t, 2, res.Stored)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "memory 2")
}
