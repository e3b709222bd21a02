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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AleutianAI/AleutianDeck/pkg/datatypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL, Token: "test-token"})
	require.NoError(t, err)
	return c
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([]datatypes.Conversation{})
	}))

	_, err := c.ListConversations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer test-token", gotAuth)
}

func TestBackendErrorShapeDecoded(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "conversation has an active plan"})
	}))

	err := c.DeleteConversation(context.Background(), "c1")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	// Backend message is preserved verbatim for display.
	assert.Equal(t, "conversation has an active plan", apiErr.Message)
}

func TestUnrecognizedErrorBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))

	err := c.DeleteMemory(context.Background(), "m1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Empty(t, apiErr.Message)
}

func TestIsNotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "no such plan"})
	}))

	_, err := c.GetPlan(context.Background(), "missing")
	assert.True(t, IsNotFound(err))
	assert.False(t, IsNotFound(nil))
}

func TestStoreMemoryRejectsInvalidWithoutRoundTrip(t *testing.T) {
	called := false
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	// scope=project with no project id must fail client-side.
	_, err := c.StoreMemory(context.Background(), datatypes.Memory{
		Content: "x",
		Phase:   datatypes.PhaseBuild,
		Scope:   datatypes.ScopeProject,
	})
	require.Error(t, err)
	assert.False(t, called, "invalid memory must not reach the backend")
}

func TestGitCommitHookFailure(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(CommitResult{
			Error:      "commit rejected",
			HookOutput: "gofmt: main.go needs formatting",
		})
	}))

	res, err := c.GitCommit(context.Background(), "p1", "fix things")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHookFailure)
	require.NotNil(t, res)
	assert.Contains(t, res.HookOutput, "gofmt")
}

func TestUpdateConversationPatch(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(datatypes.Conversation{ID: "c1", Title: "renamed"})
	}))

	title := "renamed"
	conv, err := c.UpdateConversation(context.Background(), "c1", ConversationPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "renamed", conv.Title)

	// Only the set field crosses the wire.
	assert.Equal(t, map[string]any{"title": "renamed"}, got)
}

func TestRequestContextCancellation(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.ListProjects(ctx)
	assert.Error(t, err)
}
