// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package api provides the REST client for the Aleutian platform backend.
//
// The backend owns every entity; this client is a thin, typed transport:
// it attaches the bearer token, rate-limits outbound requests, decodes
// the backend's `{"error": "..."}` failure shape into *APIError, and
// returns entities from pkg/datatypes. It holds no cache and no state
// beyond its connection settings — caching lives in pkg/store.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// Configuration
// =============================================================================

const (
	// DefaultTimeout bounds any single REST call.
	DefaultTimeout = 30 * time.Second

	// DefaultRequestsPerSecond is the client-side request ceiling. The
	// dashboard refetches deliberately, not in tight loops; the limiter
	// is there to keep a misbehaving panel from hammering the backend.
	DefaultRequestsPerSecond = 20

	// maxErrorBodyBytes caps how much of a failure body we read.
	maxErrorBodyBytes = 64 * 1024
)

// Config configures a Client.
type Config struct {
	// BaseURL is the backend REST root, e.g. "http://localhost:8080".
	// Required.
	BaseURL string

	// Token is the bearer token attached to every request.
	Token string

	// HTTPClient overrides the underlying client. Default: a client
	// with DefaultTimeout.
	HTTPClient *http.Client

	// RequestsPerSecond overrides the outbound rate ceiling.
	// Zero means DefaultRequestsPerSecond.
	RequestsPerSecond float64

	// Logger receives request/failure logs. Default: slog.Default().
	Logger *slog.Logger
}

// Client is the typed REST client. Safe for concurrent use.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
	log     *slog.Logger
}

// New creates a Client from cfg. Returns an error when BaseURL is
// missing or unparseable.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("api: BaseURL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("api: invalid BaseURL %q: %w", cfg.BaseURL, err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(rps), int(rps)),
		log:     logger,
	}, nil
}

// =============================================================================
// Errors
// =============================================================================

// APIError is a backend-reported failure. Message carries the backend's
// `error` field verbatim so the UI can display it unchanged.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return e.Message
}

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// errorBody is the backend's standard failure shape.
type errorBody struct {
	Error string `json:"error"`
}

// =============================================================================
// Request plumbing
// =============================================================================

// do issues one request and decodes the response into out (skipped when
// out is nil). Paths are relative to BaseURL and should start with "/".
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("api: rate limiter: %w", err)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encoding %s %s request: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("api: building %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.decodeError(method, path, resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decoding %s %s response: %w", method, path, err)
	}
	return nil
}

// decodeError turns a non-2xx response into *APIError, preserving the
// backend's message verbatim when the body matches the standard shape.
func (c *Client) decodeError(method, path string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err == nil && eb.Error != "" {
		c.log.Warn("backend error", "method", method, "path", path,
			"status", resp.StatusCode, "error", eb.Error)
		return &APIError{StatusCode: resp.StatusCode, Message: eb.Error}
	}

	c.log.Warn("backend error with unrecognized body", "method", method,
		"path", path, "status", resp.StatusCode)
	return &APIError{StatusCode: resp.StatusCode}
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}
