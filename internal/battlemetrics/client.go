// Squadlink - Squad Server Lobby Resolution and Status Publishing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/squadlink

/*
client.go - BattleMetrics API client

Read-only, bearer-token authenticated client for the BattleMetrics REST API.

Client features:
  - Configurable HTTP timeout
  - Automatic HTTP 429 handling with exponential backoff and Retry-After
  - Context support for cancellation and timeouts
  - Typed JSON:API document decoding (document.go)

Rate limiting: BattleMetrics enforces per-token request budgets. On HTTP 429
the client backs off (1s, 2s, 4s, 8s, 16s, honoring Retry-After when sent)
for up to 5 retries before surfacing the failure.
*/

package battlemetrics

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/squadlink/internal/config"
	"github.com/tomtom215/squadlink/internal/metrics"
)

// maxErrorBodySize limits how much of a response body is read for error
// reporting, preventing unbounded allocation on large error responses.
const maxErrorBodySize = 64 * 1024 // 64KB

// ClientInterface defines the BattleMetrics operations the pipeline needs.
// Implemented by Client for production use and by mocks in tests; the
// BreakerClient wrapper also satisfies it.
//
// All methods accept a context for cancellation and return typed documents
// from document.go. Thread safety: safe for concurrent use.
type ClientInterface interface {
	// GetServer fetches the aggregate attributes for one server.
	GetServer(ctx context.Context, serverID string) (*ServerDocument, error)

	// GetServerPresence fetches the server with its current players and
	// their identity tokens included.
	GetServerPresence(ctx context.Context, serverID string) (*ServerDocument, error)
}

// Ensure Client implements ClientInterface.
var _ ClientInterface = (*Client)(nil)

// Client handles communication with the BattleMetrics HTTP API.
type Client struct {
	baseURL        string
	token          string
	client         *http.Client
	maxRetries     int           // Maximum retries for rate limiting
	retryBaseDelay time.Duration // Base delay for 429 backoff
}

// NewClient creates a new BattleMetrics API client from configuration.
func NewClient(cfg *config.BattleMetricsConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		token:   cfg.Token,
		client: &http.Client{
			Timeout: timeout,
		},
		maxRetries:     5,
		retryBaseDelay: time.Second,
	}
}

// GetServer fetches GET /servers/{id}.
func (c *Client) GetServer(ctx context.Context, serverID string) (*ServerDocument, error) {
	return c.fetchServer(ctx, serverID, nil)
}

// GetServerPresence fetches GET /servers/{id}?include=player,identifier.
func (c *Client) GetServerPresence(ctx context.Context, serverID string) (*ServerDocument, error) {
	params := url.Values{}
	params.Set("include", "player,identifier")
	return c.fetchServer(ctx, serverID, params)
}

// fetchServer performs the request, decodes the JSON:API document, and
// records the outcome metric.
func (c *Client) fetchServer(ctx context.Context, serverID string, params url.Values) (*ServerDocument, error) {
	if serverID == "" {
		return nil, fmt.Errorf("battlemetrics: empty server id")
	}

	reqURL := fmt.Sprintf("%s/servers/%s", c.baseURL, url.PathEscape(serverID))
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	resp, err := c.doRequestWithRateLimit(ctx, reqURL)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("battlemetrics", "failure").Inc()
		return nil, fmt.Errorf("battlemetrics request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamRequests.WithLabelValues("battlemetrics", "failure").Inc()
		body := readBodyForError(resp.Body)
		return nil, fmt.Errorf("battlemetrics returned status %d for server %s: %s", resp.StatusCode, serverID, string(body))
	}

	var doc ServerDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		metrics.UpstreamRequests.WithLabelValues("battlemetrics", "failure").Inc()
		return nil, fmt.Errorf("failed to decode battlemetrics document: %w", err)
	}

	metrics.UpstreamRequests.WithLabelValues("battlemetrics", "success").Inc()
	return &doc, nil
}

// doRequestWithRateLimit performs an HTTP GET with automatic rate limit
// handling. Implements exponential backoff for HTTP 429 responses, honoring
// the Retry-After header (RFC 6585) when present. The context is used for
// cancellation during backoff waits.
func (c *Client) doRequestWithRateLimit(ctx context.Context, reqURL string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		// Rate limited - close body and retry with backoff
		_ = resp.Body.Close()

		if attempt == c.maxRetries {
			lastErr = fmt.Errorf("rate limit exceeded after %d retries (HTTP 429)", c.maxRetries)
			break
		}

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := time.ParseDuration(retryAfter + "s"); err == nil {
				delay = seconds
			}
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, lastErr
}

// readBodyForError reads the response body for error reporting (max 64KB).
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}
