// Squadlink - Squad Server Lobby Resolution and Status Publishing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/squadlink

/*
client.go - Steam Web API client

API-key authenticated client for ISteamUser/GetPlayerSummaries. The endpoint
accepts at most 100 SteamIDs per call; larger inputs are split into chunks
and fetched sequentially with a polite pacing delay between chunks
(golang.org/x/time/rate) to stay inside Steam's rate limits.

A SteamID with no returned summary is simply absent from the result — Steam
silently drops unknown or deleted accounts, and that is not an error. A
failed chunk, however, is: partial identity data is too unreliable to vote
on, so the whole lookup fails and the caller skips that server's resolution
for the cycle.
*/

package steam

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/squadlink/internal/config"
	"github.com/tomtom215/squadlink/internal/metrics"
)

// maxBatchSize is the hard GetPlayerSummaries input limit.
const maxBatchSize = 100

// visibilityPublic is the communityvisibilitystate value for a public profile.
const visibilityPublic = 3

// PlayerSummary is one entry of the GetPlayerSummaries response. Only the
// fields the lobby resolver consumes are mapped; lobbysteamid is present
// only while the player sits in a joinable lobby with a public profile.
type PlayerSummary struct {
	SteamID                  string `json:"steamid"`
	PersonaName              string `json:"personaname"`
	CommunityVisibilityState int    `json:"communityvisibilitystate"`
	LobbySteamID             string `json:"lobbysteamid"`
}

// Public reports whether the profile is publicly visible.
func (p PlayerSummary) Public() bool {
	return p.CommunityVisibilityState == visibilityPublic
}

// summariesResponse is the response envelope.
type summariesResponse struct {
	Response struct {
		Players []PlayerSummary `json:"players"`
	} `json:"response"`
}

// ClientInterface defines the Steam operations the resolver needs.
type ClientInterface interface {
	// GetPlayerSummaries fetches profile summaries for up to any number
	// of SteamIDs, batching requests under the hood. The result is keyed
	// by SteamID; missing profiles are absent, not an error.
	GetPlayerSummaries(ctx context.Context, steamIDs []string) (map[string]PlayerSummary, error)
}

// Ensure Client implements ClientInterface.
var _ ClientInterface = (*Client)(nil)

// Client handles communication with the Steam Web API.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	pacer   *rate.Limiter
}

// NewClient creates a new Steam API client from configuration.
func NewClient(cfg *config.SteamConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	delay := cfg.ChunkDelay
	if delay <= 0 {
		delay = 200 * time.Millisecond
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client: &http.Client{
			Timeout: timeout,
		},
		// Burst of 1: the first chunk goes immediately, every
		// subsequent chunk waits out the pacing delay.
		pacer: rate.NewLimiter(rate.Every(delay), 1),
	}
}

// GetPlayerSummaries fetches summaries for the given SteamIDs in chunks of
// at most 100, pacing successive chunks. Any chunk failure fails the whole
// lookup.
func (c *Client) GetPlayerSummaries(ctx context.Context, steamIDs []string) (map[string]PlayerSummary, error) {
	result := make(map[string]PlayerSummary, len(steamIDs))

	for start := 0; start < len(steamIDs); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(steamIDs) {
			end = len(steamIDs)
		}
		chunk := steamIDs[start:end]

		if err := c.pacer.Wait(ctx); err != nil {
			return nil, err
		}

		players, err := c.fetchChunk(ctx, chunk)
		if err != nil {
			metrics.UpstreamRequests.WithLabelValues("steam", "failure").Inc()
			return nil, fmt.Errorf("steam summaries chunk %d-%d failed: %w", start, end, err)
		}
		metrics.UpstreamRequests.WithLabelValues("steam", "success").Inc()

		for _, p := range players {
			if p.SteamID != "" {
				result[p.SteamID] = p
			}
		}
	}

	return result, nil
}

// fetchChunk performs one GetPlayerSummaries call for up to 100 ids.
func (c *Client) fetchChunk(ctx context.Context, steamIDs []string) ([]PlayerSummary, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("steamids", strings.Join(steamIDs, ","))

	reqURL := fmt.Sprintf("%s/ISteamUser/GetPlayerSummaries/v0002/?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("steam returned status %d: %s", resp.StatusCode, string(body))
	}

	var decoded summariesResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode steam response: %w", err)
	}

	return decoded.Response.Players, nil
}
