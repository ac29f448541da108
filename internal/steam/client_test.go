// Squadlink - Squad Server Lobby Resolution and Status Publishing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/squadlink

package steam

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/squadlink/internal/config"
)

func newTestClient(serverURL string) *Client {
	return NewClient(&config.SteamConfig{
		BaseURL:    serverURL,
		APIKey:     "test-key",
		Timeout:    5 * time.Second,
		ChunkDelay: time.Millisecond,
	})
}

func summariesBody(ids ...string) string {
	var players []string
	for _, id := range ids {
		players = append(players, fmt.Sprintf(
			`{"steamid":%q,"personaname":"p-%s","communityvisibilitystate":3,"lobbysteamid":"L-%s"}`, id, id, id))
	}
	return `{"response":{"players":[` + strings.Join(players, ",") + `]}}`
}

func TestGetPlayerSummaries(t *testing.T) {
	var gotKey, gotIDs string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		gotIDs = r.URL.Query().Get("steamids")
		w.Write([]byte(summariesBody("100", "200")))
	}))
	defer ts.Close()

	client := newTestClient(ts.URL)
	got, err := client.GetPlayerSummaries(context.Background(), []string{"100", "200"})
	if err != nil {
		t.Fatalf("GetPlayerSummaries() error = %v", err)
	}

	if gotKey != "test-key" {
		t.Errorf("key = %q", gotKey)
	}
	if gotIDs != "100,200" {
		t.Errorf("steamids = %q", gotIDs)
	}
	if len(got) != 2 {
		t.Fatalf("result size = %d, want 2", len(got))
	}
	p := got["100"]
	if p.LobbySteamID != "L-100" || !p.Public() {
		t.Errorf("profile 100 = %+v", p)
	}
}

func TestGetPlayerSummariesChunks(t *testing.T) {
	var chunkSizes []int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids := strings.Split(r.URL.Query().Get("steamids"), ",")
		chunkSizes = append(chunkSizes, len(ids))
		w.Write([]byte(summariesBody(ids...)))
	}))
	defer ts.Close()

	ids := make([]string, 250)
	for i := range ids {
		ids[i] = fmt.Sprintf("7656%012d", i)
	}

	client := newTestClient(ts.URL)
	got, err := client.GetPlayerSummaries(context.Background(), ids)
	if err != nil {
		t.Fatalf("GetPlayerSummaries() error = %v", err)
	}

	if len(chunkSizes) != 3 {
		t.Fatalf("chunks = %d, want 3", len(chunkSizes))
	}
	if chunkSizes[0] != 100 || chunkSizes[1] != 100 || chunkSizes[2] != 50 {
		t.Errorf("chunk sizes = %v, want [100 100 50]", chunkSizes)
	}
	if len(got) != 250 {
		t.Errorf("result size = %d, want 250", len(got))
	}
}

func TestGetPlayerSummariesMissingProfilesAbsent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only one of the two requested profiles comes back.
		w.Write([]byte(summariesBody("100")))
	}))
	defer ts.Close()

	client := newTestClient(ts.URL)
	got, err := client.GetPlayerSummaries(context.Background(), []string{"100", "200"})
	if err != nil {
		t.Fatalf("GetPlayerSummaries() error = %v", err)
	}
	if _, ok := got["200"]; ok {
		t.Error("missing profile should be absent from the result")
	}
	if _, ok := got["100"]; !ok {
		t.Error("returned profile should be present")
	}
}

func TestGetPlayerSummariesChunkFailureFailsLookup(t *testing.T) {
	var calls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 2 {
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		ids := strings.Split(r.URL.Query().Get("steamids"), ",")
		w.Write([]byte(summariesBody(ids...)))
	}))
	defer ts.Close()

	ids := make([]string, 150)
	for i := range ids {
		ids[i] = fmt.Sprintf("7656%012d", i)
	}

	client := newTestClient(ts.URL)
	if _, err := client.GetPlayerSummaries(context.Background(), ids); err == nil {
		t.Fatal("a failed chunk must fail the whole lookup")
	}
}

func TestGetPlayerSummariesEmptyInput(t *testing.T) {
	client := newTestClient("http://unused.invalid")
	got, err := client.GetPlayerSummaries(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetPlayerSummaries(nil) error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("empty input should yield empty result, got %v", got)
	}
}

func TestPublic(t *testing.T) {
	if (PlayerSummary{CommunityVisibilityState: 3}).Public() != true {
		t.Error("state 3 is public")
	}
	if (PlayerSummary{CommunityVisibilityState: 1}).Public() != false {
		t.Error("state 1 is private")
	}
}
