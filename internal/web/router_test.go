// Squadlink - Squad Server Lobby Resolution and Status Publishing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/squadlink

package web

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/squadlink/internal/config"
	"github.com/tomtom215/squadlink/internal/store"
)

func testHandler(t *testing.T) (http.Handler, *config.Config) {
	t.Helper()
	dir := t.TempDir()

	cfg := &config.Config{}
	cfg.Files.Links = filepath.Join(dir, "links.txt")
	cfg.Files.Players = filepath.Join(dir, "players.json")
	cfg.Files.Slots = 4
	cfg.Server.CORSOrigins = []string{"*"}

	links := []string{"steam://joinlobby/393380/109775242/76561198000000001", "", "", ""}
	if err := store.WriteLinks(cfg.Files.Links, links); err != nil {
		t.Fatalf("links fixture: %v", err)
	}
	players := 50
	snap := &store.Snapshot{
		UpdatedAt: time.Now().UTC(),
		Results:   []store.SlotStatus{{Idx: 0, Players: &players}, {Idx: 1}, {Idx: 2}, {Idx: 3}},
	}
	if err := store.WriteSnapshot(cfg.Files.Players, snap); err != nil {
		t.Fatalf("snapshot fixture: %v", err)
	}

	return NewRouter(cfg, zerolog.Nop()).Handler(), cfg
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestLinksEndpoint(t *testing.T) {
	h, _ := testHandler(t)
	rec := get(t, h, "/links.txt")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", cc)
	}
	lines := strings.Split(rec.Body.String(), "\n")
	if len(lines) != 5 { // 4 slots + trailing newline
		t.Fatalf("body has %d lines, want 4 + trailing newline: %q", len(lines)-1, rec.Body.String())
	}
	if !strings.HasPrefix(lines[0], "steam://joinlobby/") {
		t.Errorf("slot 1 line = %q", lines[0])
	}
	if lines[1] != "" || lines[2] != "" || lines[3] != "" {
		t.Errorf("unresolved slots should be empty lines: %q", rec.Body.String())
	}
}

func TestLinksEndpointMissingFile(t *testing.T) {
	h, cfg := testHandler(t)
	if err := os.Remove(cfg.Files.Links); err != nil {
		t.Fatalf("remove: %v", err)
	}

	rec := get(t, h, "/links.txt")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with empty links", rec.Code)
	}
	if rec.Body.String() != "\n\n\n\n" {
		t.Errorf("missing file should serve empty slots, got %q", rec.Body.String())
	}
}

func TestPlayersEndpoint(t *testing.T) {
	h, _ := testHandler(t)
	rec := get(t, h, "/players.json")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", cc)
	}
	if !strings.Contains(rec.Body.String(), `"updatedAt"`) {
		t.Errorf("body should be the snapshot document, got %q", rec.Body.String())
	}
}

func TestPlayersEndpointMissingFile(t *testing.T) {
	h, cfg := testHandler(t)
	if err := os.Remove(cfg.Files.Players); err != nil {
		t.Fatalf("remove: %v", err)
	}

	rec := get(t, h, "/players.json")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with empty document", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"results":[]`) {
		t.Errorf("missing snapshot should serve empty document, got %q", rec.Body.String())
	}
}

func TestJoinRedirect(t *testing.T) {
	h, _ := testHandler(t)

	rec := get(t, h, "/s1c/")
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.HasPrefix(loc, "steam://joinlobby/") {
		t.Errorf("Location = %q, want a joinlobby link", loc)
	}
}

func TestJoinRedirectUnresolvedSlot(t *testing.T) {
	h, _ := testHandler(t)

	rec := get(t, h, "/s2c/")
	if rec.Code != http.StatusGone {
		t.Errorf("unresolved slot status = %d, want 410", rec.Code)
	}
}

func TestJoinRedirectOutOfRange(t *testing.T) {
	h, _ := testHandler(t)

	for _, path := range []string{"/s0c/", "/s5c/", "/s99c/"} {
		rec := get(t, h, path)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s status = %d, want 404", path, rec.Code)
		}
	}
}

func TestHealthz(t *testing.T) {
	h, _ := testHandler(t)
	rec := get(t, h, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := testHandler(t)
	rec := get(t, h, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
