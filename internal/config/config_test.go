// Squadlink - Squad Server Lobby Resolution and Status Publishing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/squadlink

package config

import (
	"strings"
	"testing"
	"time"
)

// setRequiredEnv provides the credentials Load refuses to start without.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("BM_TOKEN", "bm-test-token")
	t.Setenv("STEAM_API_KEY", "steam-test-key")
	t.Setenv("DISCORD_TOKEN", "discord-test-token")
	t.Setenv("DISCORD_CHANNEL_ID", "123456789")
	// Make sure a config.yaml in the working directory cannot leak in.
	t.Setenv("CONFIG_PATH", "/nonexistent/config.yaml")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.BattleMetrics.BaseURL != "https://api.battlemetrics.com" {
		t.Errorf("BM base URL = %q", cfg.BattleMetrics.BaseURL)
	}
	if cfg.BattleMetrics.Token != "bm-test-token" {
		t.Errorf("BM token = %q", cfg.BattleMetrics.Token)
	}
	if cfg.Steam.ChunkDelay != 200*time.Millisecond {
		t.Errorf("chunk delay = %v", cfg.Steam.ChunkDelay)
	}
	if cfg.Resolver.Interval != time.Minute {
		t.Errorf("resolve interval = %v", cfg.Resolver.Interval)
	}
	if cfg.Resolver.SampleSize != 20 {
		t.Errorf("sample size = %d", cfg.Resolver.SampleSize)
	}
	if cfg.Resolver.AppID != "393380" {
		t.Errorf("app id = %q", cfg.Resolver.AppID)
	}
	if cfg.Files.Slots != 4 {
		t.Errorf("slots = %d", cfg.Files.Slots)
	}
	if cfg.Snapshot.MaxPlayers != 100 {
		t.Errorf("max players = %d", cfg.Snapshot.MaxPlayers)
	}
	if !cfg.Discord.Enabled {
		t.Error("discord should default to enabled")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LOBBY_SAMPLE_SIZE", "35")
	t.Setenv("RESOLVE_INTERVAL", "2m")
	t.Setenv("SNAPSHOT_INTERVAL", "90s")
	t.Setenv("SERVER_SLOTS", "6")
	t.Setenv("MAX_PLAYERS", "80")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("SERVERS_FILE", "/data/bm-servers.txt")
	t.Setenv("DISCORD_SWEEP_INTERVAL", "15m")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Resolver.SampleSize != 35 {
		t.Errorf("sample size = %d, want 35", cfg.Resolver.SampleSize)
	}
	if cfg.Resolver.Interval != 2*time.Minute {
		t.Errorf("resolve interval = %v, want 2m", cfg.Resolver.Interval)
	}
	if cfg.Snapshot.Interval != 90*time.Second {
		t.Errorf("snapshot interval = %v, want 90s", cfg.Snapshot.Interval)
	}
	if cfg.Files.Slots != 6 {
		t.Errorf("slots = %d, want 6", cfg.Files.Slots)
	}
	if cfg.Snapshot.MaxPlayers != 80 {
		t.Errorf("max players = %d, want 80", cfg.Snapshot.MaxPlayers)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Files.Servers != "/data/bm-servers.txt" {
		t.Errorf("servers file = %q", cfg.Files.Servers)
	}
	if cfg.Discord.SweepInterval != 15*time.Minute {
		t.Errorf("sweep interval = %v, want 15m", cfg.Discord.SweepInterval)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q", cfg.Logging.Level)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[0] != "https://a.example.com" {
		t.Errorf("cors origins = %v", cfg.Server.CORSOrigins)
	}
}

func TestLoadLegacyEnvAliases(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LINKS_SAMPLE_SIZE", "12")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Resolver.SampleSize != 12 {
		t.Errorf("legacy alias not mapped, sample size = %d", cfg.Resolver.SampleSize)
	}
}

func TestLoadMissingBMToken(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BM_TOKEN", "")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() should fail without BM_TOKEN")
	}
	if !strings.Contains(err.Error(), "BM_TOKEN") {
		t.Errorf("error should name the missing variable: %v", err)
	}
}

func TestLoadMissingDiscordCredentials(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("DISCORD_CHANNEL_ID", "")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() should fail with Discord enabled but unconfigured")
	}
	if !strings.Contains(err.Error(), "DISCORD_TOKEN") || !strings.Contains(err.Error(), "DISCORD_CHANNEL_ID") {
		t.Errorf("error should name both missing variables: %v", err)
	}
}

func TestLoadDiscordDisabledSkipsCredentials(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("DISCORD_CHANNEL_ID", "")
	t.Setenv("DISCORD_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with discord disabled: %v", err)
	}
	if cfg.Discord.Enabled {
		t.Error("discord should be disabled")
	}
}

func TestClampSampleSize(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"0", 1},
		{"-5", 1},
		{"100", 100},
		{"250", 100},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv("LOBBY_SAMPLE_SIZE", tt.in)
			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.Resolver.SampleSize != tt.want {
				t.Errorf("sample size = %d, want %d", cfg.Resolver.SampleSize, tt.want)
			}
		})
	}
}

func TestClampTrimsTrailingSlashes(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BM_BASE_URL", "https://api.battlemetrics.com/")
	t.Setenv("DISCORD_JOIN_BASE", "https://squad.example.com/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if strings.HasSuffix(cfg.BattleMetrics.BaseURL, "/") {
		t.Errorf("BM base URL not trimmed: %q", cfg.BattleMetrics.BaseURL)
	}
	if strings.HasSuffix(cfg.Discord.JoinBase, "/") {
		t.Errorf("join base not trimmed: %q", cfg.Discord.JoinBase)
	}
}

func TestValidateRejectsBadPort(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("HTTP_PORT", "70000")

	if _, err := Load(); err == nil {
		t.Fatal("Load() should reject out-of-range port")
	}
}

func TestEnvTransformIgnoresUnknownKeys(t *testing.T) {
	if got := envTransformFunc("PATH"); got != "" {
		t.Errorf("unknown env vars must be skipped, PATH mapped to %q", got)
	}
	if got := envTransformFunc("BM_TOKEN"); got != "battlemetrics.token" {
		t.Errorf("BM_TOKEN mapped to %q", got)
	}
}
