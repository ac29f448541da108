// Squadlink - Squad Server Lobby Resolution and Status Publishing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/squadlink

// Package config provides layered configuration loading for Squadlink.
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (see the mapping table in koanf.go)
//   - Config file (config.yaml)
//   - Built-in defaults
//
// All numeric knobs are validated and clamped before use; missing required
// credentials are fatal at startup with the missing keys named.
package config

import "time"

// Config is the root configuration for the Squadlink daemon.
type Config struct {
	BattleMetrics BattleMetricsConfig `koanf:"battlemetrics"`
	Steam         SteamConfig         `koanf:"steam"`
	Resolver      ResolverConfig      `koanf:"resolver"`
	Snapshot      SnapshotConfig      `koanf:"snapshot"`
	Files         FilesConfig         `koanf:"files"`
	Discord       DiscordConfig       `koanf:"discord"`
	Server        ServerConfig        `koanf:"server"`
	Logging       LoggingConfig       `koanf:"logging"`
}

// BattleMetricsConfig configures the server-monitoring API client.
type BattleMetricsConfig struct {
	// BaseURL of the BattleMetrics API.
	BaseURL string `koanf:"base_url"`

	// Token is the bearer token for authenticated requests. Required.
	Token string `koanf:"token"`

	// Timeout for a single HTTP request.
	Timeout time.Duration `koanf:"timeout"`
}

// SteamConfig configures the platform identity API client.
type SteamConfig struct {
	// BaseURL of the Steam Web API.
	BaseURL string `koanf:"base_url"`

	// APIKey for ISteamUser requests. Required for lobby resolution.
	APIKey string `koanf:"api_key"`

	// Timeout for a single HTTP request.
	Timeout time.Duration `koanf:"timeout"`

	// ChunkDelay is the polite pause between successive batched
	// GetPlayerSummaries calls.
	ChunkDelay time.Duration `koanf:"chunk_delay"`
}

// ResolverConfig configures the lobby-resolution pipeline.
type ResolverConfig struct {
	// Interval between resolution cycles.
	Interval time.Duration `koanf:"interval"`

	// SampleSize bounds how many public lobby-carrying profiles are
	// considered per server. Clamped to [1,100].
	SampleSize int `koanf:"sample_size"`

	// AppID is the Steam application identifier used when synthesizing
	// steam://joinlobby links. Defaults to Squad.
	AppID string `koanf:"app_id"`
}

// SnapshotConfig configures the status snapshot loop.
type SnapshotConfig struct {
	// Interval between snapshot cycles.
	Interval time.Duration `koanf:"interval"`

	// MaxPlayers is the upper clamp for numeric status fields.
	MaxPlayers int `koanf:"max_players"`
}

// FilesConfig locates the durable inputs and outputs.
type FilesConfig struct {
	// Servers is the static list of monitored server IDs, one per line.
	Servers string `koanf:"servers"`

	// Links is the published join-link file, one line per slot.
	Links string `koanf:"links"`

	// Players is the published status snapshot document.
	Players string `koanf:"players"`

	// Slots is the number of monitored server slots.
	Slots int `koanf:"slots"`
}

// DiscordConfig configures the chat publisher.
type DiscordConfig struct {
	// Enabled toggles the Discord publisher. When false, token and
	// channel are not required.
	Enabled bool `koanf:"enabled"`

	// Token is the bot token. Required when enabled.
	Token string `koanf:"token"`

	// ChannelID is the target channel. Required when enabled.
	ChannelID string `koanf:"channel_id"`

	// JoinBase is the public base URL for join redirect pages
	// (e.g. http://host:8080 -> http://host:8080/s1c/).
	JoinBase string `koanf:"join_base"`

	// Interval between publish cycles.
	Interval time.Duration `koanf:"interval"`

	// SweepInterval is the minimum spacing between deep channel sweeps.
	SweepInterval time.Duration `koanf:"sweep_interval"`

	// OpDelay is the pacing pause between successive destructive
	// channel operations (delete, send).
	OpDelay time.Duration `koanf:"op_delay"`
}

// ServerConfig configures the HTTP server that feeds the dashboard.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`

	// StaticDir optionally serves the dashboard assets. Empty disables it.
	StaticDir string `koanf:"static_dir"`

	// CORSOrigins allowed to poll the published files.
	CORSOrigins []string `koanf:"cors_origins"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		BattleMetrics: BattleMetricsConfig{
			BaseURL: "https://api.battlemetrics.com",
			Token:   "",
			Timeout: 30 * time.Second,
		},
		Steam: SteamConfig{
			BaseURL:    "https://api.steampowered.com",
			APIKey:     "",
			Timeout:    30 * time.Second,
			ChunkDelay: 200 * time.Millisecond,
		},
		Resolver: ResolverConfig{
			Interval:   time.Minute,
			SampleSize: 20,
			AppID:      "393380", // Squad
		},
		Snapshot: SnapshotConfig{
			Interval:   time.Minute,
			MaxPlayers: 100,
		},
		Files: FilesConfig{
			Servers: "bm-servers.txt",
			Links:   "links.txt",
			Players: "players.json",
			Slots:   4,
		},
		Discord: DiscordConfig{
			Enabled:       true,
			Token:         "",
			ChannelID:     "",
			JoinBase:      "http://localhost:8080",
			Interval:      time.Minute,
			SweepInterval: 10 * time.Minute,
			OpDelay:       250 * time.Millisecond,
		},
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			Timeout:     30 * time.Second,
			StaticDir:   "",
			CORSOrigins: []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}
