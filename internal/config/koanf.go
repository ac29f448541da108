// Squadlink - Squad Server Lobby Resolution and Status Publishing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/squadlink

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order
// of priority. The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/squadlink/config.yaml",
	"/etc/squadlink/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// The returned configuration has already been validated and clamped.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// Transform environment variable names to koanf paths:
	// BM_TOKEN -> battlemetrics.token
	// LOBBY_SAMPLE_SIZE -> resolver.sample_size
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	cfg.clamp()

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as
// comma-separated slices when they arrive as env strings.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields. Env vars come in as strings, but the config expects
// slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from YAML file or defaults)
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc transforms environment variable names to koanf config
// paths. The mapping keeps compatibility with the env names the cron scripts
// and bot historically used (BM_TOKEN, STEAM_API_KEY, LOBBY_SAMPLE_SIZE,
// DISCORD_*).
//
// Examples:
//   - BM_TOKEN -> battlemetrics.token
//   - STEAM_API_KEY -> steam.api_key
//   - LOBBY_SAMPLE_SIZE -> resolver.sample_size
//   - DISCORD_CHANNEL_ID -> discord.channel_id
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// BattleMetrics mappings
		"bm_base_url":          "battlemetrics.base_url",
		"bm_token":             "battlemetrics.token",
		"battlemetrics_token":  "battlemetrics.token",
		"bm_timeout":           "battlemetrics.timeout",

		// Steam mappings
		"steam_base_url":    "steam.base_url",
		"steam_api_key":     "steam.api_key",
		"steam_key":         "steam.api_key",
		"steam_timeout":     "steam.timeout",
		"steam_chunk_delay": "steam.chunk_delay",

		// Resolver mappings
		"resolve_interval":  "resolver.interval",
		"lobby_sample_size": "resolver.sample_size",
		"links_sample_size": "resolver.sample_size",
		"steam_app_id":      "resolver.app_id",

		// Snapshot mappings
		"snapshot_interval": "snapshot.interval",
		"max_players":       "snapshot.max_players",

		// File mappings
		"servers_file": "files.servers",
		"links_file":   "files.links",
		"players_file": "files.players",
		"server_slots": "files.slots",

		// Discord mappings
		"discord_enabled":        "discord.enabled",
		"discord_token":          "discord.token",
		"discord_channel_id":     "discord.channel_id",
		"discord_join_base":      "discord.join_base",
		"discord_interval":       "discord.interval",
		"discord_sweep_interval": "discord.sweep_interval",
		"discord_op_delay":       "discord.op_delay",

		// Server mappings
		"http_host":    "server.host",
		"http_port":    "server.port",
		"http_timeout": "server.timeout",
		"static_dir":   "server.static_dir",
		"cors_origins": "server.cors_origins",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them.
	// This prevents random environment variables from polluting config.
	return ""
}
