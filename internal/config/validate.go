// Squadlink - Squad Server Lobby Resolution and Status Publishing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/squadlink

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that required configuration is present and valid.
// Missing required credentials are reported with the environment variable
// names an operator would set.
func (c *Config) Validate() error {
	if err := c.validateBattleMetrics(); err != nil {
		return err
	}
	if err := c.validateSteam(); err != nil {
		return err
	}
	if err := c.validateDiscord(); err != nil {
		return err
	}
	if err := c.validateFiles(); err != nil {
		return err
	}
	return c.validateServer()
}

func (c *Config) validateBattleMetrics() error {
	if c.BattleMetrics.Token == "" {
		return fmt.Errorf("BM_TOKEN is required")
	}
	if err := validateHTTPURL(c.BattleMetrics.BaseURL, "BM_BASE_URL"); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSteam() error {
	if c.Steam.APIKey == "" {
		return fmt.Errorf("STEAM_API_KEY is required")
	}
	if err := validateHTTPURL(c.Steam.BaseURL, "STEAM_BASE_URL"); err != nil {
		return err
	}
	return nil
}

// validateDiscord validates Discord configuration (only if enabled).
// The publisher is optional; file publishing works without it.
func (c *Config) validateDiscord() error {
	if !c.Discord.Enabled {
		return nil
	}
	var missing []string
	if c.Discord.Token == "" {
		missing = append(missing, "DISCORD_TOKEN")
	}
	if c.Discord.ChannelID == "" {
		missing = append(missing, "DISCORD_CHANNEL_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s required when DISCORD_ENABLED=true", strings.Join(missing, ", "))
	}
	return validateHTTPURL(c.Discord.JoinBase, "DISCORD_JOIN_BASE")
}

func (c *Config) validateFiles() error {
	if c.Files.Servers == "" {
		return fmt.Errorf("SERVERS_FILE must not be empty")
	}
	if c.Files.Links == "" {
		return fmt.Errorf("LINKS_FILE must not be empty")
	}
	if c.Files.Players == "" {
		return fmt.Errorf("PLAYERS_FILE must not be empty")
	}
	if c.Files.Slots < 1 {
		return fmt.Errorf("SERVER_SLOTS must be at least 1, got %d", c.Files.Slots)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be in [1,65535], got %d", c.Server.Port)
	}
	return nil
}

// clamp normalizes tunables that degrade gracefully instead of failing
// validation: out-of-range values are pulled back into their documented
// bounds.
func (c *Config) clamp() {
	if c.Resolver.SampleSize < 1 {
		c.Resolver.SampleSize = 1
	}
	if c.Resolver.SampleSize > 100 {
		c.Resolver.SampleSize = 100
	}
	if c.Snapshot.MaxPlayers < 1 {
		c.Snapshot.MaxPlayers = 100
	}
	if c.Resolver.Interval <= 0 {
		c.Resolver.Interval = defaultConfig().Resolver.Interval
	}
	if c.Snapshot.Interval <= 0 {
		c.Snapshot.Interval = defaultConfig().Snapshot.Interval
	}
	if c.Discord.Interval <= 0 {
		c.Discord.Interval = defaultConfig().Discord.Interval
	}
	if c.Discord.SweepInterval <= 0 {
		c.Discord.SweepInterval = defaultConfig().Discord.SweepInterval
	}
	c.BattleMetrics.BaseURL = strings.TrimSuffix(c.BattleMetrics.BaseURL, "/")
	c.Steam.BaseURL = strings.TrimSuffix(c.Steam.BaseURL, "/")
	c.Discord.JoinBase = strings.TrimSuffix(c.Discord.JoinBase, "/")
}

// validateHTTPURL checks that a URL is parseable and uses http or https.
func validateHTTPURL(raw, name string) error {
	if raw == "" {
		return fmt.Errorf("%s must not be empty", name)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is invalid: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", name, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s is missing a host", name)
	}
	return nil
}
