// Squadlink - Squad Server Lobby Resolution and Status Publishing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/squadlink

// Package main is the entry point for the Squadlink daemon.
//
// Squadlink watches a fixed set of Squad game servers and keeps two
// surfaces in sync with them:
//
//   - a web dashboard fed by two durable files, links.txt (one joinable
//     steam://joinlobby link per server) and players.json (per-server
//     status: players, queue, map, round time)
//   - a Discord channel holding one status embed per server
//
// Join links cannot be read off the servers directly. They are resolved by
// cross-referencing BattleMetrics (who is on the server) with the Steam Web
// API (which lobby those players are in) and electing the lobby most of the
// sampled players share.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins): environment variables, config.yaml, built-in defaults.
// Required: BM_TOKEN and STEAM_API_KEY, plus DISCORD_TOKEN and
// DISCORD_CHANNEL_ID unless DISCORD_ENABLED=false.
//
// # Signal Handling
//
// The daemon shuts down gracefully on SIGINT and SIGTERM: loops finish
// their current cycle, the HTTP server drains in-flight requests (10s
// timeout), and the chat gateway is closed.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/squadlink/internal/battlemetrics"
	"github.com/tomtom215/squadlink/internal/config"
	"github.com/tomtom215/squadlink/internal/discord"
	"github.com/tomtom215/squadlink/internal/logging"
	"github.com/tomtom215/squadlink/internal/resolve"
	"github.com/tomtom215/squadlink/internal/snapshot"
	"github.com/tomtom215/squadlink/internal/steam"
	"github.com/tomtom215/squadlink/internal/supervisor"
	"github.com/tomtom215/squadlink/internal/supervisor/services"
	"github.com/tomtom215/squadlink/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Default logger; config is not available yet.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Int("slots", cfg.Files.Slots).
		Str("servers_file", cfg.Files.Servers).
		Bool("discord_enabled", cfg.Discord.Enabled).
		Msg("Starting Squadlink")

	// Upstream clients. BattleMetrics goes through a circuit breaker so a
	// dead API stops burning the rate-limit budget between cycles.
	bmClient := battlemetrics.NewBreakerClient(battlemetrics.NewClient(&cfg.BattleMetrics))
	steamClient := steam.NewClient(&cfg.Steam)

	logger := logging.Logger()
	resolver := resolve.NewResolver(bmClient, steamClient, cfg, logger)
	snapshotter := snapshot.NewSnapshotter(bmClient, cfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())

	tree.AddPipelineService(services.NewLoopService(resolver, cfg.Resolver.Interval, "resolve-loop"))
	tree.AddPipelineService(services.NewLoopService(snapshotter, cfg.Snapshot.Interval, "snapshot-loop"))

	if cfg.Discord.Enabled {
		session, err := discord.NewSession(cfg.Discord.Token)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to create Discord session")
		}
		if err := session.Open(); err != nil {
			logging.Fatal().Err(err).Msg("Failed to connect to Discord gateway")
		}
		defer func() {
			if err := session.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing Discord session")
			}
		}()

		publisher := discord.NewPublisher(session, cfg, logger)
		tree.AddPublishService(services.NewLoopService(publisher, cfg.Discord.Interval, "publish-loop"))
		logging.Info().Str("channel_id", cfg.Discord.ChannelID).Msg("Discord publisher enabled")
	}

	router := web.NewRouter(cfg, logger)
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Handler(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Squadlink stopped gracefully")
}
