// Squadlink - Squad Server Lobby Resolution and Status Publishing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/squadlink

package resolve

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/squadlink/internal/battlemetrics"
	"github.com/tomtom215/squadlink/internal/config"
	"github.com/tomtom215/squadlink/internal/metrics"
	"github.com/tomtom215/squadlink/internal/retry"
	"github.com/tomtom215/squadlink/internal/steam"
	"github.com/tomtom215/squadlink/internal/store"
)

// Resolver runs the link-resolution cycle: for every monitored slot it
// samples the players currently on the server, resolves their profiles and
// elects the lobby link, then republishes the whole link file.
type Resolver struct {
	bm      battlemetrics.ClientInterface
	steam   steam.ClientInterface
	cfg     *config.Config
	retrier retry.Policy
	logger  zerolog.Logger
}

// NewResolver wires a resolver against the upstream clients.
func NewResolver(bm battlemetrics.ClientInterface, st steam.ClientInterface, cfg *config.Config, logger zerolog.Logger) *Resolver {
	return &Resolver{
		bm:      bm,
		steam:   st,
		cfg:     cfg,
		retrier: retry.NewPolicy(3, 500*time.Millisecond),
		logger:  logger.With().Str("component", "resolver").Logger(),
	}
}

// Cycle resolves every slot once and atomically replaces the link file.
// Slots are processed sequentially in slot order; any upstream failure
// degrades that slot to an empty link and never aborts the cycle. The
// output always has exactly one line per slot.
func (r *Resolver) Cycle(ctx context.Context) error {
	start := time.Now()

	ids, err := store.ReadServerIDs(r.cfg.Files.Servers, r.cfg.Files.Slots)
	if err != nil {
		r.logger.Warn().Err(err).Msg("Server list unavailable, all slots disabled this cycle")
	}

	links := make([]string, len(ids))
	published := 0
	for slot, serverID := range ids {
		if serverID == "" {
			continue
		}
		link := r.resolveSlot(ctx, slot, serverID)
		if link != "" {
			links[slot] = link
			published++
		}
	}

	if err := store.WriteLinks(r.cfg.Files.Links, links); err != nil {
		metrics.ResolveErrors.WithLabelValues("publish").Inc()
		return fmt.Errorf("failed to publish links: %w", err)
	}

	metrics.ResolveCycleDuration.Observe(time.Since(start).Seconds())
	metrics.ResolveLinksPublished.Set(float64(published))
	metrics.ResolveLastSuccess.SetToCurrentTime()

	r.logger.Info().
		Int("slots", len(ids)).
		Int("links", published).
		Dur("elapsed", time.Since(start)).
		Msg("Resolve cycle complete")
	return nil
}

// resolveSlot resolves one slot to a link, or "" when no lobby is electable.
func (r *Resolver) resolveSlot(ctx context.Context, slot int, serverID string) string {
	logger := r.logger.With().Int("slot", slot).Str("server_id", serverID).Logger()

	var doc *battlemetrics.ServerDocument
	err := r.retrier.Do(ctx, "presence fetch", func() error {
		var ferr error
		doc, ferr = r.bm.GetServerPresence(ctx, serverID)
		return ferr
	})
	if err != nil {
		metrics.ResolveErrors.WithLabelValues("presence").Inc()
		logger.Warn().Err(err).Msg("Presence lookup failed")
		return ""
	}

	presence := battlemetrics.ExtractPresence(doc)
	if len(presence) == 0 {
		logger.Debug().Msg("No identifiable players on server")
		return ""
	}

	// Every present player is looked up; the Steam client batches under the
	// hood. The sample cap applies to ballots, not to presence: a run of
	// private profiles at the head must not shadow a votable lobby later in
	// the list.
	profiles, err := r.steam.GetPlayerSummaries(ctx, presence)
	if err != nil {
		metrics.ResolveErrors.WithLabelValues("identity").Inc()
		logger.Warn().Err(err).Msg("Profile lookup failed")
		return ""
	}

	link := ChooseLobbyLink(presence, profiles, r.cfg.Resolver.AppID, r.cfg.Resolver.SampleSize)
	if link == "" {
		logger.Debug().Int("present", len(presence)).Msg("No electable lobby among present players")
	} else {
		logger.Debug().Int("present", len(presence)).Msg("Lobby link resolved")
	}
	return link
}
