// Squadlink - Squad Server Lobby Resolution and Status Publishing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/squadlink

// Package snapshot publishes the per-slot server status document: player
// count, public queue, current map and round playtime, refreshed on a fixed
// schedule from the server-monitoring API.
package snapshot

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/squadlink/internal/battlemetrics"
	"github.com/tomtom215/squadlink/internal/config"
	"github.com/tomtom215/squadlink/internal/metrics"
	"github.com/tomtom215/squadlink/internal/retry"
	"github.com/tomtom215/squadlink/internal/store"
)

// Snapshotter polls every monitored slot and replaces the snapshot file.
type Snapshotter struct {
	bm      battlemetrics.ClientInterface
	cfg     *config.Config
	retrier retry.Policy
	logger  zerolog.Logger
}

// NewSnapshotter wires a snapshotter against the server-monitoring client.
func NewSnapshotter(bm battlemetrics.ClientInterface, cfg *config.Config, logger zerolog.Logger) *Snapshotter {
	return &Snapshotter{
		bm:      bm,
		cfg:     cfg,
		retrier: retry.NewPolicy(3, 500*time.Millisecond),
		logger:  logger.With().Str("component", "snapshotter").Logger(),
	}
}

// Cycle polls every slot once and atomically replaces the snapshot file
// with a fresh document. A failed slot degrades to all-null fields; the
// document is always complete, always freshly timestamped, and never
// patched in place.
func (s *Snapshotter) Cycle(ctx context.Context) error {
	start := time.Now()

	ids, err := store.ReadServerIDs(s.cfg.Files.Servers, s.cfg.Files.Slots)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Server list unavailable, all slots report unknown this cycle")
	}

	snap := &store.Snapshot{
		UpdatedAt: time.Now().UTC(),
		Results:   make([]store.SlotStatus, len(ids)),
	}
	for slot, serverID := range ids {
		snap.Results[slot] = s.pollSlot(ctx, slot, serverID)
	}

	if err := store.WriteSnapshot(s.cfg.Files.Players, snap); err != nil {
		metrics.SnapshotErrors.Inc()
		return fmt.Errorf("failed to publish snapshot: %w", err)
	}

	metrics.SnapshotCycleDuration.Observe(time.Since(start).Seconds())
	metrics.SnapshotLastSuccess.SetToCurrentTime()

	s.logger.Info().
		Int("slots", len(ids)).
		Dur("elapsed", time.Since(start)).
		Msg("Snapshot cycle complete")
	return nil
}

// pollSlot fetches one server and maps it to a slot status. Disabled slots
// and failed lookups report all-null fields.
func (s *Snapshotter) pollSlot(ctx context.Context, slot int, serverID string) store.SlotStatus {
	status := store.SlotStatus{Idx: slot}
	if serverID == "" {
		return status
	}

	var doc *battlemetrics.ServerDocument
	err := s.retrier.Do(ctx, "snapshot server fetch", func() error {
		var ferr error
		doc, ferr = s.bm.GetServer(ctx, serverID)
		return ferr
	})
	if err != nil {
		metrics.SnapshotErrors.Inc()
		s.logger.Warn().Err(err).Int("slot", slot).Str("server_id", serverID).Msg("Status lookup failed")
		return status
	}
	if doc == nil || doc.Data == nil || doc.Data.Attributes == nil {
		return status
	}

	attrs := doc.Data.Attributes
	status.Players = clampCount(attrs.Players, s.cfg.Snapshot.MaxPlayers)
	if d := attrs.Details; d != nil {
		status.Queue = clampCount(d.PublicQueue, s.cfg.Snapshot.MaxPlayers)
		status.PlayTimeSec = nonNegative(d.PlayTime)
		if d.Map != nil && *d.Map != "" {
			m := *d.Map
			status.Map = &m
		}
	}
	return status
}

// clampCount validates a reported headcount: anything outside [0, max],
// NaN or infinite is implausible third-party data and reported as unknown
// rather than clamped to a believable-looking number. The range check runs
// on the float itself; converting an out-of-range float64 to int is
// unspecified in Go.
func clampCount(v *float64, max int) *int {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	if *v < 0 || *v > float64(max) {
		return nil
	}
	n := int(*v)
	return &n
}

func nonNegative(v *float64) *int {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	if *v < 0 || *v > math.MaxInt32 {
		return nil
	}
	n := int(*v)
	return &n
}
