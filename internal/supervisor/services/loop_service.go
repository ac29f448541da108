// Squadlink - Squad Server Lobby Resolution and Status Publishing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/squadlink

// Package services wraps the daemon's components as suture services.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/squadlink/internal/logging"
)

// Cycler is one schedulable unit of work: a resolve, snapshot or publish
// cycle. A Cycle error is logged and the loop keeps ticking; loops only
// stop when their context does.
type Cycler interface {
	Cycle(ctx context.Context) error
}

// LoopService runs a Cycler immediately and then on a fixed interval.
//
// A slow cycle delays the next tick rather than overlapping it: the loop
// is strictly sequential, so components that also guard against overlap
// (the publisher) only need that guard for restarts, not steady state.
type LoopService struct {
	cycler   Cycler
	interval time.Duration
	name     string
}

// NewLoopService wraps a Cycler as a supervised interval loop.
func NewLoopService(cycler Cycler, interval time.Duration, name string) *LoopService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &LoopService{
		cycler:   cycler,
		interval: interval,
		name:     name,
	}
}

// Serve implements suture.Service.
func (l *LoopService) Serve(ctx context.Context) error {
	logger := logging.With().Str("service", l.name).Logger()

	l.runOnce(ctx, logger)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.runOnce(ctx, logger)
		}
	}
}

func (l *LoopService) runOnce(ctx context.Context, logger zerolog.Logger) {
	if ctx.Err() != nil {
		return
	}
	if err := l.cycler.Cycle(ctx); err != nil && ctx.Err() == nil {
		logger.Error().Err(err).Msg("Cycle failed")
	}
}

// String implements fmt.Stringer for suture's event log.
func (l *LoopService) String() string {
	return l.name
}
