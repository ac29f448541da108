// Squadlink - Squad Server Lobby Resolution and Status Publishing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/squadlink

// Package metrics provides Prometheus metrics collection and export.
//
// Metrics are exposed at the /metrics endpoint in Prometheus text format.
//
// Available metrics:
//
// Resolution pipeline:
//   - resolve_cycle_duration_seconds: duration of link-resolution cycles (histogram)
//   - resolve_links_published: links published in the last cycle (gauge)
//   - resolve_last_success_timestamp: unix time of last successful cycle (gauge)
//   - resolve_errors_total: per-slot resolution failures (counter, label: reason)
//
// Snapshot loop:
//   - snapshot_cycle_duration_seconds: duration of status snapshot cycles (histogram)
//   - snapshot_last_success_timestamp: unix time of last snapshot write (gauge)
//   - snapshot_errors_total: per-slot snapshot failures (counter)
//
// Upstream APIs:
//   - upstream_requests_total: API requests (counter, labels: source, outcome)
//   - circuit_breaker_state: 0=closed, 1=half-open, 2=open (gauge, label: name)
//   - circuit_breaker_transitions_total: state transitions (counter, labels: name, from, to)
//
// Chat publisher:
//   - chat_cycles_total: publish cycles (counter, label: outcome — ok, skipped, error)
//   - chat_operations_total: channel operations (counter, labels: op, outcome)
//   - chat_messages_live: currently tracked live messages (gauge)
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Resolution pipeline metrics
	ResolveCycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "resolve_cycle_duration_seconds",
			Help:    "Duration of link-resolution cycles in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	ResolveLinksPublished = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "resolve_links_published",
			Help: "Number of non-empty join links published in the last cycle",
		},
	)

	ResolveLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "resolve_last_success_timestamp",
			Help: "Unix timestamp of the last successful resolution cycle",
		},
	)

	ResolveErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resolve_errors_total",
			Help: "Total per-slot resolution failures",
		},
		[]string{"reason"}, // "presence", "identity", "publish"
	)

	// Snapshot loop metrics
	SnapshotCycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "snapshot_cycle_duration_seconds",
			Help:    "Duration of status snapshot cycles in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	SnapshotLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "snapshot_last_success_timestamp",
			Help: "Unix timestamp of the last snapshot write",
		},
	)

	SnapshotErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "snapshot_errors_total",
			Help: "Total per-slot snapshot fetch failures",
		},
	)

	// Upstream API metrics
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Total upstream API requests",
		},
		[]string{"source", "outcome"}, // source: "battlemetrics", "steam"; outcome: "success", "failure", "rejected"
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Chat publisher metrics
	ChatCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_cycles_total",
			Help: "Total chat publish cycles",
		},
		[]string{"outcome"}, // "ok", "skipped", "error"
	)

	ChatOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_operations_total",
			Help: "Total chat channel operations",
		},
		[]string{"op", "outcome"}, // op: "send", "delete", "fetch", "sweep"
	)

	ChatMessagesLive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_messages_live",
			Help: "Number of live status messages currently tracked",
		},
	)
)
