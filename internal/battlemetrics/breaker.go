// Squadlink - Squad Server Lobby Resolution and Status Publishing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/squadlink

package battlemetrics

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/squadlink/internal/logging"
	"github.com/tomtom215/squadlink/internal/metrics"
)

// BreakerClient wraps a BattleMetrics client with a circuit breaker.
// The breaker prevents hammering BattleMetrics while it is unavailable or
// slow; rejected calls surface immediately as cycle-local failures instead
// of queueing behind timeouts.
//
// DETERMINISM NOTE: The circuit breaker uses real time (via sony/gobreaker)
// for its interval and timeout calculations. Tests should mock the wrapped
// client rather than the breaker.
type BreakerClient struct {
	client ClientInterface
	cb     *gobreaker.CircuitBreaker[*ServerDocument]
	name   string
}

// Ensure BreakerClient implements ClientInterface.
var _ ClientInterface = (*BreakerClient)(nil)

// NewBreakerClient wraps client with circuit breaker protection.
// Breaker configuration:
//   - Max 3 concurrent requests in half-open state
//   - 1 minute measurement window
//   - 2 minute timeout before attempting recovery
//   - Opens after 60% failure rate with minimum 10 requests
func NewBreakerClient(client ClientInterface) *BreakerClient {
	cbName := "battlemetrics-api"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[*ServerDocument](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		// Opens when failure rate >= 60% with minimum 10 requests.
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6
			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("Opening battlemetrics circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)
			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("Battlemetrics circuit state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &BreakerClient{
		client: client,
		cb:     cb,
		name:   cbName,
	}
}

// GetServer fetches aggregate server attributes through the breaker.
func (b *BreakerClient) GetServer(ctx context.Context, serverID string) (*ServerDocument, error) {
	return b.execute(func() (*ServerDocument, error) {
		return b.client.GetServer(ctx, serverID)
	})
}

// GetServerPresence fetches the presence document through the breaker.
func (b *BreakerClient) GetServerPresence(ctx context.Context, serverID string) (*ServerDocument, error) {
	return b.execute(func() (*ServerDocument, error) {
		return b.client.GetServerPresence(ctx, serverID)
	})
}

// execute wraps one API call with circuit breaker protection.
func (b *BreakerClient) execute(fn func() (*ServerDocument, error)) (*ServerDocument, error) {
	doc, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.UpstreamRequests.WithLabelValues("battlemetrics", "rejected").Inc()
			logging.Warn().Err(err).Msg("Battlemetrics request rejected by circuit breaker")
		}
		return nil, err
	}
	return doc, nil
}

// stateToFloat converts circuit breaker state to a numeric value for metrics.
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to a string for logging.
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
