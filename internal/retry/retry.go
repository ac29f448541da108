// Squadlink - Squad Server Lobby Resolution and Status Publishing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/squadlink

// Package retry provides the single retry/backoff policy used for every
// network call in Squadlink.
//
// A Policy bundles the three decisions that used to be scattered across call
// sites: how failures are classified (retry only transients), how many
// attempts are allowed, and how long to wait between them (exponential,
// doubling from BaseDelay). Non-transient failures propagate immediately
// without consuming attempts.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/squadlink/internal/logging"
)

// Classifier reports whether an error is worth retrying.
type Classifier func(error) bool

// Policy is a reusable retry policy. The zero value is not usable; construct
// with NewPolicy or fill all fields.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// BaseDelay is the wait after the first failure; it doubles after
	// each subsequent failure.
	BaseDelay time.Duration

	// Classify decides whether a failure is transient. A nil classifier
	// retries everything.
	Classify Classifier
}

// NewPolicy constructs a Policy with the transient-network classifier.
func NewPolicy(maxAttempts int, baseDelay time.Duration) Policy {
	return Policy{
		MaxAttempts: maxAttempts,
		BaseDelay:   baseDelay,
		Classify:    IsTransient,
	}
}

// Do executes fn under the policy. The context is used for cancellation
// during backoff waits; if it is canceled mid-wait, Do returns immediately
// with the context error.
//
// The op string names the operation for log lines only.
func (p Policy) Do(ctx context.Context, op string, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := p.BaseDelay

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err = fn()
		if err == nil {
			return nil
		}

		if p.Classify != nil && !p.Classify(err) {
			// Data-level failure: retrying won't change the answer.
			return err
		}

		if attempt == attempts {
			break
		}

		logging.Warn().
			Err(err).
			Str("op", op).
			Int("attempt", attempt).
			Int("max_attempts", attempts).
			Dur("delay", delay).
			Msg("Transient failure, retrying")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
	}

	return fmt.Errorf("%s: max retry attempts reached: %w", op, err)
}
