// Squadlink - Squad Server Lobby Resolution and Status Publishing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/squadlink

package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/tomtom215/squadlink/internal/config"
	"github.com/tomtom215/squadlink/internal/metrics"
	"github.com/tomtom215/squadlink/internal/retry"
	"github.com/tomtom215/squadlink/internal/store"
)

// sweepFetchLimit bounds how much channel history a deep sweep inspects.
const sweepFetchLimit = 50

// Publisher maintains the status embeds in one channel. Contract: after any
// cycle the channel holds at most one live message per slot, even across a
// crash-restart — the remembered ids from the previous cycle are deleted
// first, and a periodic deep sweep removes anything this bot posted that
// the remembered set lost track of.
type Publisher struct {
	session Session
	cfg     *config.Config
	logger  zerolog.Logger

	msgRetry  retry.Policy
	chanRetry retry.Policy

	mu      sync.Mutex
	running bool

	botID     string
	liveIDs   []string
	lastSweep time.Time

	now func() time.Time
}

// NewPublisher wires a publisher against a chat session.
func NewPublisher(session Session, cfg *config.Config, logger zerolog.Logger) *Publisher {
	return &Publisher{
		session:   session,
		cfg:       cfg,
		logger:    logger.With().Str("component", "publisher").Logger(),
		msgRetry:  retry.Policy{MaxAttempts: 3, BaseDelay: 500 * time.Millisecond, Classify: retryableChatError},
		chanRetry: retry.Policy{MaxAttempts: 5, BaseDelay: time.Second, Classify: retryableChatError},
		liveIDs:   make([]string, cfg.Files.Slots),
		now:       time.Now,
	}
}

// retryableChatError classifies chat API failures. Network-level errors,
// 429s and 5xx responses are transient; any other 4xx (missing permission,
// unknown message, bad request) will fail identically on every attempt and
// propagates immediately. Cancellation always stops a cycle.
func retryableChatError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		code := restErr.Response.StatusCode
		return code == http.StatusTooManyRequests || code >= 500
	}
	return true
}

// Cycle republishes every slot's embed once. Overlapping cycles are
// skipped, not queued: if the previous cycle is still running the call
// returns immediately. The running flag is released on every exit path.
func (p *Publisher) Cycle(ctx context.Context) error {
	if !p.tryAcquire() {
		metrics.ChatCycles.WithLabelValues("skipped").Inc()
		p.logger.Debug().Msg("Previous publish cycle still running, skipping")
		return nil
	}
	defer p.release()

	if err := p.cycle(ctx); err != nil {
		metrics.ChatCycles.WithLabelValues("error").Inc()
		return err
	}
	metrics.ChatCycles.WithLabelValues("ok").Inc()
	return nil
}

func (p *Publisher) cycle(ctx context.Context) error {
	if err := p.ensureBotID(); err != nil {
		return err
	}

	links, err := store.ReadLinks(p.cfg.Files.Links, p.cfg.Files.Slots)
	if err != nil {
		p.logger.Warn().Err(err).Msg("Link file unavailable, publishing without join links")
	}
	snap, err := store.ReadSnapshot(p.cfg.Files.Players)
	if err != nil {
		p.logger.Warn().Err(err).Msg("Snapshot unavailable, publishing placeholders")
	}

	p.deleteRemembered(ctx)

	if p.now().Sub(p.lastSweep) >= p.cfg.Discord.SweepInterval {
		p.sweep(ctx)
		p.lastSweep = p.now()
	}

	now := p.now()
	live := 0
	newIDs := make([]string, p.cfg.Files.Slots)
	for slot := 0; slot < p.cfg.Files.Slots; slot++ {
		embed := renderEmbed(slot, snap.SlotFor(slot), links[slot], p.cfg.Discord.JoinBase, p.cfg.Snapshot.MaxPlayers, now)

		var msgID string
		err := p.msgRetry.Do(ctx, "send status embed", func() error {
			var serr error
			msgID, serr = p.session.SendEmbed(p.cfg.Discord.ChannelID, embed)
			return serr
		})
		if err != nil {
			metrics.ChatOperations.WithLabelValues("send", "failure").Inc()
			p.logger.Error().Err(err).Int("slot", slot).Msg("Failed to send status embed")
			continue
		}
		metrics.ChatOperations.WithLabelValues("send", "success").Inc()
		newIDs[slot] = msgID
		live++

		p.pace(ctx)
	}

	p.liveIDs = newIDs
	metrics.ChatMessagesLive.Set(float64(live))

	p.logger.Info().Int("live", live).Msg("Publish cycle complete")
	return nil
}

// deleteRemembered removes the previous cycle's messages. Best effort: a
// message already deleted by a moderator is success, and a failed delete is
// left for the next deep sweep rather than failing the cycle.
func (p *Publisher) deleteRemembered(ctx context.Context) {
	for slot, id := range p.liveIDs {
		if id == "" {
			continue
		}
		err := p.msgRetry.Do(ctx, "delete status embed", func() error {
			return p.session.DeleteMessage(p.cfg.Discord.ChannelID, id)
		})
		if err != nil {
			metrics.ChatOperations.WithLabelValues("delete", "failure").Inc()
			p.logger.Debug().Err(err).Int("slot", slot).Str("message_id", id).Msg("Failed to delete previous embed")
		} else {
			metrics.ChatOperations.WithLabelValues("delete", "success").Inc()
		}
		p.liveIDs[slot] = ""

		p.pace(ctx)
	}
}

// sweep deletes every embed-bearing message this bot authored among the
// newest channel messages. This is what restores the at-most-one-per-slot
// contract after a crash lost the remembered ids.
func (p *Publisher) sweep(ctx context.Context) {
	var msgs []*discordgo.Message
	err := p.chanRetry.Do(ctx, "fetch channel history", func() error {
		fetched, ferr := p.session.RecentMessages(p.cfg.Discord.ChannelID, sweepFetchLimit)
		if ferr != nil {
			return ferr
		}
		msgs = fetched
		return nil
	})
	if err != nil {
		metrics.ChatOperations.WithLabelValues("fetch", "failure").Inc()
		p.logger.Warn().Err(err).Msg("Channel sweep fetch failed")
		return
	}
	metrics.ChatOperations.WithLabelValues("fetch", "success").Inc()

	swept := 0
	for _, msg := range msgs {
		if msg == nil || msg.Author == nil || msg.Author.ID != p.botID || len(msg.Embeds) == 0 {
			continue
		}
		id := msg.ID
		err := p.msgRetry.Do(ctx, "sweep stale embed", func() error {
			return p.session.DeleteMessage(p.cfg.Discord.ChannelID, id)
		})
		if err != nil {
			metrics.ChatOperations.WithLabelValues("sweep", "failure").Inc()
			p.logger.Debug().Err(err).Str("message_id", id).Msg("Failed to sweep stale embed")
			continue
		}
		metrics.ChatOperations.WithLabelValues("sweep", "success").Inc()
		swept++

		p.pace(ctx)
	}
	if swept > 0 {
		p.logger.Info().Int("swept", swept).Msg("Channel sweep removed stale embeds")
	}
}

func (p *Publisher) ensureBotID() error {
	if p.botID != "" {
		return nil
	}
	id, err := p.session.BotUserID()
	if err != nil {
		return fmt.Errorf("failed to identify bot user: %w", err)
	}
	p.botID = id
	return nil
}

// pace inserts the configured pause between destructive channel operations
// so bursts of deletes and sends stay under the chat API's rate limits.
func (p *Publisher) pace(ctx context.Context) {
	if p.cfg.Discord.OpDelay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(p.cfg.Discord.OpDelay):
	}
}

func (p *Publisher) tryAcquire() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return false
	}
	p.running = true
	return true
}

func (p *Publisher) release() {
	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
}
