// Squadlink - Squad Server Lobby Resolution and Status Publishing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/squadlink

package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// gatewaySession adapts a discordgo session to the Session interface.
type gatewaySession struct {
	s *discordgo.Session
}

// NewSession builds a gateway session from a bot token.
func NewSession(token string) (Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	// The publisher only sends and deletes; no gateway events needed.
	s.Identify.Intents = discordgo.IntentsGuilds
	return &gatewaySession{s: s}, nil
}

func (g *gatewaySession) Open() error {
	if err := g.s.Open(); err != nil {
		return fmt.Errorf("failed to open discord gateway: %w", err)
	}
	return nil
}

func (g *gatewaySession) Close() error {
	return g.s.Close()
}

func (g *gatewaySession) BotUserID() (string, error) {
	if g.s.State != nil && g.s.State.User != nil {
		return g.s.State.User.ID, nil
	}
	u, err := g.s.User("@me")
	if err != nil {
		return "", fmt.Errorf("failed to look up bot user: %w", err)
	}
	return u.ID, nil
}

func (g *gatewaySession) SendEmbed(channelID string, embed *discordgo.MessageEmbed) (string, error) {
	msg, err := g.s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
	})
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

func (g *gatewaySession) DeleteMessage(channelID, messageID string) error {
	return g.s.ChannelMessageDelete(channelID, messageID)
}

func (g *gatewaySession) RecentMessages(channelID string, limit int) ([]*discordgo.Message, error) {
	return g.s.ChannelMessages(channelID, limit, "", "", "")
}
