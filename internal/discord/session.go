// Squadlink - Squad Server Lobby Resolution and Status Publishing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/squadlink

// Package discord republishes the server status into a chat channel: one
// embed per monitored slot, refreshed by delete-and-resend so the channel
// holds at most one live message per slot.
package discord

import "github.com/bwmarrin/discordgo"

// Session is the narrow slice of the chat gateway the publisher needs.
// The production implementation wraps discordgo; tests substitute a fake.
type Session interface {
	// Open establishes the gateway connection.
	Open() error

	// Close tears the connection down.
	Close() error

	// BotUserID returns the bot's own user id, used to recognize our
	// messages during channel sweeps.
	BotUserID() (string, error)

	// SendEmbed posts a single embed and returns the new message id.
	SendEmbed(channelID string, embed *discordgo.MessageEmbed) (string, error)

	// DeleteMessage removes one message. Deleting an already-gone message
	// is an error the caller treats as success.
	DeleteMessage(channelID, messageID string) error

	// RecentMessages fetches up to limit of the newest channel messages.
	RecentMessages(channelID string, limit int) ([]*discordgo.Message, error)
}
