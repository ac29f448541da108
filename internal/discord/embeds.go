// Squadlink - Squad Server Lobby Resolution and Status Publishing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/squadlink

package discord

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/tomtom215/squadlink/internal/store"
)

const (
	colorJoinable   = 0x10B981
	colorUnjoinable = 0xEF4444

	// Placeholders for unknown values. Numbers and the round clock get
	// distinct glyphs so a dead slot still reads like a status card.
	placeholderValue = "—"
	placeholderClock = "—:—"
)

// renderEmbed builds the status card for one slot. A slot with a resolved
// link gets a clickable join line pointing at the redirect page and the
// joinable color; without one the description carries an inert label.
// Unknown fields render as placeholders, never as zeroes.
func renderEmbed(slot int, status *store.SlotStatus, link, joinBase string, maxPlayers int, now time.Time) *discordgo.MessageEmbed {
	description := "`No join link available`"
	color := colorUnjoinable
	var joinURL string
	if link != "" {
		joinURL = fmt.Sprintf("%s/s%dc/", joinBase, slot+1)
		description = fmt.Sprintf("🎮 [Connect to server](%s)", joinURL)
		color = colorJoinable
	}

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Server %d", slot+1),
		URL:         joinURL,
		Description: description,
		Color:       color,
		Timestamp:   now.UTC().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Online", Value: formatOnline(status, maxPlayers), Inline: true},
			{Name: "Queue", Value: formatCount(queueOf(status)), Inline: true},
			{Name: "Map", Value: formatMap(status), Inline: true},
			{Name: "Round time", Value: formatPlaytime(status), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Updated",
		},
	}
}

func queueOf(status *store.SlotStatus) *int {
	if status == nil {
		return nil
	}
	return status.Queue
}

func formatOnline(status *store.SlotStatus, maxPlayers int) string {
	if status == nil || status.Players == nil {
		return fmt.Sprintf("%s / %d", placeholderValue, maxPlayers)
	}
	return fmt.Sprintf("%d / %d", *status.Players, maxPlayers)
}

func formatCount(v *int) string {
	if v == nil {
		return placeholderValue
	}
	return fmt.Sprintf("%d", *v)
}

func formatMap(status *store.SlotStatus) string {
	if status == nil || status.Map == nil || *status.Map == "" {
		return placeholderValue
	}
	return *status.Map
}

// formatPlaytime renders round time as H:MM.
func formatPlaytime(status *store.SlotStatus) string {
	if status == nil || status.PlayTimeSec == nil {
		return placeholderClock
	}
	sec := *status.PlayTimeSec
	return fmt.Sprintf("%d:%02d", sec/3600, (sec%3600)/60)
}
