// Squadlink - Squad Server Lobby Resolution and Status Publishing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/squadlink

// Package resolve turns raw server presence into a single joinable lobby
// link per monitored slot: collect the players seen on a server, look up
// their platform profiles, and elect the lobby most of them share.
package resolve

import (
	"fmt"

	"github.com/tomtom215/squadlink/internal/steam"
)

// lobbyVote is one usable ballot: a public profile currently in a lobby.
type lobbyVote struct {
	lobbyID string
	steamID string
}

// ChooseLobbyLink elects the dominant lobby among the sampled players and
// synthesizes a join link for it. Election rules:
//
//   - only public profiles that expose a lobby id may vote
//   - votes are considered in presence order, capped at sampleSize
//   - the winner is the lobby with the most total votes; on a tie the lobby
//     whose first voter appears earliest keeps it
//   - the link carries the steam id of the first voter for the winning
//     lobby, so the join lands next to a player actually in it
//
// The result is fully determined by the input order: identical inputs give
// an identical link. An empty result means no lobby was electable.
func ChooseLobbyLink(presence []string, profiles map[string]steam.PlayerSummary, appID string, sampleSize int) string {
	votes := make([]lobbyVote, 0, sampleSize)
	for _, id := range presence {
		if len(votes) >= sampleSize {
			break
		}
		p, ok := profiles[id]
		if !ok || !p.Public() || p.LobbySteamID == "" {
			continue
		}
		votes = append(votes, lobbyVote{lobbyID: p.LobbySteamID, steamID: p.SteamID})
	}
	if len(votes) == 0 {
		return ""
	}

	counts := make(map[string]int, len(votes))
	first := make(map[string]string, len(votes))
	for _, v := range votes {
		counts[v.lobbyID]++
		if _, seen := first[v.lobbyID]; !seen {
			first[v.lobbyID] = v.steamID
		}
	}

	// Scan in vote order against the final tallies; replacing only on a
	// strictly higher count awards a tie to the lobby seen first.
	var winner string
	var winnerCount int
	for _, v := range votes {
		if counts[v.lobbyID] > winnerCount {
			winner = v.lobbyID
			winnerCount = counts[v.lobbyID]
		}
	}

	return fmt.Sprintf("steam://joinlobby/%s/%s/%s", appID, winner, first[winner])
}
