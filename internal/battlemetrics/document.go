// Squadlink - Squad Server Lobby Resolution and Status Publishing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/squadlink

/*
document.go - BattleMetrics JSON:API document types

BattleMetrics answers with JSON:API documents: a primary "data" resource plus
an "included" array of related resources (players and their identifiers when
requested with ?include=player,identifier).

Every field is optional. The API omits attributes freely and third-party data
cannot be trusted to hold shape, so all leaf fields are pointers and every
accessor coerces to null/empty instead of assuming presence.
*/

package battlemetrics

import (
	"regexp"
	"strings"
)

// ServerDocument is the response envelope for GET /servers/{id}.
type ServerDocument struct {
	Data     *ServerData        `json:"data"`
	Included []IncludedResource `json:"included"`
}

// ServerData is the primary server resource.
type ServerData struct {
	Type       string            `json:"type"`
	ID         string            `json:"id"`
	Attributes *ServerAttributes `json:"attributes"`
}

// ServerAttributes carries the aggregate counters for a server.
type ServerAttributes struct {
	Name       *string        `json:"name"`
	Players    *float64       `json:"players"`
	MaxPlayers *float64       `json:"maxPlayers"`
	Status     *string        `json:"status"`
	Details    *ServerDetails `json:"details"`
}

// ServerDetails holds the game-specific attribute bag. Only the Squad fields
// consumed by the snapshotter are mapped.
type ServerDetails struct {
	Map         *string  `json:"map"`
	GameMode    *string  `json:"gameMode"`
	PublicQueue *float64 `json:"squad_publicQueue"`
	PlayTime    *float64 `json:"squad_playTime"`
}

// IncludedResource is one entry of the "included" array. Player and
// identifier resources share this shape; unrelated resource types simply
// leave the optional fields nil.
type IncludedResource struct {
	Type          string                 `json:"type"`
	ID            string                 `json:"id"`
	Attributes    *IncludedAttributes    `json:"attributes"`
	Relationships *IncludedRelationships `json:"relationships"`
}

// IncludedAttributes covers both player (Name) and identifier
// (Type/Identifier) resources.
type IncludedAttributes struct {
	Name       *string `json:"name"`
	Type       *string `json:"type"`
	Identifier *string `json:"identifier"`
}

// IncludedRelationships links an identifier resource back to its player.
type IncludedRelationships struct {
	Player *RelationshipToOne `json:"player"`
}

// RelationshipToOne is a single JSON:API relationship.
type RelationshipToOne struct {
	Data *ResourceRef `json:"data"`
}

// ResourceRef is a type/id reference to another resource.
type ResourceRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// steam64Pattern matches a bare SteamID64 (17+ digits).
var steam64Pattern = regexp.MustCompile(`^\d{17,}$`)

// steam64Embedded extracts a SteamID64 embedded in a longer identifier value.
var steam64Embedded = regexp.MustCompile(`(\d{17,})`)

// ExtractPresence walks the included player resources in document order and
// returns the SteamID64 of each player that has one, preserving that order.
//
// For each player, its identifier resources are scanned and the first
// acceptable one wins: either the raw value is a bare SteamID64, or the
// identifier is steam-typed and contains one. Duplicates across players are
// dropped (first occurrence kept), so the result is an ordered, de-duplicated
// presence list.
//
// A document with no included array, no players, or malformed entries yields
// an empty list, never an error: shape violations at this level degrade to
// "no presence".
func ExtractPresence(doc *ServerDocument) []string {
	if doc == nil || len(doc.Included) == 0 {
		return nil
	}

	// Identifier resources grouped by owning player id, preserving order.
	identsByPlayer := make(map[string][]IncludedResource)
	var playerOrder []string
	for _, res := range doc.Included {
		switch res.Type {
		case "player":
			playerOrder = append(playerOrder, res.ID)
		case "identifier":
			pid := ownerPlayerID(res)
			if pid != "" {
				identsByPlayer[pid] = append(identsByPlayer[pid], res)
			}
		}
	}

	var result []string
	seen := make(map[string]struct{})
	for _, pid := range playerOrder {
		for _, ident := range identsByPlayer[pid] {
			steamID := steamIDFromIdentifier(ident)
			if steamID == "" {
				continue
			}
			if _, dup := seen[steamID]; dup {
				// An already-claimed id does not settle this player;
				// keep scanning its remaining identifiers.
				continue
			}
			result = append(result, steamID)
			seen[steamID] = struct{}{}
			break
		}
	}
	return result
}

// ownerPlayerID resolves the player id an identifier resource belongs to.
func ownerPlayerID(res IncludedResource) string {
	if res.Relationships == nil || res.Relationships.Player == nil || res.Relationships.Player.Data == nil {
		return ""
	}
	return res.Relationships.Player.Data.ID
}

// steamIDFromIdentifier pulls a SteamID64 from one identifier resource, or
// returns "" if it does not carry one.
func steamIDFromIdentifier(res IncludedResource) string {
	if res.Attributes == nil || res.Attributes.Identifier == nil {
		return ""
	}
	value := *res.Attributes.Identifier

	if steam64Pattern.MatchString(value) {
		return value
	}

	identType := ""
	if res.Attributes.Type != nil {
		identType = strings.ToLower(*res.Attributes.Type)
	}
	if strings.Contains(identType, "steam") {
		if m := steam64Embedded.FindString(value); m != "" {
			return m
		}
	}
	return ""
}
