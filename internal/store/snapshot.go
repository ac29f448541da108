// Squadlink - Squad Server Lobby Resolution and Status Publishing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/squadlink

package store

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
)

// Snapshot is the status document published for the dashboard and the chat
// publisher. UpdatedAt covers the whole document; the snapshotter never
// patches individual slots in place.
type Snapshot struct {
	UpdatedAt time.Time    `json:"updatedAt"`
	Results   []SlotStatus `json:"results"`
}

// SlotStatus describes one monitored slot. Nil pointers mean "unknown":
// the slot is disabled, the upstream lookup failed, or the reported value
// was out of range. Consumers render unknowns as placeholders, never zero.
type SlotStatus struct {
	Idx         int     `json:"idx"`
	Players     *int    `json:"players"`
	Queue       *int    `json:"queue"`
	Map         *string `json:"map"`
	PlayTimeSec *int    `json:"playtimeSec"`
}

// UnmarshalJSON accepts two legacy spellings alongside the current schema:
// "playTimeSec" for the round-time field and "value" for the player count.
// Older snapshot files remain readable across an upgrade.
func (s *SlotStatus) UnmarshalJSON(data []byte) error {
	// The alias type must be exported: goccy/go-json refuses to unmarshal
	// into an embedded pointer whose field name is unexported.
	type Plain SlotStatus
	aux := struct {
		*Plain
		LegacyPlayTime *int     `json:"playTimeSec"`
		LegacyPlayers  *float64 `json:"value"`
	}{Plain: (*Plain)(s)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if s.PlayTimeSec == nil {
		s.PlayTimeSec = aux.LegacyPlayTime
	}
	if s.Players == nil && aux.LegacyPlayers != nil {
		v := int(*aux.LegacyPlayers)
		s.Players = &v
	}
	return nil
}

// WriteSnapshot atomically replaces the snapshot file with a fresh document.
func WriteSnapshot(path string, snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return atomicWriteFile(path, append(data, '\n'), 0o644)
}

// ReadSnapshot loads the snapshot file. A missing or malformed file returns
// an error and a nil snapshot; callers degrade to placeholder rendering.
func ReadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}
	return &snap, nil
}

// ReadSnapshotRaw loads the snapshot file verbatim for pass-through
// serving. The file is validated on write, so re-encoding would only cost
// allocations without adding safety.
func ReadSnapshotRaw(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	return data, nil
}

// SlotFor returns the status entry for slot idx, or nil when the snapshot
// has no entry for it.
func (s *Snapshot) SlotFor(idx int) *SlotStatus {
	if s == nil {
		return nil
	}
	for i := range s.Results {
		if s.Results[i].Idx == idx {
			return &s.Results[i]
		}
	}
	return nil
}
