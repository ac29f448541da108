// Squadlink - Squad Server Lobby Resolution and Status Publishing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/squadlink

// Package store owns the durable files the pipeline reads and publishes:
// the static monitored-server list, the join-link file, and the status
// snapshot document. The pipeline is the single writer of the two outputs;
// writes are whole-file atomic replaces so readers (the dashboard polls
// them over HTTP) never observe partial content.
package store

import (
	"fmt"
	"os"
	"strings"
)

// ReadServerIDs loads the monitored-server list: one BattleMetrics server id
// per line, in slot order. Parsing rules:
//
//   - lines starting with '#' are comments and removed entirely
//   - leading blank lines (header spacing after comments) are dropped
//   - the first `slots` remaining entries are taken; internal blanks are
//     preserved — a blank line disables that slot on purpose
//   - the result is padded with empty entries up to `slots`
//
// The returned slice always has exactly `slots` entries. On read failure it
// is all-empty and the error is returned alongside so the caller can log it;
// a missing list disables every slot but must not crash a cycle.
func ReadServerIDs(path string, slots int) ([]string, error) {
	ids := make([]string, slots)

	data, err := os.ReadFile(path)
	if err != nil {
		return ids, fmt.Errorf("failed to read server list %s: %w", path, err)
	}

	rawLines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(rawLines))
	for _, line := range rawLines {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}

	// Drop leading blanks left behind by the comment header.
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}

	for i := 0; i < slots && i < len(lines); i++ {
		ids[i] = lines[i]
	}
	return ids, nil
}
