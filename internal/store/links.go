// Squadlink - Squad Server Lobby Resolution and Status Publishing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/squadlink

package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// JoinLinkPrefix is the only URI scheme a published link may carry.
// Consumers treat anything else on a link line as "no link".
const JoinLinkPrefix = "steam://joinlobby/"

// WriteLinks replaces the link file with one line per slot, in slot order,
// plus a trailing newline. An unresolved slot is an empty line so that line
// position always equals slot index for every consumer.
func WriteLinks(path string, links []string) error {
	content := strings.Join(links, "\n") + "\n"
	return atomicWriteFile(path, []byte(content), 0o644)
}

// ReadLinks loads the link file into exactly `slots` entries, padding with
// empties when the file is short. Lines that do not start with
// JoinLinkPrefix are normalized to empty: a stale or hand-edited file must
// never surface a non-joinable link downstream.
func ReadLinks(path string, slots int) ([]string, error) {
	links := make([]string, slots)

	data, err := os.ReadFile(path)
	if err != nil {
		return links, fmt.Errorf("failed to read link file %s: %w", path, err)
	}

	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	for i := 0; i < slots && i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if strings.HasPrefix(line, JoinLinkPrefix) {
			links[i] = line
		}
	}
	return links, nil
}

// atomicWriteFile writes data to a temp file in the target directory and
// renames it over the destination. Rename within a filesystem is atomic, so
// a concurrent reader sees either the old file or the new one in full.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		cleanup()
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
