// Squadlink - Squad Server Lobby Resolution and Status Publishing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/squadlink

package store

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestWriteLinksShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.txt")
	links := []string{
		"steam://joinlobby/393380/109775242/76561198000000001",
		"",
		"steam://joinlobby/393380/109775243/76561198000000002",
		"",
	}
	if err := WriteLinks(path, links); err != nil {
		t.Fatalf("WriteLinks() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read back: %v", err)
	}
	want := "steam://joinlobby/393380/109775242/76561198000000001\n\nsteam://joinlobby/393380/109775243/76561198000000002\n\n"
	if string(data) != want {
		t.Errorf("link file = %q, want %q", data, want)
	}
}

func TestWriteLinksIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.txt")
	links := []string{"steam://joinlobby/393380/1/2", "", "", ""}

	if err := WriteLinks(path, links); err != nil {
		t.Fatalf("first write: %v", err)
	}
	first, _ := os.ReadFile(path)

	if err := WriteLinks(path, links); err != nil {
		t.Fatalf("second write: %v", err)
	}
	second, _ := os.ReadFile(path)

	if string(first) != string(second) {
		t.Errorf("repeated writes differ: %q vs %q", first, second)
	}
}

func TestReadLinks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.txt")
	content := "steam://joinlobby/393380/1/2\nhttps://example.com/evil\n\nsteam://joinlobby/393380/3/4\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("fixture: %v", err)
	}

	got, err := ReadLinks(path, 4)
	if err != nil {
		t.Fatalf("ReadLinks() error = %v", err)
	}
	want := []string{"steam://joinlobby/393380/1/2", "", "", "steam://joinlobby/393380/3/4"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadLinks() = %v, want %v", got, want)
	}
}

func TestReadLinksMissingFile(t *testing.T) {
	got, err := ReadLinks(filepath.Join(t.TempDir(), "absent.txt"), 2)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !reflect.DeepEqual(got, []string{"", ""}) {
		t.Errorf("missing file should yield empty links, got %v", got)
	}
}

func TestAtomicWriteReplacesWholeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.txt")
	if err := WriteLinks(path, []string{"steam://joinlobby/393380/1/2", "steam://joinlobby/393380/3/4"}); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := WriteLinks(path, []string{"", ""}); err != nil {
		t.Fatalf("second write: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "\n\n" {
		t.Errorf("second write should fully replace content, got %q", data)
	}
}
