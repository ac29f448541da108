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

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bm-servers.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func TestReadServerIDs(t *testing.T) {
	tests := []struct {
		name    string
		content string
		slots   int
		want    []string
	}{
		{
			name:    "plain list",
			content: "11111\n22222\n33333\n44444\n",
			slots:   4,
			want:    []string{"11111", "22222", "33333", "44444"},
		},
		{
			name:    "comments and leading blanks removed",
			content: "# monitored servers\n# one id per line\n\n11111\n22222\n",
			slots:   4,
			want:    []string{"11111", "22222", "", ""},
		},
		{
			name:    "internal blank disables a slot",
			content: "11111\n\n33333\n44444\n",
			slots:   4,
			want:    []string{"11111", "", "33333", "44444"},
		},
		{
			name:    "extra entries beyond slots ignored",
			content: "1\n2\n3\n4\n5\n6\n",
			slots:   4,
			want:    []string{"1", "2", "3", "4"},
		},
		{
			name:    "short list padded",
			content: "11111\n",
			slots:   4,
			want:    []string{"11111", "", "", ""},
		},
		{
			name:    "windows line endings",
			content: "11111\r\n22222\r\n",
			slots:   2,
			want:    []string{"11111", "22222"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.content)
			got, err := ReadServerIDs(path, tt.slots)
			if err != nil {
				t.Fatalf("ReadServerIDs() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ReadServerIDs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadServerIDsMissingFile(t *testing.T) {
	got, err := ReadServerIDs(filepath.Join(t.TempDir(), "absent.txt"), 3)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !reflect.DeepEqual(got, []string{"", "", ""}) {
		t.Errorf("missing file should yield all-empty slots, got %v", got)
	}
}
