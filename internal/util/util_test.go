// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides shared helpers for the inkwell TUI.
package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// =============================================================================
// STRING TESTS
// =============================================================================

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxRunes int
		want     string
	}{
		{"shorter than limit", "hello", 10, "hello"},
		{"exactly at limit", "hello", 5, "hello"},
		{"truncated with ellipsis", "hello world", 8, "hello..."},
		{"zero limit", "hello", 0, ""},
		{"tiny limit", "hello", 2, "he"},
		{"unicode safe", "héllo wörld", 8, "héllo..."},
		{"empty string", "", 5, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := TruncateRunes(tc.input, tc.maxRunes)
			if got != tc.want {
				t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tc.input, tc.maxRunes, got, tc.want)
			}
		})
	}
}

func TestTruncateWidth_CJK(t *testing.T) {
	// Double-width characters count as 2 columns.
	got := TruncateWidth("日本語テスト", 7)
	if StringWidth(got) > 7 {
		t.Errorf("TruncateWidth result %q exceeds width 7 (got %d)", got, StringWidth(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("TruncateWidth result %q should end with ellipsis", got)
	}
}

func TestFirstLine(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"single line", "single line"},
		{"first\nsecond", "first"},
		{"  padded  \nrest", "padded"},
		{"", ""},
	}

	for _, tc := range tests {
		if got := FirstLine(tc.input); got != tc.want {
			t.Errorf("FirstLine(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestWordWrap(t *testing.T) {
	got := WordWrap("the quick brown fox jumps", 10)
	for _, line := range strings.Split(got, "\n") {
		if StringWidth(line) > 10 {
			t.Errorf("line %q exceeds width 10", line)
		}
	}
	if strings.ReplaceAll(got, "\n", " ") != "the quick brown fox jumps" {
		t.Errorf("WordWrap lost content: %q", got)
	}
}

func TestWordWrap_LongWord(t *testing.T) {
	got := WordWrap("abcdefghijklmnop", 5)
	for _, line := range strings.Split(got, "\n") {
		if StringWidth(line) > 5 {
			t.Errorf("line %q exceeds width 5", line)
		}
	}
}

func TestWordWrap_PreservesBlankLines(t *testing.T) {
	got := WordWrap("para one\n\npara two", 40)
	if got != "para one\n\npara two" {
		t.Errorf("WordWrap altered short paragraphs: %q", got)
	}
}

// =============================================================================
// ATOMIC WRITE TESTS
// =============================================================================

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "file.txt")

	if err := AtomicWriteFile(path, []byte("first"), 0644); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "first" {
		t.Errorf("got %q, want %q", data, "first")
	}

	// Overwrite replaces the content completely.
	if err := AtomicWriteFile(path, []byte("second"), 0644); err != nil {
		t.Fatalf("AtomicWriteFile overwrite failed: %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "second" {
		t.Errorf("got %q after overwrite, want %q", data, "second")
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Errorf("leftover temp file: %s", e.Name())
		}
	}
}
