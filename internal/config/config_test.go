// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Backend.URL != "http://127.0.0.1:5000" {
		t.Errorf("backend url = %q", cfg.Backend.URL)
	}
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
version = "1.0.0"

[backend]
url = "http://127.0.0.1:9000"
timeout_secs = 10

[ui]
theme = "light"
compact_mode = true
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Backend.URL != "http://127.0.0.1:9000" {
		t.Errorf("backend url = %q", cfg.Backend.URL)
	}
	if cfg.Backend.TimeoutSecs != 10 {
		t.Errorf("timeout = %d", cfg.Backend.TimeoutSecs)
	}
	if cfg.UI.Theme != "light" || !cfg.UI.CompactMode {
		t.Errorf("ui = %+v", cfg.UI)
	}
	// Unset fields fall back to defaults.
	if cfg.UI.StreamFPS != 30 {
		t.Errorf("stream_fps default not applied: %d", cfg.UI.StreamFPS)
	}
	if cfg.REPL.HistoryLimit != 1000 {
		t.Errorf("history_limit default not applied: %d", cfg.REPL.HistoryLimit)
	}
}

func TestLoadFromPathRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[backend]
url = "not a url"

[ui]
theme = "neon"
stream_fps = 500
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, field := range []string{"backend.url", "ui.theme", "ui.stream_fps"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error %q does not mention %s", err, field)
		}
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("INKWELL_BACKEND_URL", "http://127.0.0.1:6001")
	t.Setenv("INKWELL_THEME", "light")
	t.Setenv("INKWELL_COMPACT", "true")
	t.Setenv("INKWELL_NO_MARKDOWN", "1")
	t.Setenv("INKWELL_TIMEOUT_SECS", "5")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Backend.URL != "http://127.0.0.1:6001" {
		t.Errorf("backend url = %q", cfg.Backend.URL)
	}
	if cfg.Backend.TimeoutSecs != 5 {
		t.Errorf("timeout = %d", cfg.Backend.TimeoutSecs)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("theme = %q", cfg.UI.Theme)
	}
	if !cfg.UI.CompactMode {
		t.Error("compact mode not applied")
	}
	if cfg.UI.Markdown {
		t.Error("markdown should be disabled")
	}
}

func TestEnvOverrideIgnoresBadTimeout(t *testing.T) {
	t.Setenv("INKWELL_TIMEOUT_SECS", "zero")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if cfg.Backend.TimeoutSecs != 30 {
		t.Errorf("bad env value changed timeout: %d", cfg.Backend.TimeoutSecs)
	}
}

func TestSaveTOMLRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	want := Default()
	want.Backend.URL = "http://127.0.0.1:7777"
	want.UI.Theme = "auto"
	want.UI.StreamFPS = 15

	if err := SaveTOML(want, path); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file mode = %o, want 0600", perm)
	}

	got, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if got.Backend.URL != want.Backend.URL || got.UI.Theme != want.UI.Theme || got.UI.StreamFPS != want.UI.StreamFPS {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestWatcherReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := SaveTOML(Default(), path); err != nil {
		t.Fatal(err)
	}

	changed := make(chan *Config, 1)
	w, err := NewWatcher(path, 50*time.Millisecond, func(cfg *Config) {
		select {
		case changed <- cfg:
		default:
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := w.Watch(); err != nil {
		t.Fatal(err)
	}

	updated := Default()
	updated.UI.Theme = "light"
	if err := SaveTOML(updated, path); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-changed:
		if cfg.UI.Theme != "light" {
			t.Errorf("reloaded theme = %q", cfg.UI.Theme)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not report the change")
	}
}
