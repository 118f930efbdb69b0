// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for inkwell.
//
// Supports TOML configuration with sensible defaults, environment variable
// overrides, validation, and live reload.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - BackendConfig: Connection settings for the inkwell service
//   - UIConfig: TUI appearance and behavior
//   - Watcher: Reloads the config file when it changes on disk
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (INKWELL_*)
//   - ~/.inkwell/config.toml
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Access settings:
//
//	origin := cfg.Backend.URL
//	theme := cfg.UI.Theme
package config
