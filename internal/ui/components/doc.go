// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the inkwell TUI.
//
// Components are plain render helpers: they hold display state and a theme
// reference and produce strings for the views that compose them. None of
// them talk to the backend.
package components
