// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the inkwell TUI.
//
// Colors are defined as Lip Gloss AdaptiveColor values so every style works
// on light and dark terminal backgrounds. The Theme type bundles the styled
// components; create one with NewTheme at startup and share it across views.
package styles
