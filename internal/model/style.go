// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by the inkwell UI and
// the backend client.
package model

// Style is the singleton writing-style profile. It is fetched on mount and
// replaced wholesale on save; the UI holds a local editable copy until then.
type Style struct {
	POV   string `json:"pov"`
	Tense string `json:"tense"`
	Style string `json:"style"`
}

// Selectable point-of-view options, first entry is the default.
var POVOptions = []string{
	"Third person limited",
	"First person",
	"Third person omniscient",
	"Second person",
}

// Selectable tense options, first entry is the default.
var TenseOptions = []string{
	"Past tense",
	"Present tense",
}

// DefaultStyle returns the profile shown before the first fetch completes.
func DefaultStyle() Style {
	return Style{
		POV:   "First person",
		Tense: "Past tense",
	}
}
