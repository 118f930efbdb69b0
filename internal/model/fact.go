// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by the inkwell UI and
// the backend client.
package model

import "sort"

// Fact is one record in the story facts knowledge base. The collection is
// unordered and keyed by ID; the backend assigns IDs on create.
type Fact struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Category string `json:"category"`
}

// Fact categories understood by the backend's retrieval step.
const (
	CategoryCharacter     = "character"
	CategoryWorldbuilding = "worldbuilding"
	CategoryPlot          = "plot"
)

// FactCategories lists the selectable categories in display order.
var FactCategories = []string{
	CategoryCharacter,
	CategoryWorldbuilding,
	CategoryPlot,
}

// GroupFactsByCategory groups facts by category, with categories sorted
// alphabetically and facts within each category sorted by text. The input is
// not modified.
func GroupFactsByCategory(facts []Fact) (categories []string, grouped map[string][]Fact) {
	grouped = make(map[string][]Fact)
	for _, f := range facts {
		grouped[f.Category] = append(grouped[f.Category], f)
	}

	categories = make([]string, 0, len(grouped))
	for cat := range grouped {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	for _, cat := range categories {
		group := grouped[cat]
		sort.Slice(group, func(i, j int) bool {
			return group[i].Text < group[j].Text
		})
	}
	return categories, grouped
}
