// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// APPLICATION CONTAINER STYLES
	// ==========================================================================

	App       lipgloss.Style
	Container lipgloss.Style

	// ==========================================================================
	// HEADER / TAB BAR STYLES
	// ==========================================================================

	Header      lipgloss.Style
	HeaderBrand lipgloss.Style
	Tab         lipgloss.Style
	TabActive   lipgloss.Style

	// ==========================================================================
	// MESSAGE BUBBLE STYLES
	// ==========================================================================

	UserBubble      lipgloss.Style
	UserLabel       lipgloss.Style
	AssistantBubble lipgloss.Style
	AssistantLabel  lipgloss.Style

	// ==========================================================================
	// RETRIEVAL PANE STYLES
	// ==========================================================================

	PaneHeader    lipgloss.Style
	PaneBody      lipgloss.Style
	PaneCollapsed lipgloss.Style
	QueryItem     lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputText        lipgloss.Style
	InputPlaceholder lipgloss.Style
	InputDisabled    lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar    lipgloss.Style
	StatusOK     lipgloss.Style
	StatusBusy   lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// ==========================================================================
	// FACTS TABLE STYLES
	// ==========================================================================

	CategoryHeader lipgloss.Style
	FactRow        lipgloss.Style
	FactSelected   lipgloss.Style
	FactDraft      lipgloss.Style
	FactSaving     lipgloss.Style

	// ==========================================================================
	// STYLE FORM STYLES
	// ==========================================================================

	FormLabel          lipgloss.Style
	FormValue          lipgloss.Style
	FormOption         lipgloss.Style
	FormOptionSelected lipgloss.Style

	// ==========================================================================
	// SPINNER AND ERROR STYLES
	// ==========================================================================

	Spinner      lipgloss.Style
	ThinkingText lipgloss.Style
	ErrorBox     lipgloss.Style
	ErrorTitle   lipgloss.Style
	ErrorMessage lipgloss.Style
	SuccessStyle lipgloss.Style
}

// NewTheme creates a new theme with all styles configured.
func NewTheme() *Theme {
	colorProfile := termenv.ColorProfile()

	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}

	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// App container
	t.App = lipgloss.NewStyle()
	t.Container = lipgloss.NewStyle().Padding(0, 1)

	// Header / tabs
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal).
		Background(SurfaceDim).
		Padding(0, 2)

	t.HeaderBrand = lipgloss.NewStyle().
		Bold(true).
		Foreground(Indigo)

	t.Tab = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 2)

	t.TabActive = lipgloss.NewStyle().
		Foreground(Indigo).
		Bold(true).
		Underline(true).
		Padding(0, 2)

	// Message bubbles
	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 2).
		MarginLeft(4)

	t.UserLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(UserBubbleBorder).
		MarginLeft(4)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 2).
		MarginRight(4)

	t.AssistantLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(AssistantBubbleBorder)

	// Retrieval panes
	t.PaneHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(Teal)

	t.PaneBody = lipgloss.NewStyle().
		Foreground(TextSecondary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(TealDeep).
		PaddingLeft(2)

	t.PaneCollapsed = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.QueryItem = lipgloss.NewStyle().
		Foreground(Teal).
		PaddingLeft(2)

	// Input area
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Teal).
		Bold(true)

	t.InputText = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.InputDisabled = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.StatusOK = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)

	t.StatusBusy = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Teal).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Facts table
	t.CategoryHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(Indigo).
		Underline(true)

	t.FactRow = lipgloss.NewStyle().
		Foreground(TextPrimary).
		PaddingLeft(2)

	t.FactSelected = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(Overlay).
		Bold(true).
		PaddingLeft(2)

	t.FactDraft = lipgloss.NewStyle().
		Foreground(Amber).
		PaddingLeft(2)

	t.FactSaving = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true).
		PaddingLeft(2)

	// Style form
	t.FormLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary)

	t.FormValue = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.FormOption = lipgloss.NewStyle().
		Foreground(TextSecondary).
		PaddingLeft(2)

	t.FormOptionSelected = lipgloss.NewStyle().
		Foreground(Indigo).
		Bold(true).
		PaddingLeft(2)

	// Spinner / errors
	t.Spinner = lipgloss.NewStyle().
		Foreground(Indigo)

	t.ThinkingText = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.ErrorBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Rose).
		Padding(0, 2)

	t.ErrorTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Rose)

	t.ErrorMessage = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.SuccessStyle = lipgloss.NewStyle().
		Foreground(Emerald)
}

// SetSize updates the theme's layout dimensions.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}
