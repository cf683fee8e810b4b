// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

// Color palette - shared hex colors for consistent theming across all CLI
// output, designed for dark terminal backgrounds.
const (
	// ColorPrimary is purple - used for titles and primary emphasis.
	ColorPrimary = lipgloss.Color("#7C3AED")

	// ColorMuted is gray - used for subtitles and de-emphasized content.
	ColorMuted = lipgloss.Color("#6B7280")

	// ColorSuccess is green - used for loaded units and positive states.
	ColorSuccess = lipgloss.Color("#10B981")

	// ColorError is red - used for errors and failed loads.
	ColorError = lipgloss.Color("#EF4444")

	// ColorWarning is amber - used for warnings and diagnostics.
	ColorWarning = lipgloss.Color("#F59E0B")

	// ColorHighlight is blue - used for module names and locations.
	ColorHighlight = lipgloss.Color("#3B82F6")
)

// Base styles - reusable lipgloss styles built from the color palette.
var (
	// TitleStyle is for primary headers and section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle is for secondary headers and descriptions.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// SuccessStyle is for success messages and positive indicators.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// ErrorStyle is for error messages and failure indicators.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	// WarningStyle is for warning messages and diagnostics.
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// UnitStyle is for module names and source locations.
	UnitStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)
)
