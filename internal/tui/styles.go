package tui

import "github.com/charmbracelet/lipgloss"

// Default dimensions used before the first WindowSizeMsg arrives.
const (
	defaultWidth  = 80
	defaultHeight = 24
)

// Palette shared by the watch dashboard and the city panels.
var (
	ColorHeader  = lipgloss.Color("39")
	ColorLabel   = lipgloss.Color("245")
	ColorValue   = lipgloss.Color("252")
	ColorMuted   = lipgloss.Color("241")
	ColorBorder  = lipgloss.Color("240")
	ColorSpinner = lipgloss.Color("205")
)

var (
	// HeaderStyle renders section titles and city names.
	HeaderStyle = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)

	// LabelStyle renders field labels inside panels.
	LabelStyle = lipgloss.NewStyle().Foreground(ColorLabel)

	// ValueStyle renders field values inside panels.
	ValueStyle = lipgloss.NewStyle().Foreground(ColorValue)

	// SubtleStyle renders rules, footers and status lines.
	SubtleStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	// PanelStyle draws the double-line box around a city panel.
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	// TableHeaderStyle is applied to the comparison table header row.
	TableHeaderStyle = lipgloss.NewStyle().
				Foreground(ColorHeader).
				Bold(true).
				Padding(0, 1)

	// TableSelectedStyle highlights the cursor row in the comparison table.
	TableSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))
)
