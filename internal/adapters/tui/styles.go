package tui

import "github.com/charmbracelet/lipgloss"

var (
	Accent   = lipgloss.Color("#E5A00D")
	DimGray  = lipgloss.Color("#6B7280")
	White    = lipgloss.Color("#F9FAFB")
	Red      = lipgloss.Color("#EF4444")
	Green    = lipgloss.Color("#10B981")
	SlateDim = lipgloss.Color("#374151")
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	accentStyle = lipgloss.NewStyle().
			Foreground(Accent)

	errorStyle = lipgloss.NewStyle().
			Foreground(Red)

	readStyle = lipgloss.NewStyle().
			Foreground(Green)

	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(SlateDim).
			Padding(0, 1)
)
