package ui

import "github.com/charmbracelet/lipgloss"

var (
	cyan    = lipgloss.Color("#00D7FF")
	magenta = lipgloss.Color("#FF5FD7")
	green   = lipgloss.Color("#5FFF5F")
	yellow  = lipgloss.Color("#FFD75F")
	orange  = lipgloss.Color("#FF8700")
	red     = lipgloss.Color("#FF3030")
	dim     = lipgloss.Color("#8A8A8A")

	bannerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(magenta).
			Foreground(cyan).
			Bold(true).
			Padding(0, 2)

	labelStyle = lipgloss.NewStyle().
			Foreground(cyan).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(yellow)

	successStyle = lipgloss.NewStyle().
			Foreground(green).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(orange)

	errorStyle = lipgloss.NewStyle().
			Foreground(red).
			Bold(true)

	highlightStyle = lipgloss.NewStyle().
			Foreground(magenta).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(dim)
)
