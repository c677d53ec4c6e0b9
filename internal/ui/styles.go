package ui

import "github.com/charmbracelet/lipgloss"

// This file centralizes the lipgloss styles used by the console.

var (
	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFF")).
			Background(lipgloss.Color("#61DFFF")). // Linea cyan
			Bold(true).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // Blue
	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")). // Orange
			Bold(true)
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")). // Red
			Bold(true)
	passStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")). // Green
			Bold(true)

	// Severity classes shared with the HTML report.
	severityStyles = map[string]lipgloss.Style{
		"good":    passStyle,
		"warning": warnStyle,
		"error":   errorStyle,
	}
)
