package ui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().Bold(true).MarginBottom(1)

	buttonStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#5A56E0"))
	buttonDisabledStyle = buttonStyle.
				Foreground(lipgloss.Color("#9A9A9A")).
				Background(lipgloss.Color("#3A3A3A"))

	listStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#6C6C6C")).
			Padding(0, 1)

	selectedStyle  = lipgloss.NewStyle().Bold(true)
	mutatingStyle  = lipgloss.NewStyle().Faint(true)
	completedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E"))
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C6C6C"))
	emptyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C6C6C")).Bold(true)
)
