package tui

import "github.com/charmbracelet/lipgloss"

const (
	colorText    lipgloss.Color = "#cdd6f4"
	colorMuted   lipgloss.Color = "#7f849c"
	colorAccent  lipgloss.Color = "#89b4fa"
	colorGreen   lipgloss.Color = "#a6e3a1"
	colorYellow  lipgloss.Color = "#f9e2af"
	colorDanger  lipgloss.Color = "#EE0000"
	colorSurface lipgloss.Color = "#313244"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSurface).
			Padding(0, 2).
			Width(32)
	selectedPanelStyle = panelStyle.BorderForeground(colorAccent)

	scoreStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	dangerStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorDanger)
	floatingStyle = lipgloss.NewStyle().Foreground(colorYellow)
	barStyle      = lipgloss.NewStyle().Foreground(colorGreen)

	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorYellow).
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorYellow).
			Padding(0, 2)
	statusStyle = lipgloss.NewStyle().Foreground(colorDanger)
	helpStyle   = lipgloss.NewStyle().Foreground(colorMuted)
)
