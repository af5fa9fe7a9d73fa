package style

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/memescope/internal/risk"
)

var palette = DefaultPalette()

var (
	HeaderStyle = lipgloss.NewStyle().
			Background(palette.Background).
			Foreground(palette.Primary).
			Bold(true).
			Padding(0, 2).
			Margin(0, 0, 1, 0)

	SubHeaderStyle = lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.TextMuted).
			Padding(0, 1)
)

var (
	ErrorStyle = lipgloss.NewStyle().
			Foreground(palette.Error).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(palette.Warning)

	MutedStyle = lipgloss.NewStyle().
			Foreground(palette.TextMuted)

	HelpStyle = lipgloss.NewStyle().
			Foreground(palette.TextMuted).
			Margin(1, 0, 0, 0).
			Italic(true)
)

// ScoreStyle colors a risk score by its category.
func ScoreStyle(c risk.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(palette.RiskColor(c)).
		Bold(c == risk.ColorRed)
}

// AdaptiveJoinHorizontal stacks panes vertically on narrow screens.
func AdaptiveJoinHorizontal(width int, panes ...string) string {
	if width < 100 {
		return lipgloss.JoinVertical(lipgloss.Left, panes...)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, panes...)
}
