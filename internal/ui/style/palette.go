package style

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/memescope/internal/risk"
)

var (
	Cyan    = lipgloss.Color("#00E5FF") // Primary highlight
	Magenta = lipgloss.Color("#FF1B6B") // Accent
	Yellow  = lipgloss.Color("#FFB500") // Medium risk / warnings
	Green   = lipgloss.Color("#2AFFAA") // Low risk
	Red     = lipgloss.Color("#FF5555") // High risk / errors
	Blue    = lipgloss.Color("#3B82F6") // Info

	Base03 = lipgloss.Color("#1B1D23") // Background
	Base02 = lipgloss.Color("#262831") // Darker background
	Base01 = lipgloss.Color("#6C7280") // Muted text
	Base2  = lipgloss.Color("#ECEFF4") // Primary text
)

// Palette provides a centralized color management
type Palette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Error     lipgloss.Color
	Warning   lipgloss.Color
	Info      lipgloss.Color

	Background    lipgloss.Color
	BackgroundAlt lipgloss.Color
	Text          lipgloss.Color
	TextMuted     lipgloss.Color

	LowRisk    lipgloss.Color
	MediumRisk lipgloss.Color
	HighRisk   lipgloss.Color
}

// DefaultPalette returns the default color palette
func DefaultPalette() Palette {
	return Palette{
		Primary:   Cyan,
		Secondary: Magenta,
		Error:     Red,
		Warning:   Yellow,
		Info:      Blue,

		Background:    Base03,
		BackgroundAlt: Base02,
		Text:          Base2,
		TextMuted:     Base01,

		LowRisk:    Green,
		MediumRisk: Yellow,
		HighRisk:   Red,
	}
}

// RiskColor maps a score color category to a terminal color.
func (p Palette) RiskColor(c risk.Color) lipgloss.Color {
	switch c {
	case risk.ColorGreen:
		return p.LowRisk
	case risk.ColorYellow:
		return p.MediumRisk
	case risk.ColorRed:
		return p.HighRisk
	default:
		return p.TextMuted
	}
}
