package component

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/memescope/internal/logger"
	"github.com/rovshanmuradov/memescope/internal/ui/style"
)

// LogSource provides the entries shown by LogPane.
type LogSource interface {
	GetRecentLogs(limit int) []logger.LogEntry
}

const logPaneHistory = 50

// LogPane renders the tail of a log buffer in a scrollable viewport.
type LogPane struct {
	source    LogSource
	viewport  viewport.Model
	visible   bool
	showDebug bool

	container lipgloss.Style
	title     lipgloss.Style
	timestamp lipgloss.Style
	levels    map[string]lipgloss.Style
}

// NewLogPane creates a log pane reading from source
func NewLogPane(source LogSource) *LogPane {
	palette := style.DefaultPalette()

	return &LogPane{
		source:  source,
		visible: true,
		container: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Info).
			Padding(0, 1),
		title: lipgloss.NewStyle().
			Foreground(palette.Info).
			Bold(true),
		timestamp: lipgloss.NewStyle().
			Foreground(palette.TextMuted),
		levels: map[string]lipgloss.Style{
			"error": lipgloss.NewStyle().Foreground(palette.Error).Bold(true),
			"warn":  lipgloss.NewStyle().Foreground(palette.Warning).Bold(true),
			"info":  lipgloss.NewStyle().Foreground(palette.Info),
			"debug": lipgloss.NewStyle().Foreground(palette.TextMuted),
		},
		viewport: viewport.New(50, 4),
	}
}

// SetSize sets the component dimensions
func (lp *LogPane) SetSize(width, height int) {
	lp.container = lp.container.Width(width - 2)
	// рамка + заголовок
	vh := height - 3
	if vh < 2 {
		vh = 2
	}
	lp.viewport.Width = width - 4
	lp.viewport.Height = vh
}

func (lp *LogPane) Toggle() { lp.visible = !lp.visible }

func (lp *LogPane) IsVisible() bool { return lp.visible }

// SetShowDebug toggles debug entries
func (lp *LogPane) SetShowDebug(show bool) { lp.showDebug = show }

// View renders the pane
func (lp *LogPane) View() string {
	if !lp.visible {
		return ""
	}
	lp.refresh()
	content := lipgloss.JoinVertical(lipgloss.Left,
		lp.title.Render("Recent Logs"),
		lp.viewport.View(),
	)
	return lp.container.Render(content)
}

func (lp *LogPane) refresh() {
	if lp.source == nil {
		lp.viewport.SetContent("No log buffer available")
		return
	}

	var lines []string
	for _, entry := range lp.source.GetRecentLogs(logPaneHistory) {
		level := normalizeLevel(entry.Level)
		if level == "debug" && !lp.showDebug {
			continue
		}
		lines = append(lines, lp.format(level, entry))
	}
	if len(lines) == 0 {
		lp.viewport.SetContent("No logs yet")
		return
	}
	lp.viewport.SetContent(strings.Join(lines, "\n"))
	lp.viewport.GotoBottom()
}

func (lp *LogPane) format(level string, entry logger.LogEntry) string {
	msgStyle, ok := lp.levels[level]
	if !ok {
		msgStyle = lp.levels["info"]
	}
	return fmt.Sprintf("%s %s",
		lp.timestamp.Render(entry.Timestamp.Format("15:04:05")),
		msgStyle.Render(entry.Message),
	)
}

func normalizeLevel(level string) string {
	switch l := strings.ToLower(level); l {
	case "warning":
		return "warn"
	case "dpanic", "panic", "fatal":
		return "error"
	default:
		return l
	}
}
