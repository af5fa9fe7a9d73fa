// internal/ui/dashboard.go
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/memescope/internal/logger"
	"github.com/rovshanmuradov/memescope/internal/risk"
	"github.com/rovshanmuradov/memescope/internal/trending"
	"github.com/rovshanmuradov/memescope/internal/ui/component"
	"github.com/rovshanmuradov/memescope/internal/ui/style"
)

// DefaultPollInterval is how often the model re-reads the provider.
const DefaultPollInterval = time.Second

// EntryProvider is the read side of the trending cache.
type EntryProvider interface {
	Entries() []trending.Entry
	LastRefresh() time.Time
	RequestRefresh()
}

// Options configure the dashboard model.
type Options struct {
	Tier         string
	Limit        int
	PollInterval time.Duration
	Logs         component.LogSource
	Now          func() time.Time
}

// Model is the bubbletea model of the trending dashboard.
type Model struct {
	provider EntryProvider
	opts     Options
	keys     KeyMap
	help     help.Model

	table   *component.Table
	logPane *component.LogPane

	entries     []trending.Entry
	lastRefresh time.Time
	showDetails bool
	showDebug   bool
	width       int
	height      int
	quitting    bool
}

// NewModel creates the dashboard model
func NewModel(provider EntryProvider, opts Options) *Model {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	m := &Model{
		provider: provider,
		opts:     opts,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		table:    newEntryTable(),
	}
	if opts.Logs != nil {
		m.logPane = component.NewLogPane(opts.Logs)
	}
	m.sync()
	return m
}

func newEntryTable() *component.Table {
	return component.NewTable().
		AddColumn("#", 4, lipgloss.Right).
		AddColumn("Symbol", 12, lipgloss.Left).
		AddColumn("Name", 20, lipgloss.Left).
		AddColumn("Market Cap", 14, lipgloss.Right).
		AddColumn("Score", 7, lipgloss.Center).
		AddColumn("Risk", 13, lipgloss.Left).
		AddColumn("Warnings", 10, lipgloss.Right)
}

func (m *Model) Init() tea.Cmd {
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.opts.PollInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		if m.logPane != nil {
			m.logPane.SetSize(msg.Width, 8)
		}
		return m, nil

	case TickMsg:
		m.sync()
		return m, m.tick()

	case RefreshRequestedMsg:
		m.sync()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Refresh):
		m.provider.RequestRefresh()
		return m, func() tea.Msg { return RefreshRequestedMsg{} }
	case key.Matches(msg, m.keys.Up):
		m.table.MoveUp()
	case key.Matches(msg, m.keys.Down):
		m.table.MoveDown()
	case key.Matches(msg, m.keys.Details):
		m.showDetails = !m.showDetails
	case key.Matches(msg, m.keys.ToggleLogs):
		if m.logPane != nil {
			m.logPane.Toggle()
		}
	case key.Matches(msg, m.keys.DebugLogs):
		m.showDebug = !m.showDebug
		if m.logPane != nil {
			m.logPane.SetShowDebug(m.showDebug)
		}
	}
	return m, nil
}

// sync copies the provider state into the table
func (m *Model) sync() {
	m.entries = m.provider.Entries()
	m.lastRefresh = m.provider.LastRefresh()

	rows := make([]component.TableRow, len(m.entries))
	for i, e := range m.entries {
		a := e.Assessment
		scoreStyle := style.ScoreStyle(a.Color)
		rows[i] = component.TableRow{
			Data: []string{
				fmt.Sprintf("%d", i+1),
				a.Symbol,
				a.Name,
				formatMarketCap(e.Snapshot.MarketCap),
				fmt.Sprintf("%d/%d", a.Score, risk.MaxScore),
				string(a.Label),
				fmt.Sprintf("%d", len(a.Warnings)),
			},
			Styles: map[int]lipgloss.Style{4: scoreStyle, 5: scoreStyle},
		}
	}
	m.table.SetRows(rows)
}

// Selected returns the highlighted entry
func (m *Model) Selected() (trending.Entry, bool) {
	i := m.table.GetSelectedRow()
	if i < 0 || i >= len(m.entries) {
		return trending.Entry{}, false
	}
	return m.entries[i], true
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(style.HeaderStyle.Render("memescope · trending risk"))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")

	if len(m.entries) == 0 {
		b.WriteString(style.MutedStyle.Render("Waiting for the first refresh..."))
	} else {
		panes := []string{m.table.View()}
		if m.showDetails {
			if e, ok := m.Selected(); ok {
				panes = append(panes, renderDetails(e))
			}
		}
		b.WriteString(style.AdaptiveJoinHorizontal(m.width, panes...))
	}

	if m.logPane != nil && m.logPane.IsVisible() {
		b.WriteString("\n")
		b.WriteString(m.logPane.View())
	}

	b.WriteString("\n")
	b.WriteString(style.HelpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m *Model) statusLine() string {
	parts := []string{fmt.Sprintf("%d tokens", len(m.entries))}
	if m.opts.Tier != "" {
		tier := fmt.Sprintf("tier: %s", m.opts.Tier)
		if m.opts.Limit > 0 {
			tier += fmt.Sprintf(" (top %d)", m.opts.Limit)
		}
		parts = append(parts, tier)
	}
	if m.lastRefresh.IsZero() {
		parts = append(parts, "never refreshed")
	} else {
		age := m.opts.Now().Sub(m.lastRefresh).Truncate(time.Second)
		parts = append(parts, fmt.Sprintf("refreshed %s ago", age))
	}
	return style.SubHeaderStyle.Render(strings.Join(parts, " · "))
}

func renderDetails(e trending.Entry) string {
	a := e.Assessment
	var b strings.Builder

	b.WriteString(style.SubHeaderStyle.Render(fmt.Sprintf("%s  %s", a.Symbol, a.Name)))
	b.WriteString("\n")
	if e.Snapshot.Address != "" {
		b.WriteString(style.MutedStyle.Render(logger.ShortenAddress(e.Snapshot.Address)))
		if e.Enriched {
			b.WriteString(style.MutedStyle.Render(" · on-chain holders"))
		}
		b.WriteString("\n")
	}
	b.WriteString(style.ScoreStyle(a.Color).Render(fmt.Sprintf("%d/%d %s", a.Score, risk.MaxScore, a.Label)))
	b.WriteString("\n\n")

	for _, f := range a.Factors {
		b.WriteString(fmt.Sprintf("%-22s %5.2f × %.2f = %.3f\n", f.Name, f.Value, f.Weight, f.Weighted))
	}
	if len(a.Warnings) > 0 {
		b.WriteString("\n")
		for _, w := range a.Warnings {
			b.WriteString(style.WarningStyle.Render("! " + w))
			b.WriteString("\n")
		}
	}
	return style.PanelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func formatMarketCap(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("$%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("$%.2fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("$%.1fK", v/1e3)
	default:
		return fmt.Sprintf("$%.0f", v)
	}
}
