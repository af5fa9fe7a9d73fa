package component

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/memescope/internal/ui/style"
)

// TableColumn represents a column configuration
type TableColumn struct {
	Header string
	Width  int
	Align  lipgloss.Position
}

// TableRow represents a row of data
type TableRow struct {
	Data []string
	// Styles, если задан, окрашивает отдельные ячейки.
	Styles map[int]lipgloss.Style
}

// Table represents a data table component
type Table struct {
	columns     []TableColumn
	rows        []TableRow
	selectedRow int
	selectable  bool

	headerStyle      lipgloss.Style
	rowStyle         lipgloss.Style
	selectedRowStyle lipgloss.Style
	borderStyle      lipgloss.Style
}

// NewTable creates a new table component
func NewTable() *Table {
	palette := style.DefaultPalette()

	return &Table{
		headerStyle: lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true).
			Padding(0, 1),

		rowStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 1),

		selectedRowStyle: lipgloss.NewStyle().
			Foreground(palette.Background).
			Background(palette.Primary).
			Padding(0, 1),

		borderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.TextMuted),

		selectable: true,
	}
}

// SetSelectable enables/disables row selection
func (t *Table) SetSelectable(selectable bool) *Table {
	t.selectable = selectable
	return t
}

// AddColumn adds a column to the table
func (t *Table) AddColumn(header string, width int, align lipgloss.Position) *Table {
	t.columns = append(t.columns, TableColumn{Header: header, Width: width, Align: align})
	return t
}

// SetRows replaces all rows and keeps the selection in range
func (t *Table) SetRows(rows []TableRow) *Table {
	t.rows = rows
	if t.selectedRow >= len(rows) {
		t.selectedRow = len(rows) - 1
	}
	if t.selectedRow < 0 {
		t.selectedRow = 0
	}
	return t
}

// GetSelectedRow returns the currently selected row index
func (t *Table) GetSelectedRow() int {
	return t.selectedRow
}

// MoveUp moves selection up
func (t *Table) MoveUp() *Table {
	if t.selectedRow > 0 {
		t.selectedRow--
	}
	return t
}

// MoveDown moves selection down
func (t *Table) MoveDown() *Table {
	if t.selectedRow < len(t.rows)-1 {
		t.selectedRow++
	}
	return t
}

// GetRowCount returns the number of rows
func (t *Table) GetRowCount() int {
	return len(t.rows)
}

// View renders the table
func (t *Table) View() string {
	if len(t.columns) == 0 {
		return "No columns defined"
	}

	var content strings.Builder

	cells := make([]string, len(t.columns))
	for i, col := range t.columns {
		cells[i] = renderCell(col.Header, col.Width, col.Align, t.headerStyle)
	}
	content.WriteString(strings.Join(cells, "│"))
	content.WriteString("\n")

	seps := make([]string, len(t.columns))
	for i, col := range t.columns {
		seps[i] = strings.Repeat("─", col.Width)
	}
	content.WriteString(strings.Join(seps, "┼"))

	for rowIndex, row := range t.rows {
		content.WriteString("\n")
		selected := t.selectable && rowIndex == t.selectedRow
		for i, col := range t.columns {
			cellData := ""
			if i < len(row.Data) {
				cellData = row.Data[i]
			}
			cellStyle := t.rowStyle
			if selected {
				cellStyle = t.selectedRowStyle
			} else if s, ok := row.Styles[i]; ok {
				cellStyle = s.Padding(0, 1)
			}
			content.WriteString(renderCell(cellData, col.Width, col.Align, cellStyle))
			if i < len(t.columns)-1 {
				content.WriteString("│")
			}
		}
	}

	return t.borderStyle.Render(content.String())
}

// renderCell renders a single table cell
func renderCell(content string, width int, align lipgloss.Position, style lipgloss.Style) string {
	inner := width - style.GetHorizontalPadding()
	if r := []rune(content); inner > 0 && len(r) > inner {
		if inner > 3 {
			content = string(r[:inner-3]) + "..."
		} else {
			content = string(r[:inner])
		}
	}
	return style.Width(width).Align(align).Render(content)
}
