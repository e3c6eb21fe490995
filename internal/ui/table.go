package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column defines a table column.
type Column struct {
	Title string
	Width int
	Right bool // right-align, for amounts
}

// Row is a slice of cell values.
type Row []string

// Table renders a lipgloss-styled table.
type Table struct {
	Columns []Column
	Rows    []Row
	SelIdx  int // selected row index (-1 = none)
}

// NewTable creates a new table.
func NewTable(cols []Column) *Table {
	return &Table{Columns: cols, SelIdx: -1}
}

// AddRow appends a row.
func (t *Table) AddRow(r Row) {
	t.Rows = append(t.Rows, r)
}

// Render returns the full table as a string. Cells may already carry ANSI
// styling; widths are measured in visible columns.
func (t *Table) Render() string {
	var sb strings.Builder

	headerStyle := lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(ColorMeta)

	var headers, divider []string
	for _, col := range t.Columns {
		headers = append(headers, headerStyle.Render(fit(col.Title, col)))
		divider = append(divider, dimStyle.Render(strings.Repeat("─", col.Width)))
	}
	sb.WriteString(strings.Join(headers, " ") + "\n")
	sb.WriteString(strings.Join(divider, " ") + "\n")

	for i, row := range t.Rows {
		cells := make([]string, len(t.Columns))
		for j, col := range t.Columns {
			val := ""
			if j < len(row) {
				val = row[j]
			}
			cells[j] = fit(val, col)
		}
		line := strings.Join(cells, " ")
		if i == t.SelIdx {
			line = StyleSelected.Render(line)
		}
		sb.WriteString(line + "\n")
	}
	return sb.String()
}

// fit pads or truncates s to exactly col.Width visible columns.
func fit(s string, col Column) string {
	w := lipgloss.Width(s)
	if w > col.Width {
		s = lipgloss.NewStyle().MaxWidth(col.Width).Render(s)
		w = lipgloss.Width(s)
	}
	if col.Right {
		return spaces(col.Width-w) + s
	}
	return s + spaces(col.Width-w)
}

// KeyValueBlock renders a set of key-value pairs in a bordered box.
func KeyValueBlock(title string, pairs [][2]string) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString(StyleTitle.Render(title))
		sb.WriteString("\n")
	}
	for _, p := range pairs {
		key := StyleMeta.Render(fmt.Sprintf("%-16s", p[0]+":"))
		sb.WriteString("  " + key + " " + StyleValue.Render(p[1]) + "\n")
	}
	return StyleBorder.Render(strings.TrimSuffix(sb.String(), "\n"))
}
