package ui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

const (
	tableCellMaxWidth = 50
	tableCellEllipsis = "..."
	tableColumnGap    = "  "
)

// Align is the horizontal alignment of a table column.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

var cellBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ")

// TableBuilder collects rows and renders an aligned table. Widths are in
// terminal cells, so wide runes and ANSI-styled cells line up.
type TableBuilder struct {
	headers []string
	aligns  []Align
	rows    [][]string
}

// NewTableBuilder returns a builder with preallocated rows.
func NewTableBuilder(headers []string, capacity int) *TableBuilder {
	return &TableBuilder{
		headers: headers,
		aligns:  make([]Align, len(headers)),
		rows:    make([][]string, 0, capacity),
	}
}

// SetAlign sets the alignment of column i. Out-of-range columns are ignored.
func (builder *TableBuilder) SetAlign(i int, align Align) *TableBuilder {
	if i >= 0 && i < len(builder.aligns) {
		builder.aligns[i] = align
	}
	return builder
}

// AddRow appends a row to the table.
func (builder *TableBuilder) AddRow(row []string) {
	builder.rows = append(builder.rows, row)
}

// Len returns the number of rows added so far.
func (builder *TableBuilder) Len() int {
	return len(builder.rows)
}

// String renders the table output.
func (builder *TableBuilder) String() string {
	return renderTable(builder.headers, builder.aligns, builder.rows)
}

// FormatTable renders left-aligned headers and rows.
func FormatTable(headers []string, rows [][]string) string {
	return renderTable(headers, make([]Align, len(headers)), rows)
}

func renderTable(headers []string, aligns []Align, rows [][]string) string {
	grid := make([][]string, 0, len(rows)+1)
	grid = append(grid, normalizeRow(headers))
	for _, row := range rows {
		grid = append(grid, normalizeRow(row))
	}

	widths := make([]int, len(headers))
	for _, row := range grid {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], ansi.StringWidth(row[i]))
		}
	}

	var out strings.Builder
	for _, row := range grid {
		for i, cell := range row {
			last := i == len(row)-1
			pad := 0
			if i < len(widths) {
				pad = widths[i] - ansi.StringWidth(cell)
			}
			right := i < len(aligns) && aligns[i] == AlignRight
			if right {
				out.WriteString(strings.Repeat(" ", pad))
			}
			out.WriteString(cell)
			if last {
				break
			}
			if !right {
				out.WriteString(strings.Repeat(" ", pad))
			}
			out.WriteString(tableColumnGap)
		}
		out.WriteByte('\n')
	}
	return out.String()
}

func normalizeRow(row []string) []string {
	normalized := make([]string, len(row))
	for i, cell := range row {
		normalized[i] = cellBreaks.Replace(cell)
	}
	return normalized
}

// TruncateTableCell flattens line breaks and limits the cell width.
func TruncateTableCell(value string) string {
	return TruncateToWidth(cellBreaks.Replace(value), tableCellMaxWidth)
}

// TruncateToWidth shortens value to at most width terminal cells, ending in
// an ellipsis when anything was cut. ANSI codes are kept and not counted.
func TruncateToWidth(value string, width int) string {
	if width <= 0 {
		return ""
	}
	if ansi.StringWidth(value) <= width {
		return value
	}
	if width < len(tableCellEllipsis) {
		return tableCellEllipsis[:width]
	}
	return ansi.Truncate(value, width, tableCellEllipsis)
}
