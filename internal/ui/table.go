package ui

import (
	"strings"
	"unicode/utf8"
)

const tableCellMaxWidth = 50
const tableCellEllipsis = "..."

// TableBuilder collects rows and renders a formatted table.
type TableBuilder struct {
	headers []string
	rows    [][]string
}

// NewTableBuilder returns a builder with preallocated rows.
func NewTableBuilder(headers []string, capacity int) *TableBuilder {
	return &TableBuilder{headers: headers, rows: make([][]string, 0, capacity)}
}

// AddRow appends a row to the table. Cells are truncated to a readable width.
func (builder *TableBuilder) AddRow(row ...string) {
	cells := make([]string, len(row))
	for i, cell := range row {
		cells[i] = TruncateTableCell(cell)
	}
	builder.rows = append(builder.rows, cells)
}

// Len returns the number of rows added so far.
func (builder *TableBuilder) Len() int {
	return len(builder.rows)
}

// String renders the table output.
func (builder *TableBuilder) String() string {
	return FormatTable(builder.headers, builder.rows)
}

// FormatTable renders headers and rows as a left-aligned table with two
// spaces between columns. The last column is not padded.
func FormatTable(headers []string, rows [][]string) string {
	all := make([][]string, 0, len(rows)+1)
	all = append(all, normalizeRow(headers))
	for _, row := range rows {
		all = append(all, normalizeRow(row))
	}

	widths := make([]int, len(headers))
	for _, row := range all {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			widths[i] = max(widths[i], displayWidth(cell))
		}
	}

	var builder strings.Builder
	for _, row := range all {
		for i, cell := range row {
			builder.WriteString(cell)
			if i == len(row)-1 {
				break
			}
			if i < len(widths) {
				builder.WriteString(strings.Repeat(" ", widths[i]-displayWidth(cell)+2))
			}
		}
		builder.WriteByte('\n')
	}
	return builder.String()
}

// TruncateTableCell limits cell width while preserving visible characters.
func TruncateTableCell(value string) string {
	value = normalizeTableCell(value)
	if displayWidth(value) <= tableCellMaxWidth {
		return value
	}
	return truncateVisible(value, tableCellMaxWidth-len(tableCellEllipsis)) + tableCellEllipsis
}

func normalizeRow(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = normalizeTableCell(cell)
	}
	return out
}

func displayWidth(value string) int {
	return utf8.RuneCountInString(stripANSICodes(value))
}

func normalizeTableCell(value string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ").Replace(value)
}

// truncateVisible keeps at most limit visible runes, passing ANSI escape
// sequences through untouched.
func truncateVisible(value string, limit int) string {
	var builder strings.Builder
	visible := 0
	for i := 0; i < len(value); {
		if end := ansiSequenceEnd(value, i); end > i {
			builder.WriteString(value[i:end])
			i = end
			continue
		}
		if visible >= limit {
			break
		}
		_, size := utf8.DecodeRuneInString(value[i:])
		builder.WriteString(value[i : i+size])
		visible++
		i += size
	}
	return builder.String()
}

// ansiSequenceEnd returns the index just past an SGR sequence starting at i,
// or i if there is none.
func ansiSequenceEnd(value string, i int) int {
	if value[i] != '\x1b' || i+1 >= len(value) || value[i+1] != '[' {
		return i
	}
	end := i + 2
	for end < len(value) && value[end] != 'm' {
		end++
	}
	if end < len(value) {
		end++
	}
	return end
}

func stripANSICodes(input string) string {
	var builder strings.Builder
	for i := 0; i < len(input); {
		if end := ansiSequenceEnd(input, i); end > i {
			i = end
			continue
		}
		builder.WriteByte(input[i])
		i++
	}
	return builder.String()
}
