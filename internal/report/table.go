package report

import (
	"strconv"
	"strings"
)

// Table is a rendered-ready report table. Rows hold pre-formatted cells.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Render formats the table in the psql border style. Numeric cells are
// right-aligned, everything else left-aligned.
func (t *Table) Render() string {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = len(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var sb strings.Builder
	writeBorder := func(sep string) {
		sb.WriteString(sep)
		for i, w := range widths {
			sb.WriteString(strings.Repeat("-", w+2))
			if i < len(widths)-1 {
				sb.WriteString(sep)
			}
		}
		sb.WriteString(sep)
		sb.WriteString("\n")
	}

	writeRow := func(cells []string) {
		sb.WriteString("|")
		for i, w := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			pad := strings.Repeat(" ", w-len(cell))
			if isNumeric(cell) {
				sb.WriteString(" " + pad + cell + " ")
			} else {
				sb.WriteString(" " + cell + pad + " ")
			}
			sb.WriteString("|")
		}
		sb.WriteString("\n")
	}

	writeBorder("+")
	writeRow(t.Headers)
	writeBorder("|")
	for _, row := range t.Rows {
		writeRow(row)
	}
	writeBorder("+")
	return strings.TrimSuffix(sb.String(), "\n")
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}
