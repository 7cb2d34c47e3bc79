package cli

import (
	"strings"
	"unicode/utf8"
)

const tableCellMaxWidth = 50
const tableCellEllipsis = "..."

// formatTable renders headers and rows as an aligned text table.
func formatTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, header := range headers {
		widths[i] = utf8.RuneCountInString(header)
	}

	normalized := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = truncateCell(cell)
			if i < len(widths) && utf8.RuneCountInString(cells[i]) > widths[i] {
				widths[i] = utf8.RuneCountInString(cells[i])
			}
		}
		normalized = append(normalized, cells)
	}

	var b strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(cell)
			if i < len(cells)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-utf8.RuneCountInString(cell)))
			}
		}
		b.WriteByte('\n')
	}

	writeRow(headers)
	for _, row := range normalized {
		writeRow(row)
	}
	return b.String()
}

func truncateCell(cell string) string {
	if utf8.RuneCountInString(cell) <= tableCellMaxWidth {
		return cell
	}
	runes := []rune(cell)
	return string(runes[:tableCellMaxWidth-len(tableCellEllipsis)]) + tableCellEllipsis
}
