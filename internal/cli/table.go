package cli

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/jmylchreest/prism/internal/colour"
)

// columnGap separates adjacent columns.
const columnGap = "  "

// Table is a plain-text table with dynamic column widths. Cells may carry
// ANSI colour swatches; widths are measured on the visible text.
type Table struct {
	headers   []string
	rows      [][]string
	maxWidths map[int]int
}

// NewTable creates a new table with the given headers.
func NewTable(headers []string) *Table {
	return &Table{
		headers:   headers,
		maxWidths: make(map[int]int),
	}
}

// SetColumnMaxWidth wraps cells of column col at word boundaries so that no
// line is wider than maxWidth.
func (t *Table) SetColumnMaxWidth(col int, maxWidth int) {
	t.maxWidths[col] = maxWidth
}

// AddRow adds a row, padding or truncating it to the header count.
func (t *Table) AddRow(row []string) {
	cells := make([]string, len(t.headers))
	copy(cells, row)
	t.rows = append(t.rows, cells)
}

// Render formats the table. A table without headers renders as "".
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	// Each row becomes one or more physical lines per cell.
	rows := make([][][]string, len(t.rows))
	for r, row := range t.rows {
		rows[r] = make([][]string, len(row))
		for c, cell := range row {
			rows[r][c] = wrapText(cell, t.maxWidths[c])
		}
	}

	widths := make([]int, len(t.headers))
	for c, h := range t.headers {
		widths[c] = visibleWidth(h)
	}
	for _, row := range rows {
		for c, lines := range row {
			for _, line := range lines {
				widths[c] = max(widths[c], visibleWidth(line))
			}
		}
	}

	var b strings.Builder
	writeLine := func(cells []string) {
		for c, cell := range cells {
			if c > 0 {
				b.WriteString(columnGap)
			}
			b.WriteString(padRight(cell, widths[c]))
		}
		b.WriteByte('\n')
	}

	writeLine(t.headers)
	sep := make([]string, len(widths))
	for c, w := range widths {
		sep[c] = strings.Repeat("-", w)
	}
	writeLine(sep)

	for _, row := range rows {
		height := 1
		for _, lines := range row {
			height = max(height, len(lines))
		}
		for i := range height {
			cells := make([]string, len(row))
			for c, lines := range row {
				if i < len(lines) {
					cells[c] = lines[i]
				}
			}
			writeLine(cells)
		}
	}
	return b.String()
}

// visibleWidth is the number of runes s occupies on screen, ignoring escape
// sequences.
func visibleWidth(s string) int {
	return utf8.RuneCountInString(colour.StripANSI(s))
}

// padRight pads s with spaces to width visible columns. Wider strings are
// returned unchanged.
func padRight(s string, width int) string {
	w := visibleWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// wrapText breaks text at spaces into lines of at most width bytes, splitting
// words that are longer than width. A width of zero or less disables wrapping.
func wrapText(text string, width int) []string {
	if width <= 0 || visibleWidth(text) <= width {
		return []string{text}
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{text}
	}

	var lines []string
	line := ""
	flush := func() {
		if line != "" {
			lines = append(lines, line)
			line = ""
		}
	}
	for _, word := range words {
		if len(word) > width {
			flush()
			for len(word) > width {
				lines = append(lines, word[:width])
				word = word[width:]
			}
			line = word
			continue
		}
		switch {
		case line == "":
			line = word
		case len(line)+1+len(word) <= width:
			line += " " + word
		default:
			flush()
			line = word
		}
	}
	flush()
	return slices.Clip(lines)
}
