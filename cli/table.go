package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// table renders aligned columns. Cells are plain text; widths are measured in terminal
// cells so names with wide runes line up.
type table struct {
	header []string
	rows   [][]string
	// right marks columns that are right-aligned, typically amounts.
	right map[int]bool
	// footer is printed under a rule, aligned like a row.
	footer []string
}

func newTable(header ...string) *table {
	return &table{header: header, right: make(map[int]bool)}
}

func (t *table) alignRight(cols ...int) *table {
	for _, c := range cols {
		t.right[c] = true
	}
	return t
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) render(w io.Writer) {
	widths := make([]int, len(t.header))
	measure := func(cells []string) {
		for i, cell := range cells {
			if i < len(widths) {
				widths[i] = max(widths[i], runewidth.StringWidth(cell))
			}
		}
	}
	measure(t.header)
	for _, row := range t.rows {
		measure(row)
	}
	measure(t.footer)

	line := func(cells []string) string {
		parts := make([]string, len(widths))
		for i := range widths {
			var cell string
			if i < len(cells) {
				cell = cells[i]
			}
			if t.right[i] {
				parts[i] = runewidth.FillLeft(cell, widths[i])
			} else {
				parts[i] = runewidth.FillRight(cell, widths[i])
			}
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}

	_, _ = fmt.Fprintln(w, headingStyle.Render(line(t.header)))
	for _, row := range t.rows {
		_, _ = fmt.Fprintln(w, line(row))
	}
	if t.footer != nil {
		total := 0
		for _, width := range widths {
			total += width
		}
		total += 2 * (len(widths) - 1)
		_, _ = fmt.Fprintln(w, strings.Repeat("─", total))
		_, _ = fmt.Fprintln(w, line(t.footer))
	}
}

// printFields prints label/value pairs with the values aligned.
func printFields(w io.Writer, fields [][2]string) {
	width := 0
	for _, f := range fields {
		width = max(width, runewidth.StringWidth(f[0]))
	}
	for _, f := range fields {
		_, _ = fmt.Fprintf(w, "  %s  %s\n", runewidth.FillRight(f[0], width), f[1])
	}
}
