package table

import (
	"bufio"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// maxCellWidth caps the display width of one rendered cell.
const maxCellWidth = 32

// Render writes the table as aligned text: a header of field names, a rule,
// then one line per row in virtual order. Widths are measured in terminal
// columns, so wide characters stay aligned.
func (t *Table) Render(w io.Writer) error {
	cells := make([][]string, 0, t.count+1)
	header := make([]string, len(t.fields))
	for i, f := range t.fields {
		header[i] = f.Name
	}
	cells = append(cells, header)
	for j := range t.count {
		rec, err := t.Record(j)
		if err != nil {
			return err
		}
		cells = append(cells, rec)
	}

	widths := make([]int, len(t.fields))
	for _, row := range cells {
		for i, s := range row {
			s = runewidth.Truncate(s, maxCellWidth, "…")
			row[i] = s
			widths[i] = max(widths[i], runewidth.StringWidth(s))
		}
	}

	bw := bufio.NewWriter(w)
	line := func(row []string) {
		for i, s := range row {
			if i > 0 {
				bw.WriteString(" | ")
			}
			if i == len(row)-1 {
				bw.WriteString(s)
			} else {
				bw.WriteString(runewidth.FillRight(s, widths[i]))
			}
		}
		bw.WriteByte('\n')
	}

	line(cells[0])
	rule := make([]string, len(widths))
	for i, n := range widths {
		rule[i] = strings.Repeat("-", n)
	}
	line(rule)
	for _, row := range cells[1:] {
		line(row)
	}
	return bw.Flush()
}
