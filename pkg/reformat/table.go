package reformat

import (
	"regexp"
	"strings"

	"github.com/yaklabco/gomdwrap/pkg/mdevent"
	"github.com/yaklabco/gomdwrap/pkg/wrap"
)

type alignment int

const (
	alignNone alignment = iota
	alignLeft
	alignRight
	alignCenter
)

// tableCell is the text between two pipes.
type tableCell struct {
	text string
	// start is the source offset of text.
	start int
	// span is the source range between the pipes.
	span mdevent.Range
}

// tableRow is one source line of a table.
type tableRow struct {
	rng   mdevent.Range
	cells []tableCell
	// piped is false for a line without any cell delimiter.
	piped bool
}

var delimiterCell = regexp.MustCompile(`^:?-+:?$`)

// splitRow tokenizes a table line starting at source offset off.
func splitRow(line string, off int) tableRow {
	line = strings.TrimRight(line, " \t")
	row := tableRow{rng: mdevent.Range{Start: off, End: off + len(line)}}

	var bounds []int
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case '|':
			bounds = append(bounds, i)
		}
	}
	if len(bounds) == 0 {
		return row
	}
	row.piped = true

	lead := len(line) - len(strings.TrimLeft(line, " \t"))
	from := 0
	if bounds[0] == lead {
		from = bounds[0] + 1
		bounds = bounds[1:]
	}
	for _, b := range bounds {
		row.cells = append(row.cells, newCell(line, from, b, off))
		from = b + 1
	}
	if from < len(line) || len(bounds) == 0 {
		row.cells = append(row.cells, newCell(line, from, len(line), off))
	}
	return row
}

func newCell(line string, from, to, off int) tableCell {
	raw := line[from:to]
	lead := len(raw) - len(strings.TrimLeft(raw, " \t"))
	text := strings.TrimSpace(raw)
	return tableCell{
		text:  text,
		start: off + from + lead,
		span:  mdevent.Range{Start: off + from, End: off + to},
	}
}

func (r tableRow) isDelimiter() bool {
	if !r.piped || len(r.cells) == 0 {
		return false
	}
	for _, c := range r.cells {
		if !delimiterCell.MatchString(c.text) {
			return false
		}
	}
	return true
}

func cellAlignment(text string) alignment {
	left := strings.HasPrefix(text, ":")
	right := strings.HasSuffix(text, ":")
	switch {
	case left && right:
		return alignCenter
	case left:
		return alignLeft
	case right:
		return alignRight
	}
	return alignNone
}

// delimiter renders a delimiter cell for a column of content width w.
func delimiter(w int, a alignment) string {
	switch a {
	case alignLeft:
		return ":" + strings.Repeat("-", w+1)
	case alignRight:
		return strings.Repeat("-", w+1) + ":"
	case alignCenter:
		return ":" + strings.Repeat("-", w) + ":"
	}
	return strings.Repeat("-", w+2)
}

// tableRows reads the source lines of a table, removing the container
// prefixes of all lines but the first.
func (f *formatter) tableRows(rng mdevent.Range) []tableRow {
	var rows []tableRow
	for start := rng.Start; start < rng.End; {
		next := min(lineEnd(f.src, start), rng.End)
		line := strings.TrimRight(f.src[start:next], "\r\n")
		skip := 0
		if start != rng.Start {
			skip = f.containerPrefix(line)
		}
		if strings.TrimSpace(line[skip:]) != "" {
			rows = append(rows, splitRow(line[skip:], start+skip))
		}
		start = next
	}
	return rows
}

// containerPrefix returns the length of the indentation and quote markers
// in front of a table line.
func (f *formatter) containerPrefix(line string) int {
	quotes := f.quotes
	i := 0
	for i < len(line) {
		switch {
		case line[i] == ' ' || line[i] == '\t':
			i++
		case line[i] == '>' && quotes > 0:
			i++
			quotes--
		default:
			return i
		}
	}
	return i
}

// table re-renders a table from its source lines with the columns padded
// to the width of the header cells.
func (f *formatter) table(start mdevent.Event, out *output) {
	f.indent.enterFrame()
	f.skipTo(mdevent.Table)

	rows := f.tableRows(start.Range)
	if len(rows) == 0 {
		f.indent.take()
		f.indent.leaveFrame()
		return
	}

	header := rows[0]
	widths := make([]int, len(header.cells))
	widest := 1
	for i, c := range header.cells {
		widths[i] = max(wrap.StringWidth(c.text), 1)
		widest = max(widest, widths[i])
	}
	if f.opts.TableColumnsEqualWidth {
		for i := range widths {
			widths[i] = widest
		}
	}

	delim := len(rows) > 1 && rows[1].isDelimiter()
	aligns := make([]alignment, len(widths))
	if delim {
		for i, c := range rows[1].cells {
			if i < len(aligns) {
				aligns[i] = cellAlignment(c.text)
			}
		}
	}

	for i, row := range rows {
		f.indent.firstOut(out)
		begin := out.len()
		inCell := false
		switch {
		case !row.piped:
			out.write(f.borrow(row.rng.Start, row.rng.End))
			inCell = true
		case i == 1 && delim:
			inCell = f.delimiterRow(row, widths, aligns, out)
		default:
			inCell = f.tableRow(row, widths, out)
		}
		if !inCell && row.rng.Start <= out.target && out.target <= row.rng.End {
			if len(row.cells) > 0 && out.target > row.cells[len(row.cells)-1].span.End {
				out.setCursor(out.len())
			} else {
				out.setCursor(begin)
			}
		}
		out.writeString(f.newline)
	}
	out.trailing = false
	f.indent.leaveFrame()
}

func (f *formatter) delimiterRow(row tableRow, widths []int, aligns []alignment, out *output) bool {
	found := false
	for c, w := range widths {
		if c < len(row.cells) && row.cells[c].span.Contains(out.target) {
			out.setCursor(out.len() + 1)
			found = true
		}
		out.writeString("|" + delimiter(w, aligns[c]))
	}
	out.writeString("|")
	return found
}

// tableRow writes the cells of a row padded to widths. Cells beyond the
// header are kept unless empty.
func (f *formatter) tableRow(row tableRow, widths []int, out *output) bool {
	found := false
	for c := range max(len(widths), len(row.cells)) {
		var cell tableCell
		if c < len(row.cells) {
			cell = row.cells[c]
		}
		if c >= len(widths) && cell.text == "" {
			continue
		}

		out.writeString("| ")
		if c < len(row.cells) {
			pos := out.len()
			out.write(f.borrow(cell.start, cell.start+len(cell.text)))
			if cell.span.Start <= out.target && out.target <= cell.span.End {
				out.setCursor(pos + clamp(out.target-cell.start, 0, len(cell.text)))
				found = true
			}
		}
		pad := 0
		if c < len(widths) {
			pad = max(widths[c]-wrap.StringWidth(cell.text), 0)
		}
		out.writeString(strings.Repeat(" ", pad) + " ")
	}
	out.writeString("|")
	return found
}
