package mdevent

import (
	"bytes"
	"regexp"
	"sort"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// flattener walks a goldmark AST and appends events in source order.
//
// Goldmark keeps byte segments for the content lines of leaf blocks but not
// for block markers, so the start of a container is located by scanning the
// source forward from the end of the previously emitted construct.
type flattener struct {
	src    []byte
	events []Event
	// from is the offset just past the last construct emitted.
	from int
	// quotes is the number of enclosing block quotes.
	quotes int
}

func newFlattener(src []byte) *flattener {
	return &flattener{src: src}
}

func (f *flattener) emit(ev Event) int {
	f.events = append(f.events, ev)
	return len(f.events) - 1
}

// open emits a Start event whose end is patched by close.
func (f *flattener) open(kind Kind, start int, attrs Attrs) int {
	return f.emit(Event{Type: Start, Kind: kind, Range: Range{Start: start, End: start}, Attrs: attrs})
}

func (f *flattener) close(idx int, end int) Range {
	ev := &f.events[idx]
	if end < ev.Range.Start {
		end = ev.Range.Start
	}
	ev.Range.End = end
	f.emit(Event{Type: End, Kind: ev.Kind, Range: ev.Range})
	if end > f.from {
		f.from = end
	}
	return ev.Range
}

// clampRanges bounds every range by the source, so events recovered from
// an unusual nesting never point past its end.
func (f *flattener) clampRanges() {
	for i := range f.events {
		r := &f.events[i].Range
		r.Start = clamp(r.Start, 0, len(f.src))
		r.End = clamp(r.End, r.Start, len(f.src))
	}
}

// blocks emits the block children of parent and returns the largest end
// offset among them.
func (f *flattener) blocks(parent ast.Node) int {
	end := -1
	for _, child := range f.children(parent) {
		if r, ok := f.block(child); ok && r.End > end {
			end = r.End
		}
	}
	return end
}

// children returns the block children of parent in source order. Footnote
// definitions are collected by goldmark into a list at the position of the
// first definition; they are put back where they were written.
func (f *flattener) children(parent ast.Node) []ast.Node {
	var (
		others []ast.Node
		notes  []ast.Node
	)
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		if list, ok := c.(*east.FootnoteList); ok {
			for d := list.FirstChild(); d != nil; d = d.NextSibling() {
				notes = append(notes, d)
			}
			continue
		}
		others = append(others, c)
	}
	if len(notes) == 0 {
		return others
	}

	anchor := make(map[ast.Node]int, len(notes))
	for _, n := range notes {
		anchor[n] = f.footnoteAnchor(n)
	}
	sort.SliceStable(notes, func(i, j int) bool { return anchor[notes[i]] < anchor[notes[j]] })

	out := make([]ast.Node, 0, len(others)+len(notes))
	for _, o := range others {
		if start := contentStart(o); start >= 0 {
			for len(notes) > 0 && anchor[notes[0]] < start {
				out = append(out, notes[0])
				notes = notes[1:]
			}
		}
		out = append(out, o)
	}
	return append(out, notes...)
}

func (f *flattener) footnoteAnchor(n ast.Node) int {
	if fn, ok := n.(*east.Footnote); ok {
		marker := append(append([]byte("[^"), fn.Ref...), ']', ':')
		if idx := bytes.Index(f.src, marker); idx >= 0 {
			return idx
		}
	}
	return contentStart(n)
}

// contentStart returns the first content byte of n, or -1 if no descendant
// carries a line segment.
func contentStart(n ast.Node) int {
	if n.Type() == ast.TypeBlock {
		if lines := n.Lines(); lines != nil && lines.Len() > 0 {
			return lines.At(0).Start
		}
	} else {
		return -1
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if start := contentStart(c); start >= 0 {
			return start
		}
	}
	return -1
}

// segEnd returns the end of the source line holding the last byte of seg.
func (f *flattener) segEnd(seg text.Segment) int {
	last := seg.Stop - 1
	if last < seg.Start {
		last = seg.Start
	}
	return lineEnd(f.src, last)
}

func (f *flattener) block(n ast.Node) (Range, bool) {
	switch node := n.(type) {
	case *ast.Paragraph:
		return f.paragraph(node, node.Lines(), Paragraph)
	case *ast.TextBlock:
		return f.paragraph(node, node.Lines(), KindNone)
	case *ast.Heading:
		return f.heading(node), true
	case *ast.ThematicBreak:
		return f.rule(), true
	case *ast.FencedCodeBlock:
		return f.fencedCode(node), true
	case *ast.CodeBlock:
		return f.indentedCode(node)
	case *ast.Blockquote:
		return f.blockquote(node), true
	case *ast.List:
		return f.list(node), true
	case *ast.ListItem:
		return f.item(node), true
	case *ast.HTMLBlock:
		return f.htmlBlock(node)
	case *east.Table:
		return f.table(node), true
	case *east.Footnote:
		return f.footnote(node), true
	case *east.DefinitionList:
		idx := f.open(DefinitionList, skipPrefix(f.src, f.from), Attrs{})
		f.events[idx].Range.Start = f.firstChildStart(node, f.events[idx].Range.Start)
		return f.close(idx, f.blocks(node)), true
	case *east.DefinitionTerm:
		return f.paragraph(node, node.Lines(), DefinitionListTitle)
	case *east.DefinitionDescription:
		return f.description(node), true
	default:
		if n.Type() != ast.TypeBlock {
			return Range{}, false
		}
		end := f.blocks(n)
		if end < 0 {
			return Range{}, false
		}
		return Range{Start: f.from, End: end}, true
	}
}

// firstChildStart returns the content start of the first child of n, or def.
func (f *flattener) firstChildStart(n ast.Node, def int) int {
	if start := contentStart(n); start >= 0 && start < def {
		return start
	}
	return def
}

// paragraph emits an inline container. kind KindNone emits the inline
// events without a surrounding Start/End pair.
func (f *flattener) paragraph(n ast.Node, segs *text.Segments, kind Kind) (Range, bool) {
	lines := segments(segs)
	if len(lines) == 0 {
		return Range{}, false
	}
	r := Range{Start: lines[0].Start, End: f.segEnd(lines[len(lines)-1])}
	idx := -1
	if kind != KindNone {
		idx = f.open(kind, r.Start, Attrs{})
	}
	newInliner(f, lines).run(n)
	if idx >= 0 {
		return f.close(idx, r.End), true
	}
	if r.End > f.from {
		f.from = r.End
	}
	return r, true
}

func segments(segs *text.Segments) []text.Segment {
	if segs == nil {
		return nil
	}
	out := make([]text.Segment, 0, segs.Len())
	for i := 0; i < segs.Len(); i++ {
		out = append(out, segs.At(i))
	}
	return out
}

func (f *flattener) heading(n *ast.Heading) Range {
	lines := segments(n.Lines())
	attrs := Attrs{Level: n.Level}

	if len(lines) == 0 {
		start := skipPrefix(f.src, f.from)
		idx := f.open(Heading, start, attrs)
		return f.close(idx, lineEnd(f.src, start))
	}

	cs := lines[0].Start
	marker := skipPrefix(f.src, clamp(f.from, lineStart(f.src, cs), cs))
	var start, end int
	if marker < cs && marker < len(f.src) && f.src[marker] == '#' {
		start, end = marker, lineEnd(f.src, cs)
	} else {
		// Setext: content lines followed by the underline.
		start = cs
		end = lineEnd(f.src, f.segEnd(lines[len(lines)-1]))
	}
	idx := f.open(Heading, start, attrs)
	newInliner(f, lines).run(n)
	return f.close(idx, end)
}

func (f *flattener) rule() Range {
	start := skipPrefix(f.src, f.from)
	end := lineEnd(f.src, start)
	r := Range{Start: start, End: end}
	f.emit(Event{Type: Leaf, Kind: Rule, Range: r, Value: string(f.src[start:trimLineEnd(f.src, start, end)])})
	f.from = end
	return r
}

// findFence returns the offset and length of the first run of three or
// more backticks or tildes in src[from:limit].
func (f *flattener) findFence(from, limit int) (int, int) {
	for pos := from; pos < limit; pos++ {
		ch := f.src[pos]
		if ch != '`' && ch != '~' {
			continue
		}
		run := 0
		for pos+run < len(f.src) && f.src[pos+run] == ch {
			run++
		}
		if run >= 3 {
			return pos, run
		}
		pos += run - 1
	}
	return skipPrefix(f.src, from), 0
}

func (f *flattener) fencedCode(n *ast.FencedCodeBlock) Range {
	lines := segments(n.Lines())
	limit := len(f.src)
	if len(lines) > 0 {
		limit = lines[0].Start
	}
	start, run := f.findFence(f.from, limit)
	fence := "```"
	if run > 0 {
		fence = string(f.src[start : start+run])
	}
	attrs := Attrs{Fence: fence}
	if n.Info != nil {
		attrs.Info = string(bytes.TrimSpace(n.Info.Segment.Value(f.src)))
	}

	idx := f.open(CodeBlock, start, attrs)
	end := lineEnd(f.src, start)
	for _, seg := range lines {
		f.emit(Event{Type: Leaf, Kind: Text, Range: Range{Start: seg.Start, End: seg.Stop}, Value: string(seg.Value(f.src))})
		end = f.segEnd(seg)
	}
	if f.isClosingFence(end, fence) {
		end = lineEnd(f.src, end)
	}
	return f.close(idx, end)
}

func (f *flattener) isClosingFence(pos int, fence string) bool {
	if pos >= len(f.src) {
		return false
	}
	end := lineEnd(f.src, pos)
	pos = skipPrefixInLine(f.src, pos, end)
	run := 0
	for pos+run < end && f.src[pos+run] == fence[0] {
		run++
	}
	if run < len(fence) {
		return false
	}
	return trimLineEnd(f.src, pos+run, end) == pos+run
}

func skipPrefixInLine(src []byte, pos, end int) int {
	for pos < end && (src[pos] == ' ' || src[pos] == '\t' || src[pos] == '>') {
		pos++
	}
	return pos
}

func (f *flattener) indentedCode(n *ast.CodeBlock) (Range, bool) {
	lines := segments(n.Lines())
	if len(lines) == 0 {
		return Range{}, false
	}
	idx := f.open(CodeBlock, lines[0].Start, Attrs{})
	end := lines[0].Start
	for _, seg := range lines {
		f.emit(Event{Type: Leaf, Kind: Text, Range: Range{Start: seg.Start, End: seg.Stop}, Value: string(seg.Value(f.src))})
		end = f.segEnd(seg)
	}
	return f.close(idx, end), true
}

var admonitionPattern = regexp.MustCompile(`^\[!(?i:(NOTE|TIP|IMPORTANT|WARNING|CAUTION))\]$`)

func (f *flattener) blockquote(n *ast.Blockquote) Range {
	f.quotes++
	defer func() { f.quotes-- }()

	start := f.quoteMarker(n)
	attrs := Attrs{}
	var first *ast.Paragraph
	if p, ok := n.FirstChild().(*ast.Paragraph); ok && p.Lines().Len() > 0 {
		seg := p.Lines().At(0)
		line := f.src[seg.Start:trimLineEnd(f.src, seg.Start, seg.Stop)]
		if m := admonitionPattern.FindSubmatch(line); m != nil {
			attrs.Admonition = string(bytes.ToUpper(m[1]))
			first = p
		}
	}

	idx := f.open(BlockQuote, start, attrs)
	f.from = start + 1
	end := lineEnd(f.src, start)
	for _, child := range f.children(n) {
		var (
			r  Range
			ok bool
		)
		if child == first {
			// The alert line is carried by the quote's attributes.
			f.from = f.segEnd(first.Lines().At(0))
			lines := segments(first.Lines())[1:]
			if len(lines) == 0 {
				continue
			}
			r = Range{Start: lines[0].Start, End: f.segEnd(lines[len(lines)-1])}
			pidx := f.open(Paragraph, r.Start, Attrs{})
			newInliner(f, lines).run(first)
			r, ok = f.close(pidx, r.End), true
		} else {
			r, ok = f.block(child)
		}
		if ok && r.End > end {
			end = r.End
		}
	}
	return f.close(idx, end)
}

// quoteMarker locates the `>` opening the quote. When f.from is inside a
// line, such as just after a parent marker, it is the next marker on that
// line. Otherwise it is the marker at the quote's depth on the first line
// that has one, which skips the blank quote lines of enclosing quotes.
func (f *flattener) quoteMarker(n ast.Node) int {
	limit := len(f.src)
	if cs := contentStart(n); cs >= 0 {
		limit = lineEnd(f.src, cs)
	}

	pos := min(f.from, len(f.src))
	if pos > lineStart(f.src, pos) {
		if m := nthMarker(f.src, pos, 1); m >= 0 {
			return m
		}
		pos = lineEnd(f.src, pos)
	}
	for pos < limit {
		if m := nthMarker(f.src, pos, f.quotes); m >= 0 {
			return m
		}
		pos = lineEnd(f.src, pos)
	}
	return skipSpace(f.src, f.from)
}

// nthMarker returns the offset of the n-th `>` in the run of spaces, tabs
// and markers starting at pos, or -1 when the run is shorter.
func nthMarker(src []byte, pos, n int) int {
	seen := 0
	for ; pos < len(src); pos++ {
		switch src[pos] {
		case '>':
			seen++
			if seen == n {
				return pos
			}
		case ' ', '\t':
		default:
			return -1
		}
	}
	return -1
}

func (f *flattener) list(n *ast.List) Range {
	attrs := Attrs{Ordered: n.IsOrdered(), StartNumber: n.Start, Tight: n.IsTight}
	start := f.itemMarker(f.from)
	idx := f.open(List, start, attrs)
	end := lineEnd(f.src, start)
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if r, ok := f.block(c); ok && r.End > end {
			end = r.End
		}
	}
	return f.close(idx, end)
}

// itemMarker returns the offset of the next list marker at or after from.
func (f *flattener) itemMarker(from int) int {
	return skipPrefix(f.src, from)
}

func (f *flattener) item(n *ast.ListItem) Range {
	start := f.itemMarker(f.from)
	idx := f.open(Item, start, Attrs{})
	f.from = markerEnd(f.src, start)
	end := lineEnd(f.src, start)
	if e := f.blocks(n); e > end {
		end = e
	}
	return f.close(idx, end)
}

// markerEnd returns the offset just past a bullet or ordinal list marker.
func markerEnd(src []byte, pos int) int {
	for pos < len(src) && src[pos] >= '0' && src[pos] <= '9' {
		pos++
	}
	if pos < len(src) {
		switch src[pos] {
		case '-', '+', '*', '.', ')':
			pos++
		}
	}
	return pos
}

func (f *flattener) htmlBlock(n *ast.HTMLBlock) (Range, bool) {
	lines := segments(n.Lines())
	if n.HasClosure() {
		lines = append(lines, n.ClosureLine)
	}
	if len(lines) == 0 {
		return Range{}, false
	}
	start := lines[0].Start
	for start < lines[0].Stop && (f.src[start] == ' ' || f.src[start] == '\t') {
		start++
	}
	idx := f.open(HTMLBlock, start, Attrs{})
	end := start
	for i, seg := range lines {
		from := seg.Start
		if i == 0 {
			from = start
		}
		end = f.segEnd(seg)
		f.emit(Event{Type: Leaf, Kind: HTML, Range: Range{Start: from, End: end}, Value: string(f.src[from:end])})
	}
	return f.close(idx, end), true
}

func (f *flattener) table(n *east.Table) Range {
	start := skipSpace(f.src, f.from)
	if f.quotes > 0 {
		start = skipPrefix(f.src, f.from)
	}
	idx := f.open(Table, start, Attrs{})

	// Rows occupy consecutive lines: header, delimiter, then body rows.
	pos := start
	row := 0
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		kind := TableRow
		if _, ok := c.(*east.TableHeader); ok {
			kind = TableHead
		}
		end := lineEnd(f.src, pos)
		ridx := f.open(kind, pos, Attrs{})
		for cell := c.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cr := Range{Start: pos, End: pos}
			if lines := cell.Lines(); lines != nil && lines.Len() > 0 {
				cr = Range{Start: lines.At(0).Start, End: lines.At(lines.Len() - 1).Stop}
			}
			f.emit(Event{Type: Start, Kind: TableCell, Range: cr})
			f.emit(Event{Type: End, Kind: TableCell, Range: cr})
		}
		f.close(ridx, end)
		pos = end
		if row == 0 {
			// Skip the delimiter row.
			pos = lineEnd(f.src, pos)
		}
		row++
	}
	return f.close(idx, pos)
}

func (f *flattener) footnote(n *east.Footnote) Range {
	start := skipPrefix(f.src, f.from)
	if idx := bytes.Index(f.src[start:], []byte("[^")); idx >= 0 {
		start += idx
	}
	idx := f.open(FootnoteDefinition, start, Attrs{Label: string(n.Ref)})
	f.from = start
	if c := bytes.Index(f.src[start:], []byte("]:")); c >= 0 {
		f.from = start + c + 2
	}
	end := lineEnd(f.src, start)
	if e := f.blocks(n); e > end {
		end = e
	}
	return f.close(idx, end)
}

func (f *flattener) description(n *east.DefinitionDescription) Range {
	start := skipPrefix(f.src, f.from)
	idx := f.open(DefinitionListDefinition, start, Attrs{Tight: n.IsTight})
	f.from = start + 1
	end := lineEnd(f.src, start)
	if e := f.blocks(n); e > end {
		end = e
	}
	return f.close(idx, end)
}
