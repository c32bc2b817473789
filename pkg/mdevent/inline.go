package mdevent

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// inliner emits the inline events of one block.
//
// Element boundaries come from the goldmark inline nodes; the text between
// elements is taken verbatim from the block's content lines, so escapes and
// entities are reported as written. Line prefixes (quote markers, list
// indentation) lie outside the content segments and never appear in events.
type inliner struct {
	f     *flattener
	lines []lineSpan
	// pos is the offset up to which events have been emitted.
	pos int
	// anchor is where the search for the next element marker starts.
	anchor int
	end    int
}

type lineSpan struct {
	start int
	// text is the end of the line's content without trailing whitespace.
	text int
	// stop is the end of the content segment.
	stop int
	// brk is where the line break starts; hard reports a hard break.
	brk  int
	hard bool
}

func newInliner(f *flattener, segs []text.Segment) *inliner {
	in := &inliner{f: f}
	for i, seg := range segs {
		start := seg.Start
		if i > 0 {
			for start < seg.Stop && (f.src[start] == ' ' || f.src[start] == '\t') {
				start++
			}
		}
		end := trimLineEnd(f.src, start, seg.Stop)
		span := lineSpan{start: start, text: end, stop: seg.Stop, brk: end}
		if i < len(segs)-1 {
			span.stop = segs[i+1].Start
			trail := f.src[end:lineEnd(f.src, end)]
			spaces := len(trail) - len(bytes.TrimLeft(trail, " "))
			switch {
			case spaces >= 2:
				span.hard = true
			case end > start && f.src[end-1] == '\\' && !escaped(f.src, start, end-1):
				span.hard = true
				span.text = end - 1
				span.brk = end - 1
			}
		}
		in.lines = append(in.lines, span)
	}
	if len(in.lines) > 0 {
		in.pos = in.lines[0].start
		in.anchor = in.pos
		in.end = in.lines[len(in.lines)-1].text
	}
	return in
}

// escaped reports whether src[pos] is preceded by an odd number of backslashes.
func escaped(src []byte, start, pos int) bool {
	n := 0
	for pos-1-n >= start && src[pos-1-n] == '\\' {
		n++
	}
	return n%2 == 1
}

func (in *inliner) run(n ast.Node) {
	if len(in.lines) == 0 {
		return
	}
	in.walk(n)
	in.raw(in.pos, in.end)
	in.pos = in.end
}

func (in *inliner) walk(parent ast.Node) {
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		in.node(c)
	}
}

func (in *inliner) advance(pos int) {
	if pos > in.anchor {
		in.anchor = pos
	}
}

func (in *inliner) node(n ast.Node) {
	src := in.f.src
	switch node := n.(type) {
	case *ast.Text:
		in.advance(node.Segment.Stop)
	case *ast.String:
		// Value only nodes carry no position.
	case *ast.Emphasis:
		kind := Emphasis
		if node.Level >= 2 {
			kind = Strong
		}
		start := in.find(func(b byte) bool { return b == '*' || b == '_' })
		delim := byte('*')
		if start < len(src) {
			delim = src[start]
		}
		in.span(n, kind, start, node.Level, delim)
	case *east.Strikethrough:
		start := in.find(func(b byte) bool { return b == '~' })
		run := 0
		for start+run < len(src) && src[start+run] == '~' {
			run++
		}
		in.span(n, Strikethrough, start, run, '~')
	case *ast.Link:
		start := in.find(func(b byte) bool { return b == '[' })
		in.link(n, Link, start, 1)
	case *ast.Image:
		start := in.findPair('!', '[')
		in.link(n, Image, start, 2)
	case *ast.AutoLink:
		in.autoLink(node)
	case *ast.CodeSpan:
		start := in.find(func(b byte) bool { return b == '`' })
		in.leaf(Code, start, in.codeSpanEnd(start), Attrs{})
	case *ast.RawHTML:
		if node.Segments == nil || node.Segments.Len() == 0 {
			return
		}
		in.leaf(InlineHTML, node.Segments.At(0).Start, node.Segments.At(node.Segments.Len()-1).Stop, Attrs{})
	case *east.TaskCheckBox:
		start := in.find(func(b byte) bool { return b == '[' })
		in.leaf(TaskListMarker, start, min(start+3, len(src)), Attrs{Checked: node.IsChecked})
	case *east.FootnoteLink:
		start := in.findPair('[', '^')
		end := start
		if idx := bytes.IndexByte(src[start:], ']'); idx >= 0 {
			end = start + idx + 1
		}
		label := ""
		if end-1 > start+2 {
			label = string(src[start+2 : end-1])
		}
		in.leaf(FootnoteReference, start, end, Attrs{Label: label})
	case *MathNode:
		kind := InlineMath
		if node.Display {
			kind = DisplayMath
		}
		in.leaf(kind, node.Segment.Start, node.Segment.Stop, Attrs{})
	default:
		in.walk(n)
	}
}

// span emits a delimited container such as emphasis.
func (in *inliner) span(n ast.Node, kind Kind, start, width int, delim byte) {
	in.raw(in.pos, start)
	idx := in.f.open(kind, start, Attrs{Level: width})
	in.pos = start + width
	in.advance(in.pos)
	in.walk(n)
	closing := in.find(func(b byte) bool { return b == delim })
	in.raw(in.pos, closing)
	end := min(closing+width, len(in.f.src))
	in.closeInline(idx, end)
}

func (in *inliner) closeInline(idx, end int) {
	ev := &in.f.events[idx]
	ev.Range.End = end
	ev.Value = in.flat(ev.Range.Start, end)
	in.f.emit(Event{Type: End, Kind: ev.Kind, Range: ev.Range, Attrs: ev.Attrs})
	in.pos = end
	in.advance(end)
}

func (in *inliner) link(n ast.Node, kind Kind, start, width int) {
	in.raw(in.pos, start)
	idx := in.f.open(kind, start, Attrs{})
	in.pos = start + width
	in.advance(in.pos)
	in.walk(n)
	closing := in.find(func(b byte) bool { return b == ']' })
	in.raw(in.pos, closing)
	in.closeInline(idx, in.linkEnd(closing))
}

// linkEnd returns the end of a link whose text closes at the `]` at pos:
// an inline destination in parentheses, a full or collapsed reference, or
// nothing for a shortcut reference.
func (in *inliner) linkEnd(pos int) int {
	src := in.f.src
	pos++
	if pos >= len(src) {
		return len(src)
	}
	switch src[pos] {
	case '(':
		depth := 0
		var quote byte
		for i := pos; i < len(src); i++ {
			ch := src[i]
			switch {
			case ch == '\\':
				i++
			case quote != 0:
				if ch == quote {
					quote = 0
				}
			case ch == '"' || ch == '\'':
				if i > pos && (src[i-1] == ' ' || src[i-1] == '\t' || src[i-1] == '\n') {
					quote = ch
				}
			case ch == '(':
				depth++
			case ch == ')':
				depth--
				if depth == 0 {
					return i + 1
				}
			}
		}
		return pos
	case '[':
		if idx := bytes.IndexByte(src[pos:], ']'); idx >= 0 {
			return pos + idx + 1
		}
	}
	return pos
}

func (in *inliner) autoLink(n *ast.AutoLink) {
	src := in.f.src
	label := n.Label(src)
	from := max(in.pos, in.anchor)
	idx := bytes.Index(src[from:], label)
	if idx < 0 {
		return
	}
	start := from + idx
	end := start + len(label)
	if start > 0 && src[start-1] == '<' && end < len(src) && src[end] == '>' {
		start--
		end++
	}
	in.raw(in.pos, start)
	lidx := in.f.open(Link, start, Attrs{})
	in.closeInline(lidx, end)
}

func (in *inliner) codeSpanEnd(start int) int {
	src := in.f.src
	run := 0
	for start+run < len(src) && src[start+run] == '`' {
		run++
	}
	for pos := start + run; pos < len(src); pos++ {
		if src[pos] != '`' {
			continue
		}
		n := 0
		for pos+n < len(src) && src[pos+n] == '`' {
			n++
		}
		if n == run {
			return pos + n
		}
		pos += n - 1
	}
	return start + run
}

func (in *inliner) leaf(kind Kind, start, end int, attrs Attrs) {
	if end < start {
		end = start
	}
	in.raw(in.pos, start)
	in.f.emit(Event{Type: Leaf, Kind: kind, Range: Range{Start: start, End: end}, Value: in.flat(start, end), Attrs: attrs})
	in.pos = end
	in.advance(end)
}

// find returns the first content offset at or after the search anchor whose
// byte satisfies pred.
func (in *inliner) find(pred func(byte) bool) int {
	src := in.f.src
	from := max(in.pos, in.anchor)
	for _, l := range in.lines {
		if l.stop <= from {
			continue
		}
		for pos := max(from, l.start); pos < l.stop && pos < len(src); pos++ {
			if pred(src[pos]) {
				return pos
			}
		}
	}
	return min(from, len(src))
}

func (in *inliner) findPair(a, b byte) int {
	src := in.f.src
	pos := max(in.pos, in.anchor)
	for {
		pos = in.findFrom(pos, a)
		if pos+1 >= len(src) || src[pos+1] == b || src[pos] != a {
			return pos
		}
		pos++
	}
}

func (in *inliner) findFrom(from int, ch byte) int {
	saved := in.anchor
	in.anchor = from
	pos := in.find(func(c byte) bool { return c == ch })
	in.anchor = saved
	return pos
}

// raw emits the text between a and b as Text events, one per line, with
// line breaks between them.
func (in *inliner) raw(a, b int) {
	for i, l := range in.lines {
		lo := max(a, l.start)
		hi := min(b, l.text)
		if lo < hi {
			in.f.emit(Event{Type: Leaf, Kind: Text, Range: Range{Start: lo, End: hi}, Value: string(in.f.src[lo:hi])})
		}
		if i == len(in.lines)-1 {
			break
		}
		if a <= l.brk && b >= in.lines[i+1].start {
			kind := SoftBreak
			if l.hard {
				kind = HardBreak
			}
			r := Range{Start: l.brk, End: lineEnd(in.f.src, l.brk)}
			in.f.emit(Event{Type: Leaf, Kind: kind, Range: r, Value: string(in.f.src[r.Start:r.End])})
		}
	}
}

// flat returns the content between a and b with line prefixes removed and
// lines joined by a single space.
func (in *inliner) flat(a, b int) string {
	var parts []string
	for _, l := range in.lines {
		lo := max(a, l.start)
		hi := min(b, l.text)
		if lo < hi {
			parts = append(parts, string(in.f.src[lo:hi]))
		}
	}
	if len(parts) <= 1 {
		return string(in.f.src[a:b])
	}
	return strings.Join(parts, " ")
}
