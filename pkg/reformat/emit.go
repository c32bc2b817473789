package reformat

import (
	"strconv"
	"strings"

	"github.com/yaklabco/gomdwrap/pkg/mdevent"
	"github.com/yaklabco/gomdwrap/pkg/wrap"
)

// container tracks the child blocks of a list item, quote, footnote or
// definition.
type container struct {
	// loose separates sibling blocks with a blank line.
	loose   bool
	emitted bool
	// last is the end of the previous child.
	last int
}

// nested emits a block inside a container and reports whether ev opened
// one.
func (f *formatter) nested(ev mdevent.Event, out *output, c *container) bool {
	rule := ev.Kind == mdevent.Rule && ev.Type == mdevent.Leaf
	if !rule && (ev.Type != mdevent.Start || !f.isBlock(ev.Kind)) {
		return false
	}
	if f.flush(out) {
		c.emitted = true
	}
	f.harvest(c.last, ev.Range.Start)
	if c.emitted && c.loose {
		f.indent.blankOut(out, f.newline)
	}

	if rule {
		f.indent.firstOut(out)
		out.write(f.trimmed(ev.Range))
		out.writeString(f.newline)
	} else {
		f.block(ev, out, true)
	}
	out.trailing = false
	c.emitted = true
	c.last = ev.Range.End
	return true
}

// finish flushes the words of a container that ends and writes its pending
// first-line prefix if it had no content.
func (f *formatter) finish(out *output, c *container, end int) {
	if f.flush(out) {
		c.emitted = true
	}
	f.harvest(c.last, end)
	switch {
	case !c.emitted:
		f.indent.emptyOut(out, f.newline)
	case f.indent.pending():
		f.indent.take()
	}
	out.trailing = false
}

// trimmed borrows r without surrounding whitespace.
func (f *formatter) trimmed(r mdevent.Range) piece {
	s := f.src[r.Start:r.End]
	start := r.Start + len(s) - len(strings.TrimLeft(s, " \t"))
	end := r.Start + len(strings.TrimRight(s, " \t\r\n"))
	if end < start {
		end = start
	}
	return f.borrow(start, end)
}

func (f *formatter) paragraph(out *output) {
	f.indent.enterFrame()
	begin := out.len()
	for {
		ev := f.next("paragraph")
		if f.inline(ev, out) {
			continue
		}
		if ev.Type == mdevent.End && ev.Kind == mdevent.Paragraph {
			break
		}
		violation(ev, "paragraph")
	}
	if len(f.words) > 0 || out.len() == begin {
		f.wrapWords(out, lineSoft)
	}
	f.indent.leaveFrame()
}

// heading emits an ATX heading; setext headings are rewritten as ATX.
func (f *formatter) heading(start mdevent.Event, out *output) {
	f.indent.enterFrame()
	f.indent.pushFirst(strings.Repeat("#", max(start.Attrs.Level, 1)) + " ")
	for {
		ev := f.next("heading")
		if f.inline(ev, out) {
			continue
		}
		if ev.Type == mdevent.End && ev.Kind == mdevent.Heading {
			break
		}
		violation(ev, "heading")
	}
	f.wrapWords(out, lineSoft)
	f.indent.leaveFrame()
}

func (f *formatter) topRule(last int, ev mdevent.Event, out *output) {
	ls := max(lineStart(f.src, ev.Range.Start), last)
	f.harvest(last, ls)
	if !out.empty() && !out.endsWithBlank(f.newline) {
		out.writeString(f.newline)
	}
	prefix := f.src[ls:ev.Range.Start]
	if strings.TrimSpace(prefix) != "" {
		prefix = ""
	}
	out.writeString(prefix)
	out.write(f.trimmed(ev.Range))
	out.writeString(f.newline)
}

// quoteMarker splits the opening of a block quote into the marker and the
// whitespace that follows it.
func quoteMarker(s string) (string, string) {
	if !strings.HasPrefix(s, ">") {
		return ">", " "
	}
	rest := s[1:]
	n := len(rest) - len(strings.TrimLeft(rest, " \t"))
	if n == 0 || strings.HasPrefix(rest[n:], "\n") || strings.HasPrefix(rest[n:], "\r") || n == len(rest) {
		return ">", " "
	}
	return ">", rest[:n]
}

func (f *formatter) blockQuote(start mdevent.Event, out *output) {
	f.indent.enterFrame()
	r := start.Range
	quote, text := quoteMarker(f.src[r.Start:lineEnd(f.src, r.Start)])

	f.indent.indent(quote, quote)
	if kind := start.Attrs.Admonition; kind != "" {
		f.indent.firstOut(out)
		out.writeString(" [!" + kind + "]")
		out.writeString(f.newline)
	}
	f.indent.indent(text, text)
	f.quotes++

	c := &container{loose: true, last: r.Start}
	for {
		ev := f.next("block quote")
		if ev.Type == mdevent.End && ev.Kind == mdevent.BlockQuote {
			break
		}
		if f.inline(ev, out) || f.nested(ev, out, c) {
			continue
		}
		violation(ev, "block quote")
	}
	if start.Attrs.Admonition != "" {
		c.emitted = true
	}
	f.finish(out, c, r.End)

	f.quotes--
	f.indent.dedent()
	f.indent.dedent()
	f.indent.leaveFrame()
}

// extraIndent returns the indentation of a nested code block beyond the
// current prefix.
func (f *formatter) extraIndent(pos int) string {
	ls := lineStart(f.src, pos)
	from := ls + len(strings.Join(f.indent.follow, ""))
	if from >= pos {
		return ""
	}
	extra := f.src[from:pos]
	if strings.Trim(extra, " \t") != "" {
		return ""
	}
	return extra
}

type codeLine struct {
	text  string
	start int
	n     int
}

func (f *formatter) codeBlock(start mdevent.Event, out *output, nested bool) {
	f.indent.enterFrame()
	extra := ""
	if nested && start.Attrs.Fence == "" {
		extra = f.extraIndent(start.Range.Start)
	}
	f.indent.indent(extra, extra)

	var lines []codeLine
	for {
		ev := f.next("code block")
		if ev.Type == mdevent.End && ev.Kind == mdevent.CodeBlock {
			break
		}
		if ev.Type != mdevent.Leaf || ev.Kind != mdevent.Text {
			violation(ev, "code block")
		}
		text := strings.TrimRight(ev.Value, "\r\n")
		n := len(text)
		if !strings.HasPrefix(f.src[ev.Range.Start:], text) {
			n = ev.Range.Len()
		}
		lines = append(lines, codeLine{text: text, start: ev.Range.Start, n: n})
	}

	fence := start.Attrs.Fence
	if fence != "" {
		info := start.Attrs.Info
		if info == "" && f.opts.DetectLanguage != nil && len(lines) > 0 {
			info = f.language(lines)
		}
		f.indent.firstOut(out)
		out.writeString(fence + info)
		out.writeString(f.newline)
	}
	for _, line := range lines {
		if line.text == "" {
			f.indent.emptyOut(out, f.newline)
			continue
		}
		f.indent.firstOut(out)
		out.write(piece{text: line.text, src: line.start, n: line.n})
		out.writeString(f.newline)
	}
	if fence != "" {
		f.indent.firstOut(out)
		out.writeString(fence)
		out.writeString(f.newline)
	}
	if len(lines) == 0 && fence == "" {
		f.indent.take()
	}

	f.indent.dedent()
	f.indent.leaveFrame()
}

func (f *formatter) language(lines []codeLine) string {
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l.text)
		sb.WriteByte('\n')
	}
	lang := f.opts.DetectLanguage([]byte(sb.String()))
	if lang == "text" || strings.ContainsAny(lang, " \t`") {
		return ""
	}
	return lang
}

func (f *formatter) htmlBlock(out *output) {
	f.indent.enterFrame()
	for {
		ev := f.next("html block")
		if ev.Type == mdevent.End && ev.Kind == mdevent.HTMLBlock {
			break
		}
		if ev.Type != mdevent.Leaf || ev.Kind != mdevent.HTML {
			violation(ev, "html block")
		}
		content := strings.TrimRight(ev.Value, "\r\n")
		kept := strings.TrimRight(content, " \t")
		if kept == "" {
			f.indent.emptyOut(out, f.newline)
			continue
		}
		f.indent.firstOut(out)
		out.write(f.borrow(ev.Range.Start, ev.Range.Start+len(kept)))
		out.writeString(f.newline)
	}
	if f.indent.pending() {
		f.indent.take()
	}
	f.indent.leaveFrame()
}

// itemMarker is a parsed list marker.
type itemMarker struct {
	bullet  byte
	ordered bool
	suffix  byte
}

func parseItemMarker(s string) itemMarker {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i > 0 && i < len(s) && (s[i] == '.' || s[i] == ')') {
		return itemMarker{ordered: true, suffix: s[i]}
	}
	if len(s) > 0 && (s[0] == '-' || s[0] == '+' || s[0] == '*') {
		return itemMarker{bullet: s[0]}
	}
	return itemMarker{bullet: '-'}
}

// render returns the marker text of item number nr, followed by a space.
func (m itemMarker) render(nr int) string {
	if m.ordered {
		return strconv.Itoa(nr) + string(m.suffix) + " "
	}
	return string(m.bullet) + " "
}

func (f *formatter) list(start mdevent.Event, out *output) {
	f.indent.enterFrame()
	loose := !start.Attrs.Tight
	nr := start.Attrs.StartNumber

	items := 0
	for {
		ev := f.next("list")
		if ev.Type == mdevent.End && ev.Kind == mdevent.List {
			break
		}
		if ev.Type != mdevent.Start || ev.Kind != mdevent.Item {
			violation(ev, "list")
		}
		if items > 0 && loose {
			f.indent.blankOut(out, f.newline)
		}
		marker := parseItemMarker(f.src[ev.Range.Start:ev.Range.End])
		f.item(ev, out, marker.render(nr), loose)
		nr++
		items++
	}
	f.indent.leaveFrame()
}

func (f *formatter) item(start mdevent.Event, out *output, marker string, loose bool) {
	f.indent.enterFrame()
	f.indent.indent(marker, strings.Repeat(" ", wrap.StringWidth(marker)))

	c := &container{loose: loose, last: start.Range.Start}
	for {
		ev := f.next("list item")
		if ev.Type == mdevent.End && ev.Kind == mdevent.Item {
			break
		}
		if f.inline(ev, out) || f.nested(ev, out, c) {
			continue
		}
		violation(ev, "list item")
	}
	f.finish(out, c, start.Range.End)

	f.indent.dedent()
	f.indent.leaveFrame()
}

func (f *formatter) footnote(start mdevent.Event, out *output) {
	f.indent.enterFrame()
	label := start.Attrs.Label
	f.indent.indent("[^"+label+"]: ", strings.Repeat(" ", wrap.StringWidth(label)+5))

	c := &container{loose: true, last: start.Range.Start}
	for {
		ev := f.next("footnote definition")
		if ev.Type == mdevent.End && ev.Kind == mdevent.FootnoteDefinition {
			break
		}
		if f.inline(ev, out) || f.nested(ev, out, c) {
			continue
		}
		violation(ev, "footnote definition")
	}
	f.finish(out, c, start.Range.End)

	f.indent.dedent()
	f.indent.leaveFrame()
}

func (f *formatter) definitionList(out *output) {
	f.indent.enterFrame()
	titles := 0
	var def *container
	for {
		ev := f.next("definition list")
		if ev.Type == mdevent.End && ev.Kind == mdevent.DefinitionList {
			break
		}
		if f.inline(ev, out) {
			continue
		}

		switch {
		case ev.Kind == mdevent.DefinitionListTitle && ev.Type == mdevent.Start:
			if titles > 0 {
				f.indent.blankOut(out, f.newline)
			}
			titles++
		case ev.Kind == mdevent.DefinitionListTitle && ev.Type == mdevent.End:
			f.wrapWords(out, lineHard)
		case ev.Kind == mdevent.DefinitionListDefinition && ev.Type == mdevent.Start:
			if !ev.Attrs.Tight {
				f.indent.blankOut(out, f.newline)
			}
			def = &container{loose: !ev.Attrs.Tight, last: ev.Range.Start}
			f.indent.indent(": ", "  ")
		case ev.Kind == mdevent.DefinitionListDefinition && ev.Type == mdevent.End:
			if def == nil {
				violation(ev, "definition list")
			}
			if len(f.words) > 0 {
				f.wrapWords(out, lineHard)
				def.emitted = true
			}
			f.finish(out, def, ev.Range.End)
			f.indent.dedent()
			def = nil
		case def != nil && f.nested(ev, out, def):
		default:
			violation(ev, "definition list")
		}
	}
	f.indent.leaveFrame()
}
