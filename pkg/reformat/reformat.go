// Package reformat re-emits Markdown text word-wrapped to a width with
// normalized indentation, and translates a cursor offset from the input into
// the output.
//
// Reformat is a pure function: it walks the event stream of pkg/mdevent,
// emits every construct through an indentation stack, wraps paragraph text
// with pkg/wrap and copies everything it does not understand verbatim.
package reformat

import (
	"strings"

	"github.com/yaklabco/gomdwrap/pkg/mdevent"
	"github.com/yaklabco/gomdwrap/pkg/wrap"
)

// Options configure a reformat.
type Options struct {
	// TextWidth is the maximum display width of a line. Zero or a width
	// smaller than the indentation puts one word on each line.
	TextWidth int

	// TableColumnsEqualWidth pads every table column to the widest header.
	TableColumnsEqualWidth bool

	// Newline is the line terminator of the output. Empty selects the
	// terminator of the first line of the input.
	Newline string

	// Algorithm selects the line breaking strategy.
	Algorithm wrap.Algorithm

	// DetectLanguage, when set, names the language of fenced code blocks
	// without an info string. An empty or "text" result leaves the fence
	// untagged.
	DetectLanguage func(code []byte) string
}

// Result is the reformatted text and the translated cursor.
type Result struct {
	Text string
	// Cursor is a byte offset into Text.
	Cursor int
}

// Reformat reformats src and maps the byte offset cursor into the result.
func Reformat(src string, cursor int, opts Options) (res Result, err error) {
	defer recoverFailure(&err)

	f := newFormatter(src, opts)
	out := newOutput(cursor)
	f.run(out)

	text, pos := out.result()
	return Result{Text: text, Cursor: pos}, nil
}

// DetectNewline returns the terminator of the first line of src, "\n" when
// src has a single line.
func DetectNewline(src string) string {
	if i := strings.IndexByte(src, '\n'); i > 0 && src[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}

type lineKind int

const (
	lineNone lineKind = iota
	lineSoft
	lineHard
)

type formatter struct {
	src     string
	stream  *mdevent.Stream
	opts    Options
	newline string

	indent indentStack
	words  []word
	// skip counts the open links and images whose content is ignored.
	skip int
	// quotes is the number of open block quotes.
	quotes int
	// refs are link reference definitions moved to the end of the output.
	refs []piece
}

func newFormatter(src string, opts Options) *formatter {
	nl := opts.Newline
	if nl == "" {
		nl = DetectNewline(src)
	}
	return &formatter{
		src:     src,
		stream:  mdevent.Parse(src),
		opts:    opts,
		newline: nl,
	}
}

// next returns the next event inside a construct.
func (f *formatter) next(context string) mdevent.Event {
	ev, ok := f.stream.Next()
	if !ok {
		violation(mdevent.Event{Range: mdevent.Range{Start: len(f.src), End: len(f.src)}}, context+" at end of input")
	}
	return ev
}

// skipTo discards events up to the End of kind.
func (f *formatter) skipTo(kind mdevent.Kind) {
	depth := 1
	for depth > 0 {
		ev := f.next(kind.String())
		if ev.Kind != kind {
			continue
		}
		switch ev.Type {
		case mdevent.Start:
			depth++
		case mdevent.End:
			depth--
		}
	}
}

func (f *formatter) run(out *output) {
	last := 0
	for {
		ev, ok := f.stream.Next()
		if !ok {
			break
		}
		r := ev.Range

		switch {
		case ev.Kind == mdevent.Rule && ev.Type == mdevent.Leaf:
			f.topRule(last, ev, out)
		case ev.Kind == mdevent.MetadataBlock && ev.Type == mdevent.Start:
			f.gap(last, r.Start, out)
			f.copyLines(r.Start, r.End, out)
			f.skipTo(mdevent.MetadataBlock)
		case ev.Type == mdevent.Start && f.isBlock(ev.Kind):
			f.indentPrefix(last, r.Start, out)
			f.block(ev, out, false)
			f.indent.dedent()
		default:
			violation(ev, "document")
		}
		out.trailing = false
		last = max(last, r.End)
	}
	f.gap(last, len(f.src), out)
	f.appendRefs(out)
}

// isBlock reports whether kind opens a construct with its own emitter.
func (f *formatter) isBlock(kind mdevent.Kind) bool {
	switch kind {
	case mdevent.Paragraph, mdevent.Heading, mdevent.BlockQuote, mdevent.CodeBlock,
		mdevent.List, mdevent.FootnoteDefinition, mdevent.DefinitionList,
		mdevent.Table, mdevent.HTMLBlock:
		return true
	}
	return false
}

// block dispatches a Start event to its emitter.
func (f *formatter) block(ev mdevent.Event, out *output, nested bool) {
	switch ev.Kind {
	case mdevent.Paragraph:
		f.paragraph(out)
	case mdevent.Heading:
		f.heading(ev, out)
	case mdevent.BlockQuote:
		f.blockQuote(ev, out)
	case mdevent.CodeBlock:
		f.codeBlock(ev, out, nested)
	case mdevent.List:
		f.list(ev, out)
	case mdevent.FootnoteDefinition:
		f.footnote(ev, out)
	case mdevent.DefinitionList:
		f.definitionList(out)
	case mdevent.Table:
		f.table(ev, out)
	case mdevent.HTMLBlock:
		f.htmlBlock(out)
	default:
		violation(ev, "block")
	}
}

// indentPrefix copies the gap before a top-level construct and pushes the
// construct's leading indentation as its prefix.
func (f *formatter) indentPrefix(last, pos int, out *output) {
	ls := max(lineStart(f.src, pos), last)
	f.gap(last, ls, out)
	prefix := f.src[ls:pos]
	f.indent.indent(prefix, prefix)
}

// wrapWords wraps the collected words into lines that fit the width left by
// the current prefixes and writes them.
func (f *formatter) wrapWords(out *output, kind lineKind) {
	frags := units(f.words)
	widths := []int{
		max(f.opts.TextWidth-f.indent.firstLen(), 0),
		max(f.opts.TextWidth-f.indent.followLen(), 0),
	}
	lines := wrap.Wrap(frags, widths, f.opts.Algorithm)
	f.appendWrapped(out, lines, kind)
	f.words = f.words[:0]
}

func (f *formatter) appendWrapped(out *output, lines [][]unit, kind lineKind) {
	for i, line := range lines {
		if i > 0 {
			out.writeString(f.newline)
		}
		if len(line) == 0 {
			out.writeString(strings.TrimRight(f.indent.take(), " \t"))
			continue
		}
		f.indent.firstOut(out)
		for j, u := range line {
			for k, w := range u.words {
				out.write(w.text)
				if j == len(line)-1 && k == len(u.words)-1 {
					out.drop(w.space)
					out.writeString(w.penalty)
					continue
				}
				out.write(w.space)
			}
		}
	}
	if kind == lineHard {
		out.writeString("  ")
	}
	if kind != lineNone {
		out.writeString(f.newline)
	}
	out.trailing = false
}

// flush wraps pending words before a nested construct and reports whether
// there were any.
func (f *formatter) flush(out *output) bool {
	if len(f.words) == 0 {
		return false
	}
	f.wrapWords(out, lineSoft)
	return true
}

// gap copies the source between two top-level constructs, moving link
// reference definitions to the end. Blank lines at the start of the output
// are dropped, as is the blank line closing a moved definition when the
// output already ends with one.
func (f *formatter) gap(start, end int, out *output) {
	inRef := false
	for start < end {
		next := min(lineEnd(f.src, start), end)
		content := strings.TrimRight(f.src[start:next], "\r\n")
		blank := strings.TrimSpace(content) == ""

		switch {
		case f.linkRef(content), inRef && !blank:
			f.refs = append(f.refs, f.trimmed(mdevent.Range{Start: start, End: start + len(content)}))
			inRef = true
		case blank && (out.empty() || inRef && out.endsWithBlank(f.newline)):
			out.drop(f.borrow(start, next))
			inRef = false
		default:
			inRef = false
			f.copyLine(start, content, next > start+len(content), out)
		}
		start = next
	}
}

// copyLines copies source lines verbatim with normalized terminators.
func (f *formatter) copyLines(start, end int, out *output) {
	for start < end {
		next := min(lineEnd(f.src, start), end)
		content := strings.TrimRight(f.src[start:next], "\r\n")
		f.copyLine(start, content, next > start+len(content), out)
		start = next
	}
}

func (f *formatter) copyLine(start int, content string, terminated bool, out *output) {
	kept := strings.TrimRight(content, " \t")
	out.write(f.borrow(start, start+len(kept)))
	out.drop(f.borrow(start+len(kept), start+len(content)))
	if terminated {
		out.writeString(f.newline)
	}
	out.trailing = kept == ""
}

// appendRefs writes the collected link reference definitions after a blank
// line.
func (f *formatter) appendRefs(out *output) {
	if len(f.refs) == 0 {
		return
	}
	s := out.String()
	if s != "" && !strings.HasSuffix(s, "\n") {
		out.writeString(f.newline)
	}
	if !out.endsWithBlank(f.newline) {
		out.writeString(f.newline)
	}
	for _, ref := range f.refs {
		out.write(ref)
		out.writeString(f.newline)
	}
}

func lineStart(s string, off int) int {
	return strings.LastIndexByte(s[:off], '\n') + 1
}

// lineEnd returns the offset after the line terminator of the line holding
// off, or len(s).
func lineEnd(s string, off int) int {
	if i := strings.IndexByte(s[off:], '\n'); i >= 0 {
		return off + i + 1
	}
	return len(s)
}
