package mdevent

import (
	"bytes"
	"sort"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Parser turns Markdown source into an event Stream.
// A Parser is safe for concurrent use.
type Parser struct {
	md goldmark.Markdown
}

// New creates a parser with the fixed extension set: tables, strikethrough,
// task lists, autolinks, footnotes, definition lists and math.
func New() *Parser {
	return &Parser{md: newGoldmarkInstance()}
}

// newGoldmarkInstance creates a configured goldmark.Markdown instance.
//
// Footnote definitions are registered without the footnote AST transformer,
// which would move them to the end of the document and drop the unreferenced
// ones.
//
//nolint:ireturn // goldmark.Markdown is an external interface type
func newGoldmarkInstance() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.Table,
			extension.Strikethrough,
			extension.TaskList,
			extension.Linkify,
			extension.DefinitionList,
		),
		goldmark.WithParserOptions(
			parser.WithBlockParsers(
				util.Prioritized(extension.NewFootnoteBlockParser(), 999),
			),
			parser.WithInlineParsers(
				util.Prioritized(extension.NewFootnoteParser(), 101),
				util.Prioritized(NewMathParser(), 500),
			),
		),
	)
}

// Parse parses src and returns its event stream.
func (p *Parser) Parse(src []byte) *Stream {
	content := make([]byte, len(src))
	copy(content, src)

	front := frontMatter(content)
	if !front.IsEmpty() {
		// Blank the front matter so goldmark sees empty lines at the same offsets.
		for i := front.Start; i < front.End; i++ {
			if content[i] != '\n' && content[i] != '\r' {
				content[i] = ' '
			}
		}
	}

	ctx := parser.NewContext()
	doc := p.md.Parser().Parse(text.NewReader(content), parser.WithContext(ctx))

	fl := newFlattener(src)
	if !front.IsEmpty() {
		fl.emit(Event{Type: Start, Kind: MetadataBlock, Range: front, Value: string(src[front.Start:front.End])})
		fl.emit(Event{Type: End, Kind: MetadataBlock, Range: front})
		fl.from = front.End
	}
	fl.blocks(doc)
	fl.clampRanges()

	refs := make([]Reference, 0, len(ctx.References()))
	for _, ref := range ctx.References() {
		refs = append(refs, Reference{
			Label:       string(ref.Label()),
			Destination: string(ref.Destination()),
			Title:       string(ref.Title()),
		})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Label < refs[j].Label })

	return &Stream{events: fl.events, refs: refs}
}

// Parse parses src with a default parser.
func Parse(src string) *Stream {
	return defaultParser.Parse([]byte(src))
}

var defaultParser = New()

// frontMatter returns the range of a YAML front matter block at the very
// start of the document, terminated by a `---` or `...` line.
func frontMatter(src []byte) Range {
	first := lineEnd(src, 0)
	if !bytes.Equal(bytes.TrimRight(src[:first], " \t\r\n"), []byte("---")) {
		return Range{}
	}
	for pos := first; pos < len(src); {
		end := lineEnd(src, pos)
		line := bytes.TrimRight(src[pos:end], " \t\r\n")
		if bytes.Equal(line, []byte("---")) || bytes.Equal(line, []byte("...")) {
			return Range{Start: 0, End: end}
		}
		pos = end
	}
	return Range{}
}

// Stream is the flat event sequence of one document.
type Stream struct {
	events []Event
	pos    int
	refs   []Reference
}

// Next returns the next event. ok is false once the stream is exhausted.
func (s *Stream) Next() (ev Event, ok bool) {
	if s.pos >= len(s.events) {
		return Event{}, false
	}
	ev = s.events[s.pos]
	s.pos++
	return ev, true
}

// Peek returns the next event without consuming it.
func (s *Stream) Peek() (Event, bool) {
	if s.pos >= len(s.events) {
		return Event{}, false
	}
	return s.events[s.pos], true
}

// Events returns all events of the stream, regardless of position.
func (s *Stream) Events() []Event {
	return s.events
}

// References returns the link reference definitions of the document,
// ordered by label.
func (s *Stream) References() []Reference {
	return s.refs
}

// HasReference reports whether label names a link reference definition.
// Labels are compared after case folding and whitespace normalization.
func (s *Stream) HasReference(label string) bool {
	key := util.ToLinkReference([]byte(label))
	for _, ref := range s.refs {
		if util.ToLinkReference([]byte(ref.Label)) == key {
			return true
		}
	}
	return false
}
