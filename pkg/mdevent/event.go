// Package mdevent parses Markdown into a flat stream of start/end/leaf events,
// each carrying the byte range of the construct in the source text.
//
// The stream is produced from a goldmark AST. Containers are reported as a
// Start event, the events of their children, and a matching End event.
// Leaves (text, code spans, breaks, rules) are reported once.
package mdevent

import "fmt"

// Type distinguishes start, end and leaf events.
type Type uint8

// Event types.
const (
	Start Type = iota
	End
	Leaf
)

// String implements fmt.Stringer.
func (t Type) String() string {
	switch t {
	case Start:
		return "Start"
	case End:
		return "End"
	case Leaf:
		return "Leaf"
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// Kind identifies the Markdown construct an event belongs to.
type Kind uint8

// Container kinds. These appear as Start/End pairs.
const (
	KindNone Kind = iota
	Paragraph
	Heading
	BlockQuote
	CodeBlock
	List
	Item
	FootnoteDefinition
	DefinitionList
	DefinitionListTitle
	DefinitionListDefinition
	Table
	TableHead
	TableRow
	TableCell
	HTMLBlock
	MetadataBlock
	Emphasis
	Strong
	Strikethrough
	Link
	Image

	// Leaf kinds.
	Text
	Code
	InlineMath
	DisplayMath
	HTML
	InlineHTML
	SoftBreak
	HardBreak
	FootnoteReference
	TaskListMarker
	Rule
)

var kindNames = map[Kind]string{
	KindNone:                 "None",
	Paragraph:                "Paragraph",
	Heading:                  "Heading",
	BlockQuote:               "BlockQuote",
	CodeBlock:                "CodeBlock",
	List:                     "List",
	Item:                     "Item",
	FootnoteDefinition:       "FootnoteDefinition",
	DefinitionList:           "DefinitionList",
	DefinitionListTitle:      "DefinitionListTitle",
	DefinitionListDefinition: "DefinitionListDefinition",
	Table:                    "Table",
	TableHead:                "TableHead",
	TableRow:                 "TableRow",
	TableCell:                "TableCell",
	HTMLBlock:                "HTMLBlock",
	MetadataBlock:            "MetadataBlock",
	Emphasis:                 "Emphasis",
	Strong:                   "Strong",
	Strikethrough:            "Strikethrough",
	Link:                     "Link",
	Image:                    "Image",
	Text:                     "Text",
	Code:                     "Code",
	InlineMath:               "InlineMath",
	DisplayMath:              "DisplayMath",
	HTML:                     "HTML",
	InlineHTML:               "InlineHTML",
	SoftBreak:                "SoftBreak",
	HardBreak:                "HardBreak",
	FootnoteReference:        "FootnoteReference",
	TaskListMarker:           "TaskListMarker",
	Rule:                     "Rule",
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsBlock reports whether the kind is a block-level construct.
func (k Kind) IsBlock() bool {
	switch k {
	case Paragraph, Heading, BlockQuote, CodeBlock, List, Item,
		FootnoteDefinition, DefinitionList, DefinitionListTitle,
		DefinitionListDefinition, Table, TableHead, TableRow, TableCell,
		HTMLBlock, MetadataBlock, Rule:
		return true
	default:
		return false
	}
}

// Range is a half-open byte range [Start, End) into the source text.
type Range struct {
	Start int
	End   int
}

// Len returns the length of the range in bytes.
func (r Range) Len() int {
	return r.End - r.Start
}

// IsEmpty returns true if the range has zero length.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// Contains returns true if the given offset is within this range.
func (r Range) Contains(offset int) bool {
	return offset >= r.Start && offset < r.End
}

func (r Range) String() string {
	return fmt.Sprintf("%d..%d", r.Start, r.End)
}

// Attrs holds the construct-specific attributes of a Start or Leaf event.
// Only the fields that apply to the event's kind are set.
type Attrs struct {
	// Level is the heading level (1-6), or the delimiter length of
	// emphasis, strong and strikethrough.
	Level int

	// Fence is the opening fence of a fenced code block ("```", "~~~~").
	// It is empty for indented code blocks.
	Fence string
	// Info is the info string of a fenced code block.
	Info string

	// Ordered and StartNumber describe a list.
	Ordered     bool
	StartNumber int
	// Tight reports a tight list or a tight definition.
	Tight bool

	// Label is the footnote label of a definition or reference.
	Label string

	// Admonition is the upper-case GitHub alert kind of a block quote
	// ("NOTE", "TIP", ...), empty for plain quotes.
	Admonition string

	// Checked reports a checked task list marker.
	Checked bool
}

// Event is one element of the flat event stream.
type Event struct {
	Type  Type
	Kind  Kind
	Range Range
	// Value is the text of a leaf: the raw source of text, code spans, math,
	// html and references, and one line terminated by a newline for the
	// lines of code and html blocks. Content spanning several source lines
	// has the line prefixes removed and the lines joined with a space.
	Value string
	Attrs Attrs
}

func (e Event) String() string {
	return fmt.Sprintf("%s(%s)@%s", e.Type, e.Kind, e.Range)
}

// Reference is a link reference definition collected by the parser.
type Reference struct {
	Label       string
	Destination string
	Title       string
}
