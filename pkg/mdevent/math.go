package mdevent

import (
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// KindMath is the goldmark node kind of inline and display math spans.
var KindMath = ast.NewNodeKind("Math")

// MathNode is a `$...$` or `$$...$$` span on a single line.
type MathNode struct {
	ast.BaseInline

	// Display is true for `$$` delimited spans.
	Display bool
	// Segment covers the span including its delimiters.
	Segment text.Segment
}

// Kind implements ast.Node.
func (n *MathNode) Kind() ast.NodeKind {
	return KindMath
}

// Dump implements ast.Node.
func (n *MathNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Display": boolString(n.Display),
	}, nil)
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

type mathParser struct{}

// NewMathParser returns an inline parser for dollar delimited math.
//
//nolint:ireturn // goldmark registers parsers by interface
func NewMathParser() parser.InlineParser {
	return &mathParser{}
}

func (p *mathParser) Trigger() []byte {
	return []byte{'$'}
}

func (p *mathParser) Parse(_ ast.Node, block text.Reader, _ parser.Context) ast.Node {
	line, segment := block.PeekLine()

	open := 0
	for open < len(line) && open < 2 && line[open] == '$' {
		open++
	}
	if open == len(line) {
		return nil
	}
	// Inline math must not start with a space.
	if open == 1 && (line[1] == ' ' || line[1] == '\t') {
		return nil
	}

	for pos := open; pos < len(line); pos++ {
		switch line[pos] {
		case '\\':
			pos++
		case '\n', '\r':
			return nil
		case '$':
			run := 0
			for pos+run < len(line) && line[pos+run] == '$' {
				run++
			}
			if run != open || pos == open {
				pos += run - 1
				continue
			}
			if open == 1 && (line[pos-1] == ' ' || line[pos-1] == '\t') {
				continue
			}
			end := pos + run
			node := &MathNode{
				Display: open == 2,
				Segment: text.NewSegment(segment.Start, segment.Start+end),
			}
			block.Advance(end)
			return node
		}
	}
	return nil
}
