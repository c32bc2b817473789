package editor

import (
	"sort"

	"github.com/rivo/uniseg"
)

// Pos is a 0-based line and column position. Columns count grapheme
// clusters.
type Pos struct {
	Line int
	Col  int
}

// lineInfo holds the byte offsets of one line.
type lineInfo struct {
	// start is the offset of the first byte.
	start int
	// newline is the offset of the line terminator, or the end of the text
	// for the last line.
	newline int
	// end is the offset after the terminator.
	end int
}

// buildLines indexes the lines of text. It handles both LF and CRLF line
// endings. The result always holds at least one line.
func buildLines(text string) []lineInfo {
	var lines []lineInfo
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] != '\n' {
			continue
		}
		nl := i
		if i > 0 && text[i-1] == '\r' {
			nl = i - 1
		}
		lines = append(lines, lineInfo{start: start, newline: nl, end: i + 1})
		start = i + 1
	}
	return append(lines, lineInfo{start: start, newline: len(text), end: len(text)})
}

// lineOf returns the index of the line holding offset.
func (b *Buffer) lineOf(offset int) int {
	idx := sort.Search(len(b.lines), func(i int) bool {
		return b.lines[i].end > offset
	})
	return min(idx, len(b.lines)-1)
}

// PosAt converts a byte offset to a position. Offsets inside a line
// terminator map to the end of the line.
func (b *Buffer) PosAt(offset int) Pos {
	offset = clamp(offset, 0, len(b.text))
	line := b.lineOf(offset)
	li := b.lines[line]
	offset = min(offset, li.newline)
	return Pos{Line: line, Col: uniseg.GraphemeClusterCount(b.text[li.start:offset])}
}

// ByteAt converts a position to a byte offset. Columns past the end of the
// line map to the line terminator; lines past the end map to the end.
func (b *Buffer) ByteAt(p Pos) int {
	if p.Line < 0 {
		return 0
	}
	if p.Line >= len(b.lines) {
		return len(b.text)
	}
	li := b.lines[p.Line]
	offset := li.start
	rest := b.text[li.start:li.newline]
	state := -1
	for col := 0; col < p.Col && rest != ""; col++ {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		offset += len(cluster)
	}
	return offset
}

// LineCount returns the number of lines.
func (b *Buffer) LineCount() int {
	return len(b.lines)
}

// LineStart returns the byte offset of the start of line.
func (b *Buffer) LineStart(line int) int {
	if line >= len(b.lines) {
		return len(b.text)
	}
	return b.lines[max(line, 0)].start
}

// LineEnd returns the byte offset after the terminator of line.
func (b *Buffer) LineEnd(line int) int {
	if line >= len(b.lines) {
		return len(b.text)
	}
	return b.lines[max(line, 0)].end
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
