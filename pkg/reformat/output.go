package reformat

import (
	"strings"
)

// piece is a fragment of output text. A piece borrowed from the source
// records the source range it stands for; a synthesized piece has src -1.
type piece struct {
	text string
	src  int
	// n is the length of the source range, which differs from len(text)
	// when the text was normalized (joined lines, removed padding).
	n int
}

func synth(text string) piece {
	return piece{text: text, src: -1}
}

func (f *formatter) borrow(start, end int) piece {
	return piece{text: f.src[start:end], src: start, n: end - start}
}

func (p piece) borrowed() bool {
	return p.src >= 0
}

// contains reports whether the source offset lies in [src, src+n).
func (p piece) contains(offset int) bool {
	return p.src >= 0 && offset >= p.src && offset < p.src+p.n
}

// endsAt reports whether the borrowed piece ends exactly at offset.
func (p piece) endsAt(offset int) bool {
	return p.src >= 0 && p.src+p.n == offset
}

// output is the append-only result buffer and the translated cursor.
//
// The cursor is set whenever a written piece contains the original cursor
// offset, so the last matching piece wins. A cursor no piece contains goes
// to the end of the last piece ending at it, such as the end of a line.
type output struct {
	sb     strings.Builder
	target int

	cursor  int
	claimed bool
	// end is the output offset after the last borrowed piece ending at the
	// original cursor.
	end    int
	hasEnd bool
	// next is the output offset of the first borrowed piece written after
	// the original cursor, used when no piece contains it.
	next    int
	hasNext bool

	// trailing is true while the output ends with a blank separator line.
	trailing bool
}

func newOutput(target int) *output {
	return &output{target: target}
}

func (o *output) len() int {
	return o.sb.Len()
}

func (o *output) empty() bool {
	return o.sb.Len() == 0
}

func (o *output) String() string {
	return o.sb.String()
}

// write appends p, translating the cursor if p contains it.
func (o *output) write(p piece) {
	o.track(p, o.sb.Len())
	o.sb.WriteString(p.text)
}

func (o *output) track(p piece, pos int) {
	switch {
	case p.contains(o.target):
		o.cursor = pos + clamp(o.target-p.src, 0, len(p.text))
		o.claimed = true
	case p.endsAt(o.target):
		o.end = pos + len(p.text)
		o.hasEnd = true
	case p.borrowed() && p.src > o.target && !o.hasNext:
		o.next = pos
		o.hasNext = true
	}
}

// drop accounts for a source piece that produces no output, such as
// whitespace removed at a line break.
func (o *output) drop(p piece) {
	switch {
	case p.contains(o.target):
		o.cursor = o.sb.Len()
		o.claimed = true
	case p.endsAt(o.target):
		o.end = o.sb.Len()
		o.hasEnd = true
	}
}

// writeString appends synthesized text.
func (o *output) writeString(s string) {
	o.sb.WriteString(s)
}

// setCursor places the cursor at an explicit output offset.
func (o *output) setCursor(pos int) {
	o.cursor = pos
	o.claimed = true
}

// endsWithBlank reports whether the output ends with an empty line.
func (o *output) endsWithBlank(newline string) bool {
	s := o.sb.String()
	return s == "" || strings.HasSuffix(s, newline+newline) || s == newline
}

// result returns the text and the translated cursor.
func (o *output) result() (string, int) {
	switch {
	case o.claimed:
		return o.sb.String(), o.cursor
	case o.hasEnd:
		return o.sb.String(), o.end
	case o.hasNext:
		return o.sb.String(), o.next
	default:
		return o.sb.String(), o.sb.Len()
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
