package reformat

import (
	"github.com/yaklabco/gomdwrap/pkg/mdevent"
	"github.com/yaklabco/gomdwrap/pkg/wrap"
)

// word is a collected token with the whitespace after it. glue marks a
// token that directly follows the previous one, so no line break may be
// placed between them.
type word struct {
	text    piece
	space   piece
	penalty string
	glue    bool
}

// unit is a run of glued words, the fragment the wrapper sees.
type unit struct {
	words []word
}

func (u unit) Width() int {
	n := 0
	for i, w := range u.words {
		n += wrap.StringWidth(w.text.text)
		if i < len(u.words)-1 {
			n += wrap.StringWidth(w.space.text)
		}
	}
	return n
}

func (u unit) WhitespaceWidth() int {
	return wrap.StringWidth(u.words[len(u.words)-1].space.text)
}

func (u unit) PenaltyWidth() int {
	return wrap.StringWidth(u.words[len(u.words)-1].penalty)
}

func units(words []word) []unit {
	var out []unit
	for i, w := range words {
		if i > 0 && w.glue {
			last := &out[len(out)-1]
			last.words = append(last.words, w)
			continue
		}
		out = append(out, unit{words: []word{w}})
	}
	return out
}

// push appends an atomic token.
func (f *formatter) push(p piece) {
	n := len(f.words)
	glue := n > 0 && f.words[n-1].space.text == ""
	f.words = append(f.words, word{text: p, space: piece{src: -1}, glue: glue})
}

// pushText splits a Text leaf into words.
func (f *formatter) pushText(ev mdevent.Event) {
	base := ev.Range.Start
	borrowed := ev.Range.Len() == len(ev.Value) && f.src[ev.Range.Start:ev.Range.End] == ev.Value
	pos := 0
	for w := range wrap.FindWords(ev.Value) {
		text := f.part(ev, base, pos, w.Word, borrowed)
		space := f.part(ev, base, pos+len(w.Word), w.Whitespace, borrowed)
		pos += len(w.Word) + len(w.Whitespace)

		if w.Word == "" {
			// Leading whitespace belongs to the previous token.
			if n := len(f.words); n > 0 && f.words[n-1].space.text == "" {
				f.words[n-1].space = space
			}
			continue
		}
		f.push(text)
		f.words[len(f.words)-1].space = space
	}
}

func (f *formatter) part(ev mdevent.Event, base, pos int, text string, borrowed bool) piece {
	if borrowed {
		return piece{text: text, src: base + pos, n: len(text)}
	}
	if text == "" {
		return piece{src: -1}
	}
	return piece{text: text, src: ev.Range.Start, n: ev.Range.Len()}
}

// softBreak turns a line break inside a paragraph into a single space.
func (f *formatter) softBreak(ev mdevent.Event) {
	n := len(f.words)
	if n == 0 {
		return
	}
	if f.words[n-1].space.text == "" {
		f.words[n-1].space = piece{text: " ", src: ev.Range.Start, n: ev.Range.Len()}
	}
}

// inline consumes an inline event into the word accumulator and reports
// whether it was one.
func (f *formatter) inline(ev mdevent.Event, out *output) bool {
	if f.skip > 0 {
		switch {
		case ev.Type == mdevent.Start && (ev.Kind == mdevent.Link || ev.Kind == mdevent.Image):
			f.skip++
		case ev.Type == mdevent.End && (ev.Kind == mdevent.Link || ev.Kind == mdevent.Image):
			f.skip--
		}
		return !ev.Kind.IsBlock()
	}

	r := ev.Range
	switch ev.Kind {
	case mdevent.Emphasis, mdevent.Strong, mdevent.Strikethrough:
		n := max(ev.Attrs.Level, 1)
		switch ev.Type {
		case mdevent.Start:
			f.push(f.borrow(r.Start, min(r.Start+n, r.End)))
		case mdevent.End:
			f.push(f.borrow(max(r.End-n, r.Start), r.End))
		default:
			violation(ev, "inline content")
		}
	case mdevent.Link, mdevent.Image:
		if ev.Type != mdevent.Start {
			violation(ev, "inline content")
		}
		f.push(piece{text: ev.Value, src: r.Start, n: r.Len()})
		f.skip = 1
	case mdevent.Text:
		f.pushText(ev)
	case mdevent.Code, mdevent.InlineMath, mdevent.DisplayMath, mdevent.HTML, mdevent.InlineHTML, mdevent.FootnoteReference:
		f.push(piece{text: ev.Value, src: r.Start, n: r.Len()})
	case mdevent.TaskListMarker:
		f.push(piece{text: ev.Value, src: r.Start, n: r.Len()})
		f.words[len(f.words)-1].space = synth(" ")
	case mdevent.SoftBreak:
		f.softBreak(ev)
	case mdevent.HardBreak:
		f.wrapWords(out, lineHard)
	default:
		return false
	}
	return true
}
