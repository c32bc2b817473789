package wrap

import (
	"iter"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Word is a piece of text with its trailing whitespace and the penalty
// shown when a line is broken after it.
type Word struct {
	Word       string
	Whitespace string
	Penalty    string
}

// Width implements Fragment.
func (w Word) Width() int { return StringWidth(w.Word) }

// WhitespaceWidth implements Fragment.
func (w Word) WhitespaceWidth() int { return StringWidth(w.Whitespace) }

// PenaltyWidth implements Fragment.
func (w Word) PenaltyWidth() int { return StringWidth(w.Penalty) }

// StringWidth returns the number of terminal columns s occupies.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// FindWords splits text at its Unicode line break opportunities (UAX #14)
// that are followed by whitespace. Each word carries the spaces after it.
// Leading whitespace yields a word with empty text.
func FindWords(text string) iter.Seq[Word] {
	return func(yield func(Word) bool) {
		state := -1
		start := 0
		rest := text
		for len(rest) > 0 {
			var segment string
			segment, rest, _, state = uniseg.FirstLineSegmentInString(rest, state)
			trimmed := strings.TrimRight(segment, " \t")
			if trimmed == segment && len(rest) > 0 {
				// No whitespace: keep the segment attached to the next one.
				continue
			}

			end := len(text) - len(rest)
			wordEnd := end - (len(segment) - len(trimmed))
			if !yield(Word{Word: text[start:wordEnd], Whitespace: text[wordEnd:end]}) {
				return
			}
			start = end
		}
	}
}
