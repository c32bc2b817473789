// Package fix provides byte-range text edits, their validation and
// application, and unified diffs between two versions of a document.
package fix

// TextEdit replaces the bytes [StartOffset, EndOffset) of a text.
type TextEdit struct {
	// StartOffset is the byte index where the edit begins (inclusive).
	StartOffset int

	// EndOffset is the byte index where the edit ends (exclusive).
	EndOffset int

	// NewText is the replacement text.
	NewText string
}

// Replace returns an edit replacing [start, end) with text.
func Replace(start, end int, text string) TextEdit {
	return TextEdit{StartOffset: start, EndOffset: end, NewText: text}
}

// Delta is the change in content length caused by the edit.
func (e TextEdit) Delta() int {
	return len(e.NewText) - (e.EndOffset - e.StartOffset)
}

// Invert returns the edit that undoes e once e has been applied, given the
// text e replaced.
func (e TextEdit) Invert(old string) TextEdit {
	return TextEdit{
		StartOffset: e.StartOffset,
		EndOffset:   e.StartOffset + len(e.NewText),
		NewText:     old,
	}
}

// Shift maps an offset in the text before the edit to the text after it.
// Offsets inside the replaced range collapse to its start.
func (e TextEdit) Shift(offset int) int {
	switch {
	case offset >= e.EndOffset:
		return offset + e.Delta()
	case offset > e.StartOffset:
		return e.StartOffset
	default:
		return offset
	}
}
