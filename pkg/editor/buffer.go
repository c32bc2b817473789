// Package editor holds an in-memory text buffer with a cursor, a selection
// and an undo log, and the Markdown format command that operates on it.
package editor

import (
	"fmt"

	"github.com/yaklabco/gomdwrap/pkg/fix"
)

// Buffer is a text with a cursor, an optional selection and an undo log.
// Positions are byte offsets unless stated otherwise.
type Buffer struct {
	text  string
	lines []lineInfo

	cursor int
	// anchor is the other end of the selection; equal to cursor when
	// nothing is selected.
	anchor int

	undo []undoStep
	// seq is the nesting depth of BeginUndoSeq.
	seq int
}

// change is one applied edit and the text it replaced.
type change struct {
	edit fix.TextEdit
	old  string
	// cursor is the cursor before the edit.
	cursor int
}

// undoStep groups the changes undone together.
type undoStep struct {
	changes []change
}

// NewBuffer returns a buffer holding text with the cursor at the start.
func NewBuffer(text string) *Buffer {
	return &Buffer{text: text, lines: buildLines(text)}
}

// Text returns the buffer content.
func (b *Buffer) Text() string {
	return b.text
}

// Len returns the length of the content in bytes.
func (b *Buffer) Len() int {
	return len(b.text)
}

// Newline returns the terminator of the first line, "\n" by default.
func (b *Buffer) Newline() string {
	if len(b.lines) > 1 && b.lines[0].end-b.lines[0].newline == 2 {
		return "\r\n"
	}
	return "\n"
}

// Cursor returns the cursor byte offset.
func (b *Buffer) Cursor() int {
	return b.cursor
}

// CursorPos returns the cursor position.
func (b *Buffer) CursorPos() Pos {
	return b.PosAt(b.cursor)
}

// SetCursor moves the cursor to offset. With extend the selection anchor
// stays in place, otherwise the selection is cleared.
func (b *Buffer) SetCursor(offset int, extend bool) {
	b.cursor = clamp(offset, 0, len(b.text))
	if !extend {
		b.anchor = b.cursor
	}
}

// SetCursorPos moves the cursor to a position.
func (b *Buffer) SetCursorPos(p Pos, extend bool) {
	b.SetCursor(b.ByteAt(p), extend)
}

// Select sets the selection to the bytes between anchor and cursor, and
// moves the cursor.
func (b *Buffer) Select(anchor, cursor int) {
	b.anchor = clamp(anchor, 0, len(b.text))
	b.cursor = clamp(cursor, 0, len(b.text))
}

// Selection returns the selected byte range, start before end.
func (b *Buffer) Selection() (int, int) {
	return min(b.anchor, b.cursor), max(b.anchor, b.cursor)
}

// HasSelection reports whether a non-empty selection exists.
func (b *Buffer) HasSelection() bool {
	return b.anchor != b.cursor
}

// BytesAtRange returns the content of lines [first, last) as a byte range.
func (b *Buffer) BytesAtRange(first, last int) (int, int) {
	return b.LineStart(first), b.LineStart(last)
}

// StrSlice returns the content between two byte offsets.
func (b *Buffer) StrSlice(start, end int) string {
	start = clamp(start, 0, len(b.text))
	end = clamp(end, start, len(b.text))
	return b.text[start:end]
}

// BeginUndoSeq starts grouping changes into one undo step. Calls nest.
func (b *Buffer) BeginUndoSeq() {
	if b.seq == 0 {
		b.undo = append(b.undo, undoStep{})
	}
	b.seq++
}

// EndUndoSeq ends a group started by BeginUndoSeq.
func (b *Buffer) EndUndoSeq() {
	if b.seq == 0 {
		return
	}
	b.seq--
	if b.seq == 0 && len(b.undo[len(b.undo)-1].changes) == 0 {
		b.undo = b.undo[:len(b.undo)-1]
	}
}

// Replace replaces the bytes [start, end) with text. The cursor keeps its
// place relative to the surrounding text; the selection is cleared.
func (b *Buffer) Replace(start, end int, text string) error {
	edits, err := fix.PrepareEdits([]fix.TextEdit{fix.Replace(start, end, text)}, b.text)
	if err != nil {
		return fmt.Errorf("replace: %w", err)
	}

	c := change{edit: edits[0], old: b.text[start:end], cursor: b.cursor}
	b.apply(edits)
	b.cursor = c.edit.Shift(b.cursor)
	b.anchor = b.cursor

	if b.seq == 0 {
		b.undo = append(b.undo, undoStep{})
	}
	step := &b.undo[len(b.undo)-1]
	step.changes = append(step.changes, c)
	return nil
}

func (b *Buffer) apply(edits []fix.TextEdit) {
	b.text = fix.ApplyEdits(b.text, edits)
	b.lines = buildLines(b.text)
}

// CanUndo reports whether an undo step is available.
func (b *Buffer) CanUndo() bool {
	return len(b.undo) > 0 && b.seq == 0
}

// Undo reverts the most recent undo step and reports whether there was one.
func (b *Buffer) Undo() bool {
	if !b.CanUndo() {
		return false
	}
	step := b.undo[len(b.undo)-1]
	b.undo = b.undo[:len(b.undo)-1]

	for i := len(step.changes) - 1; i >= 0; i-- {
		c := step.changes[i]
		b.apply([]fix.TextEdit{c.edit.Invert(c.old)})
		b.cursor = c.cursor
		b.anchor = c.cursor
	}
	return true
}
