package fix

import (
	"cmp"
	"fmt"
	"slices"
	"unicode/utf8"
)

// ValidationError describes an edit that does not fit the content.
type ValidationError struct {
	Edit    TextEdit
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid edit [%d:%d]: %s", e.Edit.StartOffset, e.Edit.EndOffset, e.Message)
}

// ConflictError describes two edits that touch the same bytes.
type ConflictError struct {
	First, Second TextEdit
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("overlapping edits: [%d:%d] and [%d:%d]",
		e.First.StartOffset, e.First.EndOffset,
		e.Second.StartOffset, e.Second.EndOffset)
}

// PrepareEdits checks edits against content and returns them sorted by
// position. Offsets must lie on UTF-8 boundaries within content and must not
// split a CRLF pair. The input slice is not modified.
func PrepareEdits(edits []TextEdit, content string) ([]TextEdit, error) {
	if len(edits) == 0 {
		return edits, nil
	}

	for _, edit := range edits {
		if msg := checkRange(edit, content); msg != "" {
			return nil, &ValidationError{Edit: edit, Message: msg}
		}
	}

	sorted := slices.Clone(edits)
	slices.SortStableFunc(sorted, func(a, b TextEdit) int {
		if c := cmp.Compare(a.StartOffset, b.StartOffset); c != 0 {
			return c
		}
		return cmp.Compare(a.EndOffset, b.EndOffset)
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i].StartOffset < sorted[i-1].EndOffset {
			return nil, &ConflictError{First: sorted[i-1], Second: sorted[i]}
		}
	}
	return sorted, nil
}

func checkRange(edit TextEdit, content string) string {
	switch {
	case edit.StartOffset < 0:
		return "start offset is negative"
	case edit.EndOffset < edit.StartOffset:
		return "end offset is before start offset"
	case edit.EndOffset > len(content):
		return fmt.Sprintf("end offset %d exceeds content length %d", edit.EndOffset, len(content))
	}
	for _, off := range []int{edit.StartOffset, edit.EndOffset} {
		if off == 0 || off == len(content) {
			continue
		}
		if !utf8.RuneStart(content[off]) {
			return fmt.Sprintf("offset %d is inside a UTF-8 sequence", off)
		}
		if content[off-1] == '\r' && content[off] == '\n' {
			return fmt.Sprintf("offset %d splits a CRLF line break", off)
		}
	}
	return ""
}
