package fix

import "strings"

// ApplyEdits applies a sorted, validated slice of edits to content.
// Edits must be prepared with PrepareEdits before calling.
func ApplyEdits(content string, edits []TextEdit) string {
	if len(edits) == 0 {
		return content
	}

	delta := 0
	for _, e := range edits {
		delta += e.Delta()
	}

	var out strings.Builder
	out.Grow(len(content) + delta)

	pos := 0
	for _, e := range edits {
		out.WriteString(content[pos:e.StartOffset])
		out.WriteString(e.NewText)
		pos = e.EndOffset
	}
	out.WriteString(content[pos:])

	return out.String()
}

// Apply validates edits against content and applies them.
func Apply(content string, edits ...TextEdit) (string, error) {
	prepared, err := PrepareEdits(edits, content)
	if err != nil {
		return content, err
	}
	return ApplyEdits(content, prepared), nil
}
