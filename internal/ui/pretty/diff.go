package pretty

import (
	"strings"

	"github.com/yaklabco/gomdwrap/pkg/fix"
)

// FormatDiff renders a unified diff with one style per line kind.
func (s *Styles) FormatDiff(d *fix.Diff) string {
	if !d.HasChanges() {
		return ""
	}

	var sb strings.Builder
	for _, line := range strings.SplitAfter(d.Header(), "\n") {
		if line != "" {
			sb.WriteString(s.DiffHeader.Render(strings.TrimSuffix(line, "\n")) + "\n")
		}
	}

	for _, h := range d.Hunks {
		sb.WriteString(s.DiffHunk.Render(h.Header()) + "\n")
		for _, l := range h.Lines {
			style := s.DiffContext
			switch l.Kind {
			case fix.DiffLineAdd:
				style = s.DiffAdd
			case fix.DiffLineRemove:
				style = s.DiffRemove
			case fix.DiffLineContext:
			}
			sb.WriteString(style.Render(l.Kind.Prefix()+l.Content) + "\n")
		}
	}
	return sb.String()
}
