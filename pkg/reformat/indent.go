package reformat

import (
	"slices"
	"strings"

	"github.com/yaklabco/gomdwrap/pkg/wrap"
)

// indentStack holds the line prefixes of the constructs being emitted.
//
// follow is the prefix of every line; first, while non-empty, replaces it
// for the next line only and is then drained. frames snapshot follow around
// each emitter so unbalanced pushes are caught.
type indentStack struct {
	first  []string
	follow []string
	frames [][]string
}

// indent pushes a prefix level. A pending first-line prefix keeps its
// fragments and gains first; otherwise the first line starts from follow.
func (s *indentStack) indent(first, follow string) {
	if len(s.first) == 0 {
		s.first = append(s.first, s.follow...)
	}
	s.first = append(s.first, first)
	s.follow = append(s.follow, follow)
}

// pushFirst adds a prefix for the next line only.
func (s *indentStack) pushFirst(first string) {
	if len(s.first) == 0 {
		s.first = append(s.first, s.follow...)
	}
	s.first = append(s.first, first)
}

// dedent pops the innermost level. The first-line prefix must have been
// written.
func (s *indentStack) dedent() {
	if len(s.first) != 0 {
		invariant("dedent with pending first-line prefix %q", strings.Join(s.first, ""))
	}
	if len(s.follow) == 0 {
		invariant("dedent without indent")
	}
	s.follow = s.follow[:len(s.follow)-1]
}

func (s *indentStack) enterFrame() {
	s.frames = append(s.frames, slices.Clone(s.follow))
}

func (s *indentStack) leaveFrame() {
	if len(s.frames) == 0 {
		invariant("leave frame without enter")
	}
	frame := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	if len(s.first) != 0 {
		invariant("leave frame with pending first-line prefix %q", strings.Join(s.first, ""))
	}
	if !slices.Equal(frame, s.follow) {
		invariant("leave frame with prefix %q, entered with %q", strings.Join(s.follow, ""), strings.Join(frame, ""))
	}
}

// pending reports whether a first-line prefix is waiting to be written.
func (s *indentStack) pending() bool {
	return len(s.first) != 0
}

// take returns the prefix of the next line and drains first.
func (s *indentStack) take() string {
	if len(s.first) != 0 {
		prefix := strings.Join(s.first, "")
		s.first = s.first[:0]
		return prefix
	}
	return strings.Join(s.follow, "")
}

// firstOut writes the prefix of the next line.
func (s *indentStack) firstOut(out *output) {
	out.writeString(s.take())
}

// emptyOut writes the prefix of the next line without trailing whitespace,
// followed by newline.
func (s *indentStack) emptyOut(out *output, newline string) {
	out.writeString(strings.TrimRight(s.take(), " \t"))
	out.writeString(newline)
}

// blankOut writes a separator line from the follow prefix, leaving any
// pending first-line prefix in place.
func (s *indentStack) blankOut(out *output, newline string) {
	if out.trailing {
		return
	}
	out.writeString(strings.TrimRight(strings.Join(s.follow, ""), " \t"))
	out.writeString(newline)
	out.trailing = true
}

func (s *indentStack) firstLen() int {
	if len(s.first) != 0 {
		return prefixWidth(s.first)
	}
	return prefixWidth(s.follow)
}

func (s *indentStack) followLen() int {
	return prefixWidth(s.follow)
}

func prefixWidth(parts []string) int {
	n := 0
	for _, p := range parts {
		n += wrap.StringWidth(p)
	}
	return n
}
