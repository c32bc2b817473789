package fix

import (
	"fmt"
	"strings"
)

// Diff is a line diff between two versions of a document.
type Diff struct {
	// Path names the document in the diff headers.
	Path string

	// Hunks holds the changed regions with their context.
	Hunks []DiffHunk

	// Additions is the number of lines added.
	Additions int

	// Deletions is the number of lines deleted.
	Deletions int
}

// DiffHunk is one changed region.
type DiffHunk struct {
	// OriginalStart is the 1-based first line of the hunk in the original.
	OriginalStart int
	// OriginalCount is the number of original lines in the hunk.
	OriginalCount int
	// ModifiedStart is the 1-based first line of the hunk in the modified text.
	ModifiedStart int
	// ModifiedCount is the number of modified lines in the hunk.
	ModifiedCount int

	Lines []DiffLine
}

// DiffLine is one line of a hunk.
type DiffLine struct {
	Kind DiffLineKind
	// Content is the line without its terminator.
	Content string
}

// DiffLineKind tells context, added and removed lines apart.
type DiffLineKind int

const (
	// DiffLineContext is an unchanged context line.
	DiffLineContext DiffLineKind = iota

	// DiffLineAdd is a line added in the modified version.
	DiffLineAdd

	// DiffLineRemove is a line removed from the original version.
	DiffLineRemove
)

// Prefix returns the unified diff marker of the kind.
func (k DiffLineKind) Prefix() string {
	switch k {
	case DiffLineAdd:
		return "+"
	case DiffLineRemove:
		return "-"
	default:
		return " "
	}
}

// contextLines is the number of unchanged lines kept around a change.
const contextLines = 3

// GenerateDiff returns the diff from original to modified, or nil when they
// hold the same lines. CRLF and LF terminators compare equal.
func GenerateDiff(path, original, modified string) *Diff {
	orig := splitLines(original)
	mod := splitLines(modified)

	ops := diffOps(orig, mod)
	d := &Diff{Path: path}
	for _, op := range ops {
		switch op.kind {
		case DiffLineAdd:
			d.Additions++
		case DiffLineRemove:
			d.Deletions++
		case DiffLineContext:
		}
	}
	if d.Additions+d.Deletions == 0 {
		return nil
	}
	d.Hunks = hunks(ops)
	return d
}

// HasChanges reports whether the diff holds any hunk.
func (d *Diff) HasChanges() bool {
	return d != nil && len(d.Hunks) > 0
}

// Header returns the "---" and "+++" lines.
func (d *Diff) Header() string {
	if d == nil {
		return ""
	}
	path := strings.TrimPrefix(d.Path, "/")
	return fmt.Sprintf("--- a/%s\n+++ b/%s\n", path, path)
}

// String renders the diff in unified format.
func (d *Diff) String() string {
	if !d.HasChanges() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(d.Header())
	for _, h := range d.Hunks {
		sb.WriteString(h.Header())
		sb.WriteByte('\n')
		for _, l := range h.Lines {
			sb.WriteString(l.Kind.Prefix())
			sb.WriteString(l.Content)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Header returns the "@@" range line of the hunk.
func (h DiffHunk) Header() string {
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@",
		h.OriginalStart, h.OriginalCount, h.ModifiedStart, h.ModifiedCount)
}

// splitLines splits text into lines without terminators. A final terminator
// does not start a new line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

type diffOp struct {
	kind DiffLineKind
	text string
}

// diffOps aligns the two line slices on their longest common subsequence.
// When lines can be removed or added first, removals come first.
func diffOps(orig, mod []string) []diffOp {
	// suffix[i][j] is the LCS length of orig[i:] and mod[j:].
	suffix := make([][]int, len(orig)+1)
	for i := range suffix {
		suffix[i] = make([]int, len(mod)+1)
	}
	for i := len(orig) - 1; i >= 0; i-- {
		for j := len(mod) - 1; j >= 0; j-- {
			if orig[i] == mod[j] {
				suffix[i][j] = suffix[i+1][j+1] + 1
			} else {
				suffix[i][j] = max(suffix[i+1][j], suffix[i][j+1])
			}
		}
	}

	ops := make([]diffOp, 0, max(len(orig), len(mod)))
	i, j := 0, 0
	for i < len(orig) || j < len(mod) {
		switch {
		case i < len(orig) && j < len(mod) && orig[i] == mod[j]:
			ops = append(ops, diffOp{DiffLineContext, orig[i]})
			i++
			j++
		case j == len(mod) || (i < len(orig) && suffix[i+1][j] >= suffix[i][j+1]):
			ops = append(ops, diffOp{DiffLineRemove, orig[i]})
			i++
		default:
			ops = append(ops, diffOp{DiffLineAdd, mod[j]})
			j++
		}
	}
	return ops
}

// hunks groups the operations into hunks. Changes separated by at most
// twice the context share a hunk.
func hunks(ops []diffOp) []DiffHunk {
	// origAt[i] and modAt[i] are the 1-based line numbers of ops[i].
	origAt := make([]int, len(ops)+1)
	modAt := make([]int, len(ops)+1)
	origAt[0], modAt[0] = 1, 1
	for i, op := range ops {
		origAt[i+1], modAt[i+1] = origAt[i], modAt[i]
		if op.kind != DiffLineAdd {
			origAt[i+1]++
		}
		if op.kind != DiffLineRemove {
			modAt[i+1]++
		}
	}

	var out []DiffHunk
	first, last := -1, -1
	flush := func() {
		from := max(first-contextLines, 0)
		to := min(last+1+contextLines, len(ops))
		h := DiffHunk{OriginalStart: origAt[from], ModifiedStart: modAt[from]}
		for _, op := range ops[from:to] {
			h.add(op)
		}
		out = append(out, h)
	}

	for i, op := range ops {
		if op.kind == DiffLineContext {
			continue
		}
		if first >= 0 && i-last-1 > 2*contextLines {
			flush()
			first = -1
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	if first >= 0 {
		flush()
	}
	return out
}

func (h *DiffHunk) add(op diffOp) {
	h.Lines = append(h.Lines, DiffLine{Kind: op.kind, Content: op.text})
	switch op.kind {
	case DiffLineContext:
		h.OriginalCount++
		h.ModifiedCount++
	case DiffLineRemove:
		h.OriginalCount++
	case DiffLineAdd:
		h.ModifiedCount++
	}
}
