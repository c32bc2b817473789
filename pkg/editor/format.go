package editor

import (
	"context"
	"errors"
	"fmt"

	"github.com/yaklabco/gomdwrap/internal/logging"
	"github.com/yaklabco/gomdwrap/pkg/mdevent"
	"github.com/yaklabco/gomdwrap/pkg/reformat"
)

// ErrNoScope is returned by Scope when no reformattable construct covers
// the cursor.
var ErrNoScope = errors.New("no markdown construct at cursor")

// Outcome reports what Format did.
type Outcome struct {
	// Changed is true if the buffer text was replaced.
	Changed bool
	// Start and End delimit the reformatted scope in the original text.
	Start, End int
}

// Scope returns the byte range Format rewrites: the selection expanded to
// whole lines, or without a selection the outermost block holding the
// cursor, starting at the beginning of its first line.
func Scope(buf *Buffer) (int, int, error) {
	if buf.HasSelection() {
		s, e := buf.Selection()
		return buf.LineStart(buf.PosAt(s).Line), buf.LineEnd(buf.PosAt(e).Line), nil
	}

	text := buf.Text()
	cursor := buf.Cursor()
	depth := 0
	for _, ev := range mdevent.Parse(text).Events() {
		top := depth == 0
		switch ev.Type {
		case mdevent.Start:
			depth++
		case mdevent.End:
			depth--
			continue
		case mdevent.Leaf:
			if ev.Kind != mdevent.Rule {
				continue
			}
		}
		if !top || ev.Kind == mdevent.MetadataBlock {
			continue
		}

		start := buf.LineStart(buf.PosAt(ev.Range.Start).Line)
		end := ev.Range.End
		atEnd := end == len(text) || text[end-1] != '\n'
		if start <= cursor && (cursor < end || (cursor == end && atEnd)) {
			return start, end, nil
		}
	}
	return 0, 0, ErrNoScope
}

// Format reformats the scope around the cursor and applies the result as a
// single undo step. When no construct covers the cursor the buffer is left
// untouched and Changed is false.
func Format(ctx context.Context, buf *Buffer, opts reformat.Options) (Outcome, error) {
	logger := logging.FromContext(ctx)

	start, end, err := Scope(buf)
	if errors.Is(err, ErrNoScope) {
		logger.Debug("nothing to format", logging.FieldCursor, buf.Cursor())
		return Outcome{}, nil
	}
	if err != nil {
		return Outcome{}, err
	}

	src := buf.StrSlice(start, end)
	cursor := 0
	if c := buf.Cursor(); c >= start && c <= end {
		cursor = c - start
	}
	if opts.Newline == "" {
		opts.Newline = buf.Newline()
	}

	res, err := reformat.Reformat(src, cursor, opts)
	if err != nil {
		logger.Error("reformat failed", logging.FieldError, err, logging.FieldScopeStart, start, logging.FieldScopeEnd, end)
		return Outcome{}, fmt.Errorf("format [%d:%d]: %w", start, end, err)
	}
	logger.Debug("formatted scope",
		logging.FieldScopeStart, start,
		logging.FieldScopeEnd, end,
		logging.FieldWidth, opts.TextWidth,
		logging.FieldInput, len(src),
		logging.FieldOutput, len(res.Text))

	outcome := Outcome{Start: start, End: end}
	if res.Text == src {
		buf.SetCursor(start+res.Cursor, false)
		return outcome, nil
	}

	buf.BeginUndoSeq()
	defer buf.EndUndoSeq()
	if err := buf.Replace(start, end, res.Text); err != nil {
		return Outcome{}, err
	}
	buf.SetCursor(start+res.Cursor, false)
	outcome.Changed = true
	return outcome, nil
}
