package reformat_test

import (
	"errors"
	"slices"
	"strings"
	"testing"
	"unicode"

	"github.com/yaklabco/gomdwrap/pkg/mdevent"
	"github.com/yaklabco/gomdwrap/pkg/reformat"
	"github.com/yaklabco/gomdwrap/pkg/wrap"
)

func format(t *testing.T, src string, opts reformat.Options) string {
	t.Helper()

	res, err := reformat.Reformat(src, 0, opts)
	if err != nil {
		t.Fatalf("Reformat(%q) error = %v", src, err)
	}
	return res.Text
}

func TestReformat_Constructs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		src   string
		width int
		want  string
	}{
		{
			name:  "short list unchanged",
			src:   "- item one\n- item two\n",
			width: 80,
			want:  "- item one\n- item two\n",
		},
		{
			name:  "heading continuation has no hashes",
			src:   "# Heading text here",
			width: 10,
			want:  "# Heading\ntext here\n",
		},
		{
			name:  "setext heading becomes atx",
			src:   "Title\n=====\n",
			width: 80,
			want:  "# Title\n",
		},
		{
			name:  "soft breaks are joined",
			src:   "foo\nbar\n",
			width: 80,
			want:  "foo bar\n",
		},
		{
			name:  "hard break with spaces",
			src:   "foo  \nbar\n",
			width: 80,
			want:  "foo  \nbar\n",
		},
		{
			name:  "backslash hard break",
			src:   "foo\\\nbar\n",
			width: 80,
			want:  "foo  \nbar\n",
		},
		{
			name:  "emphasis delimiters stay attached",
			src:   "aaa *bbb* ccc\n",
			width: 5,
			want:  "aaa\n*bbb*\nccc\n",
		},
		{
			name:  "links are never split",
			src:   "[a link](http://example.com) x\n",
			width: 5,
			want:  "[a link](http://example.com)\nx\n",
		},
		{
			name:  "code spans are atomic",
			src:   "use `go test ./...` here\n",
			width: 8,
			want:  "use\n`go test ./...`\nhere\n",
		},
		{
			name:  "punctuation after code stays attached",
			src:   "run `make`, then\n",
			width: 4,
			want:  "run\n`make`,\nthen\n",
		},
		{
			name:  "nested list",
			src:   "- a\n  - b\n",
			width: 80,
			want:  "- a\n  - b\n",
		},
		{
			name:  "list item wraps under its marker",
			src:   "- one two three\n",
			width: 9,
			want:  "- one two\n  three\n",
		},
		{
			name:  "ordered list is renumbered",
			src:   "3. a\n3. b\n",
			width: 80,
			want:  "3. a\n4. b\n",
		},
		{
			name:  "loose list keeps blank lines",
			src:   "1. one\n\n2. two\n",
			width: 80,
			want:  "1. one\n\n2. two\n",
		},
		{
			name:  "task list",
			src:   "- [ ] todo\n- [x] done\n",
			width: 80,
			want:  "- [ ] todo\n- [x] done\n",
		},
		{
			name:  "block quote rewraps",
			src:   "> quoted text\n> continues here\n",
			width: 14,
			want:  "> quoted text\n> continues\n> here\n",
		},
		{
			name:  "admonition",
			src:   "> [!note]\n> Be careful.\n",
			width: 80,
			want:  "> [!NOTE]\n> Be careful.\n",
		},
		{
			name:  "fenced code is copied",
			src:   "```go\nfunc main() {\n\n\tprintln(\"a very long line that is not wrapped\")\n}\n```\n",
			width: 10,
			want:  "```go\nfunc main() {\n\n\tprintln(\"a very long line that is not wrapped\")\n}\n```\n",
		},
		{
			name:  "rule gets a blank line before it",
			src:   "a\n***\nb\n",
			width: 80,
			want:  "a\n\n***\nb\n",
		},
		{
			name:  "link reference moves to the end",
			src:   "[a]: http://x\n\nSee [a].\n",
			width: 80,
			want:  "See [a].\n\n[a]: http://x\n",
		},
		{
			name:  "front matter is preserved",
			src:   "---\ntitle: x\n---\n\n# T\n",
			width: 80,
			want:  "---\ntitle: x\n---\n\n# T\n",
		},
		{
			name:  "footnote",
			src:   "Text[^1].\n\n[^1]: The note.\n",
			width: 80,
			want:  "Text[^1].\n\n[^1]: The note.\n",
		},
		{
			name:  "gap blank lines are kept",
			src:   "a\n\n\nb\n",
			width: 80,
			want:  "a\n\n\nb\n",
		},
		{
			name:  "moved definition leaves one blank line",
			src:   "See [ref] here.\n\n[ref]: http://x.com \"T\"\n\nMore text.\n",
			width: 80,
			want:  "See [ref] here.\n\nMore text.\n\n[ref]: http://x.com \"T\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := format(t, tt.src, reformat.Options{TextWidth: tt.width})
			if got != tt.want {
				t.Errorf("Reformat(%q)\n got: %q\nwant: %q", tt.src, got, tt.want)
			}
		})
	}
}

func TestReformat_DelimitersKept(t *testing.T) {
	t.Parallel()

	for _, src := range []string{
		"a **b** ~~c~~ d\n",
		"a **strong** b\n",
		"***both***\n",
		"__under__ and ~~gone~~\n",
	} {
		if got := format(t, src, reformat.Options{TextWidth: 80}); got != src {
			t.Errorf("Reformat(%q) = %q, want it unchanged", src, got)
		}
	}
}

func TestReformat_NestedQuoteEdges(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
	}{
		{"empty item opens a quote", "> -\n> a\n"},
		{"unterminated last line", ">>>*\n>0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := reformat.Options{TextWidth: 80}
			once := format(t, tt.src, opts)
			if twice := format(t, once, opts); twice != once {
				t.Errorf("not idempotent for %q\nonce:  %q\ntwice: %q", tt.src, once, twice)
			}
		})
	}
}

func TestReformat_HTMLAndDefinitionList(t *testing.T) {
	t.Parallel()

	html := "<div>\nkept   as is\n</div>\n"
	if got := format(t, html, reformat.Options{TextWidth: 5}); got != html {
		t.Errorf("html block = %q, want %q", got, html)
	}

	src := "Term\n: The definition wraps across lines here.\n"
	got := format(t, src, reformat.Options{TextWidth: 20})
	if !strings.HasPrefix(got, "Term") {
		t.Errorf("definition list = %q, want the term first", got)
	}
	if !strings.Contains(got, "\n: The definition") {
		t.Errorf("definition list = %q, want a ': ' marker", got)
	}
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	marker := slices.IndexFunc(lines, func(l string) bool { return strings.HasPrefix(l, ": ") })
	if marker < 0 || marker == len(lines)-1 {
		t.Fatalf("definition list = %q, want a wrapped definition", got)
	}
	for _, line := range lines[marker+1:] {
		if !strings.HasPrefix(line, "  ") {
			t.Errorf("continuation %q is not indented under the marker", line)
		}
	}
}

func TestReformat_Table(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		src   string
		equal bool
		want  string
	}{
		{
			name: "header widths drive columns",
			src:  "| a | b |\n| - | - |\n| 1 | 2 |\n",
			want: "| a | b |\n|---|---|\n| 1 | 2 |\n",
		},
		{
			name: "cells are padded to the header",
			src:  "| name | v |\n|---|---|\n|x|10|\n",
			want: "| name | v |\n|------|---|\n| x    | 10 |\n",
		},
		{
			name:  "equal width",
			src:   "| a | bbb |\n|---|---|\n| 1 | 2 |\n",
			equal: true,
			want:  "| a   | bbb |\n|-----|-----|\n| 1   | 2   |\n",
		},
		{
			name: "alignment is kept",
			src:  "| a | b | c |\n|:--|--:|:-:|\n",
			want: "| a | b | c |\n|:--|--:|:-:|\n",
		},
		{
			name: "outer pipes are added",
			src:  "a | b\n--|--\n1 | 2\n",
			want: "| a | b |\n|---|---|\n| 1 | 2 |\n",
		},
		{
			name: "missing cells are filled",
			src:  "| a | b |\n|---|---|\n| 1 |\n",
			want: "| a | b |\n|---|---|\n| 1 |   |\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := format(t, tt.src, reformat.Options{TextWidth: 80, TableColumnsEqualWidth: tt.equal})
			if got != tt.want {
				t.Errorf("Reformat(%q)\n got: %q\nwant: %q", tt.src, got, tt.want)
			}
		})
	}
}

func TestReformat_WrapsLongSentence(t *testing.T) {
	t.Parallel()

	src := "This is a very long sentence that should wrap across more than one output line for sure."
	for _, algo := range []wrap.Algorithm{wrap.OptimalFit, wrap.FirstFit} {
		got := format(t, src, reformat.Options{TextWidth: 20, Algorithm: algo})
		lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
		if len(lines) < 2 {
			t.Fatalf("%s: got %q, want several lines", algo, got)
		}
		for _, line := range lines {
			if wrap.StringWidth(line) > 20 {
				t.Errorf("%s: line %q is wider than 20", algo, line)
			}
		}
		if strings.Join(lines, " ") != src {
			t.Errorf("%s: words changed: %q", algo, got)
		}
	}
}

func TestReformat_Newline(t *testing.T) {
	t.Parallel()

	got := format(t, "one two\r\nthree\r\n", reformat.Options{TextWidth: 8})
	if got != "one two\r\nthree\r\n" {
		t.Errorf("detected newline: got %q", got)
	}

	got = format(t, "one two three\n", reformat.Options{TextWidth: 8, Newline: "\r\n"})
	if got != "one two\r\nthree\r\n" {
		t.Errorf("explicit newline: got %q", got)
	}
}

func TestReformat_DetectLanguage(t *testing.T) {
	t.Parallel()

	opts := reformat.Options{
		TextWidth:      80,
		DetectLanguage: func([]byte) string { return "go" },
	}
	got := format(t, "```\npackage main\n```\n", opts)
	if got != "```go\npackage main\n```\n" {
		t.Errorf("untagged fence: got %q", got)
	}
	got = format(t, "```sh\nls\n```\n", opts)
	if got != "```sh\nls\n```\n" {
		t.Errorf("tagged fence changed: got %q", got)
	}
}

func TestReformat_Cursor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		src    string
		width  int
		cursor int
		// after is the text expected right after the translated cursor.
		after string
	}{
		{
			name:   "third character of a wrapped word",
			src:    "alpha beta gamma\n",
			width:  10,
			cursor: strings.Index("alpha beta gamma", "gamma") + 2,
			after:  "mma\n",
		},
		{
			name:   "joined line",
			src:    "one\ntwo three\n",
			width:  80,
			cursor: 5,
			after:  "wo three\n",
		},
		{
			name:   "inside a list item",
			src:    "- first\n- second item\n",
			width:  80,
			cursor: strings.Index("- first\n- second item\n", "item"),
			after:  "item\n",
		},
		{
			name:   "inside a table cell",
			src:    "| name | v |\n|---|---|\n|x|10|\n",
			width:  80,
			cursor: strings.Index("| name | v |\n|---|---|\n|x|10|\n", "10") + 1,
			after:  "0 |\n",
		},
		{
			name:   "inside code",
			src:    "```\nabc\n```\n",
			width:  80,
			cursor: 5,
			after:  "bc\n```\n",
		},
		{
			name:   "moved link reference",
			src:    "[a]: http://x\n\nSee [a].\n",
			width:  80,
			cursor: 1,
			after:  "a]: http://x\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := reformat.Reformat(tt.src, tt.cursor, reformat.Options{TextWidth: tt.width})
			if err != nil {
				t.Fatalf("Reformat() error = %v", err)
			}
			if res.Cursor < 0 || res.Cursor > len(res.Text) {
				t.Fatalf("cursor %d out of range for %q", res.Cursor, res.Text)
			}
			if got := res.Text[res.Cursor:]; got != tt.after {
				t.Errorf("text after cursor = %q, want %q (output %q)", got, tt.after, res.Text)
			}
		})
	}
}

// documents exercises the properties below.
var documents = []string{
	"This is a very long sentence that should wrap across more than one output line for sure.\n",
	"# A heading with several words\n\nA paragraph with *emphasis*, **strong** text, `code` and a [link](http://example.com/path).\n",
	"- a first item with enough words to wrap\n- a second item\n  - nested item with more words than fit\n",
	"1. one\n\n   continued paragraph in the first item\n\n2. two\n",
	"> a quoted paragraph that goes on for a while\n> and continues across lines\n",
	"- [ ] a task that needs doing soon\n- [x] a finished task\n",
	"Text with a footnote[^n].\n\n[^n]: The footnote text is also wrapped when long.\n",
	"| a | b |\n|---|---|\n| 1 | 2 |\n",
	"```\ncode stays as it is, no matter how long the line\n```\n\nafter the code block comes text\n",
	"Term\n: A definition with some words\n",
	"Hard  \nbreak inside a paragraph that is long enough\n",
	"text with $x^2$ math and <span>html</span> inline\n",
}

func TestReformat_Idempotent(t *testing.T) {
	t.Parallel()

	for _, width := range []int{20, 40, 80} {
		for _, doc := range documents {
			opts := reformat.Options{TextWidth: width}
			once := format(t, doc, opts)
			twice := format(t, once, opts)
			if once != twice {
				t.Errorf("width %d: not idempotent for %q\nonce:  %q\ntwice: %q", width, doc, once, twice)
			}
		}
	}
}

func significant(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func TestReformat_PreservesContent(t *testing.T) {
	t.Parallel()

	docs := []string{
		documents[0],
		documents[1],
		documents[2],
		documents[5],
		documents[11],
	}
	for _, width := range []int{1, 15, 80} {
		for _, doc := range docs {
			got := format(t, doc, reformat.Options{TextWidth: width})
			if significant(got) != significant(doc) {
				t.Errorf("width %d: content changed\n  in: %q\n out: %q", width, doc, got)
			}
		}
	}
}

func TestReformat_WidthBound(t *testing.T) {
	t.Parallel()

	const width = 24
	for _, doc := range documents[:7] {
		got := format(t, doc, reformat.Options{TextWidth: width})
		for _, line := range strings.Split(got, "\n") {
			if wrap.StringWidth(line) <= width {
				continue
			}
			if fields := strings.Fields(strings.TrimLeft(line, " >-#[]x0123456789.")); len(fields) > 1 {
				t.Errorf("line %q is wider than %d", line, width)
			}
		}
	}
}

func TestReformat_CursorFidelity(t *testing.T) {
	t.Parallel()

	src := "Some words in a paragraph that wraps,\nand *more* words.\n"
	for cursor := range len(src) {
		if src[cursor] == ' ' || src[cursor] == '\n' {
			continue
		}
		res, err := reformat.Reformat(src, cursor, reformat.Options{TextWidth: 12})
		if err != nil {
			t.Fatalf("Reformat() error = %v", err)
		}
		if res.Text[res.Cursor] != src[cursor] {
			t.Errorf("cursor %d (%q): output cursor %d is on %q", cursor, src[cursor], res.Cursor, res.Text[res.Cursor])
		}
	}
}

func TestReformat_TableIntegrity(t *testing.T) {
	t.Parallel()

	src := "| a | long header | c |\n|---|---|---|\n| 1 | 2 | 3 |\n| 4 |\n"
	for _, equal := range []bool{false, true} {
		got := format(t, src, reformat.Options{TextWidth: 80, TableColumnsEqualWidth: equal})
		lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
		var widths []int
		for i, line := range lines {
			cells := strings.Split(strings.Trim(line, "|"), "|")
			if len(cells) != 3 {
				t.Errorf("row %d %q has %d cells, want 3", i, line, len(cells))
			}
			if i == 0 {
				for _, c := range cells {
					widths = append(widths, len(c))
				}
			}
		}
		if equal && (widths[0] != widths[1] || widths[1] != widths[2]) {
			t.Errorf("equal widths: header %q has widths %v", lines[0], widths)
		}
	}
}

func TestReformat_Empty(t *testing.T) {
	t.Parallel()

	res, err := reformat.Reformat("", 0, reformat.Options{TextWidth: 80})
	if err != nil || res.Text != "" || res.Cursor != 0 {
		t.Errorf("Reformat(\"\") = %+v, %v", res, err)
	}
}

func TestContractError(t *testing.T) {
	t.Parallel()

	err := error(&reformat.ContractError{Event: mdevent.Event{Type: mdevent.End, Kind: mdevent.TableRow}, Context: "paragraph"})
	if !errors.Is(err, reformat.ErrContractViolation) {
		t.Errorf("errors.Is(%v, ErrContractViolation) = false", err)
	}
	if !strings.Contains(err.Error(), "TableRow") || !strings.Contains(err.Error(), "paragraph") {
		t.Errorf("Error() = %q", err.Error())
	}
}
