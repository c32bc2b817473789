package mdevent

import (
	"testing"
)

type wantEvent struct {
	typ   Type
	kind  Kind
	value string
}

func collect(src string) []Event {
	stream := Parse(src)
	var out []Event
	for {
		ev, ok := stream.Next()
		if !ok {
			return out
		}
		out = append(out, ev)
	}
}

func checkEvents(t *testing.T, src string, want []wantEvent) []Event {
	t.Helper()
	got := collect(src)
	if len(got) != len(want) {
		t.Fatalf("Parse(%q) returned %d events, want %d: %v", src, len(got), len(want), got)
	}
	for i, w := range want {
		ev := got[i]
		if ev.Type != w.typ || ev.Kind != w.kind {
			t.Errorf("event %d = %s(%s), want %s(%s)", i, ev.Type, ev.Kind, w.typ, w.kind)
		}
		if w.value != "" && src[ev.Range.Start:ev.Range.End] != w.value {
			t.Errorf("event %d (%s) covers %q, want %q", i, ev.Kind, src[ev.Range.Start:ev.Range.End], w.value)
		}
	}
	return got
}

func TestParse_Paragraph(t *testing.T) {
	t.Parallel()

	checkEvents(t, "Hello *world*\n", []wantEvent{
		{Start, Paragraph, "Hello *world*\n"},
		{Leaf, Text, "Hello "},
		{Start, Emphasis, "*world*"},
		{Leaf, Text, "world"},
		{End, Emphasis, "*world*"},
		{End, Paragraph, "Hello *world*\n"},
	})
}

func TestParse_Breaks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		brk  Kind
	}{
		{"soft", "one\ntwo\n", SoftBreak},
		{"hard spaces", "one  \ntwo\n", HardBreak},
		{"hard backslash", "one\\\ntwo\n", HardBreak},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			checkEvents(t, tt.src, []wantEvent{
				{Start, Paragraph, tt.src},
				{Leaf, Text, "one"},
				{Leaf, tt.brk, ""},
				{Leaf, Text, "two"},
				{End, Paragraph, tt.src},
			})
		})
	}
}

func TestParse_TightList(t *testing.T) {
	t.Parallel()

	events := checkEvents(t, "- a\n- b\n", []wantEvent{
		{Start, List, "- a\n- b\n"},
		{Start, Item, "- a\n"},
		{Leaf, Text, "a"},
		{End, Item, "- a\n"},
		{Start, Item, "- b\n"},
		{Leaf, Text, "b"},
		{End, Item, "- b\n"},
		{End, List, "- a\n- b\n"},
	})
	if !events[0].Attrs.Tight || events[0].Attrs.Ordered {
		t.Errorf("list attrs = %+v, want tight bullet list", events[0].Attrs)
	}
}

func TestParse_OrderedLooseList(t *testing.T) {
	t.Parallel()

	events := checkEvents(t, "3. a\n\n4. b\n", []wantEvent{
		{Start, List, ""},
		{Start, Item, ""},
		{Start, Paragraph, "a\n"},
		{Leaf, Text, "a"},
		{End, Paragraph, ""},
		{End, Item, ""},
		{Start, Item, ""},
		{Start, Paragraph, "b\n"},
		{Leaf, Text, "b"},
		{End, Paragraph, ""},
		{End, Item, ""},
		{End, List, ""},
	})
	attrs := events[0].Attrs
	if !attrs.Ordered || attrs.StartNumber != 3 || attrs.Tight {
		t.Errorf("list attrs = %+v, want loose ordered list starting at 3", attrs)
	}
}

func TestParse_Headings(t *testing.T) {
	t.Parallel()

	events := checkEvents(t, "# Title\n\nSub\n---\n", []wantEvent{
		{Start, Heading, "# Title\n"},
		{Leaf, Text, "Title"},
		{End, Heading, ""},
		{Start, Heading, "Sub\n---\n"},
		{Leaf, Text, "Sub"},
		{End, Heading, ""},
	})
	if events[0].Attrs.Level != 1 || events[3].Attrs.Level != 2 {
		t.Errorf("levels = %d, %d, want 1, 2", events[0].Attrs.Level, events[3].Attrs.Level)
	}
}

func TestParse_FencedCode(t *testing.T) {
	t.Parallel()

	src := "````go\nx := 1\n\ny := 2\n````\n"
	events := checkEvents(t, src, []wantEvent{
		{Start, CodeBlock, src},
		{Leaf, Text, "x := 1\n"},
		{Leaf, Text, "\n"},
		{Leaf, Text, "y := 2\n"},
		{End, CodeBlock, src},
	})
	if events[0].Attrs.Fence != "````" || events[0].Attrs.Info != "go" {
		t.Errorf("code attrs = %+v", events[0].Attrs)
	}
}

func TestParse_IndentedCode(t *testing.T) {
	t.Parallel()

	events := checkEvents(t, "    code\n", []wantEvent{
		{Start, CodeBlock, "code\n"},
		{Leaf, Text, "code\n"},
		{End, CodeBlock, ""},
	})
	if events[0].Attrs.Fence != "" {
		t.Errorf("indented code has fence %q", events[0].Attrs.Fence)
	}
}

func TestParse_BlockQuote(t *testing.T) {
	t.Parallel()

	checkEvents(t, "> one\n> two\n", []wantEvent{
		{Start, BlockQuote, "> one\n> two\n"},
		{Start, Paragraph, "one\n> two\n"},
		{Leaf, Text, "one"},
		{Leaf, SoftBreak, ""},
		{Leaf, Text, "two"},
		{End, Paragraph, ""},
		{End, BlockQuote, ""},
	})
}

func TestParse_QuoteRangesInBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
	}{
		{"empty item first", "> -\n> a\n"},
		{"unterminated nested quote", ">>>*\n>0"},
		{"nested list in quote", "> quote\n> - item\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			events := collect(tt.src)
			if len(events) == 0 || events[0].Kind != BlockQuote || events[0].Range.Start != 0 {
				t.Fatalf("Parse(%q) does not open with a quote at 0: %v", tt.src, events)
			}
			for i, ev := range events {
				if ev.Range.Start < 0 || ev.Range.Start > ev.Range.End || ev.Range.End > len(tt.src) {
					t.Errorf("event %d %s(%s) range %v outside [0, %d]", i, ev.Type, ev.Kind, ev.Range, len(tt.src))
				}
			}
		})
	}
}

func TestParse_InlineEndKeepsLevel(t *testing.T) {
	t.Parallel()

	src := "a **b** ~~c~~\n"
	want := map[Kind]int{Strong: 2, Strikethrough: 2}
	for _, ev := range collect(src) {
		level, ok := want[ev.Kind]
		if !ok || ev.Type != End {
			continue
		}
		if ev.Attrs.Level != level {
			t.Errorf("closing %s level = %d, want %d", ev.Kind, ev.Attrs.Level, level)
		}
		delete(want, ev.Kind)
	}
	for kind := range want {
		t.Errorf("no closing %s event in %q", kind, src)
	}
}

func TestParse_Admonition(t *testing.T) {
	t.Parallel()

	events := checkEvents(t, "> [!note]\n> Be careful.\n", []wantEvent{
		{Start, BlockQuote, ""},
		{Start, Paragraph, "Be careful.\n"},
		{Leaf, Text, "Be careful."},
		{End, Paragraph, ""},
		{End, BlockQuote, ""},
	})
	if events[0].Attrs.Admonition != "NOTE" {
		t.Errorf("admonition = %q, want NOTE", events[0].Attrs.Admonition)
	}
}

func TestParse_Table(t *testing.T) {
	t.Parallel()

	src := "| a | b |\n| - | - |\n| 1 | 2 |\n\nafter\n"
	events := collect(src)
	if events[0].Kind != Table || events[0].Type != Start {
		t.Fatalf("first event = %s, want Start(Table)", events[0])
	}
	if got := src[events[0].Range.Start:events[0].Range.End]; got != "| a | b |\n| - | - |\n| 1 | 2 |\n" {
		t.Errorf("table range covers %q", got)
	}
	last := events[len(events)-2]
	if last.Kind != Text || last.Value != "after" {
		t.Errorf("paragraph after table = %s %q", last, last.Value)
	}
}

func TestParse_Inlines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		src   string
		kind  Kind
		value string
	}{
		{"code span", "a `b c` d\n", Code, "`b c`"},
		{"inline html", "a <b>x</b>\n", InlineHTML, "<b>"},
		{"inline math", "so $x^2$ holds\n", InlineMath, "$x^2$"},
		{"display math", "so $$x$$ holds\n", DisplayMath, "$$x$$"},
		{"link", "see [x](http://e.com/(a)) now\n", Link, "[x](http://e.com/(a))"},
		{"image", "an ![alt](i.png \"t\") here\n", Image, "![alt](i.png \"t\")"},
		{"autolink", "go <https://e.com> now\n", Link, "<https://e.com>"},
		{"linkify", "go www.example.com now\n", Link, "www.example.com"},
		{"strong", "a **b** c\n", Strong, "**b**"},
		{"strikethrough", "a ~~b~~ c\n", Strikethrough, "~~b~~"},
		{"task", "- [x] done\n", TaskListMarker, "[x]"},
		{"footnote", "a[^n] b\n\n[^n]: note\n", FootnoteReference, "[^n]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			for _, ev := range collect(tt.src) {
				if ev.Kind == tt.kind && ev.Type != End {
					if got := tt.src[ev.Range.Start:ev.Range.End]; got != tt.value {
						t.Errorf("%s covers %q, want %q", tt.kind, got, tt.value)
					}
					return
				}
			}
			t.Errorf("no %s event in %q", tt.kind, tt.src)
		})
	}
}

func TestParse_Footnotes(t *testing.T) {
	t.Parallel()

	src := "[^a]: first\n\nmiddle\n\n[^b]: second\n"
	var order []string
	for _, ev := range collect(src) {
		if ev.Type != Start {
			continue
		}
		switch ev.Kind {
		case FootnoteDefinition:
			order = append(order, "fn:"+ev.Attrs.Label)
		case Paragraph:
			order = append(order, "p")
		}
	}
	want := []string{"fn:a", "p", "p", "fn:b", "p"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestParse_DefinitionList(t *testing.T) {
	t.Parallel()

	checkEvents(t, "Term\n: Meaning\n", []wantEvent{
		{Start, DefinitionList, ""},
		{Start, DefinitionListTitle, "Term\n"},
		{Leaf, Text, "Term"},
		{End, DefinitionListTitle, ""},
		{Start, DefinitionListDefinition, ": Meaning\n"},
		{Leaf, Text, "Meaning"},
		{End, DefinitionListDefinition, ""},
		{End, DefinitionList, ""},
	})
}

func TestParse_FrontMatter(t *testing.T) {
	t.Parallel()

	src := "---\ntitle: x\n---\n\nBody\n"
	events := checkEvents(t, src, []wantEvent{
		{Start, MetadataBlock, "---\ntitle: x\n---\n"},
		{End, MetadataBlock, ""},
		{Start, Paragraph, "Body\n"},
		{Leaf, Text, "Body"},
		{End, Paragraph, ""},
	})
	if events[0].Value != "---\ntitle: x\n---\n" {
		t.Errorf("front matter value = %q", events[0].Value)
	}
}

func TestParse_RuleAndHTML(t *testing.T) {
	t.Parallel()

	checkEvents(t, "***\n\n<div>\nx\n</div>\n", []wantEvent{
		{Leaf, Rule, "***\n"},
		{Start, HTMLBlock, "<div>\nx\n</div>\n"},
		{Leaf, HTML, "<div>\n"},
		{Leaf, HTML, "x\n"},
		{Leaf, HTML, "</div>\n"},
		{End, HTMLBlock, ""},
	})
}

func TestStream_References(t *testing.T) {
	t.Parallel()

	stream := Parse("[Foo Bar]: http://x \"T\"\n\nsee [foo bar]\n")
	if !stream.HasReference("FOO   bar") {
		t.Error("HasReference(FOO bar) = false, want true")
	}
	if stream.HasReference("baz") {
		t.Error("HasReference(baz) = true, want false")
	}
	refs := stream.References()
	if len(refs) != 1 || refs[0].Destination != "http://x" || refs[0].Title != "T" {
		t.Errorf("References() = %+v", refs)
	}
}

func TestParse_Empty(t *testing.T) {
	t.Parallel()

	if events := collect(""); len(events) != 0 {
		t.Errorf("Parse(\"\") = %v, want no events", events)
	}
}
