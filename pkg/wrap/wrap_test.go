package wrap_test

import (
	"slices"
	"strings"
	"testing"

	"github.com/yaklabco/gomdwrap/pkg/wrap"
)

func words(text string) []wrap.Word {
	return slices.Collect(wrap.FindWords(text))
}

func render(lines [][]wrap.Word) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		var sb strings.Builder
		for i, w := range line {
			sb.WriteString(w.Word)
			if i < len(line)-1 {
				sb.WriteString(w.Whitespace)
			}
		}
		out = append(out, sb.String())
	}
	return out
}

func TestFindWords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []wrap.Word
	}{
		{
			name: "spaces",
			text: "foo bar  baz",
			want: []wrap.Word{{Word: "foo", Whitespace: " "}, {Word: "bar", Whitespace: "  "}, {Word: "baz"}},
		},
		{
			name: "leading whitespace",
			text: " foo",
			want: []wrap.Word{{Whitespace: " "}, {Word: "foo"}},
		},
		{
			name: "hyphen stays attached",
			text: "well-known fact",
			want: []wrap.Word{{Word: "well-known", Whitespace: " "}, {Word: "fact"}},
		},
		{
			name: "trailing whitespace",
			text: "end ",
			want: []wrap.Word{{Word: "end", Whitespace: " "}},
		},
		{
			name: "empty",
			text: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := words(tt.text)
			if !slices.Equal(got, tt.want) {
				t.Errorf("FindWords(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestWord_Width(t *testing.T) {
	t.Parallel()

	w := wrap.Word{Word: "日本", Whitespace: " ", Penalty: "-"}
	if w.Width() != 4 || w.WhitespaceWidth() != 1 || w.PenaltyWidth() != 1 {
		t.Errorf("widths = %d %d %d, want 4 1 1", w.Width(), w.WhitespaceWidth(), w.PenaltyWidth())
	}
}

func TestWrap_Algorithms(t *testing.T) {
	t.Parallel()

	text := "This is a very long sentence that should wrap across more than one output line for sure."

	for _, algo := range []wrap.Algorithm{wrap.FirstFit, wrap.OptimalFit} {
		t.Run(algo.String(), func(t *testing.T) {
			t.Parallel()

			lines := render(wrap.Wrap(words(text), []int{20}, algo))
			if len(lines) < 2 {
				t.Fatalf("got %d lines, want several", len(lines))
			}
			for _, line := range lines {
				if wrap.StringWidth(line) > 20 {
					t.Errorf("line %q exceeds 20 columns", line)
				}
			}
			if got := strings.Join(lines, " "); got != text {
				t.Errorf("joined lines = %q, want %q", got, text)
			}
		})
	}
}

func TestWrap_FirstAndFollowWidths(t *testing.T) {
	t.Parallel()

	lines := render(wrap.WrapFirstFit(words("aaa bbb ccc ddd"), []int{3, 7}))
	want := []string{"aaa", "bbb ccc", "ddd"}
	if !slices.Equal(lines, want) {
		t.Errorf("lines = %q, want %q", lines, want)
	}
}

func TestWrap_OverlongWordStaysAlone(t *testing.T) {
	t.Parallel()

	for _, algo := range []wrap.Algorithm{wrap.FirstFit, wrap.OptimalFit} {
		lines := render(wrap.Wrap(words("a supercalifragilistic b"), []int{5}, algo))
		want := []string{"a", "supercalifragilistic", "b"}
		if !slices.Equal(lines, want) {
			t.Errorf("%s: lines = %q, want %q", algo, lines, want)
		}
	}
}

func TestWrap_ZeroWidth(t *testing.T) {
	t.Parallel()

	for _, widths := range [][]int{nil, {0}, {-3, 0}} {
		for _, algo := range []wrap.Algorithm{wrap.FirstFit, wrap.OptimalFit} {
			lines := wrap.Wrap(words("one two three"), widths, algo)
			if len(lines) != 3 {
				t.Errorf("%s with widths %v: got %d lines, want one word per line", algo, widths, len(lines))
			}
		}
	}
}

func TestWrap_Empty(t *testing.T) {
	t.Parallel()

	for _, algo := range []wrap.Algorithm{wrap.FirstFit, wrap.OptimalFit} {
		lines := wrap.Wrap([]wrap.Word(nil), []int{10}, algo)
		if len(lines) != 1 || len(lines[0]) != 0 {
			t.Errorf("%s: Wrap(nil) = %v, want one empty line", algo, lines)
		}
	}
}

func TestWrapOptimalFit_Balances(t *testing.T) {
	t.Parallel()

	// First fit leaves a nearly empty middle line; optimal fit evens out
	// the lines.
	text := "aaa bb cc ddddd"
	greedy := render(wrap.WrapFirstFit(words(text), []int{6}))
	optimal := render(wrap.WrapOptimalFit(words(text), []int{6}, wrap.DefaultPenalties()))

	if !slices.Equal(greedy, []string{"aaa bb", "cc", "ddddd"}) {
		t.Errorf("first fit = %q", greedy)
	}
	if !slices.Equal(optimal, []string{"aaa", "bb cc", "ddddd"}) {
		t.Errorf("optimal fit = %q", optimal)
	}
}

func TestParseAlgorithm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		want    wrap.Algorithm
		wantErr bool
	}{
		{"optimal", wrap.OptimalFit, false},
		{"", wrap.OptimalFit, false},
		{"First-Fit", wrap.FirstFit, false},
		{"knuth", wrap.OptimalFit, true},
	}
	for _, tt := range tests {
		got, err := wrap.ParseAlgorithm(tt.name)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseAlgorithm(%q) = %v, %v", tt.name, got, err)
		}
	}
}
