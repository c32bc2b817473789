package reformat_test

import (
	"testing"

	"github.com/yaklabco/gomdwrap/pkg/reformat"
)

func FuzzReformat(f *testing.F) {
	for _, doc := range documents {
		f.Add(doc, 0, 40)
	}
	f.Add("| a | b |\n|---|---|\n| 1 |\n", 3, 10)
	f.Add("> quote\n> - item\n", 8, 1)
	f.Add("> -\n> a\n", 6, 80)
	f.Add(">>>*\n>0", 0, 80)
	f.Add("a **b**\n", 4, 80)

	f.Fuzz(func(t *testing.T, src string, cursor, width int) {
		if cursor < 0 || cursor > len(src) || width < 1 || width > 200 {
			return
		}
		opts := reformat.Options{TextWidth: width}
		res, err := reformat.Reformat(src, cursor, opts)
		if err != nil {
			t.Fatalf("Reformat(%q) error = %v", src, err)
		}
		if res.Cursor < 0 || res.Cursor > len(res.Text) {
			t.Errorf("cursor %d outside output of length %d", res.Cursor, len(res.Text))
		}
		again, err := reformat.Reformat(res.Text, 0, opts)
		if err != nil {
			t.Fatalf("Reformat(%q) error = %v", res.Text, err)
		}
		if again.Text != res.Text {
			t.Errorf("not idempotent for %q\nonce:  %q\ntwice: %q", src, res.Text, again.Text)
		}
	})
}
