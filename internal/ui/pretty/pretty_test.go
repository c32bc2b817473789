package pretty_test

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gomdwrap/internal/ui/pretty"
	"github.com/yaklabco/gomdwrap/pkg/fix"
)

func TestNewStyles_ColorDisabled(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	require.NotNil(t, styles)
	assert.Equal(t, "test", styles.Bold.Render("test"))
	assert.Equal(t, "test", styles.DiffAdd.Render("test"))
}

func TestIsColorEnabled(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	assert.True(t, pretty.IsColorEnabled("always", &buf))
	assert.False(t, pretty.IsColorEnabled("never", os.Stdout))
	assert.False(t, pretty.IsColorEnabled("auto", &buf), "a buffer is not a terminal")
}

func TestFormatDiff(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	d := fix.GenerateDiff("doc.md", "a b\n", "a\nb\n")
	require.NotNil(t, d)

	assert.Equal(t, d.String(), styles.FormatDiff(d), "plain styles render the unified diff")
	assert.Empty(t, styles.FormatDiff(nil))
}

func TestFormatSummary(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)
	tests := []struct {
		name  string
		stats pretty.Stats
		check bool
		want  string
	}{
		{"clean", pretty.Stats{Files: 1}, false, "1 file already formatted\n"},
		{"check", pretty.Stats{Files: 3, Changed: 2}, true, "2 files of 3 would be reformatted\n"},
		{"written", pretty.Stats{Files: 3, Changed: 1, Written: 1}, false, "1 file of 3 reformatted\n"},
		{"failed", pretty.Stats{Files: 2, Changed: 1, Failed: 1}, false, "1 file of 2 differ, 1 file failed\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, styles.FormatSummary(tt.stats, tt.check))
		})
	}
}
