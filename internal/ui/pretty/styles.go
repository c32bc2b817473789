// Package pretty provides Lipgloss-based styled output for the CLI.
package pretty

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Styles contains the styled renderers for CLI output.
type Styles struct {
	FilePath lipgloss.Style

	DiffHeader  lipgloss.Style
	DiffHunk    lipgloss.Style
	DiffAdd     lipgloss.Style
	DiffRemove  lipgloss.Style
	DiffContext lipgloss.Style

	Success lipgloss.Style
	Warning lipgloss.Style
	Failure lipgloss.Style

	Dim  lipgloss.Style
	Bold lipgloss.Style
}

// ANSI palette indexes.
const (
	colorRed    = "9"
	colorGreen  = "10"
	colorYellow = "11"
	colorCyan   = "14"
	colorGray   = "8"
)

// NewStyles creates Styles. Without color every style renders its input
// unchanged. Diff styles never expand tabs so code lines survive intact.
func NewStyles(colorEnabled bool) *Styles {
	plain := lipgloss.NewStyle()
	verbatim := plain.TabWidth(lipgloss.NoTabConversion)

	fg := func(base lipgloss.Style, color string) lipgloss.Style {
		if !colorEnabled {
			return base
		}
		return base.Foreground(lipgloss.Color(color))
	}
	bold := func(base lipgloss.Style) lipgloss.Style {
		if !colorEnabled {
			return base
		}
		return base.Bold(true)
	}

	return &Styles{
		FilePath: bold(plain),

		DiffHeader:  bold(verbatim),
		DiffHunk:    fg(verbatim, colorCyan),
		DiffAdd:     fg(verbatim, colorGreen),
		DiffRemove:  fg(verbatim, colorRed),
		DiffContext: fg(verbatim, colorGray),

		Success: bold(fg(plain, colorGreen)),
		Warning: bold(fg(plain, colorYellow)),
		Failure: bold(fg(plain, colorRed)),

		Dim:  fg(plain, colorGray),
		Bold: bold(plain),
	}
}

// IsColorEnabled resolves a --color mode ("auto", "always" or "never") for
// writer. Auto means a terminal writer and no NO_COLOR.
func IsColorEnabled(mode string, writer io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		if os.Getenv("NO_COLOR") != "" {
			return false
		}
		if f, ok := writer.(*os.File); ok {
			return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
		return false
	}
}
