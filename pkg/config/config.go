// Package config defines the configuration of gomdwrap. These types are
// plain data with a YAML codec; discovery and layering live in the loader.
package config

import "slices"

// Newline selects the line terminator of the output.
type Newline string

const (
	// NewlineAuto keeps the terminator of the input's first line.
	NewlineAuto Newline = "auto"
	NewlineLF   Newline = "lf"
	NewlineCRLF Newline = "crlf"
)

// Terminator returns the terminator string, or "" for auto.
func (n Newline) Terminator() string {
	switch n {
	case NewlineLF:
		return "\n"
	case NewlineCRLF:
		return "\r\n"
	default:
		return ""
	}
}

// IsValid reports whether n is a known newline mode.
func (n Newline) IsValid() bool {
	switch n {
	case NewlineAuto, NewlineLF, NewlineCRLF:
		return true
	default:
		return false
	}
}

// WrapAlgorithm names a line breaking strategy.
type WrapAlgorithm string

const (
	WrapOptimal  WrapAlgorithm = "optimal"
	WrapFirstFit WrapAlgorithm = "first-fit"
)

// IsValid reports whether w is a known algorithm.
func (w WrapAlgorithm) IsValid() bool {
	return w == WrapOptimal || w == WrapFirstFit
}

// DefaultTextWidth is the wrap width when none is configured.
const DefaultTextWidth = 80

// Config is the root configuration structure.
type Config struct {
	// TextWidth is the maximum display width of wrapped lines.
	TextWidth int `yaml:"text_width"`

	// TableColumnsEqualWidth pads every table column to the widest one.
	TableColumnsEqualWidth bool `yaml:"table_columns_equal_width"`

	// Newline is "auto", "lf" or "crlf".
	Newline Newline `yaml:"newline"`

	// DetectCodeLanguage tags untagged fenced code with a guessed language.
	DetectCodeLanguage bool `yaml:"detect_code_language"`

	// WrapAlgorithm is "optimal" or "first-fit".
	WrapAlgorithm WrapAlgorithm `yaml:"wrap_algorithm"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// Backup keeps a sidecar copy of each file rewritten with --write.
	Backup bool `yaml:"backup"`

	// Exclude lists glob patterns skipped when walking directories.
	Exclude []string `yaml:"exclude,omitempty"`

	// CLI-level options (not persisted to config files).

	// Write rewrites files in place.
	Write bool `yaml:"-"`

	// Check reports files that would change without writing them.
	Check bool `yaml:"-"`

	// Diff prints a unified diff instead of the formatted text.
	Diff bool `yaml:"-"`
}

// NewConfig returns a Config with the defaults.
func NewConfig() *Config {
	return &Config{
		TextWidth:     DefaultTextWidth,
		Newline:       NewlineAuto,
		WrapAlgorithm: WrapOptimal,
		LogLevel:      "info",
	}
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Exclude = slices.Clone(c.Exclude)
	return &clone
}
