package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// maxTextWidth bounds text_width to catch typos such as 8000.
const maxTextWidth = 1000

// ValidationError describes an invalid configuration value.
type ValidationError struct {
	// Field is the YAML key of the invalid value.
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the problem.
	Message string

	// FilePath is the config file holding the value, if known.
	FilePath string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string
	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	parts = append(parts, e.Message)
	return strings.Join(parts, ": ")
}

// Validate checks every field and joins the problems found.
func (c *Config) Validate() error {
	var errs []error
	add := func(field string, value any, format string, args ...any) {
		errs = append(errs, &ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
	}

	if c.TextWidth < 1 || c.TextWidth > maxTextWidth {
		add("text_width", c.TextWidth, "must be between 1 and %d, got %d", maxTextWidth, c.TextWidth)
	}
	if !c.Newline.IsValid() {
		add("newline", c.Newline, "must be auto, lf or crlf, got %q", c.Newline)
	}
	if !c.WrapAlgorithm.IsValid() {
		add("wrap_algorithm", c.WrapAlgorithm, "must be optimal or first-fit, got %q", c.WrapAlgorithm)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		add("log_level", c.LogLevel, "must be debug, info, warn or error, got %q", c.LogLevel)
	}
	for _, pattern := range c.Exclude {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			add("exclude", pattern, "invalid glob %q", pattern)
		}
	}
	if c.Write && c.Check {
		add("", nil, "--write and --check are mutually exclusive")
	}

	return errors.Join(errs...)
}
