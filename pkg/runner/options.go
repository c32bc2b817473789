// Package runner formats many Markdown files concurrently.
package runner

import (
	"runtime"

	"github.com/yaklabco/gomdwrap/pkg/reformat"
)

// Options controls a multi-file run.
type Options struct {
	// Paths lists files and directories. Relative entries resolve against
	// WorkingDir; no entries means WorkingDir itself.
	Paths      []string
	WorkingDir string

	// Extensions picks files out of walked directories. Entries carry the
	// leading dot and compare case-insensitively.
	Extensions []string

	// ExcludeGlobs prune walked directories. A pattern matches the
	// slash-separated path below the walked directory, or the base name when
	// it has no slash. "**" spans any number of directories.
	ExcludeGlobs []string

	// Jobs caps concurrent workers; zero picks runtime.NumCPU.
	Jobs int

	Format reformat.Options
}

// DefaultExtensions is used when Options.Extensions is empty.
func DefaultExtensions() []string {
	return []string{".md", ".markdown"}
}

func (o Options) effectiveExtensions() []string {
	if len(o.Extensions) > 0 {
		return o.Extensions
	}
	return DefaultExtensions()
}

func (o Options) effectivePaths() []string {
	if len(o.Paths) > 0 {
		return o.Paths
	}
	return []string{"."}
}

// workers returns how many goroutines format n files.
func (o Options) workers(n int) int {
	jobs := o.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	return max(1, min(jobs, n))
}
