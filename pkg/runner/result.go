package runner

import "github.com/yaklabco/gomdwrap/pkg/fsutil"

// FileOutcome is the result of formatting one file.
type FileOutcome struct {
	Path string

	// Snapshot is the file state when it was read, for a later Rewrite.
	Snapshot *fsutil.Snapshot

	Original  string
	Formatted string
	Changed   bool

	// Error is set if the file could not be read or formatted.
	Error error
}

// Stats captures aggregate information about a run.
type Stats struct {
	FilesDiscovered int
	FilesChanged    int
	FilesErrored    int
}

// Result is the overall runner result.
type Result struct {
	// Files holds one outcome per discovered file, in path order.
	Files []FileOutcome

	Stats Stats
}

// HasChanges reports whether any file would change.
func (r *Result) HasChanges() bool {
	return r != nil && r.Stats.FilesChanged > 0
}

func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)
	switch {
	case outcome.Error != nil:
		r.Stats.FilesErrored++
	case outcome.Changed:
		r.Stats.FilesChanged++
	}
}
