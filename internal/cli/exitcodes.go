package cli

import (
	"errors"
	"io/fs"

	"github.com/yaklabco/gomdwrap/pkg/config"
	"github.com/yaklabco/gomdwrap/pkg/fsutil"
	"github.com/yaklabco/gomdwrap/pkg/reformat"
)

// Exit codes for gomdwrap.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitWouldChange indicates --check found files that are not formatted.
	ExitWouldChange = 1

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

// ErrWouldChange is returned by format --check when a file is not formatted.
var ErrWouldChange = errors.New("files would be reformatted")

// usageError marks an error caused by the command line.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func newUsageError(err error) error {
	return &usageError{err: err}
}

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	var (
		usage   *usageError
		invalid *config.ValidationError
		path    *fs.PathError
	)
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrWouldChange):
		return ExitWouldChange
	case errors.As(err, &usage):
		return ExitInvalidUsage
	case errors.As(err, &invalid):
		return ExitConfigError
	case errors.Is(err, reformat.ErrContractViolation), errors.Is(err, reformat.ErrInvariant):
		return ExitInternalError
	case errors.Is(err, fsutil.ErrNotFound), errors.Is(err, fsutil.ErrPermissionDenied),
		errors.Is(err, fsutil.ErrIsDirectory), errors.Is(err, fsutil.ErrModified),
		errors.As(err, &path):
		return ExitIOError
	default:
		return ExitInternalError
	}
}
