// Package main is the entry point for the gomdwrap CLI.
package main

import (
	"errors"
	"os"

	"github.com/yaklabco/gomdwrap/internal/cli"
	"github.com/yaklabco/gomdwrap/internal/logging"
)

// Build-time variables set by GoReleaser via ldflags.
//
//nolint:gochecknoglobals // Version variables must be package-level for ldflags injection
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := cli.NewRootCommand(cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})

	if err := rootCmd.Execute(); err != nil {
		// ErrWouldChange only selects the exit code.
		if !errors.Is(err, cli.ErrWouldChange) {
			logging.Default().Error("command failed", logging.FieldError, err)
		}
		return cli.ExitCode(err)
	}
	return 0
}
