// Package configloader resolves the gomdwrap configuration. It discovers
// config files in XDG and project locations, layers them over the defaults,
// and applies environment and command-line overrides.
package configloader

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/yaklabco/gomdwrap/pkg/config"
)

// LoadOptions controls configuration loading.
type LoadOptions struct {
	// WorkingDir is where the project config search starts. Defaults to
	// the current directory.
	WorkingDir string

	// ExplicitPath is a config file given with --config.
	ExplicitPath string

	// IgnoreUserConfig skips the user-level config.
	IgnoreUserConfig bool

	// IgnoreProjectConfig skips the project config search.
	IgnoreProjectConfig bool

	// IgnoreEnv skips GOMDWRAP_* variables.
	IgnoreEnv bool

	// Lookup reads environment variables. Defaults to os.LookupEnv.
	Lookup func(string) (string, bool)

	// Overrides apply command-line flags. They run last, in order.
	Overrides []func(*config.Config)
}

// LoadResult is the resolved configuration and where it came from.
type LoadResult struct {
	Config *config.Config

	Paths *ConfigPaths

	// LoadedFrom lists the files read, lowest precedence first.
	LoadedFrom []string
}

// Load resolves the configuration. Precedence, highest first:
//  1. Overrides (command-line flags)
//  2. Environment variables (GOMDWRAP_*)
//  3. Explicit config file (--config)
//  4. Project config (.gomdwrap.yml, upward search)
//  5. User config ($XDG_CONFIG_HOME/gomdwrap/config.yaml)
//  6. Defaults
//
// A file only changes the keys it sets.
func Load(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	workDir := opts.WorkingDir
	if workDir == "" {
		var err error
		if workDir, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
	}

	paths := &ConfigPaths{Explicit: opts.ExplicitPath}
	if !opts.IgnoreUserConfig {
		paths.User = findUserConfig()
	}
	if !opts.IgnoreProjectConfig {
		project, err := FindProjectConfig(ctx, workDir)
		if err != nil {
			return nil, fmt.Errorf("discover paths: %w", err)
		}
		paths.Project = project
	}

	result := &LoadResult{Config: config.NewConfig(), Paths: paths}
	for _, path := range []string{paths.User, paths.Project, paths.Explicit} {
		if path == "" {
			continue
		}
		if err := overlayFile(result.Config, path); err != nil {
			return nil, err
		}
		result.LoadedFrom = append(result.LoadedFrom, path)
	}

	if !opts.IgnoreEnv {
		lookup := opts.Lookup
		if lookup == nil {
			lookup = os.LookupEnv
		}
		if err := loadFromEnv(result.Config, lookup); err != nil {
			return nil, fmt.Errorf("load environment: %w", err)
		}
	}

	for _, override := range opts.Overrides {
		override(result.Config)
	}

	if err := result.Config.Validate(); err != nil {
		return nil, err
	}
	return result, nil
}

// overlayFile decodes the config file at path onto cfg.
func overlayFile(cfg *config.Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := cfg.Overlay(data); err != nil {
		return &config.ValidationError{FilePath: path, Message: err.Error()}
	}

	// Tag validation problems with the file that introduced them.
	var verr *config.ValidationError
	if err := cfg.Validate(); errors.As(err, &verr) {
		verr.FilePath = path
		return verr
	}
	return nil
}
