package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gomdwrap/internal/configloader"
	"github.com/yaklabco/gomdwrap/pkg/config"
	"github.com/yaklabco/gomdwrap/pkg/fsutil"
)

// defaultConfigFile is the file written by config init.
const defaultConfigFile = ".gomdwrap.yml"

const initHeader = `# gomdwrap configuration.
# Settings here apply to every file below this directory.
# Environment variables (GOMDWRAP_*) and flags take precedence.`

func newConfigCommand(globals *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and create configuration files",
		Args:  noArgs,
	}
	cmd.AddCommand(newConfigShowCommand(globals))
	cmd.AddCommand(newConfigInitCommand())
	return cmd
}

func newConfigShowCommand(globals *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Print the configuration after merging defaults, the user and project
config files, --config and GOMDWRAP_* environment variables.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := configloader.Load(cmd.Context(), configloader.LoadOptions{
				ExplicitPath: globals.configPath,
			})
			if err != nil {
				return err
			}

			header := "# effective configuration (defaults only)"
			if len(res.LoadedFrom) > 0 {
				header = "# effective configuration, loaded from:\n#   " + strings.Join(res.LoadedFrom, "\n#   ")
			}
			data, err := res.Config.ToYAMLWithHeader(header)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	var (
		force  bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(output); err == nil && !force {
				return newUsageError(fmt.Errorf("%s already exists (use --force to overwrite)", output))
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("stat %s: %w", output, err)
			}

			data, err := config.NewConfig().ToYAMLWithHeader(initHeader)
			if err != nil {
				return err
			}
			if err := fsutil.WriteAtomic(cmd.Context(), output, string(data), fsutil.DefaultFileMode); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	cmd.Flags().StringVarP(&output, "output", "o", defaultConfigFile, "file to write")
	return cmd
}
