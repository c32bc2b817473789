package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gomdwrap/pkg/fsutil"
)

func newRestoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <files...>",
		Short: "Restore files from their format backups",
		Long: `Restore files from the backups written by format --write --backup.

Each backup (FILE` + fsutil.BackupSuffix + `) is copied back over FILE and removed.`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) == 0 {
				return newUsageError(errors.New("restore needs at least one file"))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var errs []error
			for _, path := range args {
				restored, err := fsutil.RestoreBackup(cmd.Context(), path)
				switch {
				case err != nil:
					errs = append(errs, fmt.Errorf("%s: %w", path, err))
				case restored:
					fmt.Fprintf(cmd.OutOrStdout(), "restored %s\n", path)
				default:
					fmt.Fprintf(cmd.ErrOrStderr(), "no backup for %s\n", path)
				}
			}
			return errors.Join(errs...)
		},
	}
}
