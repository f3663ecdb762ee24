package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/compozy/clear-comments/cli/helpers"
	"github.com/compozy/clear-comments/engine/backup"
	"github.com/compozy/clear-comments/pkg/logger"
)

// RestoreCmd returns the restore command
func RestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <backup-dir>",
		Short: "Restore files from a backup directory",
		Long: `Copy every file listed in the backup manifest of <backup-dir> back to its
original location, overwriting the current contents.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := formatFlag(cmd, helpers.OutputFormatText, helpers.OutputFormatJSON)
			if err != nil {
				return err
			}
			return runRestore(cmd, args[0], format)
		},
	}
	cmd.Flags().String("format", string(helpers.OutputFormatText), "Output format (text, json)")
	return cmd
}

func runRestore(cmd *cobra.Command, dir string, format helpers.OutputFormat) error {
	ctx := cmd.Context()
	log := logger.FromContext(ctx).With("backup_dir", dir)
	reporter := newReporter(cmd, format, false)

	unlock, err := lockExisting(dir)
	if err != nil {
		return reporter.fail(helpers.WrapError(helpers.CodeRestoreFailed, err))
	}
	defer func() {
		if err := unlock(); err != nil {
			log.Warn("failed to release backup lock", "error", err)
		}
	}()

	result, err := backup.Restore(ctx, afero.NewOsFs(), dir)
	if err != nil {
		cliErr := helpers.WrapError(helpers.CodeRestoreFailed, err)
		if errors.Is(err, backup.ErrManifestNotFound) {
			cliErr.Details = fmt.Sprintf("%s has no %s", dir, backup.ManifestName)
		}
		return reporter.fail(cliErr)
	}
	log.Debug("restore finished", "restored", result.Restored, "errors", len(result.Errors))
	if err := reporter.Restore(result); err != nil {
		return err
	}
	if len(result.Errors) > 0 {
		err := helpers.WrapError(helpers.CodeRestoreFailed, fmt.Errorf("%w: %d failed", ErrFilesFailed, len(result.Errors)))
		return &reportedError{err: err}
	}
	return nil
}

// lockExisting locks dir only when it exists so a missing backup directory
// is reported as a missing manifest instead of being created.
func lockExisting(dir string) (func() error, error) {
	exists, err := afero.DirExists(afero.NewOsFs(), dir)
	if err != nil || !exists {
		return func() error { return nil }, nil
	}
	return backup.Lock(dir)
}
