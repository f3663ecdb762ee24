package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/compozy/clear-comments/cli/helpers"
	"github.com/compozy/clear-comments/engine/backup"
	"github.com/compozy/clear-comments/engine/collector"
	"github.com/compozy/clear-comments/engine/processor"
	"github.com/compozy/clear-comments/engine/stripper"
	"github.com/compozy/clear-comments/pkg/config"
	"github.com/compozy/clear-comments/pkg/logger"
)

// runClean strips comments from every supported file under the target
// directory.
func runClean(cmd *cobra.Command, args []string, format helpers.OutputFormat) error {
	reporter := newReporter(cmd, format, false)
	res, err := resolveConfig(cmd, args)
	if err != nil {
		return reporter.fail(helpers.WrapError(helpers.CodeInvalidConfig, err))
	}
	ctx := config.ContextWithResolved(cmd.Context(), res)
	log := logger.FromContext(ctx).With("target", res.TargetDir)
	reporter = newReporter(cmd, format, res.Config.Verbose)

	pipeline := stripper.NewPipeline(
		res.Directives,
		res.Config.CustomPatterns,
		stripper.WithLogger(log),
		stripper.WithBlankLines(res.BlankLinePolicy()),
	)
	reporter.Banner(res, pipeline.CustomPatternCount())
	reporter.Warnings(pipeline.Warnings())

	fs := afero.NewOsFs()
	excludes := append(slices.Clone(res.Config.ExcludePatterns), backupExcludes(res)...)
	files, err := collector.New(fs, collector.WithLogger(log)).Collect(ctx, res.TargetDir, excludes)
	if err != nil {
		if ctx.Err() != nil {
			return reporter.fail(helpers.WrapError(helpers.CodeCanceled, helpers.ErrCanceled))
		}
		return reporter.fail(helpers.WrapError(helpers.CodeTargetDir, err))
	}
	log.Debug("collected files", "count", len(files))

	opts := []processor.Option{
		processor.WithConcurrency(res.Config.Concurrency),
		processor.WithObserver(reporter),
		processor.WithLogger(log),
	}
	var manager *backup.Manager
	if res.Config.Backup {
		unlock, err := backup.Lock(res.BackupDir)
		if err != nil {
			return reporter.fail(helpers.WrapError(helpers.CodeBackupFailed, err))
		}
		defer func() {
			if err := unlock(); err != nil {
				log.Warn("failed to release backup lock", "error", err)
			}
		}()
		manager, err = backup.NewManager(fs, res.BackupDir, res.TargetDir, backup.WithLogger(log))
		if err != nil {
			return reporter.fail(helpers.WrapError(helpers.CodeBackupFailed, err))
		}
		opts = append(opts, processor.WithBackup(manager))
	}

	summary, runErr := processor.New(fs, pipeline, opts...).ProcessFiles(ctx, res.TargetDir, files)
	var manifestErr error
	if manager != nil && manager.Count() > 0 {
		manifest, err := manager.WriteManifest()
		if err != nil {
			manifestErr = err
		} else {
			log.Debug("wrote backup manifest", "id", manifest.ID, "files", manifest.TotalFiles)
		}
	}
	if err := reporter.Summary(res, summary, pipeline.Warnings()); err != nil {
		return err
	}
	if manifestErr != nil {
		return reporter.fail(manifestError(manager, manifestErr))
	}
	if runErr != nil {
		if errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded) {
			return reporter.fail(helpers.WrapError(helpers.CodeCanceled, helpers.ErrCanceled))
		}
		return reporter.fail(helpers.WrapError(helpers.CodeInternal, runErr))
	}
	if summary.HasErrors() {
		err := helpers.WrapError(helpers.CodeFilesFailed, fmt.Errorf("%w: %d failed", ErrFilesFailed, len(summary.Errors)))
		return &reportedError{err: err}
	}
	return nil
}

// manifestError reports a manifest that could not be written. The files are
// already rewritten, so the details list the copies for manual recovery.
func manifestError(manager *backup.Manager, err error) *helpers.CliError {
	cliErr := helpers.WrapError(helpers.CodeBackupFailed, err)
	cliErr.Details = fmt.Sprintf("restore is unavailable; originals of %d %s are in %s: %s",
		manager.Count(), pluralize(manager.Count(), "file", "files"), manager.Dir(), strings.Join(manager.Files(), ", "))
	return cliErr
}
