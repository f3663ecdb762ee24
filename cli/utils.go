package cli

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/compozy/clear-comments/cli/helpers"
	"github.com/compozy/clear-comments/pkg/config"
	"github.com/compozy/clear-comments/pkg/logger"
)

// formatFlag reads --format and checks it against allowed.
func formatFlag(cmd *cobra.Command, allowed ...helpers.OutputFormat) (helpers.OutputFormat, error) {
	value, err := cmd.Flags().GetString("format")
	if err != nil {
		return "", err
	}
	return helpers.ParseOutputFormat(strings.ToLower(value), allowed...)
}

func newReporter(cmd *cobra.Command, format helpers.OutputFormat, verbose bool) *Reporter {
	out := cmd.OutOrStdout()
	return NewReporter(out, cmd.ErrOrStderr(), format, verbose, helpers.ShouldUseColor(out))
}

// resolveConfig merges config file, environment and explicitly set flags. A
// positional target directory counts as --target-dir.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Resolved, error) {
	flags, err := helpers.ExtractCLIFlags(cmd)
	if err != nil {
		return nil, err
	}
	if len(args) == 1 {
		if dir, ok := flags["target-dir"]; ok && dir != args[0] {
			logger.FromContext(cmd.Context()).Warn("ignoring --target-dir in favor of the positional argument", "flag", dir, "arg", args[0])
		}
		flags["target-dir"] = args[0]
	}
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	return config.Resolve(cmd.Context(), config.ResolveOptions{
		ConfigPath: configPath,
		Flags:      flags,
	})
}

// backupExcludes keeps a backup directory inside the target out of the walk.
func backupExcludes(res *config.Resolved) []string {
	if !res.Config.Backup {
		return nil
	}
	rel, err := filepath.Rel(res.TargetDir, res.BackupDir)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}
	rel = filepath.ToSlash(rel)
	return []string{rel, rel + "/**"}
}
