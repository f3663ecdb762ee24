package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/compozy/clear-comments/cli/helpers"
	"github.com/compozy/clear-comments/engine/stripper"
	"github.com/compozy/clear-comments/pkg/logger"
)

// RootCmd returns the clear-comments command tree.
func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "clear-comments [target-dir]",
		Short: "Remove comments from JavaScript and TypeScript sources",
		Long: fmt.Sprintf(`clear-comments strips comments from source files under a directory
(supported extensions: %s). Documentation comments (/** ... */) are kept
unless --no-docs is set. Files can be backed up before they are rewritten and
restored later.`, stripper.SupportedExtensions()),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupGlobal(cmd)
		},
		RunE: runRoot,
	}

	helpers.AddGlobalFlags(root)
	helpers.AddConfigFlags(root)
	root.Flags().String("format", string(helpers.OutputFormatText), "Output format (text, json)")
	root.Flags().String("restore", "", "Restore files from a backup directory instead of cleaning")

	root.AddCommand(
		RestoreCmd(),
		ConfigCmd(),
		VersionCmd(),
	)
	return root
}

// Execute runs the command tree with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := RootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !isReported(err) {
			helpers.OutputError(stderr, err, helpers.OutputFormatText, helpers.ShouldUseColor(stderr))
		}
		return 1
	}
	return 0
}

// setupGlobal loads the env file and installs the logger for every command.
func setupGlobal(cmd *cobra.Command) error {
	if _, err := helpers.LoadEnvironmentFile(cmd); err != nil {
		return fmt.Errorf("failed to load environment file: %w", err)
	}
	logLevel, logJSON, logSource, err := logger.GetLoggerConfig(cmd)
	if err != nil {
		return err
	}
	log, err := logger.SetupLogger(cmd.ErrOrStderr(), logLevel, logJSON, logSource)
	if err != nil {
		return helpers.WrapError(helpers.CodeInvalidArgument, err)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logger.ContextWithLogger(ctx, log))
	return nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	format, err := formatFlag(cmd, helpers.OutputFormatText, helpers.OutputFormatJSON)
	if err != nil {
		return err
	}
	if dir, _ := cmd.Flags().GetString("restore"); dir != "" {
		if len(args) > 0 {
			return helpers.NewCliError(helpers.CodeInvalidArgument, "--restore does not take a target directory")
		}
		return runRestore(cmd, dir, format)
	}
	return runClean(cmd, args, format)
}
