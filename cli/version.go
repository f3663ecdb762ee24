package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/compozy/clear-comments/cli/helpers"
	"github.com/compozy/clear-comments/pkg/version"
)

// VersionCmd returns the version command
func VersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := formatFlag(cmd, helpers.OutputFormatText, helpers.OutputFormatJSON)
			if err != nil {
				return err
			}
			info := version.Get()
			if format == helpers.OutputFormatJSON {
				return helpers.NewOutputWriter(cmd.OutOrStdout(), format, false).WriteData(info)
			}
			fmt.Fprintln(cmd.OutOrStdout(), info.String())
			return nil
		},
	}
	cmd.Flags().String("format", string(helpers.OutputFormatText), "Output format (text, json)")
	return cmd
}
