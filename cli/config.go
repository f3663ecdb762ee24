package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/compozy/clear-comments/cli/helpers"
	"github.com/compozy/clear-comments/pkg/config"
)

// ConfigCmd returns the config command
func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration inspection",
	}
	cmd.AddCommand(configShowCmd())
	return cmd
}

// configShowCmd shows the current configuration with source information
func configShowCmd() *cobra.Command {
	var (
		format      string
		showSources bool
	)

	cmd := &cobra.Command{
		Use:   "show [target-dir]",
		Short: "Show current configuration values and their sources",
		Long: `Display the effective configuration of a clean run in the current directory.
With --sources, show which source (cli, env, file or default) provided each value.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd, args, format, showSources)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(helpers.OutputFormatTable), "Output format (table, json, yaml)")
	cmd.Flags().BoolVarP(&showSources, "sources", "s", false, "Show configuration sources")
	helpers.AddConfigFlags(cmd)
	return cmd
}

// configView is the structured form of config show.
type configView struct {
	Config     *config.Config               `json:"config"               yaml:"config"`
	Directives []string                     `json:"directives"           yaml:"directives"`
	ConfigFile string                       `json:"config_file,omitempty" yaml:"config_file,omitempty"`
	Sources    map[string]config.SourceType `json:"sources,omitempty"    yaml:"sources,omitempty"`
}

// runConfigShow executes the config show command
func runConfigShow(cmd *cobra.Command, args []string, format string, showSources bool) error {
	outputFormat, err := helpers.ParseOutputFormat(
		strings.ToLower(format),
		helpers.OutputFormatTable,
		helpers.OutputFormatJSON,
		helpers.OutputFormatYAML,
	)
	if err != nil {
		return err
	}
	res, err := resolveConfig(cmd, args)
	if err != nil {
		return helpers.WrapError(helpers.CodeInvalidConfig, fmt.Errorf("failed to load configuration: %w", err))
	}
	out := cmd.OutOrStdout()
	writer := helpers.NewOutputWriter(out, outputFormat, helpers.ShouldUseColor(out))
	if outputFormat == helpers.OutputFormatTable {
		return outputTable(writer, res, showSources)
	}
	view := configView{
		Config:     res.Config,
		Directives: res.Directives.Strings(),
		ConfigFile: res.ConfigFile,
	}
	if showSources {
		view.Sources = allSources(res)
	}
	return writer.WriteData(view)
}

// outputTable outputs configuration as a table
func outputTable(writer *helpers.OutputWriter, res *config.Resolved, showSources bool) error {
	flat := flattenConfig(res)
	header := []string{"KEY", "VALUE"}
	if showSources {
		header = append(header, "SOURCE")
	}
	rows := make([][]string, 0, len(flat))
	for key, value := range flat {
		row := []string{key, value}
		if showSources {
			row = append(row, string(res.SourceOf(key)))
		}
		rows = append(rows, row)
	}
	return writer.WriteTable(header, rows)
}

// flattenConfig converts the config to display strings keyed by config key.
func flattenConfig(res *config.Resolved) map[string]string {
	cfg := res.Config
	return map[string]string{
		"target_dir":           res.TargetDir,
		"preserve_docs":        fmt.Sprint(cfg.PreserveDocs),
		"remove_types":         res.Directives.String(),
		"custom_patterns":      listValue(cfg.CustomPatterns),
		"exclude_patterns":     listValue(cfg.ExcludePatterns),
		"backup":               fmt.Sprint(cfg.Backup),
		"backup_dir":           res.BackupDir,
		"verbose":              fmt.Sprint(cfg.Verbose),
		"preserve_empty_lines": fmt.Sprint(cfg.PreserveEmptyLines),
		"concurrency":          fmt.Sprint(cfg.Concurrency),
	}
}

func allSources(res *config.Resolved) map[string]config.SourceType {
	sources := make(map[string]config.SourceType)
	for _, key := range config.ConfigKeys() {
		sources[key] = res.SourceOf(key)
	}
	return sources
}

func listValue(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}
