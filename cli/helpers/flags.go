package helpers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/compozy/clear-comments/pkg/config"
)

// DefaultEnvFile is loaded before configuration resolution when present.
const DefaultEnvFile = ".env"

// AddGlobalFlags adds the flags shared by every command.
func AddGlobalFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("config", "", "Path to a config file (default: .clearrc, .clearrc.json, ...)")
	flags.String("env-file", DefaultEnvFile, "Path to an environment file")
	flags.String("log-level", "info", "Log level (debug, info, warn, error, disabled)")
	flags.Bool("log-json", false, "Write logs as JSON")
	flags.Bool("log-source", false, "Include source locations in logs")
}

// AddConfigFlags adds the flags that feed the run configuration.
func AddConfigFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("target-dir", "", "Directory to process (default: current directory)")
	flags.Bool("no-docs", false, "Also remove documentation comments (/** ... */)")
	flags.Bool("no-jsdoc", false, "Alias for --no-docs")
	flags.StringSlice("remove-types", nil, "Comment types to remove (single-line, multi-line, html, jsdoc)")
	flags.StringArray("pattern", nil, "Additional regular expression to remove (repeatable)")
	flags.StringArray("exclude", nil, "Glob or directory name to exclude (repeatable)")
	flags.Bool("backup", false, "Back up files before modifying them")
	flags.String("backup-dir", "", "Backup directory (default: ./.backup)")
	flags.BoolP("verbose", "v", false, "Report every processed file")
	flags.Bool("preserve-empty-lines", false, "Keep blank lines that were blank before stripping")
	flags.Int("concurrency", 0, "Number of files processed in parallel (default: GOMAXPROCS)")
}

// ExtractCLIFlags returns the configuration flags explicitly set by the user,
// keyed by flag name. Flags left at their default are omitted so they do not
// override lower precedence sources.
func ExtractCLIFlags(cmd *cobra.Command) (map[string]any, error) {
	result := make(map[string]any)
	for _, m := range config.CLIFlagMappings {
		flag := cmd.Flags().Lookup(m.Flag)
		if flag == nil || !flag.Changed {
			continue
		}
		value, err := flagValue(cmd.Flags(), flag)
		if err != nil {
			return nil, fmt.Errorf("failed to read flag --%s: %w", m.Flag, err)
		}
		result[m.Flag] = value
	}
	return result, nil
}

func flagValue(flags *pflag.FlagSet, flag *pflag.Flag) (any, error) {
	switch flag.Value.Type() {
	case "bool":
		return flags.GetBool(flag.Name)
	case "int":
		return flags.GetInt(flag.Name)
	case "stringSlice":
		return flags.GetStringSlice(flag.Name)
	case "stringArray":
		return flags.GetStringArray(flag.Name)
	default:
		return flags.GetString(flag.Name)
	}
}

// LoadEnvironmentFile loads the --env-file into the process environment.
// A missing file is not an error. Variables already set are not overridden.
func LoadEnvironmentFile(cmd *cobra.Command) (string, error) {
	envFile, err := cmd.Flags().GetString("env-file")
	if err != nil {
		return "", fmt.Errorf("failed to get env-file flag: %w", err)
	}
	if envFile == "" {
		return "", nil
	}
	pwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}
	absPath := envFile
	if !filepath.IsAbs(absPath) {
		absPath = filepath.Join(pwd, absPath)
	}
	absPath = filepath.Clean(absPath)
	if cmd.Flags().Changed("env-file") && !isPathWithinDirectory(absPath, pwd) {
		return "", fmt.Errorf("env file path '%s' is outside the project directory", envFile)
	}
	fileInfo, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to stat env file: %w", err)
	}
	if !fileInfo.Mode().IsRegular() {
		return "", fmt.Errorf("env file path '%s' is not a regular file", envFile)
	}
	if err := godotenv.Load(absPath); err != nil {
		return "", fmt.Errorf("failed to load env file %s: %w", absPath, err)
	}
	return absPath, nil
}

// isPathWithinDirectory checks if a given path is within the specified directory
func isPathWithinDirectory(path, dir string) bool {
	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return false
	}
	absDir, err := filepath.Abs(filepath.Clean(dir))
	if err != nil {
		return false
	}
	if absPath == absDir {
		return true
	}
	if !strings.HasSuffix(absDir, string(filepath.Separator)) {
		absDir += string(filepath.Separator)
	}
	return strings.HasPrefix(absPath, absDir)
}
