package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/knadh/koanf/providers/env/v2"
	"github.com/spf13/afero"
	"github.com/tidwall/pretty"
	"gopkg.in/yaml.v3"

	"github.com/compozy/clear-comments/pkg/logger"
)

// DefaultConfigFiles are the config file names looked up in the working
// directory, in order.
var DefaultConfigFiles = []string{
	".clearrc",
	".clearrc.json",
	"clear-comments.config.json",
	".clearrc.yaml",
	".clearrc.yml",
}

// legacyKeys maps camelCase keys of JSON config files to config keys.
var legacyKeys = map[string]string{
	"targetDir":          "target_dir",
	"preserveJSDoc":      "preserve_docs",
	"preserveJsdoc":      "preserve_docs",
	"preserveDocs":       "preserve_docs",
	"removeTypes":        "remove_types",
	"customPatterns":     "custom_patterns",
	"excludePatterns":    "exclude_patterns",
	"backupDir":          "backup_dir",
	"preserveEmptyLines": "preserve_empty_lines",
}

// FlagMapping binds a command-line flag to a config key. Inverted flags store
// the negation of their boolean value.
type FlagMapping struct {
	Flag   string
	Key    string
	Invert bool
}

// CLIFlagMappings lists every flag that feeds the configuration.
var CLIFlagMappings = []FlagMapping{
	{Flag: "target-dir", Key: "target_dir"},
	{Flag: "no-docs", Key: "preserve_docs", Invert: true},
	{Flag: "no-jsdoc", Key: "preserve_docs", Invert: true},
	{Flag: "remove-types", Key: "remove_types"},
	{Flag: "pattern", Key: "custom_patterns"},
	{Flag: "exclude", Key: "exclude_patterns"},
	{Flag: "backup", Key: "backup"},
	{Flag: "backup-dir", Key: "backup_dir"},
	{Flag: "verbose", Key: "verbose"},
	{Flag: "preserve-empty-lines", Key: "preserve_empty_lines"},
	{Flag: "concurrency", Key: "concurrency"},
}

// ConfigKeys returns every koanf key of Config in declaration order.
func ConfigKeys() []string {
	keys := make([]string, 0, len(configKeySet))
	for _, m := range CLIFlagMappings {
		if !slices.Contains(keys, m.Key) {
			keys = append(keys, m.Key)
		}
	}
	return keys
}

var configKeySet = func() map[string]bool {
	set := make(map[string]bool)
	for _, m := range CLIFlagMappings {
		set[m.Key] = true
	}
	return set
}()

// envProvider reads CLEAR_COMMENTS_* variables through koanf's env provider.
type envProvider struct {
	environ func() []string
}

// NewEnvProvider creates an environment source. A nil environ reads the
// process environment.
func NewEnvProvider(environ func() []string) Source {
	return &envProvider{environ: environ}
}

// Load maps known variables to config keys and ignores the rest.
func (e *envProvider) Load() (map[string]any, error) {
	envToPath := GenerateEnvToConfigMap()
	provider := env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			path, ok := envToPath[key]
			if !ok || strings.TrimSpace(value) == "" {
				return "", nil
			}
			return path, value
		},
		EnvironFunc: e.environ,
	})
	data, err := provider.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return data, nil
}

// Type returns the source type identifier.
func (e *envProvider) Type() SourceType {
	return SourceEnv
}

// cliProvider implements Source interface for CLI flags.
type cliProvider struct {
	flags map[string]any
}

// NewCLIProvider creates a source from flags that were explicitly set, keyed
// by flag name.
func NewCLIProvider(flags map[string]any) Source {
	return &cliProvider{
		flags: flags,
	}
}

// Load returns the CLI flags as configuration data.
func (c *cliProvider) Load() (map[string]any, error) {
	config := make(map[string]any)
	for _, m := range CLIFlagMappings {
		value, ok := c.flags[m.Flag]
		if !ok {
			continue
		}
		if m.Invert {
			b, isBool := value.(bool)
			if !isBool {
				return nil, fmt.Errorf("flag --%s must be a boolean, got %T", m.Flag, value)
			}
			// an unset negative flag does not override lower sources
			if !b {
				continue
			}
			value = !b
		}
		config[m.Key] = value
	}
	return config, nil
}

// Type returns the source type identifier.
func (c *cliProvider) Type() SourceType {
	return SourceCLI
}

// FileProvider reads a JSON or YAML config file.
type FileProvider struct {
	fs      afero.Fs
	path    string
	data    map[string]any
	ignored []string
}

// NewFileProvider creates a file source. The format is chosen by extension:
// .yaml and .yml are YAML, everything else is JSON with optional comments.
func NewFileProvider(fsys afero.Fs, path string) *FileProvider {
	return &FileProvider{fs: fsys, path: path}
}

// Path returns the file path.
func (f *FileProvider) Path() string {
	return f.path
}

// IgnoredKeys lists keys found in the file that are not configuration keys.
func (f *FileProvider) IgnoredKeys() []string {
	return append([]string(nil), f.ignored...)
}

// Load reads and decodes the file once; later calls return the cached data.
func (f *FileProvider) Load() (map[string]any, error) {
	if f.data != nil {
		return f.data, nil
	}
	raw, err := afero.ReadFile(f.fs, f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", f.path, err)
	}
	var decoded map[string]any
	switch strings.ToLower(filepath.Ext(f.path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &decoded)
	default:
		// comments and trailing commas are accepted in JSON config files
		err = json.Unmarshal(pretty.Spec(raw), &decoded)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", f.path, err)
	}
	data := make(map[string]any, len(decoded))
	f.ignored = f.ignored[:0]
	for key, value := range decoded {
		if alias, ok := legacyKeys[key]; ok {
			key = alias
		}
		if !configKeySet[key] {
			f.ignored = append(f.ignored, key)
			continue
		}
		if value == nil {
			continue
		}
		data[key] = value
	}
	slices.Sort(f.ignored)
	f.data = data
	return data, nil
}

// Type returns the source type identifier.
func (f *FileProvider) Type() SourceType {
	return SourceFile
}

// DiscoverConfigFile returns a loaded provider for the first usable config
// file, trying explicit (when set) before DefaultConfigFiles. Missing or
// malformed files are logged and skipped. It returns nil when no file is usable.
func DiscoverConfigFile(fsys afero.Fs, workDir, explicit string, log logger.Logger) *FileProvider {
	candidates := make([]string, 0, len(DefaultConfigFiles)+1)
	if explicit != "" {
		candidates = append(candidates, explicit)
	}
	candidates = append(candidates, DefaultConfigFiles...)
	for i, name := range candidates {
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(workDir, path)
		}
		isExplicit := explicit != "" && i == 0
		provider := NewFileProvider(fsys, path)
		if _, err := provider.Load(); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				if isExplicit {
					log.Warn("config file not found, trying defaults", "path", path)
				}
				continue
			}
			log.Warn("ignoring unreadable config file", "path", path, "error", err)
			continue
		}
		if ignored := provider.IgnoredKeys(); len(ignored) > 0 {
			log.Warn("config file has unknown keys", "path", path, "keys", strings.Join(ignored, ","))
		}
		log.Debug("loaded config file", "path", path)
		return provider
	}
	return nil
}
