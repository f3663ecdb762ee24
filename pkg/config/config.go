package config

import (
	"context"
	"runtime"
	"time"

	"github.com/compozy/clear-comments/engine/stripper"
)

const (
	// EnvPrefix is the prefix of every environment variable read by the loader.
	EnvPrefix = "CLEAR_COMMENTS_"
	// DefaultBackupDir is used when backups are enabled without a directory.
	DefaultBackupDir = "./.backup"
	// MaxConcurrency bounds the worker count.
	MaxConcurrency = 256
)

// Config represents the complete configuration of a clean run.
type Config struct {
	TargetDir          string   `koanf:"target_dir"           json:"target_dir"           yaml:"target_dir"           env:"CLEAR_COMMENTS_TARGET_DIR"           validate:"required"`
	PreserveDocs       bool     `koanf:"preserve_docs"        json:"preserve_docs"        yaml:"preserve_docs"        env:"CLEAR_COMMENTS_PRESERVE_DOCS"`
	RemoveTypes        []string `koanf:"remove_types"         json:"remove_types"         yaml:"remove_types"         env:"CLEAR_COMMENTS_REMOVE_TYPES"         validate:"dive,directive"`
	CustomPatterns     []string `koanf:"custom_patterns"      json:"custom_patterns"      yaml:"custom_patterns"      env:"-"`
	ExcludePatterns    []string `koanf:"exclude_patterns"     json:"exclude_patterns"     yaml:"exclude_patterns"     env:"CLEAR_COMMENTS_EXCLUDE"`
	Backup             bool     `koanf:"backup"               json:"backup"               yaml:"backup"               env:"CLEAR_COMMENTS_BACKUP"`
	BackupDir          string   `koanf:"backup_dir"           json:"backup_dir"           yaml:"backup_dir"           env:"CLEAR_COMMENTS_BACKUP_DIR"           validate:"required_if=Backup true"`
	Verbose            bool     `koanf:"verbose"              json:"verbose"              yaml:"verbose"              env:"CLEAR_COMMENTS_VERBOSE"`
	PreserveEmptyLines bool     `koanf:"preserve_empty_lines" json:"preserve_empty_lines" yaml:"preserve_empty_lines" env:"CLEAR_COMMENTS_PRESERVE_EMPTY_LINES"`
	Concurrency        int      `koanf:"concurrency"          json:"concurrency"          yaml:"concurrency"          env:"CLEAR_COMMENTS_CONCURRENCY"          validate:"min=1,max=256"`
}

// Service defines the configuration loading service.
type Service interface {
	// Load merges the sources in order; later sources win per key.
	Load(ctx context.Context, sources ...Source) (*Config, error)
	// Validate checks struct tags and cross-field rules.
	Validate(config *Config) error
	// GetSource reports which source provided the value of key.
	GetSource(key string) SourceType
	// Metadata returns a copy of the per-key source tracking.
	Metadata() Metadata
}

// Source defines the interface for configuration sources.
type Source interface {
	// Load reads configuration from the source.
	Load() (map[string]any, error)
	// Type returns the source type identifier.
	Type() SourceType
}

// SourceType identifies the type of configuration source.
type SourceType string

const (
	SourceCLI     SourceType = "cli"
	SourceFile    SourceType = "file"
	SourceEnv     SourceType = "env"
	SourceDefault SourceType = "default"
)

// Metadata contains metadata about configuration sources.
type Metadata struct {
	Sources  map[string]SourceType `json:"sources"`
	LoadedAt time.Time             `json:"loaded_at"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		TargetDir:          ".",
		PreserveDocs:       true,
		RemoveTypes:        stripper.DefaultDirectives().Strings(),
		CustomPatterns:     []string{},
		ExcludePatterns:    []string{},
		Backup:             false,
		BackupDir:          DefaultBackupDir,
		Verbose:            false,
		PreserveEmptyLines: false,
		Concurrency:        defaultConcurrency(),
	}
}

func defaultConcurrency() int {
	n := runtime.GOMAXPROCS(0)
	if n > MaxConcurrency {
		return MaxConcurrency
	}
	if n < 1 {
		return 1
	}
	return n
}
