package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/compozy/clear-comments/engine/stripper"
	"github.com/compozy/clear-comments/pkg/logger"
)

// ResolveOptions describes where configuration comes from.
type ResolveOptions struct {
	// Fs is used to read config files. Defaults to the OS filesystem.
	Fs afero.Fs
	// WorkDir anchors config discovery and relative paths. Defaults to the
	// process working directory.
	WorkDir string
	// ConfigPath is an explicit config file tried before the default names.
	ConfigPath string
	// Flags holds explicitly set command-line flags keyed by flag name.
	Flags map[string]any
	// Environ supplies environment variables. Defaults to os.Environ.
	Environ func() []string
}

// Resolved is a validated configuration plus the values derived from it.
type Resolved struct {
	Config     *Config
	Directives stripper.DirectiveSet
	// ConfigFile is the config file that was applied, if any.
	ConfigFile string
	// TargetDir and BackupDir are absolute.
	TargetDir string
	BackupDir string
	Metadata  Metadata
}

// BlankLinePolicy returns the stripper blank-line policy for this run.
func (r *Resolved) BlankLinePolicy() stripper.BlankLinePolicy {
	if r.Config.PreserveEmptyLines {
		return stripper.BlankLinesPreserveExisting
	}
	return stripper.BlankLinesCollapse
}

// SourceOf reports which source provided key.
func (r *Resolved) SourceOf(key string) SourceType {
	if s, ok := r.Metadata.Sources[key]; ok {
		return s
	}
	return SourceDefault
}

// Resolve merges defaults, the config file, the environment and flags, in
// increasing precedence, and validates the result.
func Resolve(ctx context.Context, opts ResolveOptions) (*Resolved, error) {
	log := logger.FromContext(ctx)
	fsys := opts.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	workDir := opts.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		workDir = wd
	}

	sources := []Source{NewEnvProvider(opts.Environ), NewCLIProvider(opts.Flags)}
	file := DiscoverConfigFile(fsys, workDir, opts.ConfigPath, log)
	if file == nil {
		return resolveSources(ctx, workDir, nil, sources)
	}
	resolved, err := resolveSources(ctx, workDir, file, sources)
	if err == nil {
		return resolved, nil
	}
	// a file with invalid values is skipped; env and flag errors stay fatal
	fallback, fallbackErr := resolveSources(ctx, workDir, nil, sources)
	if fallbackErr != nil {
		return nil, fallbackErr
	}
	log.Warn("ignoring config file with invalid values", "path", file.Path(), "error", err)
	return fallback, nil
}

func resolveSources(ctx context.Context, workDir string, file *FileProvider, sources []Source) (*Resolved, error) {
	resolved := &Resolved{}
	if file != nil {
		sources = append([]Source{file}, sources...)
		resolved.ConfigFile = file.Path()
	}
	service := NewService()
	cfg, err := service.Load(ctx, sources...)
	if err != nil {
		return nil, err
	}
	directives, err := EffectiveDirectives(cfg, service.GetSource("remove_types"))
	if err != nil {
		return nil, err
	}
	resolved.Config = cfg
	resolved.Directives = directives
	resolved.Metadata = service.Metadata()
	resolved.TargetDir = absPath(workDir, cfg.TargetDir)
	resolved.BackupDir = absPath(workDir, cfg.BackupDir)
	return resolved, nil
}

// EffectiveDirectives derives the directive set: remove_types when it came
// from a non-default source, else the defaults. Disabling documentation
// preservation always adds jsdoc.
func EffectiveDirectives(cfg *Config, removeTypesSource SourceType) (stripper.DirectiveSet, error) {
	set := stripper.DefaultDirectives()
	if removeTypesSource != SourceDefault {
		parsed, err := stripper.ParseDirectiveSet(cfg.RemoveTypes)
		if err != nil {
			return stripper.DirectiveSet{}, fmt.Errorf("remove_types: %w", err)
		}
		set = parsed
	}
	if !cfg.PreserveDocs {
		set = set.With(stripper.JSDoc)
	}
	return set, nil
}

func absPath(base, path string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}
