// Package collector enumerates the source files of a clean run.
package collector

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"github.com/compozy/clear-comments/engine/stripper"
	"github.com/compozy/clear-comments/pkg/logger"
)

// DefaultExcludes are always applied in addition to user patterns.
var DefaultExcludes = []string{
	"**/node_modules/**",
	"**/dist/**",
	"**/build/**",
	"**/.git/**",
	"**/coverage/**",
	"**/.next/**",
	"**/out/**",
	"**/public/**",
	"**/static/**",
	"**/.turbo/**",
	"**/.vscode/**",
}

// Collector walks a directory tree and returns supported source files.
type Collector struct {
	fs  afero.Fs
	log logger.Logger
}

// Option configures a Collector.
type Option func(*Collector)

// WithLogger sets the logger used for skipped entries.
func WithLogger(log logger.Logger) Option {
	return func(c *Collector) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a collector reading from fs.
func New(fs afero.Fs, opts ...Option) *Collector {
	c := &Collector{fs: fs}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.GetDefault()
	}
	return c
}

// Collect returns the sorted absolute paths of regular files under root with a
// supported extension. Directories matching an exclude pattern are pruned and
// symbolic links are not followed.
func (c *Collector) Collect(ctx context.Context, root string, excludes []string) ([]string, error) {
	patterns, err := CombineExcludePatterns(excludes)
	if err != nil {
		return nil, err
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve target directory %s: %w", root, err)
	}
	info, err := c.fs.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to access target directory %s: %w", absRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("target %s is not a directory", absRoot)
	}

	var files []string
	walkErr := afero.Walk(c.fs, absRoot, func(path string, info os.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == absRoot {
				return err
			}
			c.log.Warn("skipping unreadable path", "path", path, "error", err)
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == absRoot {
			return nil
		}
		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if info.IsDir() {
			if matchesAny(patterns, rel, info.Name()) {
				c.log.Debug("pruning excluded directory", "path", rel)
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		if _, ok := stripper.FileTypeFromPath(path); !ok {
			return nil
		}
		if matchesAny(patterns, rel, info.Name()) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	slices.Sort(files)
	return files, nil
}

// CombineExcludePatterns merges the defaults with user patterns, normalizes
// separators and expands bare directory names to **/name/**. It fails on the
// first malformed pattern.
func CombineExcludePatterns(excludes []string) ([]string, error) {
	combined := make([]string, 0, len(DefaultExcludes)+len(excludes))
	combined = append(combined, DefaultExcludes...)
	for _, raw := range excludes {
		pattern := strings.TrimSpace(filepath.ToSlash(raw))
		if pattern == "" {
			continue
		}
		if isBareName(pattern) {
			pattern = "**/" + pattern + "/**"
		}
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", raw)
		}
		combined = append(combined, pattern)
	}
	return combined, nil
}

func isBareName(pattern string) bool {
	return !strings.ContainsAny(pattern, `/*?[]{}\`)
}

// matchesAny checks each pattern against the relative path and the base name.
func matchesAny(patterns []string, rel, base string) bool {
	for _, pattern := range patterns {
		if matchesExcludePattern(pattern, rel, base) {
			return true
		}
	}
	return false
}

// matchesExcludePattern checks a pattern against relative and base filenames.
func matchesExcludePattern(pattern string, relFile string, base string) bool {
	matched, err := doublestar.Match(pattern, relFile)
	if err == nil && matched {
		return true
	}
	matched, err = doublestar.Match(pattern, base)
	return err == nil && matched
}
