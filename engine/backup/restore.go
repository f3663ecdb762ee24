package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/compozy/clear-comments/pkg/logger"
)

// RestoreResult summarizes a restore.
type RestoreResult struct {
	Restored int      `json:"restored"`
	Errors   []string `json:"errors"`
	Root     string   `json:"root"`
}

// Restore copies every file listed in the manifest of backupDir back to its
// original location. A missing manifest is returned as ErrManifestNotFound;
// per-file failures are collected in the result.
func Restore(ctx context.Context, fsys afero.Fs, backupDir string) (RestoreResult, error) {
	log := logger.FromContext(ctx)
	absDir, err := filepath.Abs(backupDir)
	if err != nil {
		return RestoreResult{}, fmt.Errorf("failed to resolve backup directory %s: %w", backupDir, err)
	}
	manifest, err := ReadManifest(fsys, absDir)
	if err != nil {
		return RestoreResult{}, err
	}
	root := manifest.Root
	if root == "" {
		// manifests without a root restore relative to the working directory
		if root, err = os.Getwd(); err != nil {
			return RestoreResult{}, fmt.Errorf("failed to get working directory: %w", err)
		}
	}

	result := RestoreResult{Errors: []string{}, Root: root}
	for _, rel := range manifest.Files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		clean := filepath.Clean(filepath.FromSlash(rel))
		if clean == "." || escapes(clean) {
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to restore %s: %v", rel, ErrOutsideRoot))
			continue
		}
		src := filepath.Join(absDir, clean)
		if ok, _ := afero.Exists(fsys, src); !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("Backup not found for: %s", rel))
			continue
		}
		if err := copyFile(fsys, src, filepath.Join(root, clean)); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to restore %s: %v", rel, err))
			continue
		}
		log.Debug("restored file", "file", rel)
		result.Restored++
	}
	return result, nil
}
