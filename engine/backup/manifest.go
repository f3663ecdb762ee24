package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

// ManifestName is the file name of the manifest inside the backup directory.
const ManifestName = "backup-manifest.json"

var (
	// ErrManifestNotFound is returned when the backup directory has no manifest.
	ErrManifestNotFound = errors.New("no backup manifest found")
	// ErrOutsideRoot is returned for paths that do not live under the source root.
	ErrOutsideRoot = errors.New("path is outside the source root")
)

// Manifest records which files a backup directory holds.
type Manifest struct {
	ID         string   `json:"id,omitempty"`
	Timestamp  string   `json:"timestamp"`
	Root       string   `json:"root,omitempty"`
	TotalFiles int      `json:"totalFiles"`
	Files      []string `json:"files"`
}

// ManifestPath returns the manifest location for backupDir.
func ManifestPath(backupDir string) string {
	return filepath.Join(backupDir, ManifestName)
}

// ReadManifest loads the manifest of backupDir.
func ReadManifest(fsys afero.Fs, backupDir string) (Manifest, error) {
	var m Manifest
	data, err := afero.ReadFile(fsys, ManifestPath(backupDir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return m, fmt.Errorf("%w in %s", ErrManifestNotFound, backupDir)
		}
		return m, fmt.Errorf("failed to read backup manifest: %w", err)
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("failed to decode backup manifest %s: %w", ManifestPath(backupDir), err)
	}
	return m, nil
}

func writeManifest(fsys afero.Fs, backupDir string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode backup manifest: %w", err)
	}
	if err := fsys.MkdirAll(backupDir, 0o755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}
	if err := afero.WriteFile(fsys, ManifestPath(backupDir), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write backup manifest: %w", err)
	}
	return nil
}
