// Package backup copies files aside before they are rewritten and restores
// them from the recorded manifest.
package backup

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/spf13/afero"

	"github.com/compozy/clear-comments/pkg/logger"
)

// Manager creates backups under a backup directory, mirroring paths relative
// to a source root. It is safe for concurrent use.
type Manager struct {
	fs   afero.Fs
	dir  string
	root string
	now  func() time.Time
	log  logger.Logger

	mu       sync.Mutex
	files    map[string]struct{}
	existing map[string]struct{}
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the manifest timestamp source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithLogger sets the manager logger.
func WithLogger(log logger.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// NewManager prepares a manager for backupDir. Entries of an existing manifest
// for the same root are kept so earlier originals are never overwritten.
func NewManager(fsys afero.Fs, backupDir, root string, opts ...Option) (*Manager, error) {
	absDir, err := filepath.Abs(backupDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve backup directory %s: %w", backupDir, err)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source root %s: %w", root, err)
	}
	m := &Manager{
		fs:       fsys,
		dir:      absDir,
		root:     absRoot,
		now:      time.Now,
		files:    make(map[string]struct{}),
		existing: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = logger.GetDefault()
	}

	previous, err := ReadManifest(fsys, absDir)
	switch {
	case errors.Is(err, ErrManifestNotFound):
	case err != nil:
		return nil, err
	case previous.Root != "" && filepath.Clean(previous.Root) != absRoot:
		return nil, fmt.Errorf("backup directory %s holds backups of %s, not %s", absDir, previous.Root, absRoot)
	default:
		for _, rel := range previous.Files {
			m.existing[filepath.ToSlash(rel)] = struct{}{}
		}
	}
	return m, nil
}

// Dir returns the absolute backup directory.
func (m *Manager) Dir() string {
	return m.dir
}

// Root returns the absolute source root.
func (m *Manager) Root() string {
	return m.root
}

// Count returns the number of files backed up by this manager.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}

// Backup copies path into the backup directory and returns the copy's path.
// A copy recorded earlier is kept as is and reported with created false.
func (m *Manager) Backup(path string) (dest string, created bool, err error) {
	rel, err := m.relative(path)
	if err != nil {
		return "", false, err
	}
	dest = filepath.Join(m.dir, filepath.FromSlash(rel))

	m.mu.Lock()
	_, seen := m.existing[rel]
	if _, done := m.files[rel]; done {
		seen = true
	}
	m.mu.Unlock()

	if seen {
		if ok, _ := afero.Exists(m.fs, dest); ok {
			m.log.Debug("keeping earlier backup", "file", rel)
			m.record(rel)
			return dest, false, nil
		}
	}
	if err := copyFile(m.fs, path, dest); err != nil {
		return "", false, err
	}
	m.record(rel)
	return dest, true, nil
}

// Files returns the relative paths backed up by this manager, sorted.
func (m *Manager) Files() []string {
	m.mu.Lock()
	files := slices.Collect(maps.Keys(m.files))
	m.mu.Unlock()
	slices.Sort(files)
	return files
}

func (m *Manager) record(rel string) {
	m.mu.Lock()
	m.files[rel] = struct{}{}
	m.mu.Unlock()
}

// WriteManifest writes the manifest, merged with entries of an earlier run.
func (m *Manager) WriteManifest() (Manifest, error) {
	m.mu.Lock()
	files := make([]string, 0, len(m.files)+len(m.existing))
	for rel := range m.existing {
		files = append(files, rel)
	}
	for rel := range m.files {
		if _, ok := m.existing[rel]; !ok {
			files = append(files, rel)
		}
	}
	m.mu.Unlock()
	slices.Sort(files)

	manifest := Manifest{
		ID:         ksuid.New().String(),
		Timestamp:  m.now().UTC().Format(time.RFC3339),
		Root:       m.root,
		TotalFiles: len(files),
		Files:      files,
	}
	if err := writeManifest(m.fs, m.dir, manifest); err != nil {
		return Manifest{}, err
	}
	return manifest, nil
}

func (m *Manager) relative(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	rel, err := filepath.Rel(m.root, abs)
	if err != nil || rel == "." || escapes(rel) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	return filepath.ToSlash(rel), nil
}

// escapes reports whether a cleaned relative path leaves its base directory.
func escapes(rel string) bool {
	if filepath.IsAbs(rel) {
		return true
	}
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// copyFile copies src to dest with the source file mode, creating parents.
func copyFile(fsys afero.Fs, src, dest string) error {
	info, err := fsys.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", src)
	}
	in, err := fsys.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	if err := fsys.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", dest, err)
	}
	out, err := fsys.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", dest, err)
	}
	return nil
}
