package backup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockName is the lock file created inside a backup directory during a run.
const LockName = ".clear-comments.lock"

// ErrLocked is returned when another run holds the backup directory.
var ErrLocked = errors.New("backup directory is in use by another run")

// Lock takes an exclusive advisory lock on backupDir on the OS filesystem.
// The returned function releases the lock and leaves the lock file in place.
func Lock(backupDir string) (func() error, error) {
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}
	path := filepath.Join(backupDir, LockName)
	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", backupDir, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, backupDir)
	}
	return func() error {
		if err := fl.Unlock(); err != nil {
			return fmt.Errorf("failed to unlock %s: %w", backupDir, err)
		}
		return nil
	}, nil
}
