package backup

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, fsys afero.Fs, path, content string, mode os.FileMode) {
	t.Helper()
	require.NoError(t, fsys.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, afero.WriteFile(fsys, path, []byte(content), mode))
}

func readFile(t *testing.T, fsys afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fsys, path)
	require.NoError(t, err)
	return string(data)
}

func TestManager_Backup(t *testing.T) {
	t.Run("Should mirror the relative path and keep the mode", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, "/proj/src/a.js", "// original\n", 0o600)
		m, err := NewManager(fsys, "/bk", "/proj")
		require.NoError(t, err)

		dest, created, err := m.Backup("/proj/src/a.js")

		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, filepath.Join("/bk", "src", "a.js"), dest)
		assert.Equal(t, "// original\n", readFile(t, fsys, dest))
		info, err := fsys.Stat(dest)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
		assert.Equal(t, 1, m.Count())
	})

	t.Run("Should refuse files outside the root", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, "/other/a.js", "x", 0o644)
		m, err := NewManager(fsys, "/bk", "/proj")
		require.NoError(t, err)

		_, _, err = m.Backup("/other/a.js")

		assert.ErrorIs(t, err, ErrOutsideRoot)
	})

	t.Run("Should fail for a missing source", func(t *testing.T) {
		m, err := NewManager(afero.NewMemMapFs(), "/bk", "/proj")
		require.NoError(t, err)

		_, _, err = m.Backup("/proj/missing.js")

		assert.Error(t, err)
		assert.Equal(t, 0, m.Count())
	})

	t.Run("Should keep the earliest original across runs", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, "/proj/a.js", "first", 0o644)
		first, err := NewManager(fsys, "/bk", "/proj")
		require.NoError(t, err)
		_, _, err = first.Backup("/proj/a.js")
		require.NoError(t, err)
		_, err = first.WriteManifest()
		require.NoError(t, err)

		writeFile(t, fsys, "/proj/a.js", "second", 0o644)
		writeFile(t, fsys, "/proj/b.js", "b", 0o644)
		second, err := NewManager(fsys, "/bk", "/proj")
		require.NoError(t, err)
		_, created, err := second.Backup("/proj/a.js")
		require.NoError(t, err)
		assert.False(t, created)
		_, created, err = second.Backup("/proj/b.js")
		require.NoError(t, err)
		assert.True(t, created)
		manifest, err := second.WriteManifest()
		require.NoError(t, err)

		assert.Equal(t, "first", readFile(t, fsys, "/bk/a.js"))
		assert.Equal(t, []string{"a.js", "b.js"}, manifest.Files)
		assert.Equal(t, []string{"a.js", "b.js"}, second.Files())
		assert.Equal(t, 2, manifest.TotalFiles)
	})

	t.Run("Should refuse a backup directory of another root", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		require.NoError(t, writeManifest(fsys, "/bk", Manifest{Root: "/elsewhere", Files: []string{"a.js"}}))

		_, err := NewManager(fsys, "/bk", "/proj")

		assert.ErrorContains(t, err, "holds backups of /elsewhere")
	})
}

func TestManager_WriteManifest(t *testing.T) {
	t.Run("Should write sorted files with id, timestamp and root", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, "/proj/z.ts", "z", 0o644)
		writeFile(t, fsys, "/proj/a/b.tsx", "b", 0o644)
		clock := func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("X", 3600)) }
		m, err := NewManager(fsys, "/bk", "/proj", WithClock(clock))
		require.NoError(t, err)
		_, _, err = m.Backup("/proj/z.ts")
		require.NoError(t, err)
		_, _, err = m.Backup("/proj/a/b.tsx")
		require.NoError(t, err)

		manifest, err := m.WriteManifest()
		require.NoError(t, err)

		assert.Equal(t, []string{"a/b.tsx", "z.ts"}, manifest.Files)
		assert.Equal(t, "2024-05-01T11:00:00Z", manifest.Timestamp)
		assert.Equal(t, "/proj", manifest.Root)
		_, err = ksuid.Parse(manifest.ID)
		assert.NoError(t, err)

		var onDisk map[string]any
		require.NoError(t, json.Unmarshal([]byte(readFile(t, fsys, "/bk/backup-manifest.json")), &onDisk))
		assert.EqualValues(t, 2, onDisk["totalFiles"])
		assert.Equal(t, []any{"a/b.tsx", "z.ts"}, onDisk["files"])
	})
}

func TestReadManifest(t *testing.T) {
	t.Run("Should report a missing manifest", func(t *testing.T) {
		_, err := ReadManifest(afero.NewMemMapFs(), "/bk")
		assert.ErrorIs(t, err, ErrManifestNotFound)
	})

	t.Run("Should report a malformed manifest", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, "/bk/backup-manifest.json", "{", 0o644)

		_, err := ReadManifest(fsys, "/bk")

		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrManifestNotFound)
		assert.Contains(t, err.Error(), "failed to decode backup manifest")
	})

	t.Run("Should read a manifest written by the legacy tool", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, "/bk/backup-manifest.json",
			`{"timestamp":"2024-01-01T00:00:00.000Z","totalFiles":1,"files":["src/a.js"]}`, 0o644)

		m, err := ReadManifest(fsys, "/bk")

		require.NoError(t, err)
		assert.Equal(t, []string{"src/a.js"}, m.Files)
		assert.Empty(t, m.Root)
	})
}

func TestRestore(t *testing.T) {
	t.Run("Should restore backed up files", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, "/proj/src/a.js", "original a", 0o644)
		writeFile(t, fsys, "/proj/b.ts", "original b", 0o644)
		m, err := NewManager(fsys, "/bk", "/proj")
		require.NoError(t, err)
		for _, p := range []string{"/proj/src/a.js", "/proj/b.ts"} {
			_, _, err := m.Backup(p)
			require.NoError(t, err)
		}
		_, err = m.WriteManifest()
		require.NoError(t, err)
		writeFile(t, fsys, "/proj/src/a.js", "changed", 0o644)
		require.NoError(t, fsys.Remove("/proj/b.ts"))

		result, err := Restore(t.Context(), fsys, "/bk")

		require.NoError(t, err)
		assert.Equal(t, 2, result.Restored)
		assert.Empty(t, result.Errors)
		assert.Equal(t, "original a", readFile(t, fsys, "/proj/src/a.js"))
		assert.Equal(t, "original b", readFile(t, fsys, "/proj/b.ts"))
	})

	t.Run("Should collect per-file errors", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		writeFile(t, fsys, "/bk/present.js", "p", 0o644)
		require.NoError(t, writeManifest(fsys, "/bk", Manifest{
			Root:  "/proj",
			Files: []string{"present.js", "gone.js", "../escape.js"},
		}))

		result, err := Restore(t.Context(), fsys, "/bk")

		require.NoError(t, err)
		assert.Equal(t, 1, result.Restored)
		assert.Equal(t, []string{
			"Backup not found for: gone.js",
			"Failed to restore ../escape.js: path is outside the source root",
		}, result.Errors)
		assert.Equal(t, "p", readFile(t, fsys, "/proj/present.js"))
	})

	t.Run("Should fail without a manifest", func(t *testing.T) {
		_, err := Restore(t.Context(), afero.NewMemMapFs(), "/bk")
		assert.ErrorIs(t, err, ErrManifestNotFound)
	})

	t.Run("Should stop when the context is cancelled", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		require.NoError(t, writeManifest(fsys, "/bk", Manifest{Root: "/proj", Files: []string{"a.js"}}))
		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		_, err := Restore(ctx, fsys, "/bk")

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestLock(t *testing.T) {
	t.Run("Should reject a second holder until released", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "bk")

		unlock, err := Lock(dir)
		require.NoError(t, err)

		_, err = Lock(dir)
		assert.ErrorIs(t, err, ErrLocked)

		require.NoError(t, unlock())
		assert.FileExists(t, filepath.Join(dir, LockName))

		unlockAgain, err := Lock(dir)
		require.NoError(t, err)
		require.NoError(t, unlockAgain())
	})
}
