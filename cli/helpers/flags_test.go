package helpers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	AddGlobalFlags(cmd)
	AddConfigFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestExtractCLIFlags(t *testing.T) {
	t.Run("Should return only flags set by the user", func(t *testing.T) {
		cmd := newFlagCmd(t, "--backup", "--concurrency", "4", "--exclude", "a", "--exclude", "b")

		flags, err := ExtractCLIFlags(cmd)

		require.NoError(t, err)
		assert.Equal(t, map[string]any{
			"backup":      true,
			"concurrency": 4,
			"exclude":     []string{"a", "b"},
		}, flags)
	})

	t.Run("Should split comma separated remove types", func(t *testing.T) {
		cmd := newFlagCmd(t, "--remove-types", "single-line,html")

		flags, err := ExtractCLIFlags(cmd)

		require.NoError(t, err)
		assert.Equal(t, []string{"single-line", "html"}, flags["remove-types"])
	})

	t.Run("Should keep commas inside custom patterns", func(t *testing.T) {
		cmd := newFlagCmd(t, "--pattern", `a{1,2}`, "-v")

		flags, err := ExtractCLIFlags(cmd)

		require.NoError(t, err)
		assert.Equal(t, []string{`a{1,2}`}, flags["pattern"])
		assert.Equal(t, true, flags["verbose"])
	})

	t.Run("Should return an empty map without flags", func(t *testing.T) {
		flags, err := ExtractCLIFlags(newFlagCmd(t))
		require.NoError(t, err)
		assert.Empty(t, flags)
	})
}

func TestLoadEnvironmentFile(t *testing.T) {
	chdir := func(t *testing.T, dir string) {
		t.Helper()
		wd, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(dir))
		t.Cleanup(func() { _ = os.Chdir(wd) })
	}

	t.Run("Should load variables from the env file", func(t *testing.T) {
		dir := t.TempDir()
		chdir(t, dir)
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CLEAR_COMMENTS_TEST_VALUE=loaded\n"), 0o600))
		t.Setenv("CLEAR_COMMENTS_TEST_VALUE", "")
		require.NoError(t, os.Unsetenv("CLEAR_COMMENTS_TEST_VALUE"))

		path, err := LoadEnvironmentFile(newFlagCmd(t))

		require.NoError(t, err)
		assert.Equal(t, "loaded", os.Getenv("CLEAR_COMMENTS_TEST_VALUE"))
		assert.Equal(t, ".env", filepath.Base(path))
	})

	t.Run("Should ignore a missing env file", func(t *testing.T) {
		chdir(t, t.TempDir())

		path, err := LoadEnvironmentFile(newFlagCmd(t))

		require.NoError(t, err)
		assert.Empty(t, path)
	})

	t.Run("Should skip loading when the flag is empty", func(t *testing.T) {
		path, err := LoadEnvironmentFile(newFlagCmd(t, "--env-file", ""))
		require.NoError(t, err)
		assert.Empty(t, path)
	})

	t.Run("Should reject an explicit env file outside the working directory", func(t *testing.T) {
		chdir(t, t.TempDir())
		outside := filepath.Join(t.TempDir(), "prod.env")

		_, err := LoadEnvironmentFile(newFlagCmd(t, "--env-file", outside))

		assert.ErrorContains(t, err, "outside the project directory")
	})
}

func TestIsPathWithinDirectory(t *testing.T) {
	t.Run("Should accept nested paths and the directory itself", func(t *testing.T) {
		assert.True(t, isPathWithinDirectory("/w/a/.env", "/w"))
		assert.True(t, isPathWithinDirectory("/w", "/w"))
	})

	t.Run("Should reject siblings sharing a prefix", func(t *testing.T) {
		assert.False(t, isPathWithinDirectory("/work/.env", "/w"))
	})
}
