package fixtures

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/otiai10/copy"
	"github.com/stretchr/testify/require"

	"github.com/compozy/clear-comments/test/helpers"
)

// SetupFixture copies test/fixtures/<name> into a fresh temporary directory
// and returns its path.
func SetupFixture(t *testing.T, name string) string {
	t.Helper()
	root, err := helpers.FindProjectRoot()
	require.NoError(t, err)
	srcPath := filepath.Join(root, "test", "fixtures", name)
	dstPath := filepath.Join(t.TempDir(), "clear-comments-test-"+uuid.New().String())
	err = copy.Copy(srcPath, dstPath, copy.Options{
		PermissionControl: copy.AddPermission(0o200),
	})
	require.NoError(t, err)
	return dstPath
}
