// Package testutil provides filesystem fixture helpers shared by
// partforge's tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// MakeTree creates a file tree under root. Keys are slash-separated
// relative paths, values are file contents. Parent directories are
// created as needed.
func MakeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

// AssertFileContent asserts that a file exists with exactly the given
// content.
func AssertFileContent(t *testing.T, path, want string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err, "file %s should be readable", path)
	require.Equal(t, want, string(data), "content mismatch for %s", path)
}

// AssertNotExists asserts that no entry (including a dangling symlink)
// exists at path.
func AssertNotExists(t *testing.T, path string) {
	t.Helper()
	_, err := os.Lstat(path)
	require.True(t, os.IsNotExist(err), "%s should not exist", path)
}

// AssertExists asserts that an entry exists at path.
func AssertExists(t *testing.T, path string) {
	t.Helper()
	_, err := os.Lstat(path)
	require.NoError(t, err, "%s should exist", path)
}

// AssertHardLinked asserts that two paths refer to the same underlying
// file.
func AssertHardLinked(t *testing.T, a, b string) {
	t.Helper()
	ai, err := os.Stat(a)
	require.NoError(t, err)
	bi, err := os.Stat(b)
	require.NoError(t, err)
	require.True(t, os.SameFile(ai, bi), "%s and %s should be hard linked", a, b)
}

// AssertSymlinkTo asserts that path is a symlink pointing at target.
func AssertSymlinkTo(t *testing.T, path, target string) {
	t.Helper()
	got, err := os.Readlink(path)
	require.NoError(t, err, "%s should be a symlink", path)
	require.Equal(t, target, got, "symlink target mismatch for %s", path)
}
