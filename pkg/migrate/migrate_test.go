package migrate_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/partforge/pkg/migrate"
	"github.com/arthur-debert/partforge/pkg/sets"
	"github.com/arthur-debert/partforge/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func TestFilesHardLinks(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	testutil.MakeTree(t, src, map[string]string{
		"bin/app": "binary",
	})

	err := migrate.Files(
		sets.New("bin/app"), sets.New("bin"), src, dst, false)
	require.NoError(t, err)

	testutil.AssertFileContent(t, filepath.Join(dst, "bin/app"), "binary")
	testutil.AssertHardLinked(t,
		filepath.Join(src, "bin/app"), filepath.Join(dst, "bin/app"))
}

func TestFilesCreatesParentsForDeepFiles(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	testutil.MakeTree(t, src, map[string]string{
		"usr/lib/pkg/mod.so": "so",
	})

	// Only the file is in the set; parent dirs come from dir creation.
	err := migrate.Files(
		sets.New("usr/lib/pkg/mod.so"), sets.New[string](), src, dst, false)
	require.NoError(t, err)

	testutil.AssertExists(t, filepath.Join(dst, "usr/lib/pkg/mod.so"))
}

func TestFilesMissingOK(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	testutil.MakeTree(t, src, map[string]string{"present": "here"})

	files := sets.New("present", "absent")

	// Without missing-ok the absent file is an error.
	err := migrate.Files(files, sets.New[string](), src, dst, false)
	require.Error(t, err)

	// With missing-ok it is skipped.
	err = migrate.Files(files, sets.New[string](), src, dst, true)
	require.NoError(t, err)
	testutil.AssertExists(t, filepath.Join(dst, "present"))
	testutil.AssertNotExists(t, filepath.Join(dst, "absent"))
}

func TestFilesIdempotent(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	testutil.MakeTree(t, src, map[string]string{"a": "one"})

	files, dirs := sets.New("a"), sets.New[string]()
	require.NoError(t, migrate.Files(files, dirs, src, dst, false))
	require.NoError(t, migrate.Files(files, dirs, src, dst, false))

	testutil.AssertFileContent(t, filepath.Join(dst, "a"), "one")
	testutil.AssertHardLinked(t, filepath.Join(src, "a"), filepath.Join(dst, "a"))
}

func TestFilesPreservesSourceSymlink(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	testutil.MakeTree(t, src, map[string]string{"b": "target content"})
	require.NoError(t, os.Symlink("b", filepath.Join(src, "a")))

	err := migrate.Files(sets.New("a", "b"), sets.New[string](), src, dst, false)
	require.NoError(t, err)

	// The destination has an equivalent symlink, not a copy of b.
	testutil.AssertSymlinkTo(t, filepath.Join(dst, "a"), "b")
}

func TestFilesLeavesExistingDestSymlink(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	testutil.MakeTree(t, src, map[string]string{"a": "new"})
	require.NoError(t, os.Symlink("elsewhere", filepath.Join(dst, "a")))

	err := migrate.Files(sets.New("a"), sets.New[string](), src, dst, false)
	require.NoError(t, err)

	// A deliberate pre-existing symlink is respected.
	testutil.AssertSymlinkTo(t, filepath.Join(dst, "a"), "elsewhere")
}

func TestFilesReplacesExistingDestFile(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	testutil.MakeTree(t, src, map[string]string{"a": "fresh"})
	testutil.MakeTree(t, dst, map[string]string{"a": "stale"})

	err := migrate.Files(sets.New("a"), sets.New[string](), src, dst, false)
	require.NoError(t, err)

	testutil.AssertFileContent(t, filepath.Join(dst, "a"), "fresh")
	testutil.AssertHardLinked(t, filepath.Join(src, "a"), filepath.Join(dst, "a"))
}
