package migrate

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/partforge/pkg/errors"
	"github.com/arthur-debert/partforge/pkg/sets"
)

// Contribution records the files and directories a part has migrated
// into a shared tree, as captured in its stage or strip state.
type Contribution struct {
	Files sets.Set[string]
	Dirs  sets.Set[string]
}

// CleanMigrated removes previously migrated files from root, then
// removes the migrated directories in reverse lexicographic order so
// that subdirectories are visited before their parents. A directory is
// only removed if empty; one kept non-empty (because another part still
// owns a file in it) is left in place without error. Already-absent
// files are tolerated so an interrupted clean can be re-run.
func CleanMigrated(files, dirs sets.Set[string], root string) error {
	for _, file := range sets.Sorted(files) {
		if err := os.Remove(filepath.Join(root, file)); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, errors.ErrFileRemove,
				"cannot remove migrated file %q", file)
		}
	}

	sorted := sets.Sorted(dirs)
	sort.Sort(sort.Reverse(sort.StringSlice(sorted)))

	for _, dir := range sorted {
		path := filepath.Join(root, dir)
		entries, err := os.ReadDir(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return errors.Wrapf(err, errors.ErrFileAccess,
				"cannot inspect directory %q", dir)
		}
		if len(entries) > 0 {
			continue
		}
		if err := os.Remove(path); err != nil {
			return errors.Wrapf(err, errors.ErrFileRemove,
				"cannot remove directory %q", dir)
		}
	}

	return nil
}

// CleanShared removes a part's contribution from a shared tree while
// leaving every path that another part also claims. Ownership is
// decided purely by the recorded contributions, not by filesystem
// inspection.
func CleanShared(sharedDir string, own Contribution, others map[string]Contribution) error {
	files := own.Files.Clone()
	dirs := own.Dirs.Clone()

	for _, other := range others {
		files = files.Diff(other.Files)
		dirs = dirs.Diff(other.Dirs)
	}

	return CleanMigrated(files, dirs, sharedDir)
}
