// Package migrate materializes resolved filesets into destination trees
// via hard links, and removes them again without touching files owned by
// sibling parts.
//
// Hard-link migration requires source and destination to live on the
// same filesystem volume; a cross-volume setup fails with a link
// creation error rather than degrading to a copy.
package migrate

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/partforge/pkg/errors"
	"github.com/arthur-debert/partforge/pkg/logging"
	"github.com/arthur-debert/partforge/pkg/sets"
)

var log = logging.GetLogger("migrate")

// Files migrates the given relative file and directory sets from srcdir
// into dstdir. All destination directories are created first so file
// migration never fails on a missing parent. Re-running is safe: an
// up-to-date destination entry is replaced by an equivalent link, and a
// destination path that is already a symlink is left untouched.
//
// With missingOK set, files absent from srcdir are skipped; this is
// used for pull-time stage package migration where a later step may not
// need the full set.
func Files(files, dirs sets.Set[string], srcdir, dstdir string, missingOK bool) error {
	for _, dir := range sets.Sorted(dirs) {
		if err := os.MkdirAll(filepath.Join(dstdir, dir), 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate,
				"cannot create directory %q", dir)
		}
	}

	for _, file := range sets.Sorted(files) {
		src := filepath.Join(srcdir, file)
		dst := filepath.Join(dstdir, file)

		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate,
				"cannot create parent of %q", file)
		}

		srcInfo, err := os.Lstat(src)
		if err != nil {
			if missingOK && os.IsNotExist(err) {
				log.Debug().Str("file", file).Msg("Skipping missing source file")
				continue
			}
			return errors.Wrapf(err, errors.ErrFileNotFound,
				"cannot migrate %q", file)
		}

		// If the destination is already a symlink, leave it alone: it
		// was put there deliberately.
		if dstInfo, err := os.Lstat(dst); err == nil {
			if dstInfo.Mode()&os.ModeSymlink != 0 {
				continue
			}
			if err := os.Remove(dst); err != nil {
				return errors.Wrapf(err, errors.ErrFileRemove,
					"cannot replace %q", file)
			}
		}

		if err := link(src, dst, srcInfo.Mode()); err != nil {
			return err
		}
	}

	return nil
}

// link recreates src at dst: a source symlink becomes an equivalent
// symlink, anything else becomes a hard link.
func link(src, dst string, mode os.FileMode) error {
	if mode&os.ModeSymlink != 0 {
		target, err := os.Readlink(src)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess,
				"cannot read symlink %q", src)
		}
		if err := os.Symlink(target, dst); err != nil {
			return errors.Wrapf(err, errors.ErrLinkCreate,
				"cannot recreate symlink %q", dst)
		}
		return nil
	}

	if err := os.Link(src, dst); err != nil {
		return errors.Wrapf(err, errors.ErrLinkCreate,
			"cannot hard link %q to %q", src, dst)
	}
	return nil
}
