package drivers

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/arthur-debert/partforge/pkg/errors"
)

// Fetcher retrieves a part's declared stage packages into a cache
// directory and unpacks them into the part's install directory.
// Repository-backed implementations live outside the core; LocalFetcher
// covers local mirrors and tests.
type Fetcher interface {
	Fetch(packages []string, cacheDir string) error
	Unpack(cacheDir, installDir string) error
}

// LocalFetcher resolves package names against a local mirror directory
// where each package is a directory tree carrying its payload.
type LocalFetcher struct {
	MirrorDir string
}

// Fetch copies each named package tree from the mirror into cacheDir.
func (f *LocalFetcher) Fetch(packages []string, cacheDir string) error {
	for _, pkg := range packages {
		src := filepath.Join(f.MirrorDir, pkg)
		if _, err := os.Lstat(src); err != nil {
			return errors.Wrapf(err, errors.ErrFetchFailed,
				"package %q not found in mirror %q", pkg, f.MirrorDir)
		}
		if err := copyTree(src, filepath.Join(cacheDir, pkg)); err != nil {
			return errors.Wrapf(err, errors.ErrFetchFailed,
				"cannot fetch package %q", pkg)
		}
	}
	return nil
}

// Unpack merges the payload of every cached package into installDir.
func (f *LocalFetcher) Unpack(cacheDir, installDir string) error {
	entries, err := os.ReadDir(cacheDir)
	if err != nil {
		return errors.Wrap(err, errors.ErrFetchFailed, "cannot read package cache")
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		src := filepath.Join(cacheDir, entry.Name())
		if err := copyTree(src, installDir); err != nil {
			return errors.Wrapf(err, errors.ErrFetchFailed,
				"cannot unpack package %q", entry.Name())
		}
	}
	return nil
}

// copyTree copies a directory tree, recreating symlinks as symlinks.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}

		switch {
		case d.IsDir():
			return os.MkdirAll(target, 0755)
		case info.Mode()&os.ModeSymlink != 0:
			linkTarget, err := os.Readlink(path)
			if err != nil {
				return err
			}
			if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
				return err
			}
			return os.Symlink(linkTarget, target)
		default:
			return copyFile(path, target, info.Mode())
		}
	})
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	_, err = io.Copy(out, in)
	return err
}
