// Package fileset resolves user-authored include/exclude pattern lists
// into concrete sets of relative file and directory paths under a source
// tree.
//
// Grammar: a leading "-" marks a pattern as an exclude; a leading "\"
// forces literal include interpretation (for a path that genuinely
// starts with "-"); glob metacharacters are expanded against the
// filesystem; when no include patterns remain the fileset defaults to
// everything ("*"). Absolute paths are rejected.
package fileset

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/partforge/pkg/errors"
	"github.com/arthur-debert/partforge/pkg/sets"
)

// Split partitions raw patterns into include and exclude lists,
// validating that no pattern is an absolute path. When no includes are
// given the include list defaults to everything.
func Split(patterns []string) (includes, excludes []string, err error) {
	for _, item := range patterns {
		switch {
		case strings.HasPrefix(item, "-"):
			excludes = append(excludes, item[1:])
		case strings.HasPrefix(item, `\`):
			includes = append(includes, item[1:])
		default:
			includes = append(includes, item)
		}
	}

	for _, p := range append(append([]string{}, includes...), excludes...) {
		if filepath.IsAbs(p) {
			return nil, nil, errors.Newf(errors.ErrInvalidInput,
				"path %q must be relative", p)
		}
	}

	if len(includes) == 0 {
		includes = []string{"*"}
	}

	return includes, excludes, nil
}

// Resolve expands a raw pattern list against srcdir and returns disjoint
// sets of relative file paths and relative directory paths. A path that
// is a symlink to a directory is classified as a file so that later
// operations never traverse a tree through a symlink.
func Resolve(patterns []string, srcdir string) (files, dirs sets.Set[string], err error) {
	includes, excludes, err := Split(patterns)
	if err != nil {
		return nil, nil, err
	}

	includeSet, err := expandIncludes(srcdir, includes)
	if err != nil {
		return nil, nil, err
	}

	excludeSet, excludeDirs, err := expandExcludes(srcdir, excludes)
	if err != nil {
		return nil, nil, err
	}

	selected := includeSet.Diff(excludeSet)

	// Excluding a directory excludes its whole subtree, even entries
	// that were pulled in by a wholesale ancestor include.
	for _, dir := range excludeDirs {
		prefix := dir + "/"
		for path := range selected {
			if strings.HasPrefix(path, prefix) {
				selected.Delete(path)
			}
		}
	}

	files = sets.New[string]()
	dirs = sets.New[string]()
	for path := range selected {
		if isRealDir(filepath.Join(srcdir, path)) {
			dirs.Add(path)
		} else {
			files.Add(path)
		}
	}

	return files, dirs, nil
}

// expandIncludes builds the include set. Wildcard patterns are glob
// expanded; literal patterns are taken as-is even if nonexistent. Every
// matched directory is recursively expanded so that exclude patterns
// with their own wildcards can match descendants of a wholesale
// directory include.
func expandIncludes(srcdir string, includes []string) (sets.Set[string], error) {
	matched := sets.New[string]()
	for _, include := range includes {
		if strings.Contains(include, "*") {
			hits, err := filepath.Glob(filepath.Join(srcdir, include))
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrInvalidInput,
					"invalid include pattern %q", include)
			}
			for _, hit := range hits {
				matched.Add(hit)
			}
		} else {
			matched.Add(filepath.Join(srcdir, include))
		}
	}

	includeSet := sets.New[string]()
	var includeDirs []string
	for abs := range matched {
		rel, err := filepath.Rel(srcdir, abs)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrInternal,
				"cannot relativize %q", abs)
		}
		includeSet.Add(rel)
		if isRealDir(abs) {
			includeDirs = append(includeDirs, abs)
		}
	}

	for _, dir := range includeDirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, relErr := filepath.Rel(srcdir, path)
			if relErr != nil {
				return relErr
			}
			includeSet.Add(rel)
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileAccess,
				"cannot expand directory %q", dir)
		}
	}

	return includeSet, nil
}

// expandExcludes glob-expands the exclude patterns. Unmatched excludes
// are silently ignored. Matched directories are returned separately for
// whole-subtree exclusion.
func expandExcludes(srcdir string, excludes []string) (sets.Set[string], []string, error) {
	excludeSet := sets.New[string]()
	var excludeDirs []string

	for _, exclude := range excludes {
		hits, err := filepath.Glob(filepath.Join(srcdir, exclude))
		if err != nil {
			return nil, nil, errors.Wrapf(err, errors.ErrInvalidInput,
				"invalid exclude pattern %q", exclude)
		}
		for _, hit := range hits {
			rel, relErr := filepath.Rel(srcdir, hit)
			if relErr != nil {
				return nil, nil, errors.Wrapf(relErr, errors.ErrInternal,
					"cannot relativize %q", hit)
			}
			excludeSet.Add(rel)
			if isRealDir(hit) {
				excludeDirs = append(excludeDirs, rel)
			}
		}
	}

	return excludeSet, excludeDirs, nil
}

// isRealDir reports whether path is a directory without following
// symlinks. Nonexistent paths report false.
func isRealDir(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
