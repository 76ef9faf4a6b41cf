// Package collision detects when two parts would place differing
// content at the same destination path in the shared stage tree.
package collision

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/partforge/pkg/errors"
	"github.com/arthur-debert/partforge/pkg/logging"
	"github.com/arthur-debert/partforge/pkg/sets"
)

var log = logging.GetLogger("collision")

// Part is the view of a part the detector needs: its name, the install
// tree its staged files come from, and its resolved stage fileset.
type Part interface {
	Name() string
	InstallDir() string
	StageFileset() (files sets.Set[string], err error)
}

// Check scans parts in the given order and fails on the first pair that
// would stage different content at the same path. Two symbolic links at
// the same path never conflict, regardless of target. The returned
// error names both parts and lists every conflicting path, sorted.
//
// Comparison is pairwise in caller order; with three or more parts
// differing at one path, the blamed pair depends on that order.
func Check(parts []Part) error {
	type seen struct {
		files      sets.Set[string]
		installDir string
	}
	processed := map[string]seen{}
	var order []string

	for _, part := range parts {
		files, err := part.StageFileset()
		if err != nil {
			return err
		}

		for _, otherName := range order {
			other := processed[otherName]
			common := files.Intersect(other.files)
			var conflicts []string

			for _, file := range sets.Sorted(common) {
				this := filepath.Join(part.InstallDir(), file)
				that := filepath.Join(other.installDir, file)

				same, err := sameContent(this, that)
				if err != nil {
					return err
				}
				if !same {
					conflicts = append(conflicts, file)
				}
			}

			if len(conflicts) > 0 {
				err := errors.Newf(errors.ErrCollision,
					"parts %q and %q have the following file paths in common "+
						"which have different contents: %s",
					otherName, part.Name(), strings.Join(conflicts, ", "))
				return err.WithDetail("parts", []string{otherName, part.Name()}).
					WithDetail("paths", conflicts)
			}
		}

		log.Debug().Str("part", part.Name()).Int("files", len(files)).
			Msg("No collisions with previously checked parts")

		processed[part.Name()] = seen{files: files, installDir: part.InstallDir()}
		order = append(order, part.Name())
	}

	return nil
}

// sameContent compares two files byte for byte. A pair of symlinks is
// treated as equal without inspecting targets.
func sameContent(a, b string) (bool, error) {
	aInfo, err := os.Lstat(a)
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrFileAccess, "cannot inspect %q", a)
	}
	bInfo, err := os.Lstat(b)
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrFileAccess, "cannot inspect %q", b)
	}

	if aInfo.Mode()&os.ModeSymlink != 0 && bInfo.Mode()&os.ModeSymlink != 0 {
		return true, nil
	}

	aData, err := os.ReadFile(a)
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %q", a)
	}
	bData, err := os.ReadFile(b)
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %q", b)
	}

	return bytes.Equal(aData, bData), nil
}
