package state

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/partforge/pkg/errors"
	"github.com/arthur-debert/partforge/pkg/logging"
	"github.com/arthur-debert/partforge/pkg/types"
)

// Store reads and writes step state records for one part.
type Store struct {
	fs  types.FS
	dir string
}

// NewStore creates a store over the given part state directory. If the
// state location is found in the legacy single-file form it is upgraded
// in place: the file's content names the last completed step, and the
// store synthesizes done markers for that step and every earlier one.
func NewStore(fs types.FS, stateDir string) (*Store, error) {
	s := &Store{fs: fs, dir: stateDir}
	if err := s.migrateLegacy(); err != nil {
		return nil, err
	}
	return s, nil
}

// migrateLegacy performs the one-time upgrade from the legacy
// single-file state format.
func (s *Store) migrateLegacy() error {
	info, err := s.fs.Lstat(s.dir)
	if err != nil || info.IsDir() {
		return nil
	}

	data, err := s.fs.ReadFile(s.dir)
	if err != nil {
		return errors.Wrap(err, errors.ErrFileAccess, "cannot read legacy state file")
	}
	if err := s.fs.Remove(s.dir); err != nil {
		return errors.Wrap(err, errors.ErrFileRemove, "cannot remove legacy state file")
	}

	last := strings.TrimSpace(string(data))
	if last == "" {
		return nil
	}

	step, err := types.ParseStep(last)
	if err != nil {
		log := logging.GetLogger("state")
		log.Warn().Str("content", last).Msg("Ignoring unrecognized legacy state")
		return nil
	}

	log := logging.GetLogger("state")
	log.Info().Str("dir", s.dir).Str("step", last).Msg("Migrating legacy state file")

	// The legacy format only knew the last completed step; synthesize
	// "done, no recorded detail" markers for it and everything before.
	for _, earlier := range types.StepOrder[:step.Index()+1] {
		if err := s.write(earlier, &Marker{}); err != nil {
			return err
		}
	}
	return nil
}

// stepFile returns the record path for a step.
func (s *Store) stepFile(step types.Step) string {
	return filepath.Join(s.dir, string(step))
}

// write persists one record without touching other steps.
func (s *Store) write(step types.Step, st State) error {
	if err := s.fs.MkdirAll(s.dir, 0755); err != nil {
		return errors.Wrap(err, errors.ErrDirCreate, "cannot create state directory")
	}
	data, err := encode(st)
	if err != nil {
		return err
	}
	if err := s.fs.WriteFile(s.stepFile(step), data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite,
			"cannot record state for step %q", step)
	}
	return nil
}

// MarkDone records a step as completed with the given state (nil means
// a bare completion marker) and removes the persisted state of every
// later step, so stale downstream output can never be observed as done.
func (s *Store) MarkDone(step types.Step, st State) error {
	if !step.Valid() {
		return errors.Newf(errors.ErrInvalidStep, "cannot record unknown step %q", step)
	}
	if st == nil {
		st = &Marker{}
	}
	if err := s.write(step, st); err != nil {
		return err
	}

	for _, later := range types.StepOrder[step.Index()+1:] {
		if err := s.MarkCleaned(later); err != nil {
			return err
		}
	}
	return nil
}

// MarkCleaned removes a step's record. The state directory itself is
// removed once the last record is gone.
func (s *Store) MarkCleaned(step types.Step) error {
	if err := s.fs.Remove(s.stepFile(step)); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrFileRemove,
			"cannot clean state for step %q", step)
	}

	entries, err := s.fs.ReadDir(s.dir)
	if err == nil && len(entries) == 0 {
		if err := s.fs.Remove(s.dir); err != nil && !os.IsNotExist(err) {
			return errors.Wrap(err, errors.ErrFileRemove, "cannot remove empty state directory")
		}
	}
	return nil
}

// Get returns the recorded state for a step, or nil if the step has no
// record. A present but malformed record yields a MissingState error.
func (s *Store) Get(step types.Step) (State, error) {
	data, err := s.fs.ReadFile(s.stepFile(step))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess,
			"cannot read state for step %q", step)
	}
	return decode(data)
}

// Done reports whether a step has a persisted record.
func (s *Store) Done(step types.Step) bool {
	_, err := s.fs.Lstat(s.stepFile(step))
	return err == nil
}

// LastStep returns the latest completed step in pipeline order.
func (s *Store) LastStep() (types.Step, bool) {
	for i := len(types.StepOrder) - 1; i >= 0; i-- {
		if s.Done(types.StepOrder[i]) {
			return types.StepOrder[i], true
		}
	}
	return "", false
}
