package lifecycle

import (
	"os"

	"github.com/arthur-debert/partforge/pkg/errors"
	"github.com/arthur-debert/partforge/pkg/migrate"
	"github.com/arthur-debert/partforge/pkg/state"
	"github.com/arthur-debert/partforge/pkg/types"
)

// StagedContribution returns what this part migrated into the stage
// tree, per its recorded stage state. ok is false when the step never
// completed or only a bare marker exists.
func (h *Handler) StagedContribution() (migrate.Contribution, bool, error) {
	st, err := h.store.Get(types.StepStage)
	if err != nil {
		return migrate.Contribution{}, false, err
	}
	ss, ok := st.(*state.StageState)
	if !ok {
		return migrate.Contribution{}, false, nil
	}
	return migrate.Contribution{Files: ss.Files, Dirs: ss.Directories}, true, nil
}

// StrippedContribution returns what this part migrated into the final
// output tree, per its recorded strip state.
func (h *Handler) StrippedContribution() (migrate.Contribution, bool, error) {
	st, err := h.store.Get(types.StepStrip)
	if err != nil {
		return migrate.Contribution{}, false, err
	}
	ss, ok := st.(*state.StripState)
	if !ok {
		return migrate.Contribution{}, false, nil
	}
	return migrate.Contribution{Files: ss.Files, Dirs: ss.Directories}, true, nil
}

// CleanPull removes everything pull produced: the package cache, the
// install tree and the build tree, then the driver's own pull artifacts.
func (h *Handler) CleanPull() error {
	if !h.store.Done(types.StepPull) {
		h.log.Info().Msg("Skipping cleaning pulled source (already clean)")
		return nil
	}
	h.log.Info().Msg("Cleaning pulled source")

	// The build tree is derived from the source, so it goes too.
	for _, dir := range []string{h.part.PackagesDir, h.part.InstallDir, h.part.BuildDir} {
		if err := h.fs.RemoveAll(dir); err != nil {
			return errors.Wrapf(err, errors.ErrFileRemove, "cannot remove %q", dir)
		}
	}

	if err := h.driver.CleanPull(); err != nil {
		return err
	}
	return h.store.MarkCleaned(types.StepPull)
}

// CleanBuild removes the driver's build artifacts.
func (h *Handler) CleanBuild() error {
	if !h.store.Done(types.StepBuild) {
		h.log.Info().Msg("Skipping cleaning build (already clean)")
		return nil
	}
	h.log.Info().Msg("Cleaning build")

	if err := h.driver.CleanBuild(); err != nil {
		return err
	}
	return h.store.MarkCleaned(types.StepBuild)
}

// CleanStage withdraws this part's contribution from the shared stage
// tree. others maps every other part to its own recorded stage
// contribution; files they also claim are left in place.
func (h *Handler) CleanStage(others map[string]migrate.Contribution) error {
	if !h.store.Done(types.StepStage) {
		h.log.Info().Msg("Skipping cleaning staged files (already clean)")
		return nil
	}
	h.log.Info().Msg("Cleaning staged files")

	contrib, ok, err := h.StagedContribution()
	if err != nil {
		return err
	}
	if !ok {
		return errors.Newf(errors.ErrMissingState,
			"failed to clean step 'stage': missing necessary state for part %q", h.part.Name)
	}

	if err := migrate.CleanShared(h.part.StageDir, contrib, others); err != nil {
		return err
	}
	return h.store.MarkCleaned(types.StepStage)
}

// CleanStrip withdraws this part's contribution from the final output
// tree, leaving files other parts also stripped.
func (h *Handler) CleanStrip(others map[string]migrate.Contribution) error {
	if !h.store.Done(types.StepStrip) {
		h.log.Info().Msg("Skipping cleaning stripped files (already clean)")
		return nil
	}
	h.log.Info().Msg("Cleaning stripped files")

	contrib, ok, err := h.StrippedContribution()
	if err != nil {
		return err
	}
	if !ok {
		return errors.Newf(errors.ErrMissingState,
			"failed to clean step 'strip': missing necessary state for part %q", h.part.Name)
	}

	if err := migrate.CleanShared(h.part.SnapDir, contrib, others); err != nil {
		return err
	}
	return h.store.MarkCleaned(types.StepStrip)
}

// Clean undoes lifecycle steps in reverse order. With target "" every
// step is cleaned; otherwise the target step and all later steps are.
// A part whose state is unusable is cleaned by removing its whole
// directory, but only during a full clean: a targeted clean reports the
// bad state instead. An emptied part directory is removed either way.
func (h *Handler) Clean(staged, stripped map[string]migrate.Contribution, target types.Step) error {
	if err := h.cleanSteps(staged, stripped, target); err != nil {
		if target != "" || !errors.IsCode(err, errors.ErrMissingState) {
			return err
		}
		h.log.Info().Msg("Part state unusable, removing part directory")
		if err := h.fs.RemoveAll(h.part.Dir); err != nil {
			return errors.Wrapf(err, errors.ErrFileRemove,
				"cannot remove part directory %q", h.part.Dir)
		}
		return nil
	}

	entries, err := h.fs.ReadDir(h.part.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, errors.ErrFileAccess,
			"cannot read part directory %q", h.part.Dir)
	}
	if len(entries) == 0 {
		if err := h.fs.Remove(h.part.Dir); err != nil {
			return errors.Wrapf(err, errors.ErrFileRemove,
				"cannot remove part directory %q", h.part.Dir)
		}
	}
	return nil
}

func (h *Handler) cleanSteps(staged, stripped map[string]migrate.Contribution, target types.Step) error {
	all := target == ""
	index := -1
	if !all {
		if !target.Valid() {
			return errors.Newf(errors.ErrInvalidStep, "%q is not a valid step", target)
		}
		index = target.Index()
	}

	if all || index <= types.StepStrip.Index() {
		if err := h.CleanStrip(stripped); err != nil {
			return err
		}
	}
	if all || index <= types.StepStage.Index() {
		if err := h.CleanStage(staged); err != nil {
			return err
		}
	}
	if all || index <= types.StepBuild.Index() {
		if err := h.CleanBuild(); err != nil {
			return err
		}
	}
	if all || index <= types.StepPull.Index() {
		if err := h.CleanPull(); err != nil {
			return err
		}
	}
	return nil
}
