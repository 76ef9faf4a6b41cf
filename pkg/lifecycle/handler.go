// Package lifecycle drives the pull/build/stage/strip pipeline for one
// part: it decides whether a step needs to run, invokes the driver
// hooks, migrates filesets between trees and records step state.
package lifecycle

import (
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/partforge/pkg/drivers"
	"github.com/arthur-debert/partforge/pkg/errors"
	"github.com/arthur-debert/partforge/pkg/fileset"
	"github.com/arthur-debert/partforge/pkg/logging"
	"github.com/arthur-debert/partforge/pkg/migrate"
	"github.com/arthur-debert/partforge/pkg/sets"
	"github.com/arthur-debert/partforge/pkg/state"
	"github.com/arthur-debert/partforge/pkg/types"
)

// Handler runs lifecycle steps for a single part.
type Handler struct {
	part    types.Part
	driver  types.Driver
	fs      types.FS
	fetcher drivers.Fetcher
	store   *state.Store
	log     zerolog.Logger
}

// New creates a handler for a part. The state store is opened (and a
// legacy single-file state location upgraded) immediately; the part's
// directories are only created once a step runs. The fetcher may be nil
// for parts without stage packages.
func New(part types.Part, driver types.Driver, fs types.FS, fetcher drivers.Fetcher) (*Handler, error) {
	store, err := state.NewStore(fs, part.StateDir)
	if err != nil {
		return nil, err
	}

	return &Handler{
		part:    part,
		driver:  driver,
		fs:      fs,
		fetcher: fetcher,
		store:   store,
		log:     logging.GetLogger("lifecycle").With().Str("part", part.Name).Logger(),
	}, nil
}

// Name returns the part name.
func (h *Handler) Name() string { return h.part.Name }

// Part returns the part's filesystem locations.
func (h *Handler) Part() types.Part { return h.part }

// InstallDir returns the part's install directory.
func (h *Handler) InstallDir() string { return h.part.InstallDir }

// LastStep returns the latest completed step.
func (h *Handler) LastStep() (types.Step, bool) { return h.store.LastStep() }

// IsDirty reports whether a step must run before later steps can be
// trusted: true when the step comes after the last completed step, or
// when nothing has completed yet.
func (h *Handler) IsDirty(step types.Step) bool {
	last, ok := h.store.LastStep()
	if !ok {
		return true
	}
	return step.Index() > last.Index()
}

func (h *Handler) shouldRun(step types.Step, force bool) bool {
	return force || h.IsDirty(step)
}

// Run executes one step, honoring skip semantics unless forced.
func (h *Handler) Run(step types.Step, force bool) error {
	switch step {
	case types.StepPull:
		return h.Pull(force)
	case types.StepBuild:
		return h.Build(force)
	case types.StepStage:
		return h.Stage(force)
	case types.StepStrip:
		return h.Strip(force)
	default:
		return errors.Newf(errors.ErrInvalidStep, "%q is not a valid step", step)
	}
}

// makedirs creates every directory a step may need.
func (h *Handler) makedirs() error {
	all := append(h.part.PrivateDirs(), h.part.SharedDirs()...)
	for _, dir := range all {
		if err := h.fs.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %q", dir)
		}
	}
	return nil
}

// MigratableFileset resolves the effective fileset for a step: the
// step-specific user fileset unioned with the driver's declared
// additions, expanded against the install directory.
func (h *Handler) MigratableFileset(step types.Step) (files, dirs sets.Set[string], err error) {
	patterns := append([]string{}, h.driver.Options().FilesetFor(step)...)
	patterns = append(patterns, h.driver.DefaultFileset()...)
	return fileset.Resolve(patterns, h.part.InstallDir)
}

// StageFileset returns the resolved stage fileset; it is the view the
// collision detector works from.
func (h *Handler) StageFileset() (sets.Set[string], error) {
	files, _, err := h.MigratableFileset(types.StepStage)
	return files, err
}

// Env exposes the driver's environment for a populated root tree.
func (h *Handler) Env(root string) []string {
	return h.driver.Env(root)
}

// setupStagePackages fetches and unpacks the part's declared stage
// packages into its install directory, then migrates the resulting
// fileset into the shared stage tree with best-effort semantics.
func (h *Handler) setupStagePackages() (files, dirs sets.Set[string], err error) {
	if h.fetcher == nil {
		return nil, nil, errors.Newf(errors.ErrConfigValid,
			"part %q declares stage packages but no fetcher is configured", h.part.Name)
	}

	packages := h.driver.StagePackages()
	if err := h.fetcher.Fetch(packages, h.part.PackagesDir); err != nil {
		return nil, nil, err
	}
	if err := h.fetcher.Unpack(h.part.PackagesDir, h.part.InstallDir); err != nil {
		return nil, nil, err
	}

	files, dirs, err = h.MigratableFileset(types.StepStage)
	if err != nil {
		return nil, nil, err
	}
	if err := migrate.Files(files, dirs, h.part.InstallDir, h.part.StageDir, true); err != nil {
		return nil, nil, err
	}
	return files, dirs, nil
}

// Pull fetches the part's source and stage packages, recording which
// files and directories the packages contributed.
func (h *Handler) Pull(force bool) error {
	if !h.shouldRun(types.StepPull, force) {
		h.log.Info().Msg("Skipping pull (already ran)")
		return nil
	}
	if err := h.makedirs(); err != nil {
		return err
	}
	h.log.Info().Msg("Pulling")

	files := sets.New[string]()
	dirs := sets.New[string]()
	if len(h.driver.StagePackages()) > 0 {
		var err error
		files, dirs, err = h.setupStagePackages()
		if err != nil {
			return err
		}
	}

	if err := h.driver.Pull(); err != nil {
		return err
	}

	return h.store.MarkDone(types.StepPull, &state.PullState{
		StagePackageFiles:       files,
		StagePackageDirectories: dirs,
	})
}

// Build invokes the driver's build hook. When stage packages exist, the
// pull-time fileset is first re-migrated into the stage tree, repairing
// a stage tree that was cleaned between pull and build.
func (h *Handler) Build(force bool) error {
	if !h.shouldRun(types.StepBuild, force) {
		h.log.Info().Msg("Skipping build (already ran)")
		return nil
	}
	if err := h.makedirs(); err != nil {
		return err
	}
	h.log.Info().Msg("Building")

	if len(h.driver.StagePackages()) > 0 {
		st, err := h.store.Get(types.StepPull)
		if err != nil {
			return err
		}
		pullState, ok := st.(*state.PullState)
		if !ok {
			return errors.New(errors.ErrMissingState,
				"failed to build: missing necessary pull state, please run pull again")
		}
		err = migrate.Files(pullState.StagePackageFiles, pullState.StagePackageDirectories,
			h.part.InstallDir, h.part.StageDir, true)
		if err != nil {
			return err
		}
	}

	if err := h.driver.Build(); err != nil {
		return err
	}

	return h.store.MarkDone(types.StepBuild, nil)
}

// organize applies the part's declared source → destination mappings
// inside the install directory before staging. An existing destination
// is replaced with a warning; missing destination parents are created.
func (h *Handler) organize() error {
	mappings := h.driver.Options().Organize

	for _, src := range sets.Sorted(keySet(mappings)) {
		srcPath := filepath.Join(h.part.InstallDir, src)
		dstPath := filepath.Join(h.part.InstallDir, mappings[src])

		if err := h.fs.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate,
				"cannot create parent for organize target %q", mappings[src])
		}

		if info, err := h.fs.Lstat(dstPath); err == nil {
			h.log.Warn().Str("path", mappings[src]).
				Msg("Stepping over existing file for organization")
			if info.IsDir() {
				if err := h.fs.RemoveAll(dstPath); err != nil {
					return errors.Wrapf(err, errors.ErrFileRemove,
						"cannot replace organize target %q", mappings[src])
				}
			} else {
				if err := h.fs.Remove(dstPath); err != nil {
					return errors.Wrapf(err, errors.ErrFileRemove,
						"cannot replace organize target %q", mappings[src])
				}
			}
		}

		if err := h.fs.Rename(srcPath, dstPath); err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess,
				"cannot organize %q to %q", src, mappings[src])
		}
	}
	return nil
}

func keySet(m map[string]string) sets.Set[string] {
	s := sets.New[string]()
	for k := range m {
		s.Add(k)
	}
	return s
}

// Stage organizes the install tree and migrates the effective stage
// fileset into the shared stage tree.
func (h *Handler) Stage(force bool) error {
	if !h.shouldRun(types.StepStage, force) {
		h.log.Info().Msg("Skipping stage (already ran)")
		return nil
	}
	if err := h.makedirs(); err != nil {
		return err
	}
	h.log.Info().Msg("Staging")

	if err := h.organize(); err != nil {
		return err
	}

	files, dirs, err := h.MigratableFileset(types.StepStage)
	if err != nil {
		return err
	}
	if err := migrate.Files(files, dirs, h.part.InstallDir, h.part.StageDir, false); err != nil {
		return err
	}

	return h.store.MarkDone(types.StepStage, &state.StageState{
		Files:       files,
		Directories: dirs,
	})
}

// Strip migrates the effective snap fileset from the stage tree into
// the final output tree.
func (h *Handler) Strip(force bool) error {
	if !h.shouldRun(types.StepStrip, force) {
		h.log.Info().Msg("Skipping strip (already ran)")
		return nil
	}
	if err := h.makedirs(); err != nil {
		return err
	}
	h.log.Info().Msg("Stripping")

	files, dirs, err := h.MigratableFileset(types.StepStrip)
	if err != nil {
		return err
	}
	if err := migrate.Files(files, dirs, h.part.StageDir, h.part.SnapDir, false); err != nil {
		return err
	}

	return h.store.MarkDone(types.StepStrip, &state.StripState{
		Files:       files,
		Directories: dirs,
	})
}
