package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/partforge/pkg/collision"
	"github.com/arthur-debert/partforge/pkg/config"
	"github.com/arthur-debert/partforge/pkg/drivers"
	"github.com/arthur-debert/partforge/pkg/errors"
	"github.com/arthur-debert/partforge/pkg/filesystem"
	"github.com/arthur-debert/partforge/pkg/lifecycle"
	"github.com/arthur-debert/partforge/pkg/logging"
	"github.com/arthur-debert/partforge/pkg/migrate"
	"github.com/arthur-debert/partforge/pkg/paths"
	"github.com/arthur-debert/partforge/pkg/types"
)

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: pullShort,
	Long:  pullLong,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLifecycle(types.StepPull)
	},
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: buildShort,
	Long:  buildLong,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLifecycle(types.StepBuild)
	},
}

var stageCmd = &cobra.Command{
	Use:   "stage",
	Short: stageShort,
	Long:  stageLong,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLifecycle(types.StepStage)
	},
}

var stripCmd = &cobra.Command{
	Use:   "strip",
	Short: stripShort,
	Long:  stripLong,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLifecycle(types.StepStrip)
	},
}

var cleanCmd = &cobra.Command{
	Use:       "clean [step]",
	Short:     cleanShort,
	Long:      cleanLong,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"pull", "build", "stage", "strip"},
	RunE: func(cmd *cobra.Command, args []string) error {
		var step types.Step
		if len(args) == 1 {
			var err error
			step, err = types.ParseStep(args[0])
			if err != nil {
				return err
			}
		}
		return runClean(step)
	},
}

// loadProject reads partforge.toml and constructs one handler per part,
// in sorted part-name order.
func loadProject() ([]*lifecycle.Handler, paths.Paths, error) {
	p := paths.New(projectDir)

	project, err := config.Load(p.ConfigPath(), p.StageDir())
	if err != nil {
		return nil, nil, err
	}

	var fetcher drivers.Fetcher
	if packageMirror != "" {
		fetcher = &drivers.LocalFetcher{MirrorDir: packageMirror}
	}

	fs := filesystem.NewOS()
	var handlers []*lifecycle.Handler
	for _, name := range project.PartNames() {
		declared := project.Parts[name]
		part := p.Part(name)

		driver, err := drivers.New(declared.Driver, part, declared.Options)
		if err != nil {
			return nil, nil, err
		}
		if targetArch != "" {
			if setter, ok := driver.(types.TargetArchSetter); ok {
				if err := setter.SetTargetArch(targetArch); err != nil {
					return nil, nil, err
				}
			}
		}

		h, err := lifecycle.New(part, driver, fs, fetcher)
		if err != nil {
			return nil, nil, err
		}
		handlers = append(handlers, h)
	}

	return handlers, p, nil
}

// runLifecycle runs every part through each step up to and including
// target. --force applies to the target step only; earlier completed
// steps are still skipped.
func runLifecycle(target types.Step) error {
	logger := logging.GetLogger("cmd")
	logger.Info().Str("step", string(target)).Bool("force", force).Msg("Starting lifecycle run")

	handlers, _, err := loadProject()
	if err != nil {
		return err
	}

	for _, step := range types.StepOrder {
		if step == types.StepStage {
			if err := checkCollisions(handlers); err != nil {
				return err
			}
		}
		for _, h := range handlers {
			fmt.Printf("%s %s\n", formatBoldUpper(string(step)), h.Name())
			if err := h.Run(step, force && step == target); err != nil {
				return err
			}
		}
		if step == target {
			break
		}
	}

	return nil
}

func checkCollisions(handlers []*lifecycle.Handler) error {
	parts := make([]collision.Part, len(handlers))
	for i, h := range handlers {
		parts[i] = h
	}
	return collision.Check(parts)
}

// runClean cleans every part. Each part's clean subtracts the shared
// contributions of all other parts so their files stay in place.
func runClean(step types.Step) error {
	handlers, p, err := loadProject()
	if err != nil {
		return err
	}

	staged, stripped := contributions(handlers)

	for _, h := range handlers {
		fmt.Printf("%s %s\n", formatBoldUpper("clean"), h.Name())
		err := h.Clean(without(staged, h.Name()), without(stripped, h.Name()), step)
		if err != nil {
			return err
		}
	}

	if step == "" {
		for _, dir := range []string{p.PartsDir(), p.StageDir(), p.SnapDir()} {
			if err := removeIfEmpty(dir); err != nil {
				return err
			}
		}
	}

	return nil
}

// contributions gathers every part's recorded shared-tree filesets. A
// part whose state cannot be read contributes nothing; its own clean
// will surface or degrade the bad state.
func contributions(handlers []*lifecycle.Handler) (staged, stripped map[string]migrate.Contribution) {
	logger := logging.GetLogger("cmd")
	staged = map[string]migrate.Contribution{}
	stripped = map[string]migrate.Contribution{}

	for _, h := range handlers {
		if c, ok, err := h.StagedContribution(); err != nil {
			logger.Warn().Err(err).Str("part", h.Name()).Msg("Unreadable stage state")
		} else if ok {
			staged[h.Name()] = c
		}
		if c, ok, err := h.StrippedContribution(); err != nil {
			logger.Warn().Err(err).Str("part", h.Name()).Msg("Unreadable strip state")
		} else if ok {
			stripped[h.Name()] = c
		}
	}
	return staged, stripped
}

func without(m map[string]migrate.Contribution, name string) map[string]migrate.Contribution {
	out := make(map[string]migrate.Contribution, len(m))
	for k, v := range m {
		if k != name {
			out[k] = v
		}
	}
	return out
}

func removeIfEmpty(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %q", dir)
	}
	if len(entries) > 0 {
		return nil
	}
	if err := os.Remove(dir); err != nil {
		return errors.Wrapf(err, errors.ErrFileRemove, "cannot remove %q", dir)
	}
	return nil
}
