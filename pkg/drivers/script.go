package drivers

import (
	"os"
	"os/exec"

	"github.com/arthur-debert/partforge/pkg/errors"
	"github.com/arthur-debert/partforge/pkg/logging"
	"github.com/arthur-debert/partforge/pkg/registry"
	"github.com/arthur-debert/partforge/pkg/types"
)

var log = logging.GetLogger("drivers")

// scriptDriver runs user-declared shell commands for the pull and build
// hooks. The part's directories are exposed through PARTFORGE_* env
// variables; the build command is expected to install its results into
// $PARTFORGE_PART_INSTALL.
//
// Options (under the part's options table):
//
//	pull  = "git clone ... ."
//	build = "make && make install DESTDIR=$PARTFORGE_PART_INSTALL"
type scriptDriver struct {
	Base
	pullScript  string
	buildScript string
	targetArch  string
}

func init() {
	registry.MustRegister(factories, "script", newScriptDriver)
}

func newScriptDriver(part types.Part, opts *types.DriverOptions) (types.Driver, error) {
	d := &scriptDriver{Base: Base{Part: part, Opts: opts}}

	if v, ok := opts.Extra["pull"]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, errors.Newf(errors.ErrConfigValid,
				"part %q: script option 'pull' must be a string", part.Name)
		}
		d.pullScript = s
	}
	if v, ok := opts.Extra["build"]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, errors.Newf(errors.ErrConfigValid,
				"part %q: script option 'build' must be a string", part.Name)
		}
		d.buildScript = s
	}

	return d, nil
}

// SetTargetArch exposes the requested architecture to the scripts via
// PARTFORGE_TARGET_ARCH.
func (d *scriptDriver) SetTargetArch(arch string) error {
	d.targetArch = arch
	return nil
}

func (d *scriptDriver) Pull() error {
	if d.pullScript == "" {
		return nil
	}
	return d.run(d.pullScript, d.Part.SourceDir)
}

func (d *scriptDriver) Build() error {
	if d.buildScript == "" {
		return nil
	}
	return d.run(d.buildScript, d.Part.BuildDir)
}

func (d *scriptDriver) run(script, dir string) error {
	log.Debug().Str("part", d.Part.Name).Str("dir", dir).Str("script", script).
		Msg("Running driver script")

	cmd := exec.Command("sh", "-c", script)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"PARTFORGE_PART_SRC="+d.Part.SourceDir,
		"PARTFORGE_PART_BUILD="+d.Part.BuildDir,
		"PARTFORGE_PART_INSTALL="+d.Part.InstallDir,
		"PARTFORGE_STAGE="+d.Part.StageDir,
	)
	if d.targetArch != "" {
		cmd.Env = append(cmd.Env, "PARTFORGE_TARGET_ARCH="+d.targetArch)
	}

	output, err := cmd.CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, errors.ErrDriverExecute,
			"part %q: script failed: %s", d.Part.Name, output)
	}
	return nil
}
