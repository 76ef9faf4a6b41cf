// Package state persists per-part, per-step snapshots describing what
// each completed lifecycle step produced. Records live as one
// human-readable YAML file per step under the part's state directory;
// absence of a record means the step is not done (or was cleaned).
package state

import (
	"github.com/arthur-debert/partforge/pkg/errors"
	"github.com/arthur-debert/partforge/pkg/sets"
	"gopkg.in/yaml.v3"
)

// State is the closed set of step state variants. Steps that only need
// a completion marker use Marker; pull, stage and strip record the
// filesets they produced.
type State interface {
	isState()
}

// PullState records the files and directories unpacked from fetched
// stage packages during pull, for build-time re-materialization and
// later cleanup.
type PullState struct {
	StagePackageFiles       sets.Set[string]
	StagePackageDirectories sets.Set[string]
}

// StageState records the fileset migrated into the shared stage tree.
type StageState struct {
	Files       sets.Set[string]
	Directories sets.Set[string]
}

// StripState records the fileset migrated into the final output tree.
type StripState struct {
	Files       sets.Set[string]
	Directories sets.Set[string]
}

// Marker is the unit variant for steps with no extra detail.
type Marker struct{}

func (*PullState) isState()  {}
func (*StageState) isState() {}
func (*StripState) isState() {}
func (*Marker) isState()     {}

// Variant tags used in the serialized records.
const (
	kindPull   = "pull"
	kindStage  = "stage"
	kindStrip  = "strip"
	kindMarker = "marker"
)

// record is the serialized form of a State.
type record struct {
	Kind                    string   `yaml:"kind"`
	Files                   []string `yaml:"files,omitempty"`
	Directories             []string `yaml:"directories,omitempty"`
	StagePackageFiles       []string `yaml:"stage-package-files,omitempty"`
	StagePackageDirectories []string `yaml:"stage-package-directories,omitempty"`
}

func encode(st State) ([]byte, error) {
	var rec record
	switch s := st.(type) {
	case *PullState:
		rec = record{
			Kind:                    kindPull,
			StagePackageFiles:       sets.Sorted(s.StagePackageFiles),
			StagePackageDirectories: sets.Sorted(s.StagePackageDirectories),
		}
	case *StageState:
		rec = record{
			Kind:        kindStage,
			Files:       sets.Sorted(s.Files),
			Directories: sets.Sorted(s.Directories),
		}
	case *StripState:
		rec = record{
			Kind:        kindStrip,
			Files:       sets.Sorted(s.Files),
			Directories: sets.Sorted(s.Directories),
		}
	case *Marker:
		rec = record{Kind: kindMarker}
	default:
		return nil, errors.Newf(errors.ErrInternal, "unknown state variant %T", st)
	}
	return yaml.Marshal(rec)
}

func decode(data []byte) (State, error) {
	var rec record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(err, errors.ErrMissingState, "malformed state record")
	}

	switch rec.Kind {
	case kindPull:
		return &PullState{
			StagePackageFiles:       sets.New(rec.StagePackageFiles...),
			StagePackageDirectories: sets.New(rec.StagePackageDirectories...),
		}, nil
	case kindStage:
		return &StageState{
			Files:       sets.New(rec.Files...),
			Directories: sets.New(rec.Directories...),
		}, nil
	case kindStrip:
		return &StripState{
			Files:       sets.New(rec.Files...),
			Directories: sets.New(rec.Directories...),
		}, nil
	case kindMarker:
		return &Marker{}, nil
	default:
		return nil, errors.Newf(errors.ErrMissingState,
			"unknown state record kind %q", rec.Kind)
	}
}
