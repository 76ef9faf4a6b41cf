// Package config loads the project definition from partforge.toml: the
// project name and one table per part declaring its driver and options.
//
//	name = "hello"
//
//	[parts.greeter]
//	driver = "script"
//	build = "make install DESTDIR=$PARTFORGE_PART_INSTALL"
//	stage = ["usr", "-usr/share/doc"]
//	snap = ["usr/bin"]
//	stage-packages = ["libgreet"]
//
//	[parts.greeter.organize]
//	"greet" = "usr/bin/greet"
//
// Keys the core does not interpret are passed through to the driver
// untouched. The token $PARTFORGE_STAGE occurring in any option value is
// replaced with the project's stage directory before the options are
// bound.
package config

import (
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/partforge/pkg/errors"
	"github.com/arthur-debert/partforge/pkg/types"
)

// StagePlaceholder is replaced in option values with the stage dir.
const StagePlaceholder = "$PARTFORGE_STAGE"

// DefaultDriver is used by parts that declare no driver.
const DefaultDriver = "nil"

// Part is one declared part: its driver identifier and bound options.
type Part struct {
	Driver  string
	Options *types.DriverOptions
}

// Project is the parsed project definition.
type Project struct {
	Name  string
	Parts map[string]*Part
}

// PartNames returns the declared part names in sorted order; this is the
// order lifecycle steps run in.
func (p *Project) PartNames() []string {
	names := make([]string, 0, len(p.Parts))
	for name := range p.Parts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type rawProject struct {
	Name  string                            `toml:"name"`
	Parts map[string]map[string]interface{} `toml:"parts"`
}

// Load reads and parses a project file. stageDir is substituted for
// $PARTFORGE_STAGE in option values.
func Load(path, stageDir string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "cannot read %q", path)
	}
	return Parse(data, stageDir)
}

// Parse parses a project definition from TOML.
func Parse(data []byte, stageDir string) (*Project, error) {
	var raw rawProject
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "invalid project file")
	}

	if raw.Name == "" {
		return nil, errors.New(errors.ErrConfigValid, "project name is required")
	}
	if len(raw.Parts) == 0 {
		return nil, errors.New(errors.ErrConfigValid, "at least one part is required")
	}

	project := &Project{Name: raw.Name, Parts: make(map[string]*Part, len(raw.Parts))}
	for name, table := range raw.Parts {
		part, err := parsePart(name, table, stageDir)
		if err != nil {
			return nil, err
		}
		project.Parts[name] = part
	}
	return project, nil
}

func parsePart(name string, table map[string]interface{}, stageDir string) (*Part, error) {
	part := &Part{
		Driver:  DefaultDriver,
		Options: &types.DriverOptions{Extra: map[string]interface{}{}},
	}

	for key, value := range table {
		value = expand(value, stageDir)

		var err error
		switch key {
		case "driver":
			s, ok := value.(string)
			if !ok {
				return nil, errors.Newf(errors.ErrConfigValid,
					"part %q: driver must be a string", name)
			}
			part.Driver = s
		case "stage":
			part.Options.Stage, err = stringList(name, key, value)
		case "snap":
			part.Options.Snap, err = stringList(name, key, value)
		case "stage-packages":
			part.Options.StagePackages, err = stringList(name, key, value)
		case "organize":
			part.Options.Organize, err = stringMap(name, key, value)
		default:
			part.Options.Extra[key] = value
		}
		if err != nil {
			return nil, err
		}
	}

	return part, nil
}

func stringList(part, key string, value interface{}) ([]string, error) {
	items, ok := value.([]interface{})
	if !ok {
		return nil, errors.Newf(errors.ErrConfigValid,
			"part %q: %s must be a list of strings", part, key)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, errors.Newf(errors.ErrConfigValid,
				"part %q: %s must be a list of strings", part, key)
		}
		out = append(out, s)
	}
	return out, nil
}

func stringMap(part, key string, value interface{}) (map[string]string, error) {
	table, ok := value.(map[string]interface{})
	if !ok {
		return nil, errors.Newf(errors.ErrConfigValid,
			"part %q: %s must be a table of strings", part, key)
	}
	out := make(map[string]string, len(table))
	for k, v := range table {
		s, ok := v.(string)
		if !ok {
			return nil, errors.Newf(errors.ErrConfigValid,
				"part %q: %s must be a table of strings", part, key)
		}
		out[k] = s
	}
	return out, nil
}

// expand substitutes the stage placeholder in strings, recursing through
// lists and tables. Non-string scalars pass through unchanged.
func expand(value interface{}, stageDir string) interface{} {
	switch v := value.(type) {
	case string:
		return strings.ReplaceAll(v, StagePlaceholder, stageDir)
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = expand(item, stageDir)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, item := range v {
			out[k] = expand(item, stageDir)
		}
		return out
	default:
		return value
	}
}
