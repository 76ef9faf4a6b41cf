// Package drivers maps driver identifiers to constructors through an
// explicit registry, and ships the built-in drivers. Technology-specific
// drivers implement types.Driver and register a Factory from an init
// function; the lifecycle core resolves them by the identifier declared
// in the part's configuration.
package drivers

import (
	"os"

	"github.com/arthur-debert/partforge/pkg/errors"
	"github.com/arthur-debert/partforge/pkg/registry"
	"github.com/arthur-debert/partforge/pkg/types"
)

// Factory constructs a driver bound to a part and its user options.
type Factory func(part types.Part, opts *types.DriverOptions) (types.Driver, error)

var factories = registry.New[Factory]()

// Register adds a driver factory under the given identifier.
func Register(name string, factory Factory) error {
	return factories.Register(name, factory)
}

// New resolves a driver identifier and constructs the driver for a part.
func New(name string, part types.Part, opts *types.DriverOptions) (types.Driver, error) {
	factory, err := factories.Get(name)
	if err != nil {
		return nil, errors.Newf(errors.ErrDriverNotFound, "unknown driver: %s", name)
	}
	if opts == nil {
		opts = &types.DriverOptions{}
	}
	return factory(part, opts)
}

// List returns the registered driver identifiers in sorted order.
func List() []string {
	return factories.List()
}

// Base provides default no-op implementations of the driver capability
// set. Concrete drivers embed it and override the hooks they need.
type Base struct {
	Part types.Part
	Opts *types.DriverOptions
}

func (b *Base) Pull() error  { return nil }
func (b *Base) Build() error { return nil }

// CleanPull discards the pulled source; the lifecycle manager removes
// the derived trees itself.
func (b *Base) CleanPull() error { return os.RemoveAll(b.Part.SourceDir) }

func (b *Base) CleanBuild() error { return nil }

func (b *Base) Env(root string) []string { return nil }

func (b *Base) StagePackages() []string { return b.Opts.StagePackages }

func (b *Base) DefaultFileset() []string { return nil }

func (b *Base) Options() *types.DriverOptions { return b.Opts }
