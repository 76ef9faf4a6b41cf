package drivers

import (
	"github.com/arthur-debert/partforge/pkg/registry"
	"github.com/arthur-debert/partforge/pkg/types"
)

// nilDriver does nothing of its own. It exists for parts that only
// consume stage packages or only reshape files via organize.
type nilDriver struct {
	Base
}

func init() {
	registry.MustRegister(factories, "nil", newNilDriver)
}

func newNilDriver(part types.Part, opts *types.DriverOptions) (types.Driver, error) {
	return &nilDriver{Base{Part: part, Opts: opts}}, nil
}
