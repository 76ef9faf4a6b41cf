package types

import "io/fs"

// FS abstracts filesystem operations for testability
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	Lstat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Link operations
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)
	Link(oldname, newname string) error

	// Other operations
	Remove(name string) error
	RemoveAll(path string) error
	Rename(oldpath, newpath string) error
}

// DriverOptions carries the user-declared options for a part, as
// authored in partforge.toml. Stage and Snap are fileset pattern lists;
// Organize maps install-relative source paths to their staged layout.
// Extra holds driver-specific keys the core does not interpret.
type DriverOptions struct {
	Stage         []string
	Snap          []string
	StagePackages []string
	Organize      map[string]string
	Extra         map[string]interface{}
}

// FilesetFor returns the user fileset patterns for a step. Steps without
// a user fileset default to everything.
func (o *DriverOptions) FilesetFor(step Step) []string {
	var patterns []string
	switch step {
	case StepStage:
		patterns = o.Stage
	case StepStrip:
		patterns = o.Snap
	}
	if len(patterns) == 0 {
		return []string{"*"}
	}
	return patterns
}

// Driver is the capability set a build-technology driver exposes to the
// lifecycle core. Concrete drivers are registered in pkg/drivers; the
// core invokes the hooks and never retries on failure.
type Driver interface {
	// Pull fetches the part's source into its source directory
	Pull() error

	// Build builds the source and installs the results into the
	// part's install directory
	Build() error

	// CleanPull undoes driver-specific pull effects
	CleanPull() error

	// CleanBuild undoes driver-specific build effects
	CleanBuild() error

	// Env returns environment entries for running commands against a
	// populated root tree (the stage or snap dir)
	Env(root string) []string

	// StagePackages lists declared external binary dependencies to be
	// fetched and unpacked into the install directory during pull
	StagePackages() []string

	// DefaultFileset returns driver-declared fileset additions applied
	// to both the stage and strip filesets
	DefaultFileset() []string

	// Options exposes the user-declared options bound to this driver
	Options() *DriverOptions
}

// TargetArchSetter is implemented by drivers that support
// cross-compilation hints.
type TargetArchSetter interface {
	SetTargetArch(arch string) error
}
