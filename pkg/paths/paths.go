// Package paths provides centralized path handling for partforge.
// All part-private and shared tree locations are derived from a single
// project root so that hard-link migration stays on one volume; only
// the download cache lives outside the project, under the XDG cache
// directory.
package paths

import (
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/partforge/pkg/types"
)

// Directory names inside the project tree.
// IMPORTANT: these define partforge's on-disk layout and are NOT
// user-configurable; recorded step state references them implicitly.
const (
	// PartsDirName holds one subdirectory per part
	PartsDirName = "parts"

	// StageDirName is the shared staging tree
	StageDirName = "stage"

	// SnapDirName is the shared final output tree
	SnapDirName = "snap"

	// SourceDirName is the per-part source checkout
	SourceDirName = "src"

	// BuildDirName is the per-part build directory
	BuildDirName = "build"

	// InstallDirName is the per-part install destination
	InstallDirName = "install"

	// PackagesDirName caches fetched stage packages per part
	PackagesDirName = "packages"

	// StateDirName holds per-step state records per part
	StateDirName = "state"

	// ProjectConfigFile is the project definition file name
	ProjectConfigFile = "partforge.toml"

	// CacheDirName is the partforge subdirectory under the XDG cache dir
	CacheDirName = "partforge"
)

// Paths provides centralized path management for a partforge project
type Paths interface {
	ProjectRoot() string
	ConfigPath() string
	PartsDir() string
	PartDir(partName string) string
	StageDir() string
	SnapDir() string
	CacheDir() string

	// Part assembles the full set of locations owned by a part
	Part(partName string) types.Part
}

type projectPaths struct {
	root string
}

// New creates a Paths instance rooted at the given project directory.
func New(root string) Paths {
	return &projectPaths{root: root}
}

func (p *projectPaths) ProjectRoot() string {
	return p.root
}

func (p *projectPaths) ConfigPath() string {
	return filepath.Join(p.root, ProjectConfigFile)
}

func (p *projectPaths) PartsDir() string {
	return filepath.Join(p.root, PartsDirName)
}

func (p *projectPaths) PartDir(partName string) string {
	return filepath.Join(p.PartsDir(), partName)
}

func (p *projectPaths) StageDir() string {
	return filepath.Join(p.root, StageDirName)
}

func (p *projectPaths) SnapDir() string {
	return filepath.Join(p.root, SnapDirName)
}

// CacheDir returns the XDG cache directory for downloaded packages.
func (p *projectPaths) CacheDir() string {
	return filepath.Join(xdg.CacheHome, CacheDirName)
}

func (p *projectPaths) Part(partName string) types.Part {
	dir := p.PartDir(partName)
	return types.Part{
		Name:        partName,
		Dir:         dir,
		SourceDir:   filepath.Join(dir, SourceDirName),
		BuildDir:    filepath.Join(dir, BuildDirName),
		InstallDir:  filepath.Join(dir, InstallDirName),
		PackagesDir: filepath.Join(dir, PackagesDirName),
		StateDir:    filepath.Join(dir, StateDirName),
		StageDir:    p.StageDir(),
		SnapDir:     p.SnapDir(),
	}
}
