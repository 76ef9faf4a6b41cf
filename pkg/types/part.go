package types

// Part represents one declared build unit and the filesystem locations
// it owns. SourceDir, BuildDir, InstallDir and PackagesDir are private
// to the part; StageDir and SnapDir are shared by all parts in a build.
type Part struct {
	// Name is the part name, unique within a build
	Name string

	// Dir is the root of the part's private tree (parts/<name>)
	Dir string

	// SourceDir holds the pulled source
	SourceDir string

	// BuildDir is the out-of-tree build location
	BuildDir string

	// InstallDir receives the build results and unpacked stage packages
	InstallDir string

	// PackagesDir caches fetched stage packages before unpacking
	PackagesDir string

	// StateDir holds one record per completed step
	StateDir string

	// StageDir is the shared staging tree populated by the stage step
	StageDir string

	// SnapDir is the shared final output tree populated by the strip step
	SnapDir string
}

// PrivateDirs returns the part-private directories created before a step
// runs. Shared trees are listed separately by SharedDirs.
func (p *Part) PrivateDirs() []string {
	return []string{p.SourceDir, p.BuildDir, p.InstallDir, p.PackagesDir, p.StateDir}
}

// SharedDirs returns the tree-wide directories this part migrates into.
func (p *Part) SharedDirs() []string {
	return []string{p.StageDir, p.SnapDir}
}
