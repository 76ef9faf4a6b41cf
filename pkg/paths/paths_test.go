package paths_test

import (
	"path/filepath"
	"testing"

	"github.com/arthur-debert/partforge/pkg/paths"
	"github.com/stretchr/testify/assert"
)

func TestProjectLayout(t *testing.T) {
	p := paths.New("/project")

	assert.Equal(t, "/project", p.ProjectRoot())
	assert.Equal(t, filepath.Join("/project", "partforge.toml"), p.ConfigPath())
	assert.Equal(t, filepath.Join("/project", "parts"), p.PartsDir())
	assert.Equal(t, filepath.Join("/project", "parts", "foo"), p.PartDir("foo"))
	assert.Equal(t, filepath.Join("/project", "stage"), p.StageDir())
	assert.Equal(t, filepath.Join("/project", "snap"), p.SnapDir())
}

func TestPartLocations(t *testing.T) {
	p := paths.New("/project")
	part := p.Part("glibc")

	assert.Equal(t, "glibc", part.Name)
	assert.Equal(t, filepath.Join("/project", "parts", "glibc"), part.Dir)
	assert.Equal(t, filepath.Join(part.Dir, "src"), part.SourceDir)
	assert.Equal(t, filepath.Join(part.Dir, "build"), part.BuildDir)
	assert.Equal(t, filepath.Join(part.Dir, "install"), part.InstallDir)
	assert.Equal(t, filepath.Join(part.Dir, "packages"), part.PackagesDir)
	assert.Equal(t, filepath.Join(part.Dir, "state"), part.StateDir)

	// Shared trees are project-wide, not under the part dir.
	assert.Equal(t, filepath.Join("/project", "stage"), part.StageDir)
	assert.Equal(t, filepath.Join("/project", "snap"), part.SnapDir)

	assert.Len(t, part.PrivateDirs(), 5)
	assert.Equal(t, []string{part.StageDir, part.SnapDir}, part.SharedDirs())
}
