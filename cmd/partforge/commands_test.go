package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/partforge/pkg/errors"
	"github.com/arthur-debert/partforge/pkg/testutil"
)

func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func writeProject(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "partforge.toml"), []byte(content), 0644))
}

func TestLifecycleEndToEnd(t *testing.T) {
	dir := t.TempDir()
	writeProject(t, dir, `
name = "hello"

[parts.app]
driver = "script"
build = "echo hi > \"$PARTFORGE_PART_INSTALL/hi.txt\""
snap = ["hi.txt"]
`)

	require.NoError(t, runCLI(t, "--project-dir", dir, "strip"))
	testutil.AssertFileContent(t, filepath.Join(dir, "stage/hi.txt"), "hi\n")
	testutil.AssertFileContent(t, filepath.Join(dir, "snap/hi.txt"), "hi\n")

	// A second run is a no-op over completed steps.
	require.NoError(t, runCLI(t, "--project-dir", dir, "strip"))

	require.NoError(t, runCLI(t, "--project-dir", dir, "clean"))
	testutil.AssertNotExists(t, filepath.Join(dir, "parts"))
	testutil.AssertNotExists(t, filepath.Join(dir, "stage"))
	testutil.AssertNotExists(t, filepath.Join(dir, "snap"))
}

func TestStageAbortsOnCollision(t *testing.T) {
	dir := t.TempDir()
	writeProject(t, dir, `
name = "clash"

[parts.one]
driver = "script"
build = "echo one > \"$PARTFORGE_PART_INSTALL/tool\""

[parts.two]
driver = "script"
build = "echo two > \"$PARTFORGE_PART_INSTALL/tool\""
`)

	require.NoError(t, runCLI(t, "--project-dir", dir, "build"))

	err := runCLI(t, "--project-dir", dir, "stage")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCollision))
	assert.Contains(t, err.Error(), "tool")
}

func TestCleanRejectsUnknownStep(t *testing.T) {
	err := runCLI(t, "--project-dir", t.TempDir(), "clean", "bogus")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrInvalidStep))
}

func TestMissingProjectFile(t *testing.T) {
	err := runCLI(t, "--project-dir", t.TempDir(), "pull")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfigLoad))
}
