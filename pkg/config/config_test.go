package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/partforge/pkg/config"
	"github.com/arthur-debert/partforge/pkg/errors"
)

func TestParseProject(t *testing.T) {
	data := []byte(`
name = "hello"

[parts.greeter]
driver = "script"
build = "make install"
stage = ["usr", "-usr/share/doc"]
snap = ["usr/bin"]
stage-packages = ["libgreet"]

[parts.greeter.organize]
"greet" = "usr/bin/greet"

[parts.docs]
`)

	project, err := config.Parse(data, "/project/stage")
	require.NoError(t, err)

	assert.Equal(t, "hello", project.Name)
	assert.Equal(t, []string{"docs", "greeter"}, project.PartNames())

	greeter := project.Parts["greeter"]
	require.NotNil(t, greeter)
	assert.Equal(t, "script", greeter.Driver)
	assert.Equal(t, []string{"usr", "-usr/share/doc"}, greeter.Options.Stage)
	assert.Equal(t, []string{"usr/bin"}, greeter.Options.Snap)
	assert.Equal(t, []string{"libgreet"}, greeter.Options.StagePackages)
	assert.Equal(t, map[string]string{"greet": "usr/bin/greet"}, greeter.Options.Organize)
	assert.Equal(t, "make install", greeter.Options.Extra["build"])

	docs := project.Parts["docs"]
	require.NotNil(t, docs)
	assert.Equal(t, config.DefaultDriver, docs.Driver)
}

func TestParseExpandsStagePlaceholder(t *testing.T) {
	data := []byte(`
name = "hello"

[parts.app]
driver = "script"
build = "make PREFIX=$PARTFORGE_STAGE/usr"
configflags = ["--with-lib=$PARTFORGE_STAGE/usr/lib"]
`)

	project, err := config.Parse(data, "/project/stage")
	require.NoError(t, err)

	app := project.Parts["app"]
	assert.Equal(t, "make PREFIX=/project/stage/usr", app.Options.Extra["build"])
	assert.Equal(t,
		[]interface{}{"--with-lib=/project/stage/usr/lib"},
		app.Options.Extra["configflags"])
}

func TestParseRejectsMissingName(t *testing.T) {
	_, err := config.Parse([]byte("[parts.app]\n"), "/stage")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfigValid))
}

func TestParseRejectsMissingParts(t *testing.T) {
	_, err := config.Parse([]byte(`name = "hello"`), "/stage")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfigValid))
}

func TestParseRejectsBadTypes(t *testing.T) {
	cases := map[string]string{
		"driver not string":  "name = \"x\"\n[parts.a]\ndriver = 3\n",
		"stage not list":     "name = \"x\"\n[parts.a]\nstage = \"usr\"\n",
		"stage mixed list":   "name = \"x\"\n[parts.a]\nstage = [\"usr\", 3]\n",
		"organize not table": "name = \"x\"\n[parts.a]\norganize = [\"a\"]\n",
	}

	for label, data := range cases {
		t.Run(label, func(t *testing.T) {
			_, err := config.Parse([]byte(data), "/stage")
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrConfigValid))
		})
	}
}

func TestParseRejectsInvalidTOML(t *testing.T) {
	_, err := config.Parse([]byte("name = \"x\"\n[parts\n"), "/stage")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfigParse))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load("/nonexistent/partforge.toml", "/stage")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfigLoad))
}
