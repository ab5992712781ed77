// Copyright © 2024 The ELPS authors

package cmd

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/fs"
)

func runPrims(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	return run(t, PrimsCommand(WithRegistry(registry)), nil, args...)
}

func TestPrimsCommand_DefaultFlags(t *testing.T) {
	cmd := PrimsCommand()
	assert.Equal(t, "prims [flags] [NAME]", cmd.Use)
	for _, name := range []string{"extension", "list-extensions"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag: %s", name)
	}
}

func TestPrimsCommand_Describe(t *testing.T) {
	stdout, _, code := runPrims(t, "fd")
	assert.Equal(t, 0, code)
	lines := strings.Split(stdout, "\n")
	assert.True(t, strings.HasPrefix(lines[0], "forward"), lines[0])
	assert.Contains(t, stdout, "    Moves the turtle forward.")

	_, _, code = runPrims(t, "no-such-primitive")
	assert.Equal(t, 2, code)
}

func TestPrimsCommand_Extension(t *testing.T) {
	stdout, _, code := runPrims(t, "--extension", "table")
	assert.Equal(t, 0, code)
	for _, line := range strings.Split(strings.TrimSpace(stdout), "\n") {
		assert.True(t, strings.HasPrefix(line, "table:"), line)
	}

	stdout, _, code = runPrims(t, "-e", "table", "get")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "table:get")

	_, _, code = runPrims(t, "--extension", "nope")
	assert.Equal(t, 2, code)
}

func TestPrimsCommand_ListExtensions(t *testing.T) {
	stdout, _, code := runPrims(t, "-l")
	assert.Equal(t, 0, code)
	assert.Subset(t, strings.Fields(stdout), []string{"array", "csv", "string", "table"})
}

func TestPrimsCommand_CoreList(t *testing.T) {
	stdout, _, code := runPrims(t)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "create-turtles")
	assert.NotContains(t, stdout, "table:")
}

func TestResolveRegistry_ExtraCatalogs(t *testing.T) {
	dir := fs.NewDir(t, "nlint-catalog",
		fs.WithFile("gis.yaml", `extension: gis
primitives:
  - {name: load-dataset, ctx: "O---", ret: wildcard, right: [string], doc: "Loads a GIS dataset."}
`),
	)
	viper.Set("extensions.catalogs", []string{dir.Join("gis.yaml")})
	t.Cleanup(func() { viper.Set("extensions.catalogs", nil) })

	reg, err := newCmdConfig().resolveRegistry()
	require.NoError(t, err)
	p, ok := reg.GetNamedPrimitive("gis:load-dataset")
	require.True(t, ok)
	assert.Equal(t, "Loads a GIS dataset.", p.Doc)

	viper.Set("extensions.catalogs", []string{dir.Join("missing.yaml")})
	_, err = newCmdConfig().resolveRegistry()
	assert.Error(t, err)
}
