// Copyright © 2024 The ELPS authors

package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/luthersystems/nlint/prims"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/fs"
)

var registry = prims.MustDefaultRegistry()

func nullLogger() *logrus.Logger {
	logger, _ := logtest.NewNullLogger()
	return logger
}

// run executes cmd with args and returns its stdout, stderr and exit code.
func run(t *testing.T, cmd *cobra.Command, stdin io.Reader, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), ExitCode(err)
}

func runLint(t *testing.T, stdin io.Reader, args ...string) (string, string, int) {
	t.Helper()
	return run(t, LintCommand(WithRegistry(registry), WithLogger(nullLogger())), stdin, args...)
}

func TestLintCommand_DefaultFlags(t *testing.T) {
	cmd := LintCommand()
	assert.Equal(t, "lint [flags] [files...]", cmd.Use)

	for _, name := range []string{"json", "checks", "disable", "list", "exclude", "fix", "widget-globals"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag: %s", name)
	}
}

func TestLintCommand_WithRegistryInjectsRegistry(t *testing.T) {
	reg := prims.NewRegistry()
	cfg := newCmdConfig(WithRegistry(reg))
	got, err := cfg.resolveRegistry()
	require.NoError(t, err)
	assert.Same(t, reg, got, "WithRegistry should inject the registry")
}

func TestLintCommand_ExitCodes(t *testing.T) {
	dir := fs.NewDir(t, "nlint-lint",
		fs.WithFile("clean.nlogo", "breed [trains train]\nto go create-trains 1 end\n"),
		fs.WithFile("broken.nlogo", "to go create-trains 1 end\n"),
	)

	_, stderr, code := runLint(t, nil, dir.Join("clean.nlogo"))
	assert.Equal(t, 0, code)
	assert.Empty(t, stderr)

	_, stderr, code = runLint(t, nil, dir.Join("broken.nlogo"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "error[breed]: create-trains refers to breed trains, which is not declared")
	assert.Contains(t, stderr, "broken.nlogo:1:7")
	assert.Contains(t, stderr, "= help: Declare breed [trains train]")

	_, _, code = runLint(t, nil, dir.Join("missing.nlogo"))
	assert.Equal(t, 2, code)

	_, _, code = runLint(t, nil, "--checks=bogus", dir.Join("clean.nlogo"))
	assert.Equal(t, 2, code)
}

func TestLintCommand_SelectChecks(t *testing.T) {
	dir := fs.NewDir(t, "nlint-checks",
		fs.WithFile("model.nlogo", "to go create-trains 1 end\n"),
	)

	_, _, code := runLint(t, nil, "--checks=identifier,context", dir.Join("model.nlogo"))
	assert.Equal(t, 0, code, "the breed check is not selected")

	_, _, code = runLint(t, nil, "--disable=breed", dir.Join("model.nlogo"))
	assert.Equal(t, 0, code)
}

func TestLintCommand_JSON(t *testing.T) {
	dir := fs.NewDir(t, "nlint-json",
		fs.WithFile("model.nlogo", "to go create-trains 1 end\n"),
	)

	stdout, stderr, code := runLint(t, nil, "--json", dir.Join("model.nlogo"))
	assert.Equal(t, 1, code)
	assert.Empty(t, stderr)
	assert.True(t, strings.HasPrefix(stdout, "["), stdout)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(stdout), "]"), "findings leave only the JSON on stdout")

	var diags []struct {
		Analyzer string `json:"analyzer"`
		Severity string `json:"severity"`
		Pos      struct {
			Line int `json:"line"`
			Col  int `json:"col"`
		} `json:"pos"`
		Fixes []struct {
			Kind string `json:"kind"`
		} `json:"fixes"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &diags))
	require.Len(t, diags, 1)
	assert.Equal(t, "breed", diags[0].Analyzer)
	assert.Equal(t, "error", diags[0].Severity)
	assert.Equal(t, 1, diags[0].Pos.Line)
	assert.Equal(t, 7, diags[0].Pos.Col)
	require.Len(t, diags[0].Fixes, 1)
	assert.Equal(t, "add-breed", diags[0].Fixes[0].Kind)
}

func TestLintCommand_Includes(t *testing.T) {
	dir := fs.NewDir(t, "nlint-includes",
		fs.WithFile("model.nlogo", "__includes [\"lib/trains.nls\"]\nto go create-trains 1 helper end\n"),
		fs.WithDir("lib",
			fs.WithFile("trains.nls", "breed [trains train]\nto helper end\n"),
		),
		fs.WithFile("orphan.nlogo", "__includes [\"gone.nls\"]\nto go create-trains 1 end\n"),
	)

	_, stderr, code := runLint(t, nil, dir.Join("model.nlogo"))
	assert.Equal(t, 0, code, stderr)

	_, _, code = runLint(t, nil, dir.Join("orphan.nlogo"))
	assert.Equal(t, 1, code, "an unreadable include declares nothing")
}

func TestLintCommand_Directory(t *testing.T) {
	dir := fs.NewDir(t, "nlint-dir",
		fs.WithFile("a.nlogo", "to go end\n"),
		fs.WithDir("models",
			fs.WithFile("b.nlogo", "to go create-cars 1 end\n"),
			fs.WithFile("c.nls", "to helper fd 1 end\n"),
		),
		fs.WithDir("backup",
			fs.WithFile("old.nlogo", "to go create-planes 1 end\n"),
		),
	)

	_, stderr, code := runLint(t, nil, "--exclude=backup", dir.Path()+"/...")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "create-cars")
	assert.NotContains(t, stderr, "create-planes")

	_, _, code = runLint(t, nil, "--exclude=backup", "--exclude=models", dir.Path())
	assert.Equal(t, 0, code)
}

func TestLintCommand_Stdin(t *testing.T) {
	_, stderr, code := runLint(t, strings.NewReader("to go create-trains 1 end\n"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "<stdin>:1:7")

	_, _, code = runLint(t, strings.NewReader("to go fd 1 end\n"))
	assert.Equal(t, 0, code)
}

func TestLintCommand_WidgetGlobals(t *testing.T) {
	dir := fs.NewDir(t, "nlint-widgets",
		fs.WithFile("model.nlogo", "to go show speed end\n"),
	)

	_, _, code := runLint(t, nil, dir.Join("model.nlogo"))
	assert.Equal(t, 1, code)

	_, _, code = runLint(t, nil, "--widget-globals=speed", dir.Join("model.nlogo"))
	assert.Equal(t, 0, code)
}

func TestLintCommand_Fix(t *testing.T) {
	dir := fs.NewDir(t, "nlint-fix",
		fs.WithFile("model.nlogo", "globals [speed]\nto go\n  create-trains 1\n  ask trains [ fd rate ]\nend\n", fs.WithMode(0o640)),
	)

	_, stderr, code := runLint(t, nil, "--fix", dir.Join("model.nlogo"))
	assert.Equal(t, 0, code, stderr)

	fixed, err := os.ReadFile(dir.Join("model.nlogo"))
	require.NoError(t, err)
	assert.Equal(t, "globals [speed rate]\nbreed [trains train]\nto go\n  create-trains 1\n  ask trains [ fd rate ]\nend\n", string(fixed))

	info, err := os.Stat(dir.Join("model.nlogo"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())

	// A second run has nothing left to do.
	_, _, code = runLint(t, nil, "--fix", dir.Join("model.nlogo"))
	assert.Equal(t, 0, code)
}

func TestLintCommand_FixStdin(t *testing.T) {
	stdout, _, code := runLint(t, strings.NewReader("to go create-trains 1 end"), "--fix")
	assert.Equal(t, 0, code)
	assert.Equal(t, "breed [trains train]\nto go create-trains 1 end", stdout)
}

func TestLintCommand_List(t *testing.T) {
	stdout, _, code := runLint(t, nil, "--list")
	assert.Equal(t, 0, code)
	names := strings.Fields(stdout)
	assert.Contains(t, names, "breed")
	assert.Contains(t, names, "context")
}

func TestCommands_SilenceUsage(t *testing.T) {
	for _, cmd := range []*cobra.Command{
		LintCommand(), LSPCommand(), PrimsCommand(), ShellCommand(),
	} {
		assert.True(t, cmd.SilenceUsage, cmd.Name())
		assert.True(t, cmd.SilenceErrors, cmd.Name())
	}

	// A failing run prints neither the usage text nor cobra's error line.
	stdout, stderr, code := runLint(t, nil, "--checks=bogus", "model.nlogo")
	assert.Equal(t, 2, code)
	assert.Empty(t, stdout)
	assert.NotContains(t, stderr, "Usage:")
	assert.NotContains(t, stderr, "Error:")
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitList([]string{"a, b", "", "c"}))
	assert.Nil(t, splitList(nil))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(&exitError{code: 1}))
	assert.Equal(t, 2, ExitCode(usageError("bad flag %s", "x")))
	assert.Equal(t, 2, ExitCode(io.EOF))
}
