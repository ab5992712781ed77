// Copyright © 2024 The ELPS authors

package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/fs"
)

func TestFilterExcludes_ByName(t *testing.T) {
	paths := []string{
		"src/main.nlogo",
		"src/generated.nls",
		"lib/utils.nls",
	}
	result := filterExcludes(paths, []string{"generated.nls"})
	assert.Equal(t, []string{"src/main.nlogo", "lib/utils.nls"}, result)
}

func TestFilterExcludes_ByDirectory(t *testing.T) {
	paths := []string{
		"src/main.nlogo",
		"build/output.nls",
		"build/sub/deep.nls",
		"lib/utils.nls",
	}
	result := filterExcludes(paths, []string{"build"})
	assert.Equal(t, []string{"src/main.nlogo", "lib/utils.nls"}, result)
}

func TestFilterExcludes_GlobPattern(t *testing.T) {
	paths := []string{
		"src/main.nlogo",
		"src/backup_foo.nlogo",
		"src/backup_bar.nlogo",
		"lib/utils.nls",
	}
	result := filterExcludes(paths, []string{"backup_*"})
	assert.Equal(t, []string{"src/main.nlogo", "lib/utils.nls"}, result)
}

func TestFilterExcludes_EmptyExcludes(t *testing.T) {
	paths := []string{"src/main.nlogo"}
	result := filterExcludes(paths, nil)
	assert.Equal(t, []string{"src/main.nlogo"}, result)
}

func TestMatchesAny(t *testing.T) {
	assert.True(t, matchesAny("src/main.nlogo", []string{"src/*.nlogo"}))
	assert.False(t, matchesAny("lib/main.nlogo", []string{"src/*.nlogo"}))
	assert.True(t, matchesAny("deep/nested/wolves.nls", []string{"wolves.nls"}))
	assert.True(t, matchesAny("project/build/output.nls", []string{"build"}))
	assert.False(t, matchesAny("project/src/output.nls", []string{"build"}))
}

func TestSplitPath(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c.nls"}, splitPath("./a/b/c.nls"))
}

func TestExpandArgs(t *testing.T) {
	dir := fs.NewDir(t, "nlint-expand",
		fs.WithFile("model.nlogo", ""),
		fs.WithFile("notes.txt", ""),
		fs.WithDir("lib",
			fs.WithFile("helpers.nls", ""),
		),
		fs.WithDir(".git",
			fs.WithFile("hidden.nls", ""),
		),
		fs.WithDir("build",
			fs.WithFile("copy.nlogo", ""),
		),
	)

	got, err := expandArgs([]string{dir.Path() + "/..."}, []string{"build"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		dir.Join("model.nlogo"),
		filepath.Join(dir.Path(), "lib", "helpers.nls"),
	}, got)

	got, err = expandArgs([]string{dir.Join("lib"), "other.nlogo"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir.Path(), "lib", "helpers.nls"), "other.nlogo"}, got)
}
