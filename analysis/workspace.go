// Copyright © 2024 The ELPS authors

package analysis

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/luthersystems/nlint/prims"
	"github.com/luthersystems/nlint/syntax"
)

// Extensions of NetLogo source files.
const (
	ModelExt   = ".nlogo"
	IncludeExt = ".nls"
)

// IsSource reports whether path names a NetLogo model or include file.
func IsSource(path string) bool {
	ext := filepath.Ext(path)
	return ext == ModelExt || ext == IncludeExt
}

// ScanWorkspace walks root and preprocesses every NetLogo source file. Each
// table is scoped by the file's path. Hidden directories are skipped and
// unreadable files are ignored.
func ScanWorkspace(reg *prims.Registry, root string) ([]*PreprocessContext, error) {
	var out []*PreprocessContext
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable dirs
		}
		if info.IsDir() {
			if shouldSkipDir(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsSource(path) {
			return nil
		}
		pre, readErr := PreprocessFile(reg, path)
		if readErr != nil {
			return nil
		}
		out = append(out, pre)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// shouldSkipDir returns true for hidden directories such as .git, but not
// for "." or "..".
func shouldSkipDir(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return len(name) > 0 && name[0] == '.'
}

// PreprocessFile reads and preprocesses one file.
func PreprocessFile(reg *prims.Registry, path string) (*PreprocessContext, error) {
	src, err := os.ReadFile(path) //nolint:gosec // CLI tool reads user-specified files
	if err != nil {
		return nil, fmt.Errorf("preprocess %s: %w", path, err)
	}
	pre := NewPreprocessContext(path)
	Parse(reg, pre, path, string(src))
	return pre, nil
}

// Includes returns the files named by the __includes declarations of tree,
// resolved against dir, sorted and without duplicates.
func Includes(tree *syntax.Tree, dir string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, decl := range tree.Declarations(syntax.Includes) {
		for _, item := range decl.Named(syntax.RoleItem) {
			if item.Kind != syntax.Literal || item.Name == "" {
				continue
			}
			path := item.Name
			if !filepath.IsAbs(path) {
				path = filepath.Join(dir, path)
			}
			if !seen[path] {
				seen[path] = true
				out = append(out, path)
			}
		}
	}
	sort.Strings(out)
	return out
}

// LoadIncludes preprocesses every file included by tree. Files that cannot
// be read are reported in errs and otherwise skipped.
func LoadIncludes(reg *prims.Registry, tree *syntax.Tree, dir string) (tables []*PreprocessContext, errs []error) {
	for _, path := range Includes(tree, dir) {
		pre, err := PreprocessFile(reg, path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		tables = append(tables, pre)
	}
	return tables, errs
}
