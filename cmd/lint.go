// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/luthersystems/nlint/analysis"
	"github.com/luthersystems/nlint/diagnostic"
	"github.com/luthersystems/nlint/lint"
	"github.com/luthersystems/nlint/prims"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

// stdinName is the file name diagnostics of standard input carry.
const stdinName = "<stdin>"

// maxFixPasses bounds how often --fix re-lints a file after an edit.
const maxFixPasses = 32

// LintCommand creates the "lint" cobra command. Embedders can pass
// WithRegistry to check models against their own extension primitives.
func LintCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts...)
	var (
		listAll bool
		fix     bool
	)

	cmd := &cobra.Command{
		Use:   "lint [flags] [files...]",
		Short: "Run static analysis checks on NetLogo models",
		Long: `Run static analysis checks on NetLogo models and include files.

The linter reports likely mistakes in NetLogo code without running it. Each
check is an independent analyzer that examines the classified syntax tree
and reports diagnostics. Files named by __includes are read so their
breeds, globals and procedures are known.

With no files, reads from stdin. Directories and "dir/..." patterns expand
to every .nlogo and .nls file beneath them.

Exit codes:
  0  No problems found
  1  One or more problems were reported
  2  Bad invocation (invalid flags, unreadable files)

To suppress a specific diagnostic, add a comment on the same line:
  create-wolves 10 ; nolint:breed

To suppress all checks on a line:
  create-wolves 10 ; nolint

Available checks (use --checks to select specific ones):
` + lint.AnalyzerDoc() + `
Examples:
  nlint lint model.nlogo                       # Lint a single model
  nlint lint ./...                             # Lint every model below here
  nlint lint --json model.nlogo                # Output diagnostics as JSON
  nlint lint --checks=breed,context model.nlogo  # Run only specific checks
  nlint lint --disable=context model.nlogo     # Skip a check
  nlint lint --list                            # List available checks
  nlint lint --exclude='backup' ./...          # Exclude a directory
  nlint lint --fix model.nlogo                 # Add missing declarations
  cat model.nlogo | nlint lint                 # Lint from stdin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if listAll {
				for _, name := range lint.AnalyzerNames() {
					fmt.Fprintln(out, name) //nolint:errcheck // best-effort output
				}
				return nil
			}

			analyzers, err := lint.Select(splitList(viper.GetStringSlice("lint.checks")), splitList(viper.GetStringSlice("lint.disable")))
			if err != nil {
				return usageError("%w", err)
			}
			reg, err := cfg.resolveRegistry()
			if err != nil {
				return usageError("%w", err)
			}
			r := &fileLinter{
				linter:  &lint.Linter{Analyzers: analyzers, Registry: reg},
				reg:     reg,
				logger:  cfg.resolveLogger(),
				widgets: splitList(viper.GetStringSlice("lint.widget-globals")),
				fix:     fix,
			}

			var (
				diags   []lint.Diagnostic
				sources = make(map[string]string)
			)
			if len(args) == 0 {
				src, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return usageError("reading stdin: %w", err)
				}
				res, err := r.lint(stdinName, src)
				if err != nil {
					return usageError("%w", err)
				}
				if fix {
					fmt.Fprint(out, res.source) //nolint:errcheck // best-effort output
				}
				diags = res.diags
				sources[stdinName] = res.source
			} else {
				paths, err := expandArgs(args, splitList(viper.GetStringSlice("lint.exclude")))
				if err != nil {
					return usageError("%w", err)
				}
				results, err := r.lintFiles(cmd, paths)
				if err != nil {
					return usageError("%w", err)
				}
				for _, res := range results {
					diags = append(diags, res.diags...)
					sources[res.path] = res.source
				}
			}

			if len(diags) == 0 {
				return nil
			}
			if viper.GetBool("lint.json") {
				if err := lint.FormatJSON(out, diags); err != nil {
					return usageError("%w", err)
				}
			} else {
				renderer := newRenderer()
				renderer.SourceReader = diagnostic.InMemory(sources)
				_ = renderer.RenderLint(cmd.ErrOrStderr(), diags)
			}
			return &exitError{code: 1}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().Bool("json", false,
		"Output diagnostics as JSON.")
	cmd.Flags().StringSlice("checks", nil,
		"Comma-separated list of checks to run (default: all).")
	cmd.Flags().StringSlice("disable", nil,
		"Comma-separated list of checks to skip.")
	cmd.Flags().BoolVar(&listAll, "list", false,
		"List available checks and exit.")
	cmd.Flags().StringArray("exclude", nil,
		"Glob pattern for files to exclude (may be repeated).")
	cmd.Flags().StringSlice("widget-globals", nil,
		"Names defined by interface widgets, treated as globals.")
	cmd.Flags().BoolVar(&fix, "fix", false,
		"Apply suggested declarations and rewrite the files (stdin: print the result).")

	for key, flag := range map[string]string{
		"lint.json":           "json",
		"lint.checks":         "checks",
		"lint.disable":        "disable",
		"lint.exclude":        "exclude",
		"lint.widget-globals": "widget-globals",
	} {
		_ = viper.BindPFlag(key, cmd.Flags().Lookup(flag))
	}
	return cmd
}

// fileLinter lints files with their includes.
type fileLinter struct {
	linter  *lint.Linter
	reg     *prims.Registry
	logger  *logrus.Logger
	widgets []string
	fix     bool
}

type lintResult struct {
	path   string
	source string
	diags  []lint.Diagnostic
}

// lintFiles lints paths concurrently. Results keep the order of paths.
func (r *fileLinter) lintFiles(cmd *cobra.Command, paths []string) ([]lintResult, error) {
	results := make([]lintResult, len(paths))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			src, err := os.ReadFile(path) //nolint:gosec // CLI tool reads user-specified files
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			res, err := r.lint(path, src)
			if err != nil {
				return err
			}
			if r.fix && res.source != string(src) {
				if err := writeFixed(path, res.source); err != nil {
					return err
				}
				r.logger.WithField("file", path).Info("applied fixes")
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// lint checks one source. With fixing enabled, fixes are applied one at a
// time, re-linting after each, and the result describes the fixed source.
func (r *fileLinter) lint(path string, src []byte) (lintResult, error) {
	cfg := &lint.Config{WidgetGlobals: r.widgets}
	if path != stdinName {
		cfg.Linked = r.includes(path, src)
	}
	source := string(src)
	for pass := 0; ; pass++ {
		diags, err := r.linter.LintFileWithConfig([]byte(source), path, cfg)
		if err != nil {
			return lintResult{}, err
		}
		if !r.fix || pass == maxFixPasses {
			return lintResult{path: path, source: source, diags: diags}, nil
		}
		fixed, ok := applyFirstFix(source, diags)
		if !ok {
			return lintResult{path: path, source: source, diags: diags}, nil
		}
		source = fixed
	}
}

// includes preprocesses the files path includes. Unreadable includes are
// logged and skipped; the identifiers they would declare are reported.
func (r *fileLinter) includes(path string, src []byte) []*analysis.PreprocessContext {
	pre := analysis.NewPreprocessContext(path)
	tree := analysis.Parse(r.reg, pre, path, string(src))
	tables, errs := analysis.LoadIncludes(r.reg, tree, filepath.Dir(path))
	for _, err := range errs {
		r.logger.WithField("file", path).WithError(err).Warn("include not loaded")
	}
	return tables
}

// applyFirstFix applies the first declaration fix among diags that
// changes source. Token removals need a human decision and explanations
// carry no edits.
func applyFirstFix(source string, diags []lint.Diagnostic) (string, bool) {
	for _, d := range diags {
		for _, f := range d.Fixes {
			if f.Kind == lint.FixExplain || f.Kind == lint.FixRemoveToken || len(f.Edits) == 0 {
				continue
			}
			if fixed := lint.ApplyFix(source, f); fixed != source {
				return fixed, true
			}
		}
	}
	return source, false
}

func writeFixed(path, source string) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(path, []byte(source), mode); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// splitList flattens comma-separated entries, which environment variables
// and config files produce.
func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
