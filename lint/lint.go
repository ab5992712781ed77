// Copyright © 2024 The ELPS authors

// Package lint checks NetLogo source for problems the analysis passes can
// see: undeclared breeds, unknown identifiers, wrong argument counts,
// undeclared extensions and context conflicts.
//
// The linter is modeled after go vet: each check is an independent Analyzer
// that receives the syntax tree and the analysis contexts and reports
// diagnostics. Analyzers never see each other's output and must tolerate
// missing or partial contexts by reporting nothing.
package lint

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/luthersystems/nlint/analysis"
	"github.com/luthersystems/nlint/prims"
	"github.com/luthersystems/nlint/syntax"
)

// Severity indicates the severity level of a lint diagnostic.
type Severity int

const (
	severityUnset Severity = iota // unexported zero sentinel for default detection
	SeverityError
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// MarshalJSON serializes the severity as a JSON string.
// An unset severity (zero value) is marshaled as "warning".
func (s Severity) MarshalJSON() ([]byte, error) {
	if s == severityUnset {
		return json.Marshal("warning")
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON deserializes a severity from a JSON string.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	case "info":
		*s = SeverityInfo
	default:
		return fmt.Errorf("unknown severity: %q", str)
	}
	return nil
}

// Analyzer defines a single lint check.
type Analyzer struct {
	// Name is a short identifier for this check (e.g. "breed").
	Name string

	// Doc is a human-readable description. The first line is a short summary.
	Doc string

	// Severity is the default severity for diagnostics from this analyzer.
	Severity Severity

	// Run executes the check. It should call pass.Report() for each finding.
	Run func(pass *Pass) error
}

// Pass provides context to a running analyzer.
type Pass struct {
	// Analyzer is the currently running check.
	Analyzer *Analyzer

	// Filename is the source file being analyzed.
	Filename string

	Tree *syntax.Tree

	// Lint is the second pass symbol model. It may be nil.
	Lint *analysis.LintContext

	// Preprocess is the table the tree was classified with. It may be nil.
	Preprocess *analysis.PreprocessContext

	// Registry resolves primitives. It is never nil.
	Registry *prims.Registry

	// diagnostics collects reported findings.
	diagnostics []Diagnostic
}

// Report records a diagnostic finding.
func (p *Pass) Report(d Diagnostic) {
	d.Analyzer = p.Analyzer.Name
	if d.Severity == severityUnset {
		d.Severity = p.Analyzer.Severity
	}
	if p.Tree != nil {
		d.Pos = p.position(d.Span.Start)
		d.End = p.position(d.Span.End)
	}
	p.diagnostics = append(p.diagnostics, d)
}

// ReportWithNotes records a diagnostic with additional hint text.
func (p *Pass) ReportWithNotes(d Diagnostic, notes ...string) {
	d.Notes = append(d.Notes, notes...)
	p.Report(d)
}

// Reportf is a convenience for reporting a diagnostic covering s.
func (p *Pass) Reportf(s syntax.Span, format string, args ...interface{}) {
	p.Report(Diagnostic{Span: s, Message: fmt.Sprintf(format, args...)})
}

func (p *Pass) position(offset int) Position {
	pos := p.Tree.Position(offset)
	return Position{File: p.Filename, Line: pos.Line, Col: pos.Col}
}

// Diagnostic is a single reported problem.
type Diagnostic struct {
	// Pos is the source location of the problem.
	Pos Position `json:"pos"`

	// End is the location just past the problem.
	End Position `json:"end"`

	// Span is the byte range of the problem in the source.
	Span syntax.Span `json:"span"`

	// Message is a human-readable description of the problem.
	Message string `json:"message"`

	// Analyzer is the name of the check that found this problem.
	Analyzer string `json:"analyzer"`

	// Severity is the severity level of the diagnostic.
	Severity Severity `json:"severity"`

	// Notes are optional hint text lines for the user.
	Notes []string `json:"notes,omitempty"`

	// Fixes are edits a host may offer. They are never applied by the
	// linter itself.
	Fixes []Fix `json:"fixes,omitempty"`
}

// Position identifies a location in source code.
type Position struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Col  int    `json:"col,omitempty"`
}

// String returns the position in file:line format.
func (p Position) String() string {
	if p.Line == 0 {
		return p.File
	}
	if p.Col > 0 {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// String returns the diagnostic in go vet style: file:line: message (analyzer)
// with optional note lines appended.
func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s: %s (%s)", d.Pos, d.Message, d.Analyzer)
	for _, n := range d.Notes {
		s += "\n  = note: " + n
	}
	return s
}

// Linter runs a set of analyzers over source files.
type Linter struct {
	Analyzers []*Analyzer

	// Registry resolves primitives. Nil means the bundled catalog.
	Registry *prims.Registry
}

// Config carries the facts a file cannot provide about itself.
type Config struct {
	// Linked holds the preprocess tables of files whose declarations the
	// linted file can use, such as its __includes.
	Linked []*analysis.PreprocessContext

	// WidgetGlobals are names defined by interface widgets.
	WidgetGlobals []string
}

func (l *Linter) registry() *prims.Registry {
	if l.Registry != nil {
		return l.Registry
	}
	return prims.MustDefaultRegistry()
}

// LintFile analyzes a single source file and returns all diagnostics.
func (l *Linter) LintFile(source []byte, filename string) ([]Diagnostic, error) {
	return l.LintFileWithConfig(source, filename, nil)
}

// LintFileWithConfig runs both analysis passes over source and lints the
// result.
func (l *Linter) LintFileWithConfig(source []byte, filename string, cfg *Config) ([]Diagnostic, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	reg := l.registry()
	pre := analysis.NewPreprocessContext(filename)
	tree := analysis.Parse(reg, pre, filename, string(source), cfg.Linked...)

	view := pre
	if len(cfg.Linked) > 0 {
		view = analysis.MergePreprocess(filename, append([]*analysis.PreprocessContext{pre}, cfg.Linked...)...)
	}
	lc := analysis.NewLintContext(reg, filename)
	lc.SetWidgetGlobals(cfg.WidgetGlobals)
	lc.ParseState(tree, view)
	return l.Run(tree, lc, view)
}

// Run lints an already analyzed tree. lc and pre may be nil, in which case
// the checks that need them report nothing.
func (l *Linter) Run(tree *syntax.Tree, lc *analysis.LintContext, pre *analysis.PreprocessContext) ([]Diagnostic, error) {
	if tree == nil {
		return nil, nil
	}
	reg := l.registry()
	if lc != nil && lc.Registry() != nil {
		reg = lc.Registry()
	}

	var all []Diagnostic
	for _, analyzer := range l.Analyzers {
		pass := &Pass{
			Analyzer:   analyzer,
			Filename:   tree.Filename,
			Tree:       tree,
			Lint:       lc,
			Preprocess: pre,
			Registry:   reg,
		}
		if err := analyzer.Run(pass); err != nil {
			return nil, fmt.Errorf("%s: analyzer %s: %w", tree.Filename, analyzer.Name, err)
		}
		all = append(all, pass.diagnostics...)
	}

	// Filter suppressed diagnostics (; nolint comments)
	all = filterSuppressed(all, tree)
	SortDiagnostics(all)
	return all, nil
}

// SortDiagnostics orders diagnostics by file, then position, then analyzer.
func SortDiagnostics(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.Pos.File != b.Pos.File {
			return a.Pos.File < b.Pos.File
		}
		if a.Span.Start != b.Span.Start {
			return a.Span.Start < b.Span.Start
		}
		return a.Analyzer < b.Analyzer
	})
}

// filterSuppressed removes diagnostics on lines with ; nolint comments.
func filterSuppressed(diags []Diagnostic, tree *syntax.Tree) []Diagnostic {
	// line -> "" (all) or "analyzer1,analyzer2"
	nolintLines := make(map[int]string)
	for _, c := range tree.Comments {
		checkNolintComment(tree, c, nolintLines)
	}
	if len(nolintLines) == 0 {
		return diags
	}

	var filtered []Diagnostic
	for _, d := range diags {
		directive, ok := nolintLines[d.Pos.Line]
		if !ok {
			filtered = append(filtered, d)
			continue
		}
		// Empty directive = suppress all
		if directive == "" {
			continue
		}
		suppressed := false
		for _, name := range strings.Split(directive, ",") {
			if strings.TrimSpace(name) == d.Analyzer {
				suppressed = true
				break
			}
		}
		if !suppressed {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

func checkNolintComment(tree *syntax.Tree, c syntax.Span, lines map[int]string) {
	text := strings.TrimSpace(tree.Text(c))
	text = strings.TrimSpace(strings.TrimLeft(text, ";"))
	if !strings.HasPrefix(text, "nolint") {
		return
	}
	line := tree.Position(c.Start).Line
	rest := strings.TrimPrefix(text, "nolint")
	if rest == "" {
		lines[line] = ""
		return
	}
	if strings.HasPrefix(rest, ":") {
		lines[line] = strings.TrimPrefix(rest, ":")
	}
}

// FormatText writes diagnostics in go vet text format.
func FormatText(w io.Writer, diags []Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(w, d.String()) //nolint:errcheck // best-effort output to writer
	}
}

// FormatJSON writes diagnostics as JSON.
func FormatJSON(w io.Writer, diags []Diagnostic) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(diags)
}

// DefaultAnalyzers returns the built-in set of lint checks.
func DefaultAnalyzers() []*Analyzer {
	return []*Analyzer{
		AnalyzerSyntax,
		AnalyzerBreed,
		AnalyzerIdentifier,
		AnalyzerArguments,
		AnalyzerExtension,
		AnalyzerContext,
	}
}

// Select returns the default analyzers named in checks, or all of them
// when checks is empty, minus those named in exclude. Unknown names are an
// error.
func Select(checks, exclude []string) ([]*Analyzer, error) {
	byName := make(map[string]*Analyzer)
	for _, a := range DefaultAnalyzers() {
		byName[a.Name] = a
	}
	for _, name := range append(append([]string(nil), checks...), exclude...) {
		if _, ok := byName[name]; !ok {
			return nil, fmt.Errorf("unknown analyzer %q (available: %s)", name, strings.Join(AnalyzerNames(), ", "))
		}
	}
	skip := make(map[string]bool)
	for _, name := range exclude {
		skip[name] = true
	}
	want := make(map[string]bool)
	for _, name := range checks {
		want[name] = true
	}
	var out []*Analyzer
	for _, a := range DefaultAnalyzers() {
		if skip[a.Name] || (len(want) > 0 && !want[a.Name]) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}
