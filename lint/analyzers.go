// Copyright © 2024 The ELPS authors

package lint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/luthersystems/nlint/analysis"
	"github.com/luthersystems/nlint/breeds"
	"github.com/luthersystems/nlint/prims"
	"github.com/luthersystems/nlint/syntax"
)

// AnalyzerSyntax reports the problems the parser recorded as error nodes.
var AnalyzerSyntax = &Analyzer{
	Name:     "syntax",
	Doc:      "Report malformed source.\n\nUnbalanced brackets, missing `end`, values where a command should start and similar problems are recorded by the parser and surfaced here. The rest of the file is still analyzed.",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		syntax.Walk(pass.Tree.Root, func(node, _ *syntax.Node) bool {
			if node.Kind == syntax.Error {
				pass.Reportf(node.Span, "%s", node.Message)
			}
			return true
		})
		return nil
	},
}

// AnalyzerBreed reports words shaped like breed primitives, such as
// create-wolves or wolves-own, whose breed is not declared.
var AnalyzerBreed = &Analyzer{
	Name:     "breed",
	Doc:      "Check that breed-derived words refer to declared breeds.\n\nWords such as `create-<breeds>`, `<breeds>-here` or `is-<breed>?` only exist once the breed is declared. Each diagnostic carries a fix that adds the declaration.",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		lc := pass.Lint
		if lc == nil {
			return nil
		}
		for _, decl := range pass.Tree.Declarations(syntax.BreedsOwn) {
			plural := strings.TrimSuffix(decl.Name, "-own")
			if _, ok := lc.Breeds[plural]; ok {
				continue
			}
			b := breeds.Breed{Singular: breeds.SingularName(plural), Plural: plural, Kind: breeds.Turtle}
			pass.Report(Diagnostic{
				Span:    decl.NameSpan,
				Message: fmt.Sprintf("%s declares variables for %s, which is not a breed", decl.Name, plural),
				Fixes:   []Fix{addBreedFix(pass.Tree, b)},
			})
		}
		check := func(n *syntax.Node) {
			if !undeclaredWord(lc, n) {
				return
			}
			m := breeds.MatchWord(n.Name, lc, true)
			if !m.Valid || !m.Guessed {
				return
			}
			pass.ReportWithNotes(Diagnostic{
				Span:    n.NameSpan,
				Message: fmt.Sprintf("%s refers to breed %s, which is not declared", n.Name, m.Plural),
				Fixes:   []Fix{addBreedFix(pass.Tree, m.Breed())},
			}, fmt.Sprintf("%s is the %s primitive of a breed", n.Name, m.Prototype))
		}
		Walk(pass.Tree, func(node, parent *syntax.Node, _ int) {
			switch {
			case node.Kind.IsCall():
				check(node)
			case node.Kind == syntax.Identifier && parent != nil:
				if node.Role == syntax.RoleParam || node.Role == syntax.RoleItem || isDeclared(node, parent) {
					return
				}
				check(node)
			}
		})
		return nil
	},
}

// undeclaredWord reports whether nothing in lc gives n meaning.
func undeclaredWord(lc *analysis.LintContext, n *syntax.Node) bool {
	if n.Name == "" || strings.Contains(n.Name, ":") {
		return false
	}
	if lc.ResolveCall(n.Name).Known() {
		return false
	}
	if _, ok := lc.VariableContext(n.Name); ok {
		return false
	}
	if lc.IsGlobal(n.Name) || lc.IsVisible(n.Name, n.Span.Start) {
		return false
	}
	if reg := lc.Registry(); reg != nil && reg.IsConstant(n.Name) {
		return false
	}
	return true
}

// breedShaped reports whether the breed analyzer owns the diagnostic for n.
func breedShaped(lc *analysis.LintContext, n *syntax.Node) bool {
	m := breeds.MatchWord(n.Name, lc, true)
	return m.Valid && m.Guessed
}

// AnalyzerIdentifier reports words that name nothing: not a primitive,
// procedure, breed word, variable, constant or input.
var AnalyzerIdentifier = &Analyzer{
	Name:     "identifier",
	Doc:      "Check that every word names something.\n\nA word must be a primitive, a procedure, a breed-derived word, a global, a breed or agent variable, a procedure or anonymous procedure input, a constant, or a local introduced by `let` earlier in the same scope. Locals cannot be used before the statement that declares them.",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		lc := pass.Lint
		if lc == nil {
			return nil
		}
		WalkCalls(pass.Tree, func(call *syntax.Node) {
			if !undeclaredWord(lc, call) || breedShaped(lc, call) {
				return
			}
			pass.Report(Diagnostic{
				Span:    call.NameSpan,
				Message: fmt.Sprintf("nothing named %s has been defined", call.Name),
				Fixes:   []Fix{explainFix(unknownExplanation(call.Name))},
			})
		})
		WalkIdentifiers(pass.Tree, func(id, parent *syntax.Node) {
			switch id.Class {
			case syntax.ClassPrimitive, syntax.ClassConstant, syntax.ClassKeyword, syntax.ClassProcedure, syntax.ClassBreed:
				return
			}
			if !undeclaredWord(lc, id) || breedShaped(lc, id) {
				return
			}
			if _, ok := lc.Breeds[id.Name]; ok {
				return
			}
			d := Diagnostic{
				Span:    id.Span,
				Message: fmt.Sprintf("nothing named %s has been defined", id.Name),
				Fixes: []Fix{
					addToListFix(pass.Tree, syntax.Globals, "globals", id.Name, FixAddGlobal),
					explainFix(unknownExplanation(id.Name)),
				},
			}
			if later, ok := declaredLater(lc, id.Name, id.Span.Start); ok {
				line := pass.Tree.Position(later.Span.Start).Line
				pass.ReportWithNotes(d, fmt.Sprintf("%s is declared by let on line %d and cannot be used before it", id.Name, line))
				return
			}
			pass.Report(d)
		})
		return nil
	},
}

func unknownExplanation(name string) string {
	return fmt.Sprintf("%s is not a primitive, a procedure, a breed-derived word or a variable visible here. "+
		"Declare it with globals or a breed's -own list, introduce it with let before this point, "+
		"or check the spelling.", name)
}

// declaredLater finds a local named name that becomes visible only after
// offset in the procedure or blocks containing offset.
func declaredLater(lc *analysis.LintContext, name string, offset int) (analysis.Local, bool) {
	var locals []analysis.Local
	if p := lc.ProcedureAt(offset); p != nil {
		locals = append(locals, p.Locals...)
	}
	for _, b := range lc.Blocks {
		if offset >= b.Span.Start && offset < b.Span.End {
			locals = append(locals, b.Locals...)
		}
	}
	for _, l := range locals {
		if l.Name == name && l.Visible > offset {
			return l, true
		}
	}
	return analysis.Local{}, false
}

// AnalyzerArguments checks the number of inputs given to primitives,
// breed words and procedures.
var AnalyzerArguments = &Analyzer{
	Name:     "arguments",
	Doc:      "Check the number of inputs of every call.\n\nPrimitives and breed words are checked against their declared inputs and procedures against their definitions, including procedures known only from linked files. Parentheses allow variadic primitives such as `list` to take more or fewer inputs.",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		WalkCalls(pass.Tree, func(call *syntax.Node) {
			p := resolvePrimitive(pass, call.Name)
			if p == nil {
				return
			}
			if p.IsInfix() && call.Child(syntax.RoleLeft) == nil {
				pass.Reportf(call.NameSpan, "%s is missing its left input", call.Name)
			}
			found := ArgCount(call)
			min, max := p.ArgRange(call.Paren)
			var expected string
			switch {
			case found < min && max < 0:
				expected = fmt.Sprintf("at least %d", min)
			case found < min:
				expected = fmt.Sprint(min)
			case max >= 0 && found > max:
				expected = fmt.Sprint(max)
			default:
				return
			}
			d := Diagnostic{
				Span:    call.Span,
				Message: fmt.Sprintf("wrong number of inputs to %s: expected %s, found %d", call.Name, expected, found),
			}
			if extra := call.Named(syntax.RoleExtra); len(extra) > 0 {
				fix := Fix{Kind: FixRemoveToken, Title: "Remove extra inputs"}
				for _, e := range extra {
					fix.Edits = append(fix.Edits, removeFix(pass.Tree, e).Edits...)
				}
				d.Fixes = append(d.Fixes, fix)
			}
			if p.IsVariadic() && !call.Paren {
				pass.ReportWithNotes(d, fmt.Sprintf("write (%s ...) to pass a different number of inputs", call.Name))
				return
			}
			pass.Report(d)
		})
		return nil
	},
}

func resolvePrimitive(pass *Pass, word string) *prims.Primitive {
	if pass.Lint != nil {
		return pass.Lint.ResolveCall(word).Primitive
	}
	p, _ := pass.Registry.GetNamedPrimitive(word)
	return p
}

// AnalyzerExtension checks that extension primitives belong to declared
// extensions.
var AnalyzerExtension = &Analyzer{
	Name:     "extension",
	Doc:      "Check that extension primitives are declared.\n\nA word such as `table:make` needs `table` in the `extensions` declaration. Each diagnostic carries a fix that adds it. Primitives missing from a known extension are reported too.",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		declared := make(map[string]bool)
		for _, decl := range pass.Tree.Declarations(syntax.Extensions) {
			for _, item := range decl.Named(syntax.RoleItem) {
				declared[item.Name] = true
				if !pass.Registry.HasExtension(item.Name) {
					pass.Report(Diagnostic{
						Span:     item.Span,
						Message:  fmt.Sprintf("no primitives are known for extension %s", item.Name),
						Severity: SeverityInfo,
					})
				}
			}
		}
		if pass.Lint != nil {
			for ext := range pass.Lint.Extensions {
				declared[ext] = true
			}
		}
		check := func(n *syntax.Node) {
			ext, name := prims.SplitName(n.Name)
			if ext == "" {
				return
			}
			if !declared[ext] {
				pass.Report(Diagnostic{
					Span:    n.NameSpan,
					Message: fmt.Sprintf("%s needs extension %s, which is not declared", n.Name, ext),
					Fixes:   []Fix{addToListFix(pass.Tree, syntax.Extensions, "extensions", ext, FixAddExtension)},
				})
				return
			}
			if !pass.Registry.HasExtension(ext) {
				return
			}
			if _, ok := pass.Registry.GetPrimitive(ext, name); !ok {
				pass.Reportf(n.NameSpan, "extension %s has no primitive named %s", ext, name)
			}
		}
		Walk(pass.Tree, func(node, _ *syntax.Node, _ int) {
			if node.Kind.IsCall() || node.Kind == syntax.Identifier {
				check(node)
			}
		})
		return nil
	},
}

// AnalyzerContext reports statements that cannot run where the code before
// them runs, as recorded by the lint context.
var AnalyzerContext = &Analyzer{
	Name:     "context",
	Doc:      "Report agent context conflicts.\n\nEach statement may only run as certain agents: `ca` is observer-only, `fd` turtle-only. A statement whose context shares no agent with the code before it in the same block is reported. Blocks of `ask` and breed creation primitives start from the agents they run as.",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		if pass.Lint == nil {
			return nil
		}
		for _, ce := range pass.Lint.ContextErrors {
			d := Diagnostic{
				Span: ce.Span,
				Message: fmt.Sprintf("%s cannot run in %s context; it runs in %s context",
					ce.Primitive, ce.Prior.Describe(), ce.Conflicting.Describe()),
				Fixes: []Fix{explainFix(fmt.Sprintf(
					"The statements before %s can only run as %s, but %s can only run as %s. "+
						"Move %s into a block that runs as the right agents, for example with ask.",
					ce.Primitive, ce.Prior.Describe(), ce.Primitive, ce.Conflicting.Describe(), ce.Primitive))},
			}
			if ce.Procedure != "" {
				pass.ReportWithNotes(d, "in procedure "+ce.Procedure)
				continue
			}
			pass.Report(d)
		}
		return nil
	},
}

// AnalyzerNames returns a sorted list of all default analyzer names.
func AnalyzerNames() []string {
	analyzers := DefaultAnalyzers()
	names := make([]string, len(analyzers))
	for i, a := range analyzers {
		names[i] = a.Name
	}
	sort.Strings(names)
	return names
}

// AnalyzerDoc returns a formatted documentation string for all analyzers.
func AnalyzerDoc() string {
	var b strings.Builder
	for _, a := range DefaultAnalyzers() {
		fmt.Fprintf(&b, "  %s\n", a.Name)
		lines := strings.Split(a.Doc, "\n")
		fmt.Fprintf(&b, "    %s\n\n", lines[0])
	}
	return b.String()
}
