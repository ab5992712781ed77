// Copyright © 2024 The ELPS authors

package analysis

import (
	"sort"

	"github.com/luthersystems/nlint/agentctx"
	"github.com/luthersystems/nlint/breeds"
	"github.com/luthersystems/nlint/prims"
	"github.com/luthersystems/nlint/syntax"
)

// Breed is a breed with the variables it owns.
type Breed struct {
	breeds.Breed
	Variables []string
	// Span covers the declaration. It is empty for built-in breeds.
	Span  syntax.Span
	Scope string
}

// Local is a variable introduced with let.
type Local struct {
	Name string
	Type prims.Type
	// Span covers the name in the let statement.
	Span syntax.Span
	// Visible is the offset from which the local may be used: the end of
	// the statement that declares it.
	Visible int
}

// Procedure is a named or anonymous procedure. Blocks and Anonymous index
// into the owning LintContext's arenas.
type Procedure struct {
	Name      string
	Arguments []string
	Locals    []Local
	Anonymous []int
	Blocks    []int
	Span      syntax.Span
	NameSpan  syntax.Span
	Reporter  bool
	// IsAnonymous is set for arena entries created from [ x -> ... ].
	IsAnonymous bool
	Context     agentctx.Context
	Scope       string
}

// CodeBlock is a bracketed block passed to a primitive.
type CodeBlock struct {
	Span    syntax.Span
	Context agentctx.Context
	Blocks  []int
	Locals  []Local
	// Arguments are the procedure and anonymous procedure inputs the block
	// can read.
	Arguments []string
	Anonymous []int
	// Primitive is the word whose argument produced the block.
	Primitive string
	// Breed is the plural name of the breed involved, if any.
	Breed string
	// Introduces is set when the block runs as other agents and so starts
	// from a context of its own instead of its parent's.
	Introduces bool
	Reporter   bool
}

// ContextError records a statement that cannot run where the code before
// it runs.
type ContextError struct {
	Span        syntax.Span
	Prior       agentctx.Context
	Conflicting agentctx.Context
	Primitive   string
	Procedure   string
}

// LintContext is the symbol model produced by the second pass.
type LintContext struct {
	state
	Scope string

	Extensions    map[string]int
	Globals       map[string]int
	WidgetGlobals map[string]int
	// Breeds is keyed by plural name and always holds the built-in breeds.
	Breeds     map[string]*Breed
	Procedures map[string]*Procedure

	Blocks        []CodeBlock
	Anonymous     []Procedure
	ContextErrors []ContextError

	reg *prims.Registry
	pre *PreprocessContext
}

// NewLintContext returns an empty, dirty context resolving primitives
// through reg.
func NewLintContext(reg *prims.Registry, scope string) *LintContext {
	lc := &LintContext{Scope: scope, reg: reg, WidgetGlobals: make(map[string]int)}
	lc.reset()
	return lc
}

func (lc *LintContext) reset() {
	lc.Extensions = make(map[string]int)
	lc.Globals = make(map[string]int)
	lc.Breeds = make(map[string]*Breed)
	for _, b := range breeds.Defaults() {
		lc.Breeds[b.Plural] = &Breed{Breed: b}
	}
	lc.Procedures = make(map[string]*Procedure)
	lc.Blocks = nil
	lc.Anonymous = nil
	lc.ContextErrors = nil
}

// Registry is the primitive registry the context resolves against.
func (lc *LintContext) Registry() *prims.Registry {
	return lc.reg
}

// Preprocess is the table the context was last built with.
func (lc *LintContext) Preprocess() *PreprocessContext {
	return lc.pre
}

// SetWidgetGlobals replaces the names provided by interface widgets.
func (lc *LintContext) SetWidgetGlobals(names []string) {
	lc.WidgetGlobals = make(map[string]int, len(names))
	for _, n := range names {
		lc.WidgetGlobals[n]++
	}
	lc.MarkDirty()
}

// ParseState rebuilds the context from tree. It does nothing while the
// context is clean.
func (lc *LintContext) ParseState(tree *syntax.Tree, pre *PreprocessContext) *LintContext {
	if !lc.IsDirty() {
		return lc
	}
	if pre == nil {
		pre = NewPreprocessContext(lc.Scope)
	}
	lc.pre = pre
	lc.reset()
	newBuilder(lc, tree).build()
	lc.MarkClean()
	return lc
}

func (lc *LintContext) BreedByPlural(name string) (breeds.Breed, bool) {
	if b, ok := lc.Breeds[name]; ok {
		return b.Breed, true
	}
	return breeds.Breed{}, false
}

func (lc *LintContext) BreedBySingular(name string) (breeds.Breed, bool) {
	for _, plural := range sortedKeys(lc.Breeds) {
		if b := lc.Breeds[plural]; b.Singular == name {
			return b.Breed, true
		}
	}
	return breeds.Breed{}, false
}

// PluralNames returns the plural names of every breed, sorted.
func (lc *LintContext) PluralNames() []string {
	return sortedKeys(lc.Breeds)
}

// SingularNames returns the singular names of every breed, sorted.
func (lc *LintContext) SingularNames() []string {
	names := make([]string, 0, len(lc.Breeds))
	for _, b := range lc.Breeds {
		names = append(names, b.Singular)
	}
	sort.Strings(names)
	return names
}

// BreedFromVariable returns the breed owning the variable name. Breeds are
// searched by plural name so the answer is stable.
func (lc *LintContext) BreedFromVariable(name string) (*Breed, bool) {
	for _, plural := range sortedKeys(lc.Breeds) {
		b := lc.Breeds[plural]
		for _, v := range b.Variables {
			if v == name {
				return b, true
			}
		}
	}
	return nil, false
}

// ProcedureAt returns the named procedure whose definition contains offset.
func (lc *LintContext) ProcedureAt(offset int) *Procedure {
	for _, name := range sortedKeys(lc.Procedures) {
		p := lc.Procedures[name]
		if within(p.Span, offset) {
			return p
		}
	}
	return nil
}

// BlockAt returns the index of the innermost code block containing offset,
// or -1.
func (lc *LintContext) BlockAt(offset int) int {
	best := -1
	for i, b := range lc.Blocks {
		if within(b.Span, offset) && (best < 0 || b.Span.Len() < lc.Blocks[best].Span.Len()) {
			best = i
		}
	}
	return best
}

// VisibleAt returns the procedure inputs and locals that may be used at
// offset, in declaration order. Locals count only after the statement
// declaring them.
func (lc *LintContext) VisibleAt(offset int) []string {
	p := lc.ProcedureAt(offset)
	if p == nil {
		return nil
	}
	var names []string
	names = append(names, p.Arguments...)
	names = appendLocals(names, p.Locals, offset)
	return lc.visibleIn(names, p.Blocks, p.Anonymous, offset)
}

func (lc *LintContext) visibleIn(names []string, blocks, anons []int, offset int) []string {
	for _, i := range blocks {
		b := lc.Blocks[i]
		if !within(b.Span, offset) {
			continue
		}
		names = appendLocals(names, b.Locals, offset)
		names = lc.visibleIn(names, b.Blocks, b.Anonymous, offset)
	}
	for _, i := range anons {
		a := lc.Anonymous[i]
		if !within(a.Span, offset) {
			continue
		}
		names = append(names, a.Arguments...)
		names = appendLocals(names, a.Locals, offset)
		names = lc.visibleIn(names, a.Blocks, a.Anonymous, offset)
	}
	return names
}

func appendLocals(names []string, locals []Local, offset int) []string {
	for _, l := range locals {
		if l.Visible <= offset {
			names = append(names, l.Name)
		}
	}
	return names
}

// IsVisible reports whether name is a procedure input or local usable at
// offset.
func (lc *LintContext) IsVisible(name string, offset int) bool {
	for _, n := range lc.VisibleAt(offset) {
		if n == name {
			return true
		}
	}
	return false
}

// IsGlobal reports whether name is a declared or widget global, or a
// global declared by a linked document.
func (lc *LintContext) IsGlobal(name string) bool {
	if _, ok := lc.Globals[name]; ok {
		return true
	}
	if _, ok := lc.WidgetGlobals[name]; ok {
		return true
	}
	if lc.pre == nil {
		return false
	}
	_, ok := lc.pre.Globals[name]
	return ok
}

// HasExtension reports whether the extensions declaration names ext.
func (lc *LintContext) HasExtension(ext string) bool {
	_, ok := lc.Extensions[ext]
	return ok
}

// within reports whether offset lies inside s, end exclusive.
func within(s syntax.Span, offset int) bool {
	return offset >= s.Start && offset < s.End
}
