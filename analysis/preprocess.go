// Copyright © 2024 The ELPS authors

// Package analysis builds the symbol model of a NetLogo document in two
// passes.
//
// The preprocess pass reads only top-level declarations and procedure
// headers. Its table feeds the parser's Classifier, which is how words
// created by the user (breeds, procedures) change the way later tokens are
// read. The lint context builder then walks the full tree to collect
// procedures, code blocks, locals and execution contexts.
package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/luthersystems/nlint/breeds"
	"github.com/luthersystems/nlint/syntax"
)

// state is the clean/dirty machine shared by both contexts. The zero value
// is dirty so a new context is built on first use.
type state struct {
	clean bool
}

// MarkDirty records that the source changed since the last build.
func (s *state) MarkDirty() { s.clean = false }

// MarkClean records that the context reflects the current source.
func (s *state) MarkClean() { s.clean = true }

// IsDirty reports whether the context must be rebuilt.
func (s *state) IsDirty() bool { return !s.clean }

// BreedEntry is a breed known to the preprocess pass.
type BreedEntry struct {
	breeds.Breed
	// Count is the number of declarations of the plural name. Built-in
	// breeds have a count of zero.
	Count int
	Scope string
}

// VariableEntry is a breed-owned variable.
type VariableEntry struct {
	// Owner is the plural name of the owning breed.
	Owner string
	Count int
	Scope string
}

// ProcedureEntry is a procedure header.
type ProcedureEntry struct {
	Arity    int
	Reporter bool
	Scope    string
}

// PreprocessContext is the table produced by the first pass.
type PreprocessContext struct {
	state
	// Scope identifies the document that produced the table.
	Scope string

	// Breeds is keyed by plural name.
	Breeds    map[string]BreedEntry
	Singulars map[string]int
	// Variables maps a breed-owned variable to its owner.
	Variables map[string]VariableEntry
	// Owned lists the variables of each plural name in declaration order.
	Owned      map[string][]string
	Procedures map[string]ProcedureEntry
	// Globals are recorded so that declared names are never guessed to
	// be breed words while classifying.
	Globals map[string]int
}

// NewPreprocessContext returns an empty, dirty table for scope.
func NewPreprocessContext(scope string) *PreprocessContext {
	p := &PreprocessContext{Scope: scope}
	p.reset()
	return p
}

func (p *PreprocessContext) reset() {
	p.resetBreeds()
	p.Variables = make(map[string]VariableEntry)
	p.Owned = make(map[string][]string)
	p.Procedures = make(map[string]ProcedureEntry)
	p.Globals = make(map[string]int)
}

func (p *PreprocessContext) resetBreeds() {
	p.Breeds = make(map[string]BreedEntry)
	p.Singulars = make(map[string]int)
	for _, b := range breeds.Defaults() {
		p.Breeds[b.Plural] = BreedEntry{Breed: b}
		p.Singulars[b.Singular] = 0
	}
}

// ParseState rebuilds the table from tree. It does nothing while the table
// is clean.
func (p *PreprocessContext) ParseState(tree *syntax.Tree) *PreprocessContext {
	if !p.IsDirty() {
		return p
	}
	p.ScanBreeds(tree)
	p.ScanBreedVariables(tree)
	p.ScanProcedures(tree)
	p.ScanGlobals(tree)
	p.MarkClean()
	return p
}

// malformed reports whether a declaration is missing pieces and must be
// skipped.
func malformed(decl *syntax.Node) bool {
	for _, c := range decl.Children {
		if c.Kind == syntax.Error {
			return true
		}
	}
	return false
}

// breedKind maps a breed declaration keyword to the kind it declares.
func breedKind(keyword string) breeds.Kind {
	switch keyword {
	case "directed-link-breed":
		return breeds.DirectedLink
	case "undirected-link-breed":
		return breeds.UndirectedLink
	}
	return breeds.Turtle
}

// ScanBreeds reads breed declarations. Declarations without exactly a
// plural and a singular name are skipped.
func (p *PreprocessContext) ScanBreeds(tree *syntax.Tree) {
	p.resetBreeds()
	for _, decl := range tree.Declarations(syntax.BreedDecl) {
		items := decl.Named(syntax.RoleItem)
		if malformed(decl) || len(items) != 2 {
			continue
		}
		plural, singular := items[0].Name, items[1].Name
		e := p.Breeds[plural]
		e.Breed = breeds.Breed{Singular: singular, Plural: plural, Kind: breedKind(decl.Name)}
		e.Count++
		e.Scope = p.Scope
		p.Breeds[plural] = e
		p.Singulars[singular]++
	}
}

// ScanBreedVariables reads <breeds>-own declarations. Variables attach to the
// plural name even when the breed itself is declared elsewhere.
func (p *PreprocessContext) ScanBreedVariables(tree *syntax.Tree) {
	p.Variables = make(map[string]VariableEntry)
	p.Owned = make(map[string][]string)
	for _, decl := range tree.Declarations(syntax.BreedsOwn) {
		if malformed(decl) {
			continue
		}
		owner := strings.TrimSuffix(decl.Name, "-own")
		for _, item := range decl.Named(syntax.RoleItem) {
			e := p.Variables[item.Name]
			e.Owner = owner
			e.Count++
			e.Scope = p.Scope
			p.Variables[item.Name] = e
			p.Owned[owner] = append(p.Owned[owner], item.Name)
		}
	}
}

// ScanProcedures reads procedure headers.
func (p *PreprocessContext) ScanProcedures(tree *syntax.Tree) {
	p.Procedures = make(map[string]ProcedureEntry)
	for _, proc := range tree.Procedures() {
		if proc.Name == "" {
			continue
		}
		p.Procedures[proc.Name] = ProcedureEntry{
			Arity:    len(proc.Named(syntax.RoleParam)),
			Reporter: proc.Reporter,
			Scope:    p.Scope,
		}
	}
}

// ScanGlobals reads globals declarations.
func (p *PreprocessContext) ScanGlobals(tree *syntax.Tree) {
	p.Globals = make(map[string]int)
	for _, decl := range tree.Declarations(syntax.Globals) {
		if malformed(decl) {
			continue
		}
		for _, item := range decl.Named(syntax.RoleItem) {
			p.Globals[item.Name]++
		}
	}
}

func (p *PreprocessContext) BreedByPlural(name string) (breeds.Breed, bool) {
	e, ok := p.Breeds[name]
	return e.Breed, ok
}

func (p *PreprocessContext) BreedBySingular(name string) (breeds.Breed, bool) {
	for _, plural := range sortedKeys(p.Breeds) {
		if b := p.Breeds[plural].Breed; b.Singular == name {
			return b, true
		}
	}
	return breeds.Breed{}, false
}

// Signature renders the table deterministically. Two tables with the same
// facts have the same signature.
func (p *PreprocessContext) Signature() string {
	var b strings.Builder
	for _, k := range sortedKeys(p.Breeds) {
		e := p.Breeds[k]
		fmt.Fprintf(&b, "breed %s %s %s %d\n", k, e.Singular, e.Kind, e.Count)
	}
	for _, k := range sortedKeys(p.Variables) {
		fmt.Fprintf(&b, "var %s %s %d\n", k, p.Variables[k].Owner, p.Variables[k].Count)
	}
	for _, k := range sortedKeys(p.Procedures) {
		e := p.Procedures[k]
		fmt.Fprintf(&b, "proc %s %d %t\n", k, e.Arity, e.Reporter)
	}
	for _, k := range sortedKeys(p.Globals) {
		fmt.Fprintf(&b, "global %s %d\n", k, p.Globals[k])
	}
	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
