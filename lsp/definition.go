// Copyright © 2024 The ELPS authors

package lsp

import (
	"github.com/luthersystems/nlint/analysis"
	"github.com/luthersystems/nlint/syntax"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentDefinition handles the textDocument/definition request.
func (s *Server) textDocumentDefinition(_ *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	snap := doc.Snapshot()
	if snap.Tree == nil {
		return nil, nil
	}
	offset := offsetAt(snap.Tree, params.Position)
	n := nameAt(snap.Tree, offset)
	if n == nil {
		return nil, nil
	}
	scope, span, ok := s.definitionOf(snap.Lint, n.Name, offset)
	if !ok {
		return nil, nil
	}

	tree := snap.Tree
	uri := params.TextDocument.URI
	if scope != snap.Lint.Scope {
		tree = s.sessionFor(scope).Snapshot().Tree
		uri = pathToURI(scope)
	}
	if tree == nil {
		return nil, nil
	}
	return protocol.Location{URI: uri, Range: spanToRange(tree, span)}, nil
}

// definitionOf finds where name, used at offset, is declared. Procedures
// and breeds of linked files are found through their sessions.
func (s *Server) definitionOf(lc *analysis.LintContext, name string, offset int) (scope string, span syntax.Span, ok bool) {
	if l, found := localAt(lc, name, offset); found {
		return lc.Scope, l.Span, true
	}
	if p, found := lc.Procedures[name]; found {
		return lc.Scope, p.NameSpan, true
	}
	if pre := lc.Preprocess(); pre != nil {
		if e, found := pre.Procedures[name]; found && e.Scope != lc.Scope {
			if p, found := s.sessionFor(e.Scope).Snapshot().Lint.Procedures[name]; found {
				return e.Scope, p.NameSpan, true
			}
		}
	}
	plural := name
	if b, found := lc.BreedBySingular(name); found {
		plural = b.Plural
	} else if m := lc.ResolveCall(name); m.Class == syntax.ClassBreed {
		plural = m.Breed.Plural
	}
	if b, found := lc.Breeds[plural]; found && b.Span.Len() > 0 {
		if b.Scope == "" || b.Scope == lc.Scope {
			return lc.Scope, b.Span, true
		}
		if lb, found := s.sessionFor(b.Scope).Snapshot().Lint.Breeds[plural]; found {
			return b.Scope, lb.Span, true
		}
	}
	return "", syntax.Span{}, false
}

// localAt returns the let declaration of name visible at offset.
func localAt(lc *analysis.LintContext, name string, offset int) (analysis.Local, bool) {
	p := lc.ProcedureAt(offset)
	if p == nil {
		return analysis.Local{}, false
	}
	var found analysis.Local
	ok := false
	visit := func(locals []analysis.Local) {
		for _, l := range locals {
			if l.Name == name && l.Visible <= offset {
				found, ok = l, true
			}
		}
	}
	visit(p.Locals)
	var walk func(blocks, anons []int)
	walk = func(blocks, anons []int) {
		for _, i := range blocks {
			b := lc.Blocks[i]
			if b.Span.Contains(offset) {
				visit(b.Locals)
				walk(b.Blocks, b.Anonymous)
			}
		}
		for _, i := range anons {
			a := lc.Anonymous[i]
			if a.Span.Contains(offset) {
				visit(a.Locals)
				walk(a.Blocks, a.Anonymous)
			}
		}
	}
	walk(p.Blocks, p.Anonymous)
	return found, ok
}
