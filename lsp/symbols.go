// Copyright © 2024 The ELPS authors

package lsp

import (
	"sort"
	"strings"

	"github.com/luthersystems/nlint/syntax"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentDocumentSymbol handles the textDocument/documentSymbol request.
// It lists the breeds, globals and procedures the document declares.
func (s *Server) textDocumentDocumentSymbol(_ *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	snap := doc.Snapshot()
	if snap.Tree == nil {
		return nil, nil
	}
	tree := snap.Tree
	var symbols []protocol.DocumentSymbol

	for _, decl := range tree.Root.Children {
		switch decl.Kind {
		case syntax.BreedDecl:
			items := decl.Named(syntax.RoleItem)
			if len(items) == 0 {
				continue
			}
			symbols = append(symbols, protocol.DocumentSymbol{
				Name:           items[0].Name,
				Detail:         strPtr(decl.Name),
				Kind:           protocol.SymbolKindClass,
				Range:          spanToRange(tree, decl.Span),
				SelectionRange: spanToRange(tree, items[0].Span),
			})
		case syntax.Globals:
			for _, item := range decl.Named(syntax.RoleItem) {
				symbols = append(symbols, protocol.DocumentSymbol{
					Name:           item.Name,
					Detail:         strPtr("global"),
					Kind:           protocol.SymbolKindVariable,
					Range:          spanToRange(tree, item.Span),
					SelectionRange: spanToRange(tree, item.Span),
				})
			}
		case syntax.Procedure:
			if decl.Name == "" {
				continue
			}
			symbols = append(symbols, protocol.DocumentSymbol{
				Name:           decl.Name,
				Detail:         procedureDetail(decl),
				Kind:           protocol.SymbolKindFunction,
				Range:          spanToRange(tree, decl.Span),
				SelectionRange: spanToRange(tree, decl.NameSpan),
			})
		}
	}
	sort.SliceStable(symbols, func(i, j int) bool {
		a, b := symbols[i].Range.Start, symbols[j].Range.Start
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Character < b.Character
	})
	return symbols, nil
}

// procedureDetail renders the header of a procedure, e.g. "to-report f [x]".
func procedureDetail(proc *syntax.Node) *string {
	keyword := "to"
	if proc.Reporter {
		keyword = "to-report"
	}
	var params []string
	for _, p := range proc.Named(syntax.RoleParam) {
		params = append(params, p.Name)
	}
	d := keyword
	if len(params) > 0 {
		d += " [" + strings.Join(params, " ") + "]"
	}
	return &d
}
