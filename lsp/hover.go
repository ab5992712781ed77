// Copyright © 2024 The ELPS authors

package lsp

import (
	"fmt"
	"strings"

	"github.com/luthersystems/nlint/analysis"
	"github.com/luthersystems/nlint/prims"
	"github.com/luthersystems/nlint/syntax"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentHover handles the textDocument/hover request.
func (s *Server) textDocumentHover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
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
	content := buildHoverContent(s.registry, snap.Lint, n, offset)
	if content == "" {
		return nil, nil
	}
	r := spanToRange(snap.Tree, n.NameSpan)
	if n.Kind == syntax.Identifier {
		r = spanToRange(snap.Tree, n.Span)
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: content,
		},
		Range: &r,
	}, nil
}

// buildHoverContent builds Markdown hover text for the word n.
func buildHoverContent(reg *prims.Registry, lc *analysis.LintContext, n *syntax.Node, offset int) string {
	var sb strings.Builder
	name := n.Name

	switch {
	case n.Kind == syntax.Procedure:
		if p, ok := lc.Procedures[name]; ok {
			writeProcedure(&sb, p)
		}
	case n.Kind.IsCall():
		callee := lc.ResolveCall(name)
		switch callee.Class {
		case syntax.ClassPrimitive:
			writePrimitive(&sb, "primitive", callee.Primitive)
		case syntax.ClassProcedure:
			if callee.Procedure != nil {
				writeProcedure(&sb, callee.Procedure)
			} else {
				writePrimitive(&sb, "procedure", callee.Primitive)
			}
		case syntax.ClassBreed:
			writePrimitive(&sb, "breed primitive", callee.Primitive)
			fmt.Fprintf(&sb, "\n\nGenerated from `%s` for breed `%s`.", callee.Breed.Prototype, callee.Breed.Plural)
		}
	case n.Kind == syntax.Identifier:
		writeIdentifier(&sb, reg, lc, name, offset)
	}
	return sb.String()
}

func writePrimitive(sb *strings.Builder, kind string, p *prims.Primitive) {
	if p == nil {
		return
	}
	fmt.Fprintf(sb, "**%s** `%s`\n\n```netlogo\n%s\n```", kind, p.FullName(), prims.Describe(p))
	if p.Doc != "" {
		fmt.Fprintf(sb, "\n\n%s", p.Doc)
	}
}

func writeProcedure(sb *strings.Builder, p *analysis.Procedure) {
	keyword := "to"
	if p.Reporter {
		keyword = "to-report"
	}
	header := keyword + " " + p.Name
	if len(p.Arguments) > 0 {
		header += " [" + strings.Join(p.Arguments, " ") + "]"
	}
	fmt.Fprintf(sb, "**procedure** `%s`\n\n```netlogo\n%s\n```\n\nRuns in %s context.", p.Name, header, p.Context.Describe())
	if p.Scope != "" {
		fmt.Fprintf(sb, "\n\n*Defined in %s*", p.Scope)
	}
}

func writeIdentifier(sb *strings.Builder, reg *prims.Registry, lc *analysis.LintContext, name string, offset int) {
	switch {
	case lc.IsVisible(name, offset):
		fmt.Fprintf(sb, "**local** `%s`", name)
	case lc.IsGlobal(name):
		fmt.Fprintf(sb, "**global** `%s`", name)
	case reg.IsConstant(name):
		fmt.Fprintf(sb, "**constant** `%s`", name)
	default:
		if v, ok := reg.GetVariable(name); ok {
			fmt.Fprintf(sb, "**%s variable** `%s`\n\nRuns in %s context.", strings.TrimSuffix(v.Owner, "s"), name, v.Context.Describe())
			return
		}
		if b, ok := lc.BreedFromVariable(name); ok {
			fmt.Fprintf(sb, "**%s variable** `%s`", b.Singular, name)
			return
		}
		if b, ok := lc.Breeds[name]; ok {
			fmt.Fprintf(sb, "**breed** `%s`\n\n%s breed, one of which is a %s.", name, b.Kind, b.Singular)
			return
		}
		if b, ok := lc.BreedBySingular(name); ok {
			fmt.Fprintf(sb, "**breed** `%s`\n\nSingular of %s.", name, b.Plural)
		}
	}
}
