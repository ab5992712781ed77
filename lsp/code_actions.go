// Copyright © 2024 The ELPS authors

package lsp

import (
	"fmt"
	"strings"

	"github.com/luthersystems/nlint/lint"
	"github.com/luthersystems/nlint/syntax"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentCodeAction handles the textDocument/codeAction request.
// It returns the fixes of the diagnostics in the requested range and a
// nolint suppression for each of them.
func (s *Server) textDocumentCodeAction(_ *glsp.Context, params *protocol.CodeActionParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}

	// If the client only wants specific kinds, check we support them.
	if len(params.Context.Only) > 0 {
		if !slicesContains(params.Context.Only, protocol.CodeActionKindQuickFix) {
			return nil, nil
		}
	}

	snap := doc.Snapshot()
	if snap.Tree == nil {
		return nil, nil
	}
	diags, err := s.linter.Run(snap.Tree, snap.Lint, snap.View)
	if err != nil {
		return nil, err
	}

	uri := params.TextDocument.URI
	var actions []protocol.CodeAction
	for _, d := range diags {
		pd := convertLintDiagnostic(snap.Tree, d)
		if !rangesOverlap(pd.Range, params.Range) {
			continue
		}
		for _, fix := range d.Fixes {
			if a, ok := fixAction(uri, snap.Tree, pd, fix); ok {
				actions = append(actions, a)
			}
		}
		actions = append(actions, suppressLintAction(uri, pd, d.Analyzer, snap.Source))
	}

	if len(actions) == 0 {
		return nil, nil
	}
	return actions, nil
}

// fixAction converts a lint fix into a quick fix. Explanations and fixes
// already applied produce nothing.
func fixAction(uri string, tree *syntax.Tree, diag protocol.Diagnostic, fix lint.Fix) (protocol.CodeAction, bool) {
	if len(fix.Edits) == 0 {
		return protocol.CodeAction{}, false
	}
	if fix.Guard != "" && strings.Contains(tree.Source, fix.Guard) {
		return protocol.CodeAction{}, false
	}
	edits := make([]protocol.TextEdit, 0, len(fix.Edits))
	for _, e := range fix.Edits {
		edits = append(edits, protocol.TextEdit{Range: spanToRange(tree, e.Span), NewText: e.NewText})
	}
	kind := protocol.CodeActionKindQuickFix
	preferred := fix.Kind != lint.FixRemoveToken
	return protocol.CodeAction{
		Title:       fix.Title,
		Kind:        &kind,
		Diagnostics: []protocol.Diagnostic{diag},
		IsPreferred: &preferred,
		Edit: &protocol.WorkspaceEdit{
			Changes: map[string][]protocol.TextEdit{uri: edits},
		},
	}, true
}

// suppressLintAction creates a code action that adds a ; nolint:analyzer
// comment at the end of the diagnostic's line.
func suppressLintAction(uri string, diag protocol.Diagnostic, analyzer, content string) protocol.CodeAction {
	line := int(diag.Range.Start.Line)
	lines := strings.Split(content, "\n")
	lineEnd := 0
	if line >= 0 && line < len(lines) {
		lineEnd = len(lines[line])
	}

	kind := protocol.CodeActionKindQuickFix
	insertPos := protocol.Position{Line: diag.Range.Start.Line, Character: safeUint(lineEnd)}
	return protocol.CodeAction{
		Title:       fmt.Sprintf("Suppress with ; nolint:%s", analyzer),
		Kind:        &kind,
		Diagnostics: []protocol.Diagnostic{diag},
		Edit: &protocol.WorkspaceEdit{
			Changes: map[string][]protocol.TextEdit{
				uri: {
					{
						Range:   protocol.Range{Start: insertPos, End: insertPos},
						NewText: " ; nolint:" + analyzer,
					},
				},
			},
		},
	}
}

// rangesOverlap reports whether two ranges share at least one position.
func rangesOverlap(a, b protocol.Range) bool {
	return !before(a.End, b.Start) && !before(b.End, a.Start)
}

func before(p, q protocol.Position) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Character < q.Character
}

func slicesContains(ss []string, v string) bool {
	for _, s := range ss {
		if s == v {
			return true
		}
	}
	return false
}
