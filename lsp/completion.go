// Copyright © 2024 The ELPS authors

package lsp

import (
	"sort"
	"strings"

	"github.com/luthersystems/nlint/analysis"
	"github.com/luthersystems/nlint/prims"
	gfn "github.com/panyam/goutils/fn"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentCompletion handles the textDocument/completion request.
func (s *Server) textDocumentCompletion(_ *glsp.Context, params *protocol.CompletionParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	snap := doc.Snapshot()
	content := doc.session.Source()
	line := int(params.Position.Line)
	col := int(params.Position.Character)
	prefix := prefixAtPosition(content, line, col)

	offset := -1
	if snap.Tree != nil {
		offset = offsetAt(snap.Tree, params.Position)
	}
	return completions(s.registry, snap.Lint, offset, prefix), nil
}

// completions lists the words usable at offset that start with prefix:
// primitives of the declared extensions, procedures, globals, breeds, breed
// and built-in variables, constants and the locals in scope.
func completions(reg *prims.Registry, lc *analysis.LintContext, offset int, prefix string) []protocol.CompletionItem {
	seen := make(map[string]bool)
	var items []protocol.CompletionItem
	add := func(batch []protocol.CompletionItem) {
		for _, item := range batch {
			if seen[item.Label] || !strings.HasPrefix(item.Label, prefix) {
				continue
			}
			seen[item.Label] = true
			items = append(items, item)
		}
	}

	// Locals are added first so their entry wins a label collision.
	if offset >= 0 {
		add(gfn.Map(lc.VisibleAt(offset), itemOf(protocol.CompletionItemKindVariable, "local")))
	}

	add(gfn.Map(reg.GetCompletions(sortedNames(lc.Extensions)), func(name string) protocol.CompletionItem {
		item := itemOf(protocol.CompletionItemKindFunction, "")(name)
		if p, ok := reg.GetNamedPrimitive(name); ok {
			detail := prims.Describe(p)
			item.Detail = &detail
			if p.Doc != "" {
				item.Documentation = &protocol.MarkupContent{Kind: protocol.MarkupKindMarkdown, Value: p.Doc}
			}
		}
		return item
	}))

	procs := make(map[string]bool)
	for name, p := range lc.Procedures {
		if !p.IsAnonymous {
			procs[name] = true
		}
	}
	if pre := lc.Preprocess(); pre != nil {
		for name := range pre.Procedures {
			procs[name] = true
		}
	}
	add(gfn.Map(sortedNames(procs), itemOf(protocol.CompletionItemKindMethod, "procedure")))

	globals := make(map[string]bool)
	for name := range lc.Globals {
		globals[name] = true
	}
	for name := range lc.WidgetGlobals {
		globals[name] = true
	}
	if pre := lc.Preprocess(); pre != nil {
		for name := range pre.Globals {
			globals[name] = true
		}
	}
	add(gfn.Map(sortedNames(globals), itemOf(protocol.CompletionItemKindVariable, "global")))

	add(gfn.Map(lc.PluralNames(), itemOf(protocol.CompletionItemKindClass, "breed")))
	add(gfn.Map(lc.SingularNames(), itemOf(protocol.CompletionItemKindClass, "breed")))

	var owned []string
	for _, plural := range sortedNames(lc.Breeds) {
		owned = append(owned, lc.Breeds[plural].Variables...)
	}
	add(gfn.Map(owned, itemOf(protocol.CompletionItemKindField, "breed variable")))
	add(gfn.Map(reg.Variables(), func(v *prims.Variable) protocol.CompletionItem {
		return itemOf(protocol.CompletionItemKindField, v.Owner+" variable")(v.Name)
	}))
	add(gfn.Map(reg.Constants(), itemOf(protocol.CompletionItemKindConstant, "constant")))

	sort.SliceStable(items, func(i, j int) bool { return items[i].Label < items[j].Label })
	return items
}

func itemOf(kind protocol.CompletionItemKind, detail string) func(string) protocol.CompletionItem {
	return func(name string) protocol.CompletionItem {
		k := kind
		item := protocol.CompletionItem{Label: name, Kind: &k}
		if detail != "" {
			d := detail
			item.Detail = &d
		}
		return item
	}
}

func sortedNames[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
