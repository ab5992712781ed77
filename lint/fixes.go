// Copyright © 2024 The ELPS authors

package lint

import (
	"sort"
	"strings"

	"github.com/luthersystems/nlint/breeds"
	"github.com/luthersystems/nlint/syntax"
)

// FixKind names what a fix does.
type FixKind string

const (
	FixAddBreed     FixKind = "add-breed"
	FixAddGlobal    FixKind = "add-global"
	FixAddExtension FixKind = "add-extension"
	FixRemoveToken  FixKind = "remove-token"
	FixExplain      FixKind = "explain"
)

// Edit replaces the text covered by Span with NewText.
type Edit struct {
	Span    syntax.Span `json:"span"`
	NewText string      `json:"new_text"`
	// OldText, when set, is the text the edit expects to replace. The edit
	// is skipped if the source no longer holds it there.
	OldText string `json:"old_text,omitempty"`
}

// Fix is a named text edit a host may offer for a diagnostic.
type Fix struct {
	Kind  FixKind `json:"kind"`
	Title string  `json:"title"`
	Edits []Edit  `json:"edits,omitempty"`
	// Guard is text whose presence means the fix was already applied.
	Guard string `json:"guard,omitempty"`
	// Explanation is the long form of the message for explain fixes.
	Explanation string `json:"explanation,omitempty"`
}

// ApplyFix returns source with fix applied. Applying a fix a second time
// leaves the source unchanged.
func ApplyFix(source string, fix Fix) string {
	if fix.Guard != "" && strings.Contains(source, fix.Guard) {
		return source
	}
	edits := append([]Edit(nil), fix.Edits...)
	// Later edits first so earlier offsets stay valid.
	sort.SliceStable(edits, func(i, j int) bool { return edits[i].Span.Start > edits[j].Span.Start })
	for _, e := range edits {
		if e.Span.Start < 0 || e.Span.End > len(source) || e.Span.Start > e.Span.End {
			continue
		}
		if e.OldText != "" && source[e.Span.Start:e.Span.End] != e.OldText {
			continue
		}
		source = source[:e.Span.Start] + e.NewText + source[e.Span.End:]
	}
	return source
}

// declarationPoint is where a new declaration is inserted: after the last
// top-level declaration, else at the start of the file.
func declarationPoint(tree *syntax.Tree) (offset int, text func(string) string) {
	var last *syntax.Node
	for _, c := range tree.Root.Children {
		if c.Kind == syntax.Procedure {
			break
		}
		if c.Kind != syntax.Error {
			last = c
		}
	}
	if last == nil {
		return 0, func(decl string) string { return decl + "\n" }
	}
	return last.Span.End, func(decl string) string { return "\n" + decl }
}

func breedKeyword(k breeds.Kind) string {
	switch k {
	case breeds.DirectedLink:
		return "directed-link-breed"
	case breeds.UndirectedLink:
		return "undirected-link-breed"
	}
	return "breed"
}

// addBreedFix declares the breed b.
func addBreedFix(tree *syntax.Tree, b breeds.Breed) Fix {
	decl := breedKeyword(b.Kind) + " [" + b.Plural + " " + b.Singular + "]"
	at, wrap := declarationPoint(tree)
	return Fix{
		Kind:  FixAddBreed,
		Title: "Declare " + decl,
		Edits: []Edit{{Span: syntax.Span{Start: at, End: at}, NewText: wrap(decl)}},
		Guard: decl,
	}
}

// addToListFix adds name to the first keyword declaration, or adds the
// declaration when there is none.
func addToListFix(tree *syntax.Tree, kind syntax.Kind, keyword, name string, fk FixKind) Fix {
	guard := " " + name + "]"
	fix := Fix{Kind: fk, Title: "Add " + name + " to " + keyword, Guard: guard}
	for _, decl := range tree.Declarations(kind) {
		end := decl.Span.End
		if malformed(decl) || end == 0 || tree.Source[end-1] != ']' {
			continue
		}
		fix.Edits = []Edit{{Span: syntax.Span{Start: end - 1, End: end - 1}, NewText: " " + name}}
		return fix
	}
	at, wrap := declarationPoint(tree)
	fix.Edits = []Edit{{Span: syntax.Span{Start: at, End: at}, NewText: wrap(keyword + " [" + guard)}}
	return fix
}

func malformed(decl *syntax.Node) bool {
	for _, c := range decl.Children {
		if c.Kind == syntax.Error {
			return true
		}
	}
	return false
}

// removeFix deletes the text of n.
func removeFix(tree *syntax.Tree, n *syntax.Node) Fix {
	text := tree.Text(n.Span)
	return Fix{
		Kind:  FixRemoveToken,
		Title: "Remove " + text,
		Edits: []Edit{{Span: n.Span, OldText: text}},
	}
}

func explainFix(explanation string) Fix {
	return Fix{Kind: FixExplain, Title: "Explain this message", Explanation: explanation}
}
