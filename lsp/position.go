// Copyright © 2024 The ELPS authors

package lsp

import (
	"strings"

	"github.com/luthersystems/nlint/syntax"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// toLSPPosition converts a 1-based tree position to a 0-based LSP position.
func toLSPPosition(p syntax.Position) protocol.Position {
	line := p.Line
	col := p.Col
	if line > 0 {
		line--
	}
	if col > 0 {
		col--
	}
	return protocol.Position{
		Line:      safeUint(line),
		Character: safeUint(col),
	}
}

// safeUint converts a non-negative int to protocol.UInteger, clamping
// negative values to zero.
func safeUint(n int) protocol.UInteger {
	if n < 0 {
		return 0
	}
	return protocol.UInteger(n) // #nosec G115 -- line/col are always small positive ints
}

// spanToRange converts a byte span of tree to an LSP range.
func spanToRange(tree *syntax.Tree, s syntax.Span) protocol.Range {
	if tree == nil {
		return protocol.Range{}
	}
	return protocol.Range{
		Start: toLSPPosition(tree.Position(s.Start)),
		End:   toLSPPosition(tree.Position(s.End)),
	}
}

// offsetAt converts a 0-based LSP position to a byte offset in tree.
func offsetAt(tree *syntax.Tree, pos protocol.Position) int {
	return tree.Offset(syntax.Position{Line: int(pos.Line) + 1, Col: int(pos.Character) + 1})
}

// nameAt returns the innermost node whose name covers offset: a call, an
// identifier or the name of a procedure.
func nameAt(tree *syntax.Tree, offset int) *syntax.Node {
	path := syntax.Path(tree.Root, offset)
	for i := len(path) - 1; i >= 0; i-- {
		n := path[i]
		if n.Name == "" {
			continue
		}
		if n.NameSpan.Contains(offset) || (n.Kind == syntax.Identifier && n.Span.Contains(offset)) {
			return n
		}
	}
	return nil
}

// wordAtPosition extracts the identifier-like word at the given 0-based LSP
// position from the document content. The cursor can be inside or at the
// end of a word; in both cases the full word is returned.
func wordAtPosition(content string, line, col int) string {
	start, end := wordBounds(content, line, col)
	if start < 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	return lines[line][start:end]
}

// prefixAtPosition is the part of the word at the cursor that lies before
// it, which is what completion filters on.
func prefixAtPosition(content string, line, col int) string {
	start, _ := wordBounds(content, line, col)
	if start < 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	if col > len(lines[line]) {
		col = len(lines[line])
	}
	return strings.ToLower(lines[line][start:col])
}

func wordBounds(content string, line, col int) (int, int) {
	lines := strings.Split(content, "\n")
	if line < 0 || line >= len(lines) {
		return -1, -1
	}
	ln := lines[line]
	if col < 0 || col > len(ln) {
		return -1, -1
	}
	start := col
	for start > 0 && isWordChar(ln[start-1]) {
		start--
	}
	end := col
	for end < len(ln) && isWordChar(ln[end]) {
		end++
	}
	return start, end
}

// isWordChar reports whether c may appear in a NetLogo identifier.
func isWordChar(c byte) bool {
	if c >= 'a' && c <= 'z' {
		return true
	}
	if c >= 'A' && c <= 'Z' {
		return true
	}
	if c >= '0' && c <= '9' {
		return true
	}
	switch c {
	case '-', '_', '!', '?', '+', '*', '/', '<', '>', '=', ':', '.', '#', '^', '%', '&', '$', '\'':
		return true
	}
	return false
}

// uriToPath converts a file:// URI to a filesystem path.
func uriToPath(uri string) string {
	if path, ok := strings.CutPrefix(uri, "file://"); ok {
		return path
	}
	return uri
}

// pathToURI converts a filesystem path to a file:// URI.
func pathToURI(path string) string {
	if strings.HasPrefix(path, "/") {
		return "file://" + path
	}
	return path
}
