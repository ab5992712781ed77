// Copyright © 2024 The ELPS authors

package syntax

import (
	"fmt"
	"sort"
)

// Position is a 1-based line and column. Columns count bytes.
type Position struct {
	Line int
	Col  int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Tree is an immutable parse of one source text.
type Tree struct {
	Filename string
	Source   string
	Root     *Node
	// Comments holds the span of every comment, in source order.
	Comments []Span
	lines    []int
}

// NewTree wraps root. The line index is built eagerly so a Tree can be read
// from several goroutines.
func NewTree(filename, source string, root *Node) *Tree {
	t := &Tree{Filename: filename, Source: source, Root: root}
	t.lines = append(t.lines, 0)
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			t.lines = append(t.lines, i+1)
		}
	}
	return t
}

// Text returns the source covered by s, clamped to the source bounds.
func (t *Tree) Text(s Span) string {
	start, end := s.Start, s.End
	if start < 0 {
		start = 0
	}
	if end > len(t.Source) {
		end = len(t.Source)
	}
	if start >= end {
		return ""
	}
	return t.Source[start:end]
}

// Position converts a byte offset into a line and column.
func (t *Tree) Position(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(t.Source) {
		offset = len(t.Source)
	}
	line := sort.Search(len(t.lines), func(i int) bool { return t.lines[i] > offset }) - 1
	return Position{Line: line + 1, Col: offset - t.lines[line] + 1}
}

// Offset converts a 1-based line and column back into a byte offset. Out
// of range positions are clamped.
func (t *Tree) Offset(p Position) int {
	if p.Line < 1 {
		return 0
	}
	if p.Line > len(t.lines) {
		return len(t.Source)
	}
	start := t.lines[p.Line-1]
	end := len(t.Source)
	if p.Line < len(t.lines) {
		end = t.lines[p.Line] - 1
	}
	off := start + p.Col - 1
	if off < start {
		return start
	}
	if off > end {
		return end
	}
	return off
}

// LineCount is the number of lines in the source.
func (t *Tree) LineCount() int {
	return len(t.lines)
}

// Line returns the text of the 1-based line n without its newline.
func (t *Tree) Line(n int) string {
	if n < 1 || n > len(t.lines) {
		return ""
	}
	start := t.lines[n-1]
	end := len(t.Source)
	if n < len(t.lines) {
		end = t.lines[n] - 1
	}
	return t.Source[start:end]
}

// Procedures returns the top-level procedure definitions in source order.
func (t *Tree) Procedures() []*Node {
	if t == nil || t.Root == nil {
		return nil
	}
	var out []*Node
	for _, c := range t.Root.Children {
		if c.Kind == Procedure {
			out = append(out, c)
		}
	}
	return out
}

// Declarations returns the top-level nodes of kind k in source order.
func (t *Tree) Declarations(k Kind) []*Node {
	if t == nil || t.Root == nil {
		return nil
	}
	var out []*Node
	for _, c := range t.Root.Children {
		if c.Kind == k {
			out = append(out, c)
		}
	}
	return out
}
