// Copyright © 2024 The ELPS authors

package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() *Tree {
	src := "to go\n  fd 1\nend\n"
	fd := &Node{Kind: Command, Name: "fd", Span: Span{8, 10}, NameSpan: Span{8, 10}}
	fd.Add(RoleArg, &Node{Kind: Literal, Name: "1", Span: Span{11, 12}})
	proc := &Node{Kind: Procedure, Name: "go", Span: Span{0, 5}, NameSpan: Span{3, 5}}
	proc.Add(RoleBody, fd)
	proc.Span.End = 16
	root := &Node{Kind: Program, Span: Span{0, len(src)}}
	root.Add(RoleNone, proc)
	return NewTree("test.nlogo", src, root)
}

func TestTree_TextAndPositions(t *testing.T) {
	tree := sampleTree()
	assert.Equal(t, "fd", tree.Text(Span{8, 10}))
	assert.Equal(t, "", tree.Text(Span{10, 8}))
	assert.Equal(t, "\n", tree.Text(Span{16, 100}))

	assert.Equal(t, Position{Line: 1, Col: 1}, tree.Position(0))
	assert.Equal(t, Position{Line: 2, Col: 3}, tree.Position(8))
	assert.Equal(t, Position{Line: 3, Col: 1}, tree.Position(13))
	assert.Equal(t, 8, tree.Offset(Position{Line: 2, Col: 3}))
	assert.Equal(t, 12, tree.Offset(Position{Line: 2, Col: 99}), "columns clamp to the line end")
	assert.Equal(t, "  fd 1", tree.Line(2))
	assert.Equal(t, 4, tree.LineCount())
}

func TestNode_Roles(t *testing.T) {
	tree := sampleTree()
	procs := tree.Procedures()
	require.Len(t, procs, 1)
	body := procs[0].Named(RoleBody)
	require.Len(t, body, 1)
	assert.Equal(t, "fd", body[0].Name)
	assert.Len(t, body[0].Args(), 1)
	assert.Nil(t, body[0].Child(RoleLeft))
	assert.Equal(t, Span{8, 12}, body[0].Span, "Add grows the parent span")
}

func TestWalkAndPath(t *testing.T) {
	tree := sampleTree()
	var kinds []Kind
	Walk(tree.Root, func(n, _ *Node) bool {
		kinds = append(kinds, n.Kind)
		return n.Kind != Command
	})
	assert.Equal(t, []Kind{Program, Procedure, Command}, kinds)

	var calls []string
	WalkCalls(tree.Root, func(c *Node) { calls = append(calls, c.Name) })
	assert.Equal(t, []string{"fd"}, calls)

	n := NodeAt(tree.Root, 11)
	require.NotNil(t, n)
	assert.Equal(t, Literal, n.Kind)
	assert.Len(t, Path(tree.Root, 9), 3)
	assert.Nil(t, NodeAt(tree.Root, 500))
}

func TestSpan(t *testing.T) {
	s := Span{2, 5}
	assert.True(t, s.Contains(5))
	assert.False(t, s.Contains(6))
	assert.Equal(t, Span{1, 5}, s.Join(Span{1, 3}))
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, "code-block", CodeBlock.String())
	assert.True(t, Reporter.IsCall())
	assert.True(t, AnonProc.IsBlock())
}
