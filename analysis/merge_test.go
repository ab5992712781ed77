// Copyright © 2024 The ELPS authors

package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, scope, src string) *LintContext {
	t.Helper()
	pre := NewPreprocessContext(scope)
	tree := Parse(registry, pre, scope+".nls", src)
	return NewLintContext(registry, scope).ParseState(tree, pre)
}

func TestMergePreprocess_OrderIndependent(t *testing.T) {
	a := build(t, "a", "breed [wolves wolf]\nto helper [x] end").Preprocess()
	b := build(t, "b", "breed [sheep a-sheep]\nto helper [x y] end").Preprocess()

	ab := MergePreprocess("view", a, b)
	ba := MergePreprocess("view", b, a)
	assert.Equal(t, ab.Signature(), ba.Signature())
	assert.False(t, ab.IsDirty())

	assert.Contains(t, ab.Breeds, "wolves")
	assert.Contains(t, ab.Breeds, "sheep")
	assert.Contains(t, ab.Breeds, "turtles")
	// The greatest scope wins a collision.
	assert.Equal(t, 2, ab.Procedures["helper"].Arity)
	assert.Equal(t, "b", ab.Procedures["helper"].Scope)
}

func TestMergeLint_RebasesArenas(t *testing.T) {
	a := build(t, "a", "to first ask turtles [ fd 1 ] end")
	b := build(t, "b", "globals [score]\nto second if true [ ask patches [ set pcolor red ] ] end")

	for _, m := range []*LintContext{MergeLint("view", a, b), MergeLint("view", b, a)} {
		require.Len(t, m.Blocks, 3)
		first := m.Procedures["first"]
		require.Len(t, first.Blocks, 1)
		assert.Equal(t, "ask", m.Blocks[first.Blocks[0]].Primitive)

		second := m.Procedures["second"]
		require.Len(t, second.Blocks, 1)
		outer := m.Blocks[second.Blocks[0]]
		assert.Equal(t, "if", outer.Primitive)
		require.Len(t, outer.Blocks, 1)
		assert.Equal(t, "patches", m.Blocks[outer.Blocks[0]].Breed)

		assert.True(t, m.IsGlobal("score"))
		assert.False(t, m.IsDirty())
		assert.Contains(t, m.Preprocess().Procedures, "first")
		assert.Contains(t, m.Preprocess().Procedures, "second")
	}

	// Inputs are not modified.
	assert.Equal(t, []int{0}, b.Procedures["second"].Blocks)
}

func TestMergeLint_Empty(t *testing.T) {
	m := MergeLint("view")
	assert.Contains(t, m.Breeds, "turtles")
	assert.Empty(t, m.Procedures)
}
