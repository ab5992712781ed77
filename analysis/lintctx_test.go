// Copyright © 2024 The ELPS authors

package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/nlint/agentctx"
	"github.com/luthersystems/nlint/breeds"
	"github.com/luthersystems/nlint/prims"
	"github.com/luthersystems/nlint/syntax"
)

func analyze(t *testing.T, src string) (*syntax.Tree, *LintContext) {
	t.Helper()
	tree, pre := preprocess(t, src)
	lc := NewLintContext(registry, "doc").ParseState(tree, pre)
	require.False(t, lc.IsDirty())
	return tree, lc
}

// blockFor returns the block passed to the n-th occurrence of primitive.
func blockFor(t *testing.T, lc *LintContext, primitive string, n int) CodeBlock {
	t.Helper()
	for _, b := range lc.Blocks {
		if b.Primitive == primitive {
			if n == 0 {
				return b
			}
			n--
		}
	}
	require.Failf(t, "block not found", "no block for %s", primitive)
	return CodeBlock{}
}

func TestLintContext_BreedVariables(t *testing.T) {
	_, lc := analyze(t, "breed [ trains train ]\ntrains-own [ size ]")
	trains, ok := lc.Breeds["trains"]
	require.True(t, ok)
	assert.Equal(t, []string{"size"}, trains.Variables)
	assert.Equal(t, breeds.Turtle, trains.Kind)
	assert.Equal(t, "train", trains.Singular)

	for _, plural := range []string{"turtles", "patches", "links"} {
		assert.Contains(t, lc.Breeds, plural)
	}
	b, ok := lc.BreedFromVariable("size")
	require.True(t, ok)
	assert.Equal(t, "trains", b.Plural)
}

func TestLintContext_Declarations(t *testing.T) {
	_, lc := analyze(t, "extensions [table]\nglobals [score]\nundirected-link-breed [friendships friendship]")
	assert.True(t, lc.HasExtension("table"))
	assert.False(t, lc.HasExtension("csv"))
	assert.True(t, lc.IsGlobal("score"))
	assert.False(t, lc.IsGlobal("energy"))
	assert.Equal(t, breeds.UndirectedLink, lc.Breeds["friendships"].Kind)

	lc.SetWidgetGlobals([]string{"population"})
	assert.True(t, lc.IsDirty())
	assert.True(t, lc.IsGlobal("population"))
}

func TestLintContext_Procedures(t *testing.T) {
	_, lc := analyze(t, "to move [dist] fd dist end\nto-report double [x] report x * 2 end")
	move := lc.Procedures["move"]
	require.NotNil(t, move)
	assert.Equal(t, []string{"dist"}, move.Arguments)
	assert.False(t, move.Reporter)
	assert.Equal(t, agentctx.Turtle, move.Context)

	double := lc.Procedures["double"]
	require.NotNil(t, double)
	assert.True(t, double.Reporter)
	assert.Equal(t, agentctx.All, double.Context)
}

func TestLintContext_AskIntroducesContext(t *testing.T) {
	_, lc := analyze(t, "to go ask turtles [ ask patches [ set pcolor red ] ] end")
	assert.Empty(t, lc.ContextErrors)
	outer := blockFor(t, lc, "ask", 0)
	inner := blockFor(t, lc, "ask", 1)
	assert.True(t, outer.Introduces)
	assert.Equal(t, agentctx.Turtle, outer.Context)
	assert.Equal(t, agentctx.Patch, inner.Context)
	assert.Equal(t, "patches", inner.Breed)
}

func TestLintContext_BreedBlock(t *testing.T) {
	_, lc := analyze(t, "breed [wolves wolf]\nwolves-own [energy]\nto setup create-wolves 3 [ set energy 5 ] end")
	assert.Empty(t, lc.ContextErrors)
	blk := blockFor(t, lc, "create-wolves", 0)
	assert.True(t, blk.Introduces)
	assert.Equal(t, "wolves", blk.Breed)
	assert.Equal(t, agentctx.Turtle, blk.Context)
	assert.Equal(t, agentctx.Observer, lc.Procedures["setup"].Context)
}

func TestLintContext_ConflictSoundness(t *testing.T) {
	src := "to go ca fd 1 rt 90 end"
	tree, lc := analyze(t, src)
	require.Len(t, lc.ContextErrors, 2)
	first := lc.ContextErrors[0]
	assert.Equal(t, "fd", tree.Text(first.Span))
	assert.Equal(t, agentctx.Observer, first.Prior)
	assert.Equal(t, agentctx.Turtle, first.Conflicting)
	assert.Equal(t, "go", first.Procedure)
	// The rejected statement leaves the context unchanged, so the next one
	// is judged against the observer too.
	second := lc.ContextErrors[1]
	assert.Equal(t, "rt", tree.Text(second.Span))
	assert.Equal(t, agentctx.Observer, second.Prior)
	assert.Equal(t, agentctx.Observer, lc.Procedures["go"].Context)
	want, at := agentctx.Fold(agentctx.All, agentctx.Observer, agentctx.Turtle)
	assert.Equal(t, 1, at)
	assert.Equal(t, want, lc.Procedures["go"].Context, "procedure contexts follow agentctx.Fold")

	_, lc = analyze(t, "to go fd 1 ca end")
	require.Len(t, lc.ContextErrors, 1)
	assert.Equal(t, agentctx.Turtle, lc.ContextErrors[0].Prior)
	assert.Equal(t, agentctx.Observer, lc.ContextErrors[0].Conflicting)
}

func TestLintContext_ProcedureCallContext(t *testing.T) {
	tree, lc := analyze(t, "to move fd 1 end\nto go ca move end")
	assert.Equal(t, agentctx.Turtle, lc.Procedures["move"].Context)
	assert.Equal(t, agentctx.Observer, lc.Procedures["go"].Context)
	require.Len(t, lc.ContextErrors, 1)
	assert.Equal(t, "move", tree.Text(lc.ContextErrors[0].Span))
}

func TestLintContext_RecursiveProcedures(t *testing.T) {
	_, lc := analyze(t, "to a b end\nto b a fd 1 end")
	assert.Empty(t, lc.ContextErrors)
	assert.Equal(t, agentctx.Turtle, lc.Procedures["a"].Context)
	assert.Equal(t, agentctx.Turtle, lc.Procedures["b"].Context)
}

func TestLintContext_MonotonicNarrowing(t *testing.T) {
	_, lc := analyze(t, "to go if true [ fd 1 ] let f [ -> rt 5 ] while [ xcor > 0 ] [ set heading 0 ] end")
	assert.Empty(t, lc.ContextErrors)
	proc := lc.Procedures["go"]
	assert.Equal(t, agentctx.Turtle, proc.Context)
	for _, b := range lc.Blocks {
		assert.True(t, b.Context.Inherits(proc.Context), b.Primitive)
		assert.False(t, b.Introduces, b.Primitive)
	}
	require.Len(t, lc.Anonymous, 1)
	assert.Equal(t, agentctx.Turtle, lc.Anonymous[0].Context)
	assert.True(t, lc.Anonymous[0].IsAnonymous)
}

func TestLintContext_InheritingBlockNarrowsParent(t *testing.T) {
	_, lc := analyze(t, "to go if true [ set pcolor red ] end")
	assert.Equal(t, agentctx.Turtle|agentctx.Patch, lc.Procedures["go"].Context)
}

func TestLintContext_Locals(t *testing.T) {
	src := `to go [n]
  show n
  let x 1
  show x
  ask turtles [ let y "a" show y ]
  show [1 2] end`
	_, lc := analyze(t, src)
	proc := lc.Procedures["go"]
	require.Len(t, proc.Locals, 1)
	x := proc.Locals[0]
	assert.Equal(t, "x", x.Name)
	assert.Equal(t, prims.Number, x.Type)

	at := func(s string) int { return strings.Index(src, s) }
	assert.Equal(t, []string{"n"}, lc.VisibleAt(at("show n")))
	assert.Equal(t, []string{"n", "x"}, lc.VisibleAt(at("show x")))
	assert.Equal(t, []string{"n", "x", "y"}, lc.VisibleAt(at("show y")))
	assert.Equal(t, []string{"n", "x"}, lc.VisibleAt(at("show [1 2]")))
	assert.False(t, lc.IsVisible("y", at("show [1 2]")))
	assert.Nil(t, lc.VisibleAt(len(src)+5))

	blk := blockFor(t, lc, "ask", 0)
	require.Len(t, blk.Locals, 1)
	assert.Equal(t, prims.String, blk.Locals[0].Type)
	assert.Equal(t, []string{"n"}, blk.Arguments)
	assert.Equal(t, proc, lc.ProcedureAt(at("show x")))
	assert.GreaterOrEqual(t, lc.BlockAt(at("show y")), 0)
}

func TestLintContext_AnonymousArguments(t *testing.T) {
	src := "to go foreach [1 2] [ v -> show v ] end"
	_, lc := analyze(t, src)
	require.Len(t, lc.Anonymous, 1)
	assert.Equal(t, []string{"v"}, lc.Anonymous[0].Arguments)
	assert.Equal(t, []int{0}, lc.Procedures["go"].Anonymous)
	assert.Contains(t, lc.VisibleAt(strings.Index(src, "show v")), "v")
	assert.NotContains(t, lc.VisibleAt(strings.Index(src, "end")), "v")
}

func TestLintContext_Idempotent(t *testing.T) {
	tree, lc := analyze(t, `breed [wolves wolf]
to go ask wolves [ fd 1 let e 2 ] ca fd 1 end
to-report r [a] report [ x -> x + a ] end`)
	again := NewLintContext(registry, "doc").ParseState(tree, lc.Preprocess())
	assert.Equal(t, lc, again)

	snapshot := *lc
	lc.MarkDirty()
	lc.ParseState(tree, lc.Preprocess())
	assert.Equal(t, snapshot, *lc)
}

func TestLintContext_CleanIsNoop(t *testing.T) {
	tree, lc := analyze(t, "to go end")
	other, pre := preprocess(t, "to stop-all end")
	lc.ParseState(other, pre)
	assert.Contains(t, lc.Procedures, "go")
	lc.MarkDirty()
	lc.ParseState(other, pre)
	assert.NotContains(t, lc.Procedures, "go")
	assert.NotNil(t, tree)
}

func TestLintContext_ResolveCall(t *testing.T) {
	_, lc := analyze(t, "breed [wolves wolf]\nto go end")
	c := lc.ResolveCall("create-wolves")
	require.True(t, c.Known())
	assert.Equal(t, syntax.ClassBreed, c.Class)
	assert.Equal(t, "wolves", c.Breed.Plural)

	c = lc.ResolveCall("go")
	assert.Equal(t, syntax.ClassProcedure, c.Class)
	assert.NotNil(t, c.Procedure)

	assert.False(t, lc.ResolveCall("create-sheep").Known())
	assert.False(t, lc.ResolveCall("wolves-own").Known())

	ctx, ok := lc.VariableContext("pcolor")
	assert.True(t, ok)
	assert.Equal(t, agentctx.Turtle|agentctx.Patch, ctx)
}
