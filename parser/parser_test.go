// Copyright © 2024 The ELPS authors

package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/nlint/prims"
	"github.com/luthersystems/nlint/syntax"
)

var registry = prims.MustDefaultRegistry()

// testClassifier knows the core catalog plus a few user procedures given as
// name to input count. Negative counts mark reporters.
func testClassifier(procs map[string]int) Classifier {
	return ClassifierFunc(func(word string) (syntax.Class, *prims.Primitive) {
		if p, ok := registry.GetNamedPrimitive(word); ok {
			return syntax.ClassPrimitive, p
		}
		if n, ok := procs[word]; ok {
			p := &prims.Primitive{Name: word}
			if n < 0 {
				n = -n - 1
				p.Return = prims.Wildcard
				p.Precedence = prims.NormalPrecedence
			}
			for i := 0; i < n; i++ {
				p.Right = append(p.Right, prims.Argument{Types: prims.Wildcard})
			}
			return syntax.ClassProcedure, p
		}
		if _, ok := registry.GetVariable(word); ok {
			return syntax.ClassVariable, nil
		}
		if registry.IsConstant(word) {
			return syntax.ClassConstant, nil
		}
		return syntax.ClassUnknown, nil
	})
}

func parse(t *testing.T, src string) *syntax.Tree {
	t.Helper()
	return Parse("test.nlogo", src, testClassifier(map[string]int{"setup": 0, "grow": 1, "size-of": -2}))
}

func errors(tree *syntax.Tree) []string {
	var msgs []string
	syntax.Walk(tree.Root, func(n, _ *syntax.Node) bool {
		if n.Kind == syntax.Error {
			msgs = append(msgs, n.Message)
		}
		return true
	})
	return msgs
}

func TestParse_Declarations(t *testing.T) {
	tree := parse(t, `extensions [table csv]
globals [score]
breed [wolves wolf]
directed-link-breed [roads road]
wolves-own [energy]
__includes ["lib.nls"]`)
	assert.Empty(t, errors(tree))
	require.Len(t, tree.Root.Children, 6)

	ext := tree.Declarations(syntax.Extensions)
	require.Len(t, ext, 1)
	items := ext[0].Named(syntax.RoleItem)
	require.Len(t, items, 2)
	assert.Equal(t, "table", items[0].Name)
	assert.Equal(t, "csv", items[1].Name)

	breed := tree.Declarations(syntax.BreedDecl)
	require.Len(t, breed, 2)
	assert.Equal(t, "breed", breed[0].Name)
	assert.Equal(t, "directed-link-breed", breed[1].Name)

	own := tree.Declarations(syntax.BreedsOwn)
	require.Len(t, own, 1)
	assert.Equal(t, "wolves-own", own[0].Name)
	assert.Equal(t, "energy", own[0].Named(syntax.RoleItem)[0].Name)

	inc := tree.Declarations(syntax.Includes)
	require.Len(t, inc, 1)
	assert.Equal(t, "lib.nls", inc[0].Named(syntax.RoleItem)[0].Name)
}

func TestParse_UnterminatedDeclaration(t *testing.T) {
	tree := parse(t, "globals [a b\nto go end")
	assert.Equal(t, []string{"missing ] in globals"}, errors(tree))
	require.Len(t, tree.Procedures(), 1)
}

func TestParse_Procedure(t *testing.T) {
	tree := parse(t, "to move [dist]\n  fd dist\n  rt 90\nend")
	assert.Empty(t, errors(tree))
	procs := tree.Procedures()
	require.Len(t, procs, 1)
	proc := procs[0]
	assert.Equal(t, "move", proc.Name)
	assert.False(t, proc.Reporter)
	assert.Equal(t, "move", tree.Text(proc.NameSpan))

	params := proc.Named(syntax.RoleParam)
	require.Len(t, params, 1)
	assert.Equal(t, "dist", params[0].Name)

	body := proc.Named(syntax.RoleBody)
	require.Len(t, body, 2)
	assert.Equal(t, syntax.Command, body[0].Kind)
	assert.Equal(t, "fd", body[0].Name)
	arg := body[0].Child(syntax.RoleArg)
	require.NotNil(t, arg)
	assert.Equal(t, syntax.Identifier, arg.Kind)
	assert.Equal(t, syntax.ClassVariable, arg.Class)
}

func TestParse_MissingEnd(t *testing.T) {
	tree := parse(t, "to a\n fd 1\nto b\nend")
	assert.Equal(t, []string{"missing end for procedure a"}, errors(tree))
	assert.Len(t, tree.Procedures(), 2)
}

func TestParse_TopLevelGarbage(t *testing.T) {
	tree := parse(t, "fd 1 2 3\nto go end")
	assert.Equal(t, []string{"expected a declaration or procedure"}, errors(tree))
	assert.Len(t, tree.Procedures(), 1)
}

func TestParse_Precedence(t *testing.T) {
	tree := parse(t, "to go show 1 + 2 * 3 end")
	show := tree.Procedures()[0].Child(syntax.RoleBody)
	plus := show.Child(syntax.RoleArg)
	require.NotNil(t, plus)
	assert.Equal(t, "+", plus.Name)
	args := plus.Args()
	require.Len(t, args, 2)
	assert.Equal(t, "1", args[0].Name)
	assert.Equal(t, "*", args[1].Name)
}

func TestParse_ReporterArgumentsBindTightly(t *testing.T) {
	// random takes its input before + is applied.
	tree := parse(t, "to go show random 10 + 1 end")
	show := tree.Procedures()[0].Child(syntax.RoleBody)
	plus := show.Child(syntax.RoleArg)
	require.NotNil(t, plus)
	assert.Equal(t, "+", plus.Name)
	assert.Equal(t, "random", plus.Child(syntax.RoleLeft).Name)
}

func TestParse_AskWith(t *testing.T) {
	tree := parse(t, "to go ask turtles with [color = red] [ fd 1 ] end")
	assert.Empty(t, errors(tree))
	ask := tree.Procedures()[0].Child(syntax.RoleBody)
	args := ask.Args()
	require.Len(t, args, 2)
	with := args[0]
	assert.Equal(t, "with", with.Name)
	assert.Equal(t, "turtles", with.Child(syntax.RoleLeft).Name)
	cond := with.Child(syntax.RoleArg)
	assert.Equal(t, syntax.ReporterBlock, cond.Kind)
	assert.Equal(t, syntax.CodeBlock, args[1].Kind)
	assert.Equal(t, "fd", args[1].Child(syntax.RoleBody).Name)
}

func TestParse_Of(t *testing.T) {
	tree := parse(t, "to go show [color] of turtle 0 end")
	assert.Empty(t, errors(tree))
	show := tree.Procedures()[0].Child(syntax.RoleBody)
	of := show.Child(syntax.RoleArg)
	require.NotNil(t, of)
	assert.Equal(t, "of", of.Name)
	assert.Equal(t, syntax.ReporterBlock, of.Child(syntax.RoleLeft).Kind)
	assert.Equal(t, "turtle", of.Child(syntax.RoleArg).Name)
}

func TestParse_Let(t *testing.T) {
	tree := parse(t, "to go let n count turtles\n show n end")
	assert.Empty(t, errors(tree))
	body := tree.Procedures()[0].Named(syntax.RoleBody)
	require.Len(t, body, 2)
	name := body[0].Child(syntax.RoleArg)
	assert.Equal(t, "n", name.Name)
	arg := body[1].Child(syntax.RoleArg)
	assert.Equal(t, syntax.Identifier, arg.Kind)
	assert.Equal(t, syntax.ClassVariable, arg.Class)
}

func TestParse_LocalsLeaveScope(t *testing.T) {
	tree := parse(t, "to a [x] show x end\nto b show x end")
	procs := tree.Procedures()
	inA := procs[0].Child(syntax.RoleBody).Child(syntax.RoleArg)
	inB := procs[1].Child(syntax.RoleBody).Child(syntax.RoleArg)
	assert.Equal(t, syntax.ClassVariable, inA.Class)
	assert.Equal(t, syntax.ClassUnknown, inB.Class)
}

func TestParse_Variadic(t *testing.T) {
	tree := parse(t, "to go show (list 1 2 3)\n show list 1 2 end")
	assert.Empty(t, errors(tree))
	body := tree.Procedures()[0].Named(syntax.RoleBody)
	paren := body[0].Child(syntax.RoleArg)
	assert.True(t, paren.Paren)
	assert.Len(t, paren.Named(syntax.RoleArg), 3)
	plain := body[1].Child(syntax.RoleArg)
	assert.False(t, plain.Paren)
	assert.Len(t, plain.Named(syntax.RoleArg), 2)
}

func TestParse_ExtraArguments(t *testing.T) {
	tree := parse(t, "to go setup 1 end")
	assert.Empty(t, errors(tree))
	body := tree.Procedures()[0].Named(syntax.RoleBody)
	require.Len(t, body, 1)
	assert.Equal(t, syntax.ClassProcedure, body[0].Class)
	assert.Empty(t, body[0].Args())
	assert.Len(t, body[0].Named(syntax.RoleExtra), 1)
}

func TestParse_ExpectedCommand(t *testing.T) {
	tree := parse(t, "to go 5 end")
	assert.Equal(t, []string{"expected a command"}, errors(tree))
}

func TestParse_UnknownCommand(t *testing.T) {
	tree := parse(t, "to go create-wolves 5 [ fd 1 ] end")
	body := tree.Procedures()[0].Named(syntax.RoleBody)
	require.Len(t, body, 1)
	assert.Equal(t, "create-wolves", body[0].Name)
	assert.Equal(t, syntax.ClassUnknown, body[0].Class)
	assert.Len(t, body[0].Named(syntax.RoleArg), 2)
}

func TestParse_AnonymousProcedures(t *testing.T) {
	tree := parse(t, `to go
  foreach [1 2] [ x -> show x ]
  show map [ [a] -> a * 2 ] [1 2]
  show sort-by < [3 1]
  run [ -> fd 1 ]
end`)
	assert.Empty(t, errors(tree))
	body := tree.Procedures()[0].Named(syntax.RoleBody)
	require.Len(t, body, 4)

	args := body[0].Named(syntax.RoleArg)
	require.Len(t, args, 2)
	assert.Equal(t, syntax.ListLiteral, args[0].Kind)
	anon := args[1]
	assert.Equal(t, syntax.AnonProc, anon.Kind)
	assert.False(t, anon.Reporter)
	assert.Equal(t, "x", anon.Child(syntax.RoleParam).Name)
	show := anon.Child(syntax.RoleBody)
	assert.Equal(t, syntax.ClassVariable, show.Child(syntax.RoleArg).Class)

	mapped := body[1].Child(syntax.RoleArg)
	anon = mapped.Child(syntax.RoleArg)
	assert.Equal(t, syntax.AnonProc, anon.Kind)
	assert.True(t, anon.Reporter)
	assert.Equal(t, "*", anon.Child(syntax.RoleBody).Name)

	sorted := body[2].Child(syntax.RoleArg)
	concise := sorted.Named(syntax.RoleArg)
	require.Len(t, concise, 2)
	assert.Equal(t, syntax.AnonProc, concise[0].Kind)
	assert.Equal(t, "<", concise[0].Child(syntax.RoleBody).Name)

	run := body[3].Child(syntax.RoleArg)
	assert.Equal(t, syntax.AnonProc, run.Kind)
	assert.False(t, run.Reporter)
	assert.Nil(t, run.Child(syntax.RoleParam))
}

func TestParse_ListLiteral(t *testing.T) {
	tree := parse(t, `to go show [1 "a" [red true] foo] end`)
	assert.Empty(t, errors(tree))
	list := tree.Procedures()[0].Child(syntax.RoleBody).Child(syntax.RoleArg)
	require.Equal(t, syntax.ListLiteral, list.Kind)
	items := list.Named(syntax.RoleItem)
	require.Len(t, items, 4)
	assert.Equal(t, "a", items[1].Name)
	inner := items[2].Named(syntax.RoleItem)
	require.Len(t, inner, 2)
	assert.Equal(t, syntax.Literal, inner[0].Kind)
	assert.Equal(t, syntax.ClassConstant, inner[1].Class)
	assert.Equal(t, syntax.Identifier, items[3].Kind)
}

func TestParse_Unbalanced(t *testing.T) {
	tests := []struct {
		src  string
		errs []string
	}{
		{"to go ask turtles [ fd 1 end", []string{"missing ]"}},
		{"to go show (1 + 2 end", []string{"missing )"}},
		{"to go fd 1 ] end", []string{"unexpected ]"}},
		{"to go show () end", []string{"empty parentheses"}},
		{"to go print \"open\nend", []string{"unterminated string"}},
	}
	for _, tt := range tests {
		tree := parse(t, tt.src)
		assert.Equal(t, tt.errs, errors(tree), tt.src)
		assert.Len(t, tree.Procedures(), 1, tt.src)
	}
}

func TestParse_Comments(t *testing.T) {
	src := "; header\nto go ; nolint\n  fd 1\nend"
	tree := parse(t, src)
	assert.Empty(t, errors(tree))
	require.Len(t, tree.Comments, 2)
	assert.Equal(t, "; header", tree.Text(tree.Comments[0]))
	assert.Equal(t, "; nolint", tree.Text(tree.Comments[1]))
}

func TestParse_NilClassifier(t *testing.T) {
	tree := Parse("test", "to go fd 1 end", nil)
	procs := tree.Procedures()
	require.Len(t, procs, 1)
	body := procs[0].Named(syntax.RoleBody)
	require.Len(t, body, 1)
	assert.Equal(t, syntax.ClassUnknown, body[0].Class)
}

func TestParse_ReporterProcedureCall(t *testing.T) {
	tree := parse(t, "to-report area report size-of 3 end\nto go show area 2 end")
	procs := tree.Procedures()
	assert.True(t, procs[0].Reporter)
	report := procs[0].Child(syntax.RoleBody)
	call := report.Child(syntax.RoleArg)
	assert.Equal(t, "size-of", call.Name)
	assert.Equal(t, syntax.ClassProcedure, call.Class)
	assert.Len(t, call.Named(syntax.RoleArg), 1)
}
