// Copyright © 2024 The ELPS authors

package prims

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/nlint/agentctx"
)

func defaultRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewDefaultRegistry()
	require.NoError(t, err)
	return r
}

func TestDefaultRegistry_Core(t *testing.T) {
	r := defaultRegistry(t)

	ask, ok := r.GetPrimitive("", "ask")
	require.True(t, ok)
	assert.False(t, IsReporter(ask))
	assert.True(t, ask.IntroducesContext)
	assert.Equal(t, agentctx.All, ask.Context)

	fd, ok := r.GetPrimitive("", "FD")
	require.True(t, ok, "lookups are case insensitive and aliases are registered")
	assert.Equal(t, "fd", fd.Name)
	assert.Equal(t, "forward", fd.Canonical)
	assert.Equal(t, "forward", fd.CanonicalName())
	assert.Equal(t, agentctx.Turtle, fd.Context)

	crt, ok := r.GetNamedPrimitive("crt")
	require.True(t, ok)
	assert.Equal(t, agentctx.Turtle, crt.BlockContext)
	assert.False(t, crt.InheritParentContext)

	ifp, ok := r.GetNamedPrimitive("if")
	require.True(t, ok)
	assert.True(t, ifp.InheritParentContext)

	count, ok := r.GetNamedPrimitive("count")
	require.True(t, ok)
	assert.True(t, IsReporter(count))
	assert.Equal(t, NormalPrecedence, count.Precedence)

	for _, name := range []string{"any?", "is-turtle?", "member?", "table:has-key?"} {
		p, ok := r.GetNamedPrimitive(name)
		if assert.True(t, ok, "missing primitive %s", name) {
			assert.True(t, IsReporter(p), name)
			assert.Equal(t, Boolean, p.Return, name)
		}
	}

	plus, ok := r.GetNamedPrimitive("+")
	require.True(t, ok)
	assert.True(t, plus.IsInfix())
	assert.Equal(t, 7, plus.Precedence)

	_, ok = r.GetNamedPrimitive("no-such-thing")
	assert.False(t, ok)
}

func TestDefaultRegistry_Extensions(t *testing.T) {
	r := defaultRegistry(t)

	p, ok := r.GetNamedPrimitive("table:make")
	require.True(t, ok)
	assert.Equal(t, "table", p.Extension)
	assert.Equal(t, "table:make", p.FullName())

	_, ok = r.GetPrimitive("", "make")
	assert.False(t, ok, "extension primitives do not leak into the core namespace")
	assert.Equal(t, []string{"array", "csv", "string", "table"}, r.Extensions())
	assert.True(t, r.HasExtension("csv"))
	assert.False(t, r.HasExtension("gis"))
}

func TestDefaultRegistry_VariablesAndConstants(t *testing.T) {
	r := defaultRegistry(t)

	v, ok := r.GetVariable("pcolor")
	require.True(t, ok)
	assert.Equal(t, agentctx.Turtle|agentctx.Patch, v.Context)
	assert.Equal(t, "patches", v.Owner)

	v, ok = r.GetVariable("end1")
	require.True(t, ok)
	assert.Equal(t, "links", v.Owner)
	assert.True(t, v.ReadOnly)

	assert.True(t, r.IsConstant("red"))
	assert.True(t, r.IsConstant("TRUE"))
	assert.False(t, r.IsConstant("crimson"))
}

func TestRegister_InvalidIgnored(t *testing.T) {
	r := NewRegistry()
	r.Register("", &Primitive{Name: "", Context: agentctx.All})
	r.Register("", &Primitive{Name: "bad name", Context: agentctx.All})
	r.Register("", &Primitive{Name: "noctx"})
	r.Register("", &Primitive{Name: "empty-arg", Context: agentctx.All, Right: []Argument{{}}})
	r.Register("", &Primitive{Name: "two-repeats", Context: agentctx.All, Right: []Argument{
		{Types: Number, Repeatable: true},
		{Types: Number, Repeatable: true},
	}})
	r.Register("", nil)
	assert.Empty(t, r.GetCompletions(nil))

	r.Register("", &Primitive{Name: "ok", Context: agentctx.All})
	assert.Equal(t, []string{"ok"}, r.GetCompletions(nil))
}

func TestRegister_Overwrites(t *testing.T) {
	r := NewRegistry()
	r.Register("x", &Primitive{Name: "p", Context: agentctx.All})
	r.Register("x", &Primitive{Name: "p", Context: agentctx.Observer, Return: Number})
	p, ok := r.GetNamedPrimitive("x:p")
	require.True(t, ok)
	assert.Equal(t, agentctx.Observer, p.Context)
}

func TestGetCompletions(t *testing.T) {
	r := defaultRegistry(t)

	core := r.GetCompletions(nil)
	assert.True(t, sort.StringsAreSorted(core))
	assert.Contains(t, core, "ask")
	for _, c := range core {
		assert.False(t, strings.Contains(c, ":"), c)
	}

	withTable := r.GetCompletions([]string{"table", "table", "unknown"})
	assert.True(t, sort.StringsAreSorted(withTable))
	assert.Contains(t, withTable, "table:make")
	assert.NotContains(t, withTable, "csv:from-row")
	seen := make(map[string]bool)
	for _, c := range withTable {
		assert.False(t, seen[c], "duplicate %s", c)
		seen[c] = true
	}
}

func TestArgRangeAndSlots(t *testing.T) {
	r := defaultRegistry(t)

	list, _ := r.GetNamedPrimitive("list")
	min, max := list.ArgRange(false)
	assert.Equal(t, 2, min)
	assert.Equal(t, 2, max)
	min, max = list.ArgRange(true)
	assert.Equal(t, 0, min)
	assert.Equal(t, -1, max)

	crt, _ := r.GetNamedPrimitive("create-turtles")
	min, max = crt.ArgRange(false)
	assert.Equal(t, 1, min)
	assert.Equal(t, 2, max)

	foreach, _ := r.GetNamedPrimitive("foreach")
	slots := foreach.Slots(3)
	require.Len(t, slots, 3)
	assert.Equal(t, List, slots[0].Types)
	assert.Equal(t, List, slots[1].Types)
	assert.Equal(t, AnonCommand, slots[2].Types)

	run, _ := r.GetNamedPrimitive("run")
	assert.Len(t, run.Slots(1), 1)
}

func TestDescribe(t *testing.T) {
	r := defaultRegistry(t)
	ask, _ := r.GetNamedPrimitive("ask")
	assert.Equal(t, "ask agent [ commands ]", Describe(ask))
	fd, _ := r.GetNamedPrimitive("fd")
	assert.Equal(t, "forward number (turtle only)", Describe(fd))
	forward, _ := r.GetNamedPrimitive("forward")
	assert.Equal(t, Describe(forward), Describe(fd), "an alias describes its primary name")
	count, _ := r.GetNamedPrimitive("count")
	assert.Equal(t, "count agentset => number", Describe(count))
}

func TestLoadCatalog(t *testing.T) {
	r := NewRegistry()
	err := r.LoadCatalog(strings.NewReader(`
extension: gis
primitives:
  - {name: load-dataset, ctx: "O---", ret: wildcard, right: [string]}
variables:
  - {name: elevation, ctx: "--P-", type: number}
`))
	require.NoError(t, err)
	p, ok := r.GetNamedPrimitive("gis:load-dataset")
	require.True(t, ok)
	assert.Equal(t, agentctx.Observer, p.Context)
	v, ok := r.GetVariable("elevation")
	require.True(t, ok)
	assert.Equal(t, "patches", v.Owner)

	err = r.LoadCatalog(strings.NewReader(`
primitives:
  - {name: bad, right: [colour]}
`))
	assert.Error(t, err)

	err = r.LoadCatalog(strings.NewReader(`unknown-key: 1`))
	assert.Error(t, err)
}

func TestParseArgument(t *testing.T) {
	arg, err := parseArgument("number|list*")
	require.NoError(t, err)
	assert.Equal(t, Number|List, arg.Types)
	assert.True(t, arg.Repeatable)
	assert.False(t, arg.Optional)
	assert.Equal(t, "number|list*", arg.String())

	arg, err = parseArgument("commandblock?")
	require.NoError(t, err)
	assert.True(t, arg.Optional)

	_, err = parseArgument("")
	assert.Error(t, err)
}
