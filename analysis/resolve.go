// Copyright © 2024 The ELPS authors

package analysis

import (
	"github.com/luthersystems/nlint/agentctx"
	"github.com/luthersystems/nlint/breeds"
	"github.com/luthersystems/nlint/prims"
	"github.com/luthersystems/nlint/syntax"
)

// Callee is what a word resolves to in a lint context.
type Callee struct {
	Class     syntax.Class
	Primitive *prims.Primitive
	// Procedure is set for procedures defined in the analyzed document.
	Procedure *Procedure
	// Breed is set for breed words.
	Breed breeds.Match
}

// Known reports whether the word resolved to anything callable.
func (c Callee) Known() bool {
	return c.Primitive != nil
}

// ResolveCall resolves word against the registry, the procedures of the
// document, procedures known only to the preprocess table (such as those
// of linked documents) and the words of the live breed list.
func (lc *LintContext) ResolveCall(word string) Callee {
	if lc.reg != nil {
		if p, ok := lc.reg.GetNamedPrimitive(word); ok {
			return Callee{Class: syntax.ClassPrimitive, Primitive: p}
		}
	}
	if proc, ok := lc.Procedures[word]; ok {
		return Callee{
			Class:     syntax.ClassProcedure,
			Primitive: procedurePrimitive(word, len(proc.Arguments), proc.Reporter),
			Procedure: proc,
		}
	}
	if lc.pre != nil {
		if e, ok := lc.pre.Procedures[word]; ok {
			return Callee{Class: syntax.ClassProcedure, Primitive: procedurePrimitive(word, e.Arity, e.Reporter)}
		}
	}
	if m := breeds.MatchWord(word, lc, false); usable(m) {
		return Callee{Class: syntax.ClassBreed, Primitive: m.Primitive(word), Breed: m}
	}
	return Callee{}
}

// VariableContext returns the context that may read or set the built-in
// or breed-owned variable name. ok is false for anything else.
func (lc *LintContext) VariableContext(name string) (ctx agentctx.Context, ok bool) {
	if lc.reg != nil {
		if v, found := lc.reg.GetVariable(name); found {
			return v.Context, true
		}
	}
	b, found := lc.BreedFromVariable(name)
	if !found {
		return agentctx.None, false
	}
	ctx = b.Kind.Context()
	if b.Kind == breeds.Patch {
		// Turtles read and set the variables of the patch they stand on.
		ctx |= agentctx.Turtle
	}
	return ctx, true
}

// agentContext is the context of the agents a value denotes: a breed or
// agentset reporter, an agent reporter, or a call filtering one of those.
// It falls back to every agent kind.
func (lc *LintContext) agentContext(n *syntax.Node) agentctx.Context {
	if n == nil {
		return agentctx.Agents
	}
	switch n.Kind {
	case syntax.Command, syntax.Reporter, syntax.Identifier:
	default:
		return agentctx.Agents
	}
	if b, ok := lc.Breeds[n.Name]; ok {
		return b.Kind.Context()
	}
	callee := lc.ResolveCall(n.Name)
	if callee.Primitive == nil {
		return agentctx.Agents
	}
	if ctx := typeContext(callee.Primitive.Return); ctx != agentctx.None {
		return ctx
	}
	for _, arg := range n.Args() {
		if !arg.Kind.IsBlock() {
			return lc.agentContext(arg)
		}
	}
	return agentctx.Agents
}

// typeContext maps agent types to contexts. Generic agent types map to
// None so callers keep looking.
func typeContext(t prims.Type) agentctx.Context {
	var ctx agentctx.Context
	if t.Has(prims.TurtleType | prims.TurtleSet) {
		ctx |= agentctx.Turtle
	}
	if t.Has(prims.PatchType | prims.PatchSet) {
		ctx |= agentctx.Patch
	}
	if t.Has(prims.LinkType | prims.LinkSet) {
		ctx |= agentctx.Link
	}
	return ctx
}
