// Copyright © 2024 The ELPS authors

// Package agentctx models NetLogo execution contexts: the set of agent kinds
// (observer, turtle, patch, link) that may run a piece of code.
//
// A context is a 4-bit set. Sequential statements combine by intersection,
// and nested code only ever narrows the context it inherits. Two contexts
// conflict when their intersection is empty.
package agentctx

import "strings"

// Context is a set of agent kinds.
type Context uint8

const (
	Observer Context = 1 << iota
	Turtle
	Patch
	Link
)

const (
	// None is the empty context. Code that requires None can never run.
	None Context = 0
	// All is the unconstrained context.
	All = Observer | Turtle | Patch | Link
	// Agents is every context except the observer.
	Agents = Turtle | Patch | Link
)

var letters = [4]struct {
	flag Context
	c    byte
}{
	{Observer, 'O'},
	{Turtle, 'T'},
	{Patch, 'P'},
	{Link, 'L'},
}

// Parse reads the NetLogo agent class notation ("OTPL", "-T--", "O---").
// Any character other than O, T, P or L is ignored, so dashes act as
// placeholders. Parse is case insensitive.
func Parse(s string) Context {
	var c Context
	for _, r := range strings.ToUpper(s) {
		switch r {
		case 'O':
			c |= Observer
		case 'T':
			c |= Turtle
		case 'P':
			c |= Patch
		case 'L':
			c |= Link
		}
	}
	return c
}

// String renders c in four-slot agent class notation, e.g. "-TP-".
func (c Context) String() string {
	var b [4]byte
	for i, l := range letters {
		if c&l.flag != 0 {
			b[i] = l.c
		} else {
			b[i] = '-'
		}
	}
	return string(b[:])
}

// Describe renders c as a human readable list ("turtle or patch").
func (c Context) Describe() string {
	if c == None {
		return "no agent"
	}
	if c == All {
		return "any agent"
	}
	var names []string
	if c.Has(Observer) {
		names = append(names, "observer")
	}
	if c.Has(Turtle) {
		names = append(names, "turtle")
	}
	if c.Has(Patch) {
		names = append(names, "patch")
	}
	if c.Has(Link) {
		names = append(names, "link")
	}
	return strings.Join(names, " or ")
}

// Has reports whether every kind in k is present in c.
func (c Context) Has(k Context) bool {
	return c&k == k
}

// Combine returns the context under which two sequential statements can both
// run. Combine is associative and commutative so statement lists fold left to
// right.
func Combine(a, b Context) Context {
	return a & b
}

// NoContext reports whether c is empty, i.e. no agent can run the code.
func NoContext(c Context) bool {
	return c&All == None
}

// Conflicts reports whether a and b have no agent kind in common.
func Conflicts(a, b Context) bool {
	return NoContext(Combine(a, b))
}

// Inherits reports whether child fits entirely inside parent.
func (c Context) Inherits(parent Context) bool {
	return c&^parent == None
}

// Narrow returns the effective context of child code nested in parent. A
// child declared broader than its parent is cut down to the parent; contexts
// never widen with nesting.
func Narrow(child, parent Context) Context {
	return child & parent
}

// Fold combines a sequence of contexts starting from start. It stops
// narrowing at the first element that would empty the accumulated context
// and reports that element's index; -1 means no conflict.
func Fold(start Context, cs ...Context) (Context, int) {
	acc := start
	for i, c := range cs {
		if Conflicts(acc, c) {
			return acc, i
		}
		acc = Combine(acc, c)
	}
	return acc, -1
}
