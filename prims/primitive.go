// Copyright © 2024 The ELPS authors

package prims

import (
	"strings"

	"github.com/luthersystems/nlint/agentctx"
)

// Precedence levels for primitives. Reporters without an infix form bind at
// NormalPrecedence; commands never appear as operands.
const (
	CommandPrecedence = 0
	NormalPrecedence  = 10
)

// Primitive describes a built-in or extension-provided command or reporter.
// Primitives are constructed once when a catalog loads and never mutated.
type Primitive struct {
	// Extension is the owning extension. The core language uses "".
	Extension string
	Name      string
	// Canonical is the primary name when Name is an alias, as "forward"
	// is for fd. Empty for primary entries.
	Canonical string

	// Left is the infix left operand, if any.
	Left  *Argument
	Right []Argument

	// Return is Unit for commands.
	Return     Type
	Precedence int

	// Context is where the primitive itself may run.
	Context agentctx.Context

	// BlockContext is the context granted to a block argument. None means
	// the block's context is either introduced by an agent argument
	// (IntroducesContext) or inherited from the caller
	// (InheritParentContext).
	BlockContext agentctx.Context

	// DefaultArgs is the number of right arguments taken without
	// parentheses when an argument repeats. Zero means len(Right).
	DefaultArgs int
	// MinimumArgs is the fewest right arguments accepted in parentheses.
	// Negative means "every non-optional argument".
	MinimumArgs int

	IntroducesContext    bool
	InheritParentContext bool
	CanBeConcise         bool
	RightAssociative     bool

	Doc string
}

// FullName returns the name the primitive is written with in source, e.g.
// "table:make" or "forward".
func (p *Primitive) FullName() string {
	if p.Extension == "" {
		return p.Name
	}
	return p.Extension + ":" + p.Name
}

// CanonicalName is FullName with an alias replaced by the primary name.
func (p *Primitive) CanonicalName() string {
	if p.Canonical == "" {
		return p.FullName()
	}
	if p.Extension == "" {
		return p.Canonical
	}
	return p.Extension + ":" + p.Canonical
}

// IsReporter reports whether p returns a value.
func IsReporter(p *Primitive) bool {
	return p != nil && p.Return != Unit
}

// IsInfix reports whether p takes a left operand.
func (p *Primitive) IsInfix() bool {
	return p.Left != nil
}

// IsVariadic reports whether one of p's right arguments repeats.
func (p *Primitive) IsVariadic() bool {
	for _, a := range p.Right {
		if a.Repeatable {
			return true
		}
	}
	return false
}

// HasBlock reports whether any argument of p is a code block.
func (p *Primitive) HasBlock() bool {
	if p.Left != nil && p.Left.Types.IsBlock() {
		return true
	}
	for _, a := range p.Right {
		if a.Types.IsBlock() {
			return true
		}
	}
	return false
}

func (p *Primitive) required() int {
	n := 0
	for _, a := range p.Right {
		if !a.Optional {
			n++
		}
	}
	return n
}

// DefaultCount is the number of right arguments taken without parentheses.
func (p *Primitive) DefaultCount() int {
	if p.DefaultArgs > 0 {
		return p.DefaultArgs
	}
	return len(p.Right)
}

// ArgRange returns the accepted number of right arguments. max is -1 when
// any number is accepted.
func (p *Primitive) ArgRange(parenthesized bool) (min, max int) {
	if !p.IsVariadic() {
		return p.required(), len(p.Right)
	}
	if !parenthesized {
		return p.DefaultCount(), p.DefaultCount()
	}
	min = p.MinimumArgs
	if min < 0 {
		min = p.required()
	}
	return min, -1
}

// Slots expands p's right arguments to exactly n slots, repeating the
// repeatable argument as needed. When n is smaller than the fixed
// arguments the leading slots are returned.
func (p *Primitive) Slots(n int) []Argument {
	rep := -1
	for i, a := range p.Right {
		if a.Repeatable {
			rep = i
			break
		}
	}
	if rep < 0 {
		if n > len(p.Right) {
			n = len(p.Right)
		}
		return p.Right[:n]
	}
	fixedAfter := len(p.Right) - rep - 1
	reps := n - rep - fixedAfter
	if reps < 0 {
		reps = 0
	}
	out := make([]Argument, 0, n)
	out = append(out, p.Right[:rep]...)
	for i := 0; i < reps; i++ {
		out = append(out, p.Right[rep])
	}
	out = append(out, p.Right[rep+1:]...)
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Usage renders a short usage line such as "ask agentset [ commands ]".
func Usage(p *Primitive) string {
	var b strings.Builder
	if p.Left != nil {
		b.WriteString(p.Left.placeholder())
		b.WriteByte(' ')
	}
	b.WriteString(p.CanonicalName())
	for _, a := range p.Slots(p.DefaultCount()) {
		b.WriteByte(' ')
		if a.Optional {
			b.WriteString("(" + a.placeholder() + ")")
			continue
		}
		b.WriteString(a.placeholder())
	}
	return b.String()
}

// valid reports whether p is structurally sound enough to register.
func (p *Primitive) valid() bool {
	if p == nil || p.Name == "" || strings.ContainsAny(p.Name, " \t\n[]()") {
		return false
	}
	if p.Context == agentctx.None {
		return false
	}
	repeats := 0
	for _, a := range p.Right {
		if a.Types == Unit {
			return false
		}
		if a.Repeatable {
			repeats++
		}
	}
	if repeats > 1 {
		return false
	}
	if p.Left != nil && p.Left.Types == Unit {
		return false
	}
	return true
}

// Variable is a built-in agent or observer variable such as xcor or pcolor.
type Variable struct {
	Name    string
	Context agentctx.Context
	Type    Type
	// Owner is the agent class the variable belongs to: "turtles",
	// "patches", "links" or "observer".
	Owner    string
	ReadOnly bool
}
