// Copyright © 2024 The ELPS authors

// Package syntax is the read-only syntax tree shared by the parser and the
// analysis passes.
//
// Nodes are position indexed by byte offset into the source. Children are
// enumerated in source order and tagged with a role so consumers can ask for
// "the name" or "the arguments" of a node without knowing its layout.
package syntax

import "fmt"

// Kind is the syntactic category of a node.
type Kind int

const (
	Program Kind = iota
	Extensions
	Includes
	Globals
	BreedDecl
	BreedsOwn
	Procedure
	Command
	Reporter
	Identifier
	Literal
	CodeBlock
	ReporterBlock
	ListLiteral
	AnonProc
	Error
)

var kindNames = [...]string{
	Program:       "program",
	Extensions:    "extensions",
	Includes:      "includes",
	Globals:       "globals",
	BreedDecl:     "breed",
	BreedsOwn:     "breeds-own",
	Procedure:     "procedure",
	Command:       "command",
	Reporter:      "reporter",
	Identifier:    "identifier",
	Literal:       "literal",
	CodeBlock:     "code-block",
	ReporterBlock: "reporter-block",
	ListLiteral:   "list",
	AnonProc:      "anonymous-procedure",
	Error:         "error",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsCall reports whether nodes of kind k invoke a primitive or procedure.
func (k Kind) IsCall() bool {
	return k == Command || k == Reporter
}

// IsBlock reports whether nodes of kind k are bracketed code.
func (k Kind) IsBlock() bool {
	return k == CodeBlock || k == ReporterBlock || k == AnonProc
}

// Role names the relationship of a child to its parent.
type Role string

const (
	RoleNone  Role = ""
	RoleName  Role = "name"
	RoleParam Role = "param"
	RoleBody  Role = "body"
	RoleArg   Role = "arg"
	RoleLeft  Role = "left"
	RoleItem  Role = "item"
	// RoleExtra marks arguments a call did not ask for, such as a value
	// written after a procedure that takes no inputs.
	RoleExtra Role = "extra"
)

// Class records how the parser classified an identifier.
type Class int

const (
	ClassUnknown Class = iota
	ClassPrimitive
	ClassProcedure
	ClassBreed
	ClassVariable
	ClassConstant
	ClassKeyword
)

func (c Class) String() string {
	switch c {
	case ClassPrimitive:
		return "primitive"
	case ClassProcedure:
		return "procedure"
	case ClassBreed:
		return "breed"
	case ClassVariable:
		return "variable"
	case ClassConstant:
		return "constant"
	case ClassKeyword:
		return "keyword"
	}
	return "unknown"
}

// Span is a half-open byte range [Start, End) in the source.
type Span struct {
	Start int
	End   int
}

// Contains reports whether offset lies within s. The end offset counts as
// inside so a cursor placed right after a word still touches it.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset <= s.End
}

// Len is the number of bytes covered by s.
func (s Span) Len() int {
	return s.End - s.Start
}

// Join returns the smallest span covering s and t.
func (s Span) Join(t Span) Span {
	if t.Start < s.Start {
		s.Start = t.Start
	}
	if t.End > s.End {
		s.End = t.End
	}
	return s
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d", s.Start, s.End)
}

// Node is one element of the syntax tree.
type Node struct {
	Kind Kind
	Span Span
	// NameSpan covers the word that names the node: the primitive of a call,
	// the procedure name of a definition.
	NameSpan Span
	// Name is the lower-cased word for identifiers, calls and procedure
	// definitions, or the keyword of a declaration.
	Name  string
	Role  Role
	Class Class
	// Paren is set on calls written inside parentheses.
	Paren bool
	// Reporter is set on procedures declared with to-report.
	Reporter bool
	// Message describes the problem for Error nodes.
	Message  string
	Children []*Node
}

// Child returns the first child with the given role.
func (n *Node) Child(role Role) *Node {
	for _, c := range n.Children {
		if c.Role == role {
			return c
		}
	}
	return nil
}

// Named returns every child with the given role, in source order.
func (n *Node) Named(role Role) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Role == role {
			out = append(out, c)
		}
	}
	return out
}

// Args returns the arguments of a call: the left operand followed by the
// right arguments. Extra arguments are not included.
func (n *Node) Args() []*Node {
	var out []*Node
	if l := n.Child(RoleLeft); l != nil {
		out = append(out, l)
	}
	return append(out, n.Named(RoleArg)...)
}

// Add appends c to n's children with the given role and grows n's span to
// cover it.
func (n *Node) Add(role Role, c *Node) *Node {
	if c == nil {
		return n
	}
	c.Role = role
	n.Children = append(n.Children, c)
	n.Span = n.Span.Join(c.Span)
	return n
}

func (n *Node) String() string {
	if n.Name != "" {
		return fmt.Sprintf("%s %q [%s]", n.Kind, n.Name, n.Span)
	}
	return fmt.Sprintf("%s [%s]", n.Kind, n.Span)
}
