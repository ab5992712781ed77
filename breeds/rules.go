// Copyright © 2024 The ELPS authors

package breeds

import (
	"github.com/luthersystems/nlint/agentctx"
	"github.com/luthersystems/nlint/prims"
)

// Slot says which of a breed's names a rule expects.
type Slot int

const (
	Plural Slot = iota
	Singular
)

func (s Slot) String() string {
	if s == Singular {
		return "singular"
	}
	return "plural"
}

// Position is where the breed name sits inside the identifier.
type Position int

const (
	// PosFirst: the name leads, as in <breeds>-here.
	PosFirst Position = iota
	// PosSecond: one word precedes the name, as in create-<breeds>.
	PosSecond
	// PosThird: two words precede the name, as in create-ordered-<breeds>.
	PosThird
	// PosMiddle: fixed text on both sides, as in in-<breed>-neighbors.
	PosMiddle
	// PosQuestion: a predicate, as in is-<breed>?.
	PosQuestion
	// PosNone: the identifier is the bare name.
	PosNone
)

// Family restricts a rule to breeds of certain kinds.
type Family uint8

const (
	FamilyTurtle Family = 1 << iota
	FamilyPatch
	FamilyUndirected
	FamilyDirected

	FamilyLink = FamilyUndirected | FamilyDirected
	FamilyAny  = FamilyTurtle | FamilyPatch | FamilyLink
)

// Includes reports whether k belongs to f.
func (f Family) Includes(k Kind) bool {
	switch k {
	case Turtle:
		return f&FamilyTurtle != 0
	case Patch:
		return f&FamilyPatch != 0
	case UndirectedLink:
		return f&FamilyUndirected != 0
	case DirectedLink:
		return f&FamilyDirected != 0
	}
	return false
}

// Tag is the token class an identifier matched by a rule receives.
type Tag int

const (
	Command Tag = iota
	Reporter
	Declaration
)

func (t Tag) String() string {
	switch t {
	case Command:
		return "command"
	case Reporter:
		return "reporter"
	case Declaration:
		return "declaration"
	}
	return "unknown"
}

// Rule is one breed-derived identifier template.
type Rule struct {
	Prefix   string
	Suffix   string
	Slot     Slot
	Position Position
	Family   Family
	Tag      Tag

	// Context is where the generated primitive may run.
	Context agentctx.Context
	Right   []prims.Argument
	Return  prims.Type

	// Introduces marks rules whose command block runs as the new agents of
	// the matched breed.
	Introduces bool
}

// Prototype renders the rule as an unfilled template, e.g. "create-<breeds>".
func (r *Rule) Prototype() string {
	hole := "<breeds>"
	if r.Slot == Singular {
		hole = "<breed>"
	}
	return r.Prefix + hole + r.Suffix
}

// IsBare reports whether the rule matches the breed name alone.
func (r *Rule) IsBare() bool {
	return r.Prefix == "" && r.Suffix == ""
}

// candidate extracts the breed name from word, or "" when word does not
// have the rule's shape.
func (r *Rule) candidate(word string) string {
	if len(word) <= len(r.Prefix)+len(r.Suffix) {
		return ""
	}
	if word[:len(r.Prefix)] != r.Prefix || word[len(word)-len(r.Suffix):] != r.Suffix {
		return ""
	}
	return word[len(r.Prefix) : len(word)-len(r.Suffix)]
}

var (
	argNumber    = prims.Argument{Types: prims.Number}
	argTurtle    = prims.Argument{Types: prims.TurtleType}
	argTurtleSet = prims.Argument{Types: prims.TurtleSet}
	argAgents    = prims.Argument{Types: prims.Agent | prims.AgentSet}
	argAny       = prims.Argument{Types: prims.Wildcard}
	argBlock     = prims.Argument{Types: prims.CommandBlock, Optional: true}
	argVarList   = prims.Argument{Types: prims.List}
)

func args(a ...prims.Argument) []prims.Argument { return a }

// Rules is the rule table in match order. Rules carrying more fixed text
// come before rules they overlap with so that guessing prefers the most
// specific template, and the bare name rules come last.
var Rules = []*Rule{
	// declarations
	{Suffix: "-own", Slot: Plural, Position: PosFirst, Family: FamilyAny, Tag: Declaration,
		Context: agentctx.All, Right: args(argVarList)},

	// link creation
	{Prefix: "create-", Suffix: "-with", Slot: Singular, Position: PosMiddle, Family: FamilyUndirected, Tag: Command,
		Context: agentctx.Turtle, Right: args(argTurtle, argBlock), Introduces: true},
	{Prefix: "create-", Suffix: "-with", Slot: Plural, Position: PosMiddle, Family: FamilyUndirected, Tag: Command,
		Context: agentctx.Turtle, Right: args(argTurtleSet, argBlock), Introduces: true},
	{Prefix: "create-", Suffix: "-to", Slot: Singular, Position: PosMiddle, Family: FamilyDirected, Tag: Command,
		Context: agentctx.Turtle, Right: args(argTurtle, argBlock), Introduces: true},
	{Prefix: "create-", Suffix: "-to", Slot: Plural, Position: PosMiddle, Family: FamilyDirected, Tag: Command,
		Context: agentctx.Turtle, Right: args(argTurtleSet, argBlock), Introduces: true},
	{Prefix: "create-", Suffix: "-from", Slot: Singular, Position: PosMiddle, Family: FamilyDirected, Tag: Command,
		Context: agentctx.Turtle, Right: args(argTurtle, argBlock), Introduces: true},
	{Prefix: "create-", Suffix: "-from", Slot: Plural, Position: PosMiddle, Family: FamilyDirected, Tag: Command,
		Context: agentctx.Turtle, Right: args(argTurtleSet, argBlock), Introduces: true},

	// turtle creation
	{Prefix: "create-ordered-", Slot: Plural, Position: PosThird, Family: FamilyTurtle, Tag: Command,
		Context: agentctx.Observer, Right: args(argNumber, argBlock), Introduces: true},
	{Prefix: "create-", Slot: Plural, Position: PosSecond, Family: FamilyTurtle, Tag: Command,
		Context: agentctx.Observer, Right: args(argNumber, argBlock), Introduces: true},
	{Prefix: "hatch-", Slot: Plural, Position: PosSecond, Family: FamilyTurtle, Tag: Command,
		Context: agentctx.Turtle, Right: args(argNumber, argBlock), Introduces: true},
	{Prefix: "sprout-", Slot: Plural, Position: PosSecond, Family: FamilyTurtle, Tag: Command,
		Context: agentctx.Patch, Right: args(argNumber, argBlock), Introduces: true},

	// directed link reporters
	{Prefix: "in-", Suffix: "-neighbors", Slot: Singular, Position: PosMiddle, Family: FamilyDirected, Tag: Reporter,
		Context: agentctx.Turtle, Return: prims.TurtleSet},
	{Prefix: "in-", Suffix: "-neighbor?", Slot: Singular, Position: PosMiddle, Family: FamilyDirected, Tag: Reporter,
		Context: agentctx.Turtle, Right: args(argTurtle), Return: prims.Boolean},
	{Prefix: "in-", Suffix: "-from", Slot: Singular, Position: PosMiddle, Family: FamilyDirected, Tag: Reporter,
		Context: agentctx.Turtle, Right: args(argTurtle), Return: prims.LinkType},
	{Prefix: "out-", Suffix: "-neighbors", Slot: Singular, Position: PosMiddle, Family: FamilyDirected, Tag: Reporter,
		Context: agentctx.Turtle, Return: prims.TurtleSet},
	{Prefix: "out-", Suffix: "-neighbor?", Slot: Singular, Position: PosMiddle, Family: FamilyDirected, Tag: Reporter,
		Context: agentctx.Turtle, Right: args(argTurtle), Return: prims.Boolean},
	{Prefix: "out-", Suffix: "-to", Slot: Singular, Position: PosMiddle, Family: FamilyDirected, Tag: Reporter,
		Context: agentctx.Turtle, Right: args(argTurtle), Return: prims.LinkType},
	{Prefix: "my-in-", Slot: Plural, Position: PosThird, Family: FamilyDirected, Tag: Reporter,
		Context: agentctx.Turtle, Return: prims.LinkSet},
	{Prefix: "my-out-", Slot: Plural, Position: PosThird, Family: FamilyDirected, Tag: Reporter,
		Context: agentctx.Turtle, Return: prims.LinkSet},

	// any link reporters
	{Prefix: "my-", Slot: Plural, Position: PosSecond, Family: FamilyLink, Tag: Reporter,
		Context: agentctx.Turtle, Return: prims.LinkSet},
	{Suffix: "-neighbors", Slot: Singular, Position: PosFirst, Family: FamilyUndirected, Tag: Reporter,
		Context: agentctx.Turtle, Return: prims.TurtleSet},
	{Suffix: "-neighbor?", Slot: Singular, Position: PosFirst, Family: FamilyUndirected, Tag: Reporter,
		Context: agentctx.Turtle, Right: args(argTurtle), Return: prims.Boolean},
	{Suffix: "-with", Slot: Singular, Position: PosFirst, Family: FamilyUndirected, Tag: Reporter,
		Context: agentctx.Turtle, Right: args(argTurtle), Return: prims.LinkType},

	// turtle reporters
	{Suffix: "-here", Slot: Plural, Position: PosFirst, Family: FamilyTurtle, Tag: Reporter,
		Context: agentctx.Turtle | agentctx.Patch, Return: prims.TurtleSet},
	{Suffix: "-at", Slot: Plural, Position: PosFirst, Family: FamilyTurtle, Tag: Reporter,
		Context: agentctx.Turtle | agentctx.Patch, Right: args(argNumber, argNumber), Return: prims.TurtleSet},
	{Suffix: "-on", Slot: Plural, Position: PosFirst, Family: FamilyTurtle, Tag: Reporter,
		Context: agentctx.All, Right: args(argAgents), Return: prims.TurtleSet},

	// predicates
	{Prefix: "is-", Suffix: "?", Slot: Singular, Position: PosQuestion, Family: FamilyAny, Tag: Reporter,
		Context: agentctx.All, Right: args(argAny), Return: prims.Boolean},

	// bare names
	{Slot: Plural, Position: PosNone, Family: FamilyAny, Tag: Reporter,
		Context: agentctx.All, Return: prims.AgentSet},
	{Slot: Singular, Position: PosNone, Family: FamilyTurtle, Tag: Reporter,
		Context: agentctx.All, Right: args(argNumber), Return: prims.TurtleType | prims.Nobody},
	{Slot: Singular, Position: PosNone, Family: FamilyLink, Tag: Reporter,
		Context: agentctx.All, Right: args(argNumber, argNumber), Return: prims.LinkType | prims.Nobody},
}
