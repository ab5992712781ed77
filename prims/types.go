// Copyright © 2024 The ELPS authors

package prims

import (
	"fmt"
	"strings"
)

// Type is a set of NetLogo value types accepted or produced by a primitive.
type Type uint32

const (
	Wildcard Type = 1 << iota
	String
	Number
	List
	Boolean
	Agent
	AgentSet
	Nobody
	TurtleType
	PatchType
	LinkType
	TurtleSet
	PatchSet
	LinkSet
	CommandBlock
	ReporterBlock
	CodeBlock
	NumberBlock
	BooleanBlock
	OtherBlock
	Symbol
	Reference
	AnonCommand
	AnonReporter

	// Unit is the return type of commands.
	Unit Type = 0
)

// Blocks is every bracketed code type.
const Blocks = CommandBlock | ReporterBlock | CodeBlock | NumberBlock | BooleanBlock | OtherBlock

// ReporterBlocks is every bracketed code type that evaluates to a value.
const ReporterBlocks = ReporterBlock | NumberBlock | BooleanBlock | OtherBlock

// Agents is every agent or agentset type.
const Agents = Agent | AgentSet | TurtleType | PatchType | LinkType | TurtleSet | PatchSet | LinkSet

// Anonymous is either anonymous procedure type.
const Anonymous = AnonCommand | AnonReporter

var typeNames = []struct {
	t    Type
	name string
}{
	{Wildcard, "wildcard"},
	{String, "string"},
	{Number, "number"},
	{List, "list"},
	{Boolean, "boolean"},
	{Agent, "agent"},
	{AgentSet, "agentset"},
	{Nobody, "nobody"},
	{TurtleType, "turtle"},
	{PatchType, "patch"},
	{LinkType, "link"},
	{TurtleSet, "turtleset"},
	{PatchSet, "patchset"},
	{LinkSet, "linkset"},
	{CommandBlock, "commandblock"},
	{ReporterBlock, "reporterblock"},
	{CodeBlock, "codeblock"},
	{NumberBlock, "numberblock"},
	{BooleanBlock, "booleanblock"},
	{OtherBlock, "otherblock"},
	{Symbol, "symbol"},
	{Reference, "reference"},
	{AnonCommand, "command"},
	{AnonReporter, "reporter"},
}

// ParseType reads a single type name as used by the catalogs.
func ParseType(name string) (Type, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "unit" || name == "" {
		return Unit, nil
	}
	for _, tn := range typeNames {
		if tn.name == name {
			return tn.t, nil
		}
	}
	return Unit, fmt.Errorf("unknown type: %q", name)
}

// Has reports whether t accepts any of the types in u.
func (t Type) Has(u Type) bool {
	return t&u != 0
}

// IsBlock reports whether t accepts a bracketed code block.
func (t Type) IsBlock() bool {
	return t.Has(Blocks)
}

func (t Type) String() string {
	if t == Unit {
		return "unit"
	}
	var parts []string
	for _, tn := range typeNames {
		if t&tn.t != 0 {
			parts = append(parts, tn.name)
		}
	}
	return strings.Join(parts, "|")
}

// Argument describes one input slot of a primitive.
type Argument struct {
	Types      Type
	Repeatable bool
	Optional   bool
}

// parseArgument reads the compact catalog notation: type names joined with
// '|', followed by '*' for repeatable or '?' for optional.
func parseArgument(spec string) (Argument, error) {
	var arg Argument
	spec = strings.TrimSpace(spec)
	trimmed := strings.TrimRight(spec, "*?")
	suffix := spec[len(trimmed):]
	arg.Repeatable = strings.Contains(suffix, "*")
	arg.Optional = strings.Contains(suffix, "?")
	spec = trimmed
	for _, name := range strings.Split(spec, "|") {
		t, err := ParseType(name)
		if err != nil {
			return arg, err
		}
		arg.Types |= t
	}
	if arg.Types == Unit {
		return arg, fmt.Errorf("argument %q accepts no types", spec)
	}
	return arg, nil
}

func (a Argument) String() string {
	s := a.Types.String()
	if a.Repeatable {
		s += "*"
	}
	if a.Optional {
		s += "?"
	}
	return s
}

// placeholder is the word used for an argument in usage strings.
func (a Argument) placeholder() string {
	switch {
	case a.Types.Has(CommandBlock):
		return "[ commands ]"
	case a.Types.Has(ReporterBlocks | CodeBlock):
		return "[ reporter ]"
	case a.Types.Has(AnonCommand):
		return "anonymous-command"
	case a.Types.Has(AnonReporter):
		return "anonymous-reporter"
	case a.Types.Has(Reference | Symbol):
		return "variable"
	case a.Types.Has(Wildcard):
		return "value"
	default:
		first := a.Types & -a.Types
		return first.String()
	}
}
