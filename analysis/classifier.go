// Copyright © 2024 The ELPS authors

package analysis

import (
	"github.com/luthersystems/nlint/agentctx"
	"github.com/luthersystems/nlint/breeds"
	"github.com/luthersystems/nlint/parser"
	"github.com/luthersystems/nlint/prims"
	"github.com/luthersystems/nlint/syntax"
)

// maxParses bounds the parse/preprocess loop. Declarations are recognized
// without classification, so the table is stable after one scan and the
// second parse always agrees with it.
const maxParses = 2

// Classifier answers the parser's questions from the registry and a
// preprocess table.
type Classifier struct {
	reg *prims.Registry
	pre *PreprocessContext
}

var _ parser.Classifier = (*Classifier)(nil)

// NewClassifier returns a classifier over reg and pre. pre may be nil.
func NewClassifier(reg *prims.Registry, pre *PreprocessContext) *Classifier {
	if pre == nil {
		pre = NewPreprocessContext("")
	}
	return &Classifier{reg: reg, pre: pre}
}

// Classify checks, in order: primitives, procedures, words of declared
// breeds, variables, constants, and finally breed words guessed from names
// nothing else claims.
func (c *Classifier) Classify(word string) (syntax.Class, *prims.Primitive) {
	if c.reg != nil {
		if p, ok := c.reg.GetNamedPrimitive(word); ok {
			return syntax.ClassPrimitive, p
		}
	}
	if e, ok := c.pre.Procedures[word]; ok {
		return syntax.ClassProcedure, procedurePrimitive(word, e.Arity, e.Reporter)
	}
	if m := breeds.MatchWord(word, c.pre, false); usable(m) {
		return syntax.ClassBreed, m.Primitive(word)
	}
	if c.isVariable(word) {
		return syntax.ClassVariable, nil
	}
	if c.reg != nil && c.reg.IsConstant(word) {
		return syntax.ClassConstant, nil
	}
	if m := breeds.MatchWord(word, c.pre, true); usable(m) {
		return syntax.ClassBreed, m.Primitive(word)
	}
	return syntax.ClassUnknown, nil
}

func (c *Classifier) isVariable(word string) bool {
	if _, ok := c.pre.Globals[word]; ok {
		return true
	}
	if _, ok := c.pre.Variables[word]; ok {
		return true
	}
	if c.reg == nil {
		return false
	}
	_, ok := c.reg.GetVariable(word)
	return ok
}

// usable reports whether a breed match names a callable word. Declaration
// rules (<breeds>-own) only appear at top level.
func usable(m breeds.Match) bool {
	return m.Valid && m.Rule.Tag != breeds.Declaration
}

// procedurePrimitive describes a user procedure the way the parser and
// argument checks see primitives: every input accepts any value.
func procedurePrimitive(name string, arity int, reporter bool) *prims.Primitive {
	p := &prims.Primitive{
		Name:        name,
		Context:     agentctx.All,
		MinimumArgs: -1,
	}
	for i := 0; i < arity; i++ {
		p.Right = append(p.Right, prims.Argument{Types: prims.Wildcard})
	}
	if reporter {
		p.Return = prims.Wildcard
		p.Precedence = prims.NormalPrecedence
	}
	return p
}

// Parse parses src and refreshes pre from the result, parsing again when
// the refreshed table changes how words are classified. Words declared in
// the linked tables, such as those of included files, are classified too;
// pre itself only ever holds the facts of src.
func Parse(reg *prims.Registry, pre *PreprocessContext, file, src string, linked ...*PreprocessContext) *syntax.Tree {
	var tree *syntax.Tree
	for i := 0; i < maxParses; i++ {
		before := pre.Signature()
		table := pre
		if len(linked) > 0 {
			table = MergePreprocess(pre.Scope, append([]*PreprocessContext{pre}, linked...)...)
		}
		tree = parser.Parse(file, src, NewClassifier(reg, table))
		pre.MarkDirty()
		pre.ParseState(tree)
		if pre.Signature() == before {
			break
		}
	}
	return tree
}
