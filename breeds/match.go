// Copyright © 2024 The ELPS authors

package breeds

import (
	"strings"

	"github.com/luthersystems/nlint/agentctx"
	"github.com/luthersystems/nlint/prims"
)

// Match is the outcome of matching one identifier. The zero value has
// Valid false and means the word has no breed shape the engine recognizes.
type Match struct {
	Valid bool
	// Guessed is set when the breed is not declared and was accepted only
	// because guessing was enabled.
	Guessed   bool
	Singular  string
	Plural    string
	Kind      Kind
	Rule      *Rule
	Prototype string
	// Context is where the generated primitive may run.
	Context agentctx.Context
}

// Breed returns the matched breed.
func (m Match) Breed() Breed {
	return Breed{Singular: m.Singular, Plural: m.Plural, Kind: m.Kind}
}

// BlockContext is the context granted to the primitive's command block.
// It is None for rules without a block.
func (m Match) BlockContext() agentctx.Context {
	if !m.Valid || !m.Rule.Introduces {
		return agentctx.None
	}
	return m.Kind.Context()
}

// Primitive synthesizes the primitive the matched word stands for so callers
// can treat it like a catalog entry.
func (m Match) Primitive(word string) *prims.Primitive {
	if !m.Valid {
		return nil
	}
	r := m.Rule
	p := &prims.Primitive{
		Name:        strings.ToLower(word),
		Right:       r.Right,
		Return:      m.returnType(),
		Context:     r.Context,
		MinimumArgs: -1,
		Doc:         r.Prototype(),
	}
	if p.Return != prims.Unit {
		p.Precedence = prims.NormalPrecedence
	}
	if r.Introduces {
		p.BlockContext = m.BlockContext()
	}
	return p
}

func (m Match) returnType() prims.Type {
	ret := m.Rule.Return
	if ret.Has(prims.AgentSet) {
		ret = ret&^prims.AgentSet | SetType(m.Kind)
	}
	return ret
}

// SetType returns the agentset type of agents of kind k.
func SetType(k Kind) prims.Type {
	switch k {
	case Turtle:
		return prims.TurtleSet
	case Patch:
		return prims.PatchSet
	default:
		return prims.LinkSet
	}
}

// MatchWord tests word against the rule table. Rules are tried in order and the
// first whose extracted name is a known breed of an allowed kind wins.
//
// With guessing, a word that matches no known breed is still accepted by the
// first non-bare rule whose candidate is unclaimed by any breed. Guessing is
// meant for classifying words while the user is still typing a declaration.
func MatchWord(word string, known Lookup, guessing bool) Match {
	word = strings.ToLower(word)
	if known == nil {
		known = Set(nil)
	}
	for _, r := range Rules {
		cand := r.candidate(word)
		if cand == "" {
			continue
		}
		b, ok := lookup(known, r.Slot, cand)
		if !ok || !r.Family.Includes(b.Kind) {
			continue
		}
		return newMatch(r, b, false)
	}
	if !guessing {
		return Match{}
	}
	for _, r := range Rules {
		if r.IsBare() || r.Tag == Declaration {
			continue
		}
		cand := r.candidate(word)
		if cand == "" || !plausible(cand) || claimed(known, cand) {
			continue
		}
		b := Breed{Kind: guessKind(r.Family)}
		if r.Slot == Singular {
			b.Singular, b.Plural = cand, PluralName(cand)
		} else {
			b.Singular, b.Plural = SingularName(cand), cand
		}
		return newMatch(r, b, true)
	}
	return Match{}
}

func newMatch(r *Rule, b Breed, guessed bool) Match {
	return Match{
		Valid:     true,
		Guessed:   guessed,
		Singular:  b.Singular,
		Plural:    b.Plural,
		Kind:      b.Kind,
		Rule:      r,
		Prototype: r.Prototype(),
		Context:   r.Context,
	}
}

func lookup(known Lookup, slot Slot, name string) (Breed, bool) {
	if slot == Singular {
		return known.BreedBySingular(name)
	}
	return known.BreedByPlural(name)
}

func claimed(known Lookup, name string) bool {
	if _, ok := known.BreedByPlural(name); ok {
		return true
	}
	_, ok := known.BreedBySingular(name)
	return ok
}

// plausible rejects candidates that cannot be breed names.
func plausible(name string) bool {
	if strings.HasPrefix(name, "-") || strings.HasSuffix(name, "-") {
		return false
	}
	return !strings.ContainsAny(name, ":?[]()\"")
}

func guessKind(f Family) Kind {
	switch {
	case f&FamilyTurtle != 0:
		return Turtle
	case f&FamilyUndirected != 0:
		return UndirectedLink
	case f&FamilyDirected != 0:
		return DirectedLink
	default:
		return Patch
	}
}
