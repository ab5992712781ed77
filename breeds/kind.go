// Copyright © 2024 The ELPS authors

// Package breeds recognizes identifiers generated from breed declarations.
//
// Declaring `breed [ trains train ]` brings a family of words into the
// language: create-trains, trains-here, is-train? and so on. None of them
// appear in the primitive catalog. The engine matches a word against an
// ordered rule table, extracts the breed name at the rule's slot and accepts
// the first rule whose candidate is a known breed.
package breeds

import (
	"sort"

	"github.com/luthersystems/nlint/agentctx"
)

// Kind is the agent class a breed belongs to.
type Kind int

const (
	Turtle Kind = iota
	Patch
	UndirectedLink
	DirectedLink
)

func (k Kind) String() string {
	switch k {
	case Turtle:
		return "turtle"
	case Patch:
		return "patch"
	case UndirectedLink:
		return "undirected-link"
	case DirectedLink:
		return "directed-link"
	}
	return "unknown"
}

// IsLink reports whether k is either link kind.
func (k Kind) IsLink() bool {
	return k == UndirectedLink || k == DirectedLink
}

// Context returns the execution context of an agent of kind k.
func (k Kind) Context() agentctx.Context {
	switch k {
	case Turtle:
		return agentctx.Turtle
	case Patch:
		return agentctx.Patch
	case UndirectedLink, DirectedLink:
		return agentctx.Link
	}
	return agentctx.None
}

// Breed is the name pair and kind of a declared breed.
type Breed struct {
	Singular string
	Plural   string
	Kind     Kind
}

// Lookup exposes the currently known breeds to the matcher.
type Lookup interface {
	// BreedByPlural reports the breed whose plural name is name.
	BreedByPlural(name string) (Breed, bool)
	// BreedBySingular reports the breed whose singular name is name.
	BreedBySingular(name string) (Breed, bool)
}

// Set is a Lookup over a fixed list of breeds keyed by plural name.
type Set map[string]Breed

// NewSet returns a Set holding bs. Later breeds replace earlier ones with
// the same plural name.
func NewSet(bs ...Breed) Set {
	s := make(Set, len(bs))
	for _, b := range bs {
		s[b.Plural] = b
	}
	return s
}

// Defaults are the breeds every model has.
func Defaults() []Breed {
	return []Breed{
		{Singular: "turtle", Plural: "turtles", Kind: Turtle},
		{Singular: "patch", Plural: "patches", Kind: Patch},
		{Singular: "link", Plural: "links", Kind: UndirectedLink},
	}
}

func (s Set) BreedByPlural(name string) (Breed, bool) {
	b, ok := s[name]
	return b, ok
}

func (s Set) BreedBySingular(name string) (Breed, bool) {
	// Iterate in a stable order so duplicate singulars resolve the same way
	// on every call.
	plurals := make([]string, 0, len(s))
	for p := range s {
		plurals = append(plurals, p)
	}
	sort.Strings(plurals)
	for _, p := range plurals {
		if s[p].Singular == name {
			return s[p], true
		}
	}
	return Breed{}, false
}
