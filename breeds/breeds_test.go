// Copyright © 2024 The ELPS authors

package breeds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/nlint/agentctx"
	"github.com/luthersystems/nlint/prims"
)

func testSet() Set {
	bs := append(Defaults(),
		Breed{Singular: "train", Plural: "trains", Kind: Turtle},
		Breed{Singular: "friendship", Plural: "friendships", Kind: UndirectedLink},
		Breed{Singular: "road", Plural: "roads", Kind: DirectedLink},
	)
	return NewSet(bs...)
}

func TestMatchWord_TurtleBreed(t *testing.T) {
	known := testSet()
	tests := []struct {
		word      string
		prototype string
		tag       Tag
		ctx       agentctx.Context
	}{
		{"create-trains", "create-<breeds>", Command, agentctx.Observer},
		{"create-ordered-trains", "create-ordered-<breeds>", Command, agentctx.Observer},
		{"hatch-trains", "hatch-<breeds>", Command, agentctx.Turtle},
		{"sprout-trains", "sprout-<breeds>", Command, agentctx.Patch},
		{"trains-here", "<breeds>-here", Reporter, agentctx.Turtle | agentctx.Patch},
		{"trains-at", "<breeds>-at", Reporter, agentctx.Turtle | agentctx.Patch},
		{"trains-on", "<breeds>-on", Reporter, agentctx.All},
		{"trains-own", "<breeds>-own", Declaration, agentctx.All},
		{"is-train?", "is-<breed>?", Reporter, agentctx.All},
		{"train", "<breed>", Reporter, agentctx.All},
		{"trains", "<breeds>", Reporter, agentctx.All},
		{"CREATE-TRAINS", "create-<breeds>", Command, agentctx.Observer},
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			m := MatchWord(tt.word, known, false)
			require.True(t, m.Valid)
			assert.False(t, m.Guessed)
			assert.Equal(t, "train", m.Singular)
			assert.Equal(t, "trains", m.Plural)
			assert.Equal(t, Turtle, m.Kind)
			assert.Equal(t, tt.prototype, m.Prototype)
			assert.Equal(t, tt.tag, m.Rule.Tag)
			assert.Equal(t, tt.ctx, m.Context)
		})
	}
}

func TestMatchWord_LinkBreeds(t *testing.T) {
	known := testSet()

	m := MatchWord("create-friendship-with", known, false)
	require.True(t, m.Valid)
	assert.Equal(t, UndirectedLink, m.Kind)
	assert.Equal(t, agentctx.Link, m.BlockContext())

	m = MatchWord("create-friendships-with", known, false)
	require.True(t, m.Valid)
	assert.Equal(t, Plural, m.Rule.Slot)

	assert.False(t, MatchWord("create-road-with", known, false).Valid, "directed breeds have no -with form")
	assert.True(t, MatchWord("create-road-to", known, false).Valid)
	assert.True(t, MatchWord("my-in-roads", known, false).Valid)
	assert.True(t, MatchWord("in-road-neighbors", known, false).Valid)
	assert.True(t, MatchWord("friendship-neighbors", known, false).Valid)
	assert.False(t, MatchWord("in-friendship-neighbors", known, false).Valid)
	assert.False(t, MatchWord("create-friendships", known, false).Valid, "link breeds cannot be created like turtles")

	m = MatchWord("my-friendships", known, false)
	require.True(t, m.Valid)
	assert.Equal(t, prims.LinkSet, m.Primitive("my-friendships").Return)
}

func TestMatchWord_Unknown(t *testing.T) {
	known := testSet()
	assert.False(t, MatchWord("create-cars", known, false).Valid)
	assert.False(t, MatchWord("forward", known, false).Valid)
	assert.False(t, MatchWord("", known, true).Valid)
	assert.False(t, MatchWord("cars", known, true).Valid, "bare names are never guessed")
	assert.False(t, MatchWord("create-train", known, true).Valid, "a claimed name is not guessed in the other slot")
}

func TestMatchWord_Guessing(t *testing.T) {
	known := testSet()
	m := MatchWord("create-cars", known, true)
	require.True(t, m.Valid)
	assert.True(t, m.Guessed)
	assert.Equal(t, "cars", m.Plural)
	assert.Equal(t, "car", m.Singular)
	assert.Equal(t, Turtle, m.Kind)
	assert.Equal(t, "create-<breeds>", m.Prototype)

	m = MatchWord("create-ordered-cars", known, true)
	require.True(t, m.Valid)
	assert.Equal(t, "create-ordered-<breeds>", m.Prototype, "the more specific rule wins")

	m = MatchWord("create-bridge-to", known, true)
	require.True(t, m.Valid)
	assert.Equal(t, DirectedLink, m.Kind)

	m = MatchWord("MatchWord works with a nil lookup", nil, false)
	assert.False(t, m.Valid)
	assert.True(t, MatchWord("hatch-cars", nil, true).Valid)
}

// A breed named turtle collides with the built-in is-turtle? reporter. The
// first rule producing a known breed wins, so the word resolves as the
// breed predicate.
func TestMatchWord_RulePrecedence(t *testing.T) {
	known := NewSet(Breed{Singular: "turtle", Plural: "turtles", Kind: Turtle})
	m := MatchWord("is-turtle?", known, false)
	require.True(t, m.Valid)
	assert.Equal(t, "is-<breed>?", m.Prototype)
	assert.Equal(t, "turtle", m.Singular)
	assert.Equal(t, prims.Boolean, m.Rule.Return)
}

func TestRuleOrder(t *testing.T) {
	seenBare := false
	for _, r := range Rules {
		if r.IsBare() {
			seenBare = true
			continue
		}
		assert.False(t, seenBare, "rule %s follows a bare rule", r.Prototype())
	}
}

func TestMatch_Primitive(t *testing.T) {
	known := testSet()
	p := MatchWord("create-trains", known, false).Primitive("create-trains")
	require.NotNil(t, p)
	assert.False(t, prims.IsReporter(p))
	assert.Equal(t, agentctx.Turtle, p.BlockContext)
	min, max := p.ArgRange(false)
	assert.Equal(t, 1, min)
	assert.Equal(t, 2, max)

	p = MatchWord("trains", known, false).Primitive("trains")
	assert.Equal(t, prims.TurtleSet, p.Return)

	assert.Nil(t, Match{}.Primitive("x"))
}

func TestNames_RoundTrip(t *testing.T) {
	for _, s := range []string{"train", "wolf", "a-sheep", "x"} {
		assert.Equal(t, s, SingularName(PluralName(s)))
	}
	for _, p := range []string{"trains", "wolfs", "roads"} {
		assert.Equal(t, p, PluralName(SingularName(p)))
	}
	assert.Equal(t, "a-sheep", SingularName("sheep"))
	assert.Equal(t, "mouses", PluralName("mouse"))
}

func TestKind(t *testing.T) {
	assert.Equal(t, agentctx.Turtle, Turtle.Context())
	assert.Equal(t, agentctx.Link, DirectedLink.Context())
	assert.True(t, UndirectedLink.IsLink())
	assert.False(t, Patch.IsLink())
	assert.Equal(t, "directed-link", DirectedLink.String())
}
