// Copyright © 2024 The ELPS authors

package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/luthersystems/nlint/parser/token"
)

type testToken struct {
	typ  token.Type
	text string
}

func TestLexer(t *testing.T) {
	tests := []struct {
		input  string
		tokens []testToken
	}{
		{``, []testToken{
			{token.EOF, ""},
		}},
		{`fd 10`, []testToken{
			{token.WORD, "fd"},
			{token.NUMBER, "10"},
			{token.EOF, ""},
		}},
		{`ask turtles [ set color red ]`, []testToken{
			{token.WORD, "ask"},
			{token.WORD, "turtles"},
			{token.BRACKET_L, "["},
			{token.WORD, "set"},
			{token.WORD, "color"},
			{token.WORD, "red"},
			{token.BRACKET_R, "]"},
			{token.EOF, ""},
		}},
		{`x-1 x - 1 -1 (a+b)`, []testToken{
			{token.WORD, "x-1"},
			{token.WORD, "x"},
			{token.WORD, "-"},
			{token.NUMBER, "1"},
			{token.NUMBER, "-1"},
			{token.PAREN_L, "("},
			{token.WORD, "a+b"},
			{token.PAREN_R, ")"},
			{token.EOF, ""},
		}},
		{`0.5 .5 1e3 12.02E+5 3d nan`, []testToken{
			{token.NUMBER, "0.5"},
			{token.NUMBER, ".5"},
			{token.NUMBER, "1e3"},
			{token.NUMBER, "12.02E+5"},
			{token.WORD, "3d"},
			{token.WORD, "nan"},
			{token.EOF, ""},
		}},
		{"show \"a \\\"b\\\"\" ; comment\nstop", []testToken{
			{token.WORD, "show"},
			{token.STRING, `"a \"b\""`},
			{token.COMMENT, "; comment"},
			{token.WORD, "stop"},
			{token.EOF, ""},
		}},
		{"print \"open\nfd", []testToken{
			{token.WORD, "print"},
			{token.ERROR, "\"open\n"},
			{token.WORD, "fd"},
			{token.EOF, ""},
		}},
		{`table:make is-turtle? [x] -> x`, []testToken{
			{token.WORD, "table:make"},
			{token.WORD, "is-turtle?"},
			{token.BRACKET_L, "["},
			{token.WORD, "x"},
			{token.BRACKET_R, "]"},
			{token.WORD, "->"},
			{token.WORD, "x"},
			{token.EOF, ""},
		}},
	}
	for _, tt := range tests {
		toks := Tokenize("test", tt.input)
		var got []testToken
		for _, tok := range toks {
			got = append(got, testToken{tok.Type, tok.Text})
		}
		assert.Equal(t, tt.tokens, got, tt.input)
	}
}

func TestLexer_Positions(t *testing.T) {
	toks := Tokenize("test", "to go\n  fd 1\nend")
	fd := toks[2]
	assert.Equal(t, "fd", fd.Text)
	assert.Equal(t, 8, fd.Source.Pos)
	assert.Equal(t, 2, fd.Source.Line)
	assert.Equal(t, 3, fd.Source.Col)
	assert.Equal(t, 10, fd.End())
}

func TestUnquote(t *testing.T) {
	assert.Equal(t, `a "b"`, Unquote(`"a \"b\""`))
	assert.Equal(t, "line\nnext", Unquote(`"line\nnext"`))
	assert.Equal(t, "", Unquote(`""`))
}
