// Copyright © 2024 The ELPS authors

// Package token defines the tokens of NetLogo source and a scanner for
// building them.
package token

import "fmt"

type Token struct {
	Type   Type
	Text   string
	Source *Location
}

// End is the byte offset just past the token.
func (tok *Token) End() int {
	return tok.Source.Pos + len(tok.Text)
}

func (tok *Token) String() string {
	return fmt.Sprintf("%s %q at %s", tok.Type, tok.Text, tok.Source)
}

type Type uint

const (
	INVALID Type = iota
	ERROR
	EOF

	// Atomic expressions & literals
	WORD
	NUMBER
	STRING

	COMMENT

	// Delimiters
	PAREN_L
	PAREN_R
	BRACKET_L
	BRACKET_R

	numTokenTypes
)

func (typ Type) String() string {
	typeStrings := [numTokenTypes]string{
		INVALID:   "invalid",
		ERROR:     "error",
		EOF:       "EOF",
		WORD:      "word",
		NUMBER:    "number",
		STRING:    "string",
		COMMENT:   ";",
		PAREN_L:   "(",
		PAREN_R:   ")",
		BRACKET_L: "[",
		BRACKET_R: "]",
	}
	if typ >= numTokenTypes {
		return typeStrings[INVALID]
	}
	return typeStrings[typ]
}

type Location struct {
	File string // a name representing the source stream
	Pos  int    // byte offset
	Line int    // line number (starting at 1 when tracked)
	Col  int    // line column number (starting at 1 when tracked)
}

func (loc *Location) String() string {
	switch {
	case loc.Pos < 0:
		return loc.File
	case loc.Line == 0:
		return fmt.Sprintf("%s[%d]", loc.File, loc.Pos)
	case loc.Col == 0:
		return fmt.Sprintf("%s:%d", loc.File, loc.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", loc.File, loc.Line, loc.Col)
	}
}

type LocationError struct {
	Err    error
	Source *Location
}

func (err *LocationError) Error() string {
	return fmt.Sprintf("%s: %s", err.Source, err.Err)
}

func (err *LocationError) Unwrap() error {
	return err.Err
}
