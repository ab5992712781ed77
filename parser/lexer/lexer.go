// Copyright © 2024 The ELPS authors

// Package lexer splits NetLogo source into tokens.
package lexer

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/luthersystems/nlint/parser/token"
)

type LexFn func(*Lexer) *token.Token

// delimiters end a word. Everything else that is not whitespace belongs to
// one, which is why "x-1" and "a+b" are single identifiers.
const delimiters = "[]();\""

type Lexer struct {
	scanner *token.Scanner
	lex     LexFn
}

func New(s *token.Scanner) *Lexer {
	return &Lexer{
		scanner: s,
		lex:     (*Lexer).readToken,
	}
}

// Tokenize returns every token of src, comments included, ending with EOF.
func Tokenize(file, src string) []*token.Token {
	lex := New(token.NewScanner(file, src))
	var toks []*token.Token
	for {
		tok := lex.ReadToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

func (lex *Lexer) ReadToken() *token.Token {
	return lex.lex(lex)
}

func (lex *Lexer) readToken() *token.Token {
	lex.scanner.AcceptSeqSpace()
	lex.scanner.Ignore()
	if !lex.scanner.ScanRune() {
		return lex.scanner.EmitToken(token.EOF)
	}
	switch lex.scanner.Rune() {
	case '(':
		return lex.scanner.EmitToken(token.PAREN_L)
	case ')':
		return lex.scanner.EmitToken(token.PAREN_R)
	case '[':
		return lex.scanner.EmitToken(token.BRACKET_L)
	case ']':
		return lex.scanner.EmitToken(token.BRACKET_R)
	case ';':
		lex.scanner.AcceptSeq(func(c rune) bool { return c != '\n' })
		return lex.scanner.EmitToken(token.COMMENT)
	case '"':
		return lex.readString()
	default:
		return lex.readWord()
	}
}

func (lex *Lexer) readString() *token.Token {
	for {
		if !lex.scanner.ScanRune() {
			return lex.scanner.EmitToken(token.ERROR)
		}
		switch lex.scanner.Rune() {
		case '"':
			return lex.scanner.EmitToken(token.STRING)
		case '\n':
			return lex.scanner.EmitToken(token.ERROR)
		case '\\':
			if !lex.scanner.Accept(func(c rune) bool { return c != '\n' }) {
				return lex.scanner.EmitToken(token.ERROR)
			}
		}
	}
}

func (lex *Lexer) readWord() *token.Token {
	lex.scanner.AcceptSeq(isWord)
	if IsNumber(lex.scanner.Text()) {
		return lex.scanner.EmitToken(token.NUMBER)
	}
	return lex.scanner.EmitToken(token.WORD)
}

// IsNumber reports whether a word is a numeric literal.
func IsNumber(text string) bool {
	if text == "" {
		return false
	}
	c := text[0]
	if c != '-' && c != '.' && (c < '0' || c > '9') {
		return false
	}
	if strings.ContainsAny(text, "xXnN_") {
		// Reject hex, Inf, NaN and digit separators, which ParseFloat
		// accepts but NetLogo does not.
		return false
	}
	_, err := strconv.ParseFloat(text, 64)
	return err == nil
}

// Unquote decodes the text of a STRING token.
func Unquote(text string) string {
	text = strings.TrimPrefix(text, `"`)
	text = strings.TrimSuffix(text, `"`)
	var b strings.Builder
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '\\' || i == len(text)-1 {
			b.WriteByte(c)
			continue
		}
		i++
		switch text[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		default:
			b.WriteByte(text[i])
		}
	}
	return b.String()
}

func isWord(c rune) bool {
	return !unicode.IsSpace(c) && !strings.ContainsRune(delimiters, c)
}
