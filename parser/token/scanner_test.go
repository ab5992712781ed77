// Copyright © 2024 The ELPS authors

package token

import (
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanner_EmitAndIgnore(t *testing.T) {
	s := NewScanner("test", "fd 10\n  rt 90")

	assert.Equal(t, 2, s.AcceptSeq(unicode.IsLetter))
	tok := s.EmitToken(WORD)
	assert.Equal(t, "fd", tok.Text)
	assert.Equal(t, Location{File: "test", Pos: 0, Line: 1, Col: 1}, *tok.Source)

	s.AcceptSeqSpace()
	s.Ignore()
	s.AcceptSeq(unicode.IsDigit)
	tok = s.EmitToken(NUMBER)
	assert.Equal(t, "10", tok.Text)
	assert.Equal(t, 3, tok.Source.Pos)
	assert.Equal(t, 5, tok.End())

	s.AcceptSeqSpace()
	s.Ignore()
	s.AcceptSeq(unicode.IsLetter)
	tok = s.EmitToken(WORD)
	assert.Equal(t, "rt", tok.Text)
	assert.Equal(t, 2, tok.Source.Line)
	assert.Equal(t, 3, tok.Source.Col)
}

func TestScanner_EOF(t *testing.T) {
	s := NewScanner("", "ab")
	require.True(t, s.ScanRune())
	require.True(t, s.ScanRune())
	assert.Equal(t, 'b', s.Rune())
	assert.True(t, s.EOF())
	assert.False(t, s.ScanRune())
	_, ok := s.Peek()
	assert.False(t, ok)
}

func TestScanner_Accept(t *testing.T) {
	s := NewScanner("", "->x")
	n, ok := s.AcceptString("->")
	assert.True(t, ok)
	assert.Equal(t, 2, n)
	assert.False(t, s.AcceptRune('y'))
	assert.True(t, s.AcceptAny("xyz"))
	assert.Equal(t, "->x", s.Text())
	assert.Equal(t, 3, s.Loc().Pos)
}

func TestScanner_Unicode(t *testing.T) {
	s := NewScanner("", "é1")
	require.True(t, s.Accept(unicode.IsLetter))
	assert.Equal(t, "é", s.EmitToken(WORD).Text)
	require.True(t, s.AcceptRune('1'))
	assert.Equal(t, 2, s.EmitToken(NUMBER).Source.Pos)
}
