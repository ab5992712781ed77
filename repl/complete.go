// Copyright © 2018 The ELPS authors

package repl

import (
	"strings"
)

// wordCompleter implements readline.AutoCompleter with the words a shell
// knows: primitives, shell commands and the document's declarations.
type wordCompleter struct {
	shell *Shell
}

func (c *wordCompleter) Do(line []rune, pos int) ([][]rune, int) {
	// Extract the word being typed (backwards from cursor to a delimiter).
	start := pos
	for start > 0 {
		ch := line[start-1]
		if ch == ' ' || ch == '\t' || ch == '[' || ch == '(' || ch == ']' || ch == ')' || ch == '\n' {
			break
		}
		start--
	}
	prefix := strings.ToLower(string(line[start:pos]))
	if prefix == "" {
		return nil, 0
	}

	var result [][]rune
	for _, word := range c.shell.Words() {
		if strings.HasPrefix(word, prefix) {
			// Each entry is the suffix to append.
			result = append(result, []rune(word[len(prefix):]))
		}
	}
	if len(result) == 0 {
		return nil, 0
	}
	return result, len(prefix)
}
