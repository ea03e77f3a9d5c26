// Package args turns the live-edited argument buffer into argv tokens.
package args

import (
	"strings"

	"github.com/google/shlex"
)

// Split tokenizes the argument buffer with POSIX-like word splitting
// (double quotes, single quotes and backslash escapes). A buffer that does
// not tokenize, typically an unterminated quote while the user is
// mid-edit, is passed through as a single argument so the target program
// still sees something predictable. An empty or whitespace-only buffer
// yields no tokens.
func Split(buffer string) []string {
	trimmed := strings.TrimSpace(buffer)
	if trimmed == "" {
		return nil
	}

	tokens, err := shlex.Split(trimmed)
	if err != nil {
		return []string{trimmed}
	}
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}

// Join renders argv tokens back into a display string, quoting tokens that
// contain whitespace. Display only; not guaranteed to round-trip through
// Split.
func Join(tokens []string) string {
	quoted := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok == "" || strings.ContainsAny(tok, " \t\n") {
			tok = `"` + tok + `"`
		}
		quoted = append(quoted, tok)
	}
	return strings.Join(quoted, " ")
}
