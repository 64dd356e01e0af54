package cli

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tokenize splits buf up to the cursor offset into whitespace separated
// tokens. The last token is the one being typed: when buf is empty or
// the cursor follows whitespace, an empty token is appended, so the
// result is never empty.
func Tokenize(buf string, cursor int) []string {
	cursor = max(0, min(cursor, len(buf)))
	head := buf[:cursor]
	tokens := strings.Fields(head)
	if head == "" {
		return append(tokens, "")
	}
	if r, _ := utf8.DecodeLastRuneInString(head); unicode.IsSpace(r) {
		tokens = append(tokens, "")
	}
	return tokens
}

// Fields splits a submitted line into command tokens.
func Fields(line string) []string {
	return strings.Fields(line)
}
