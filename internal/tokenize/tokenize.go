// Package tokenize splits free text into the lowercase word tokens the
// recall engine scores against. It applies no stopword or minimum-length
// filtering: every alphanumeric run is a token, because recall needs to
// match short, high-signal tokens (file extensions, command names) that a
// stopword list would otherwise discard.
package tokenize

import "strings"

// Tokens splits s into lowercase alphanumeric runs. Punctuation and
// whitespace are treated purely as separators and never appear in the
// result.
func Tokens(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		switch {
		case r >= '0' && r <= '9':
			return false
		case r >= 'a' && r <= 'z':
			return false
		case r >= 'A' && r <= 'Z':
			return false
		default:
			return true
		}
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tokens = append(tokens, strings.ToLower(f))
	}
	return tokens
}

// Set builds a membership set out of Tokens(s), suitable for overlap
// scoring against another token set.
func Set(s string) map[string]struct{} {
	tokens := Tokens(s)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// Overlap counts how many tokens in query also appear in corpus.
func Overlap(query, corpus map[string]struct{}) int {
	n := 0
	for t := range query {
		if _, ok := corpus[t]; ok {
			n++
		}
	}
	return n
}
