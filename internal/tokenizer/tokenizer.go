// Package tokenizer extracts words and punctuation from ASR text and
// reconstructs smart-spaced text from a token sequence. The two are
// inverse modulo whitespace normalization.
package tokenizer

import (
	"regexp"
	"strings"
)

// wordOrPunct matches runs of alphanumerics optionally joined by a single
// apostrophe ("won't", "it's"), or a single non-alphanumeric
// non-whitespace character (punctuation).
var wordOrPunct = regexp.MustCompile(`[A-Za-z0-9]+(?:'[A-Za-z0-9]+)?|[^\sA-Za-z0-9]`)

// punctOnly matches a single non-word, non-space rune — used by Detokenize
// to decide whether a token glues onto the previous one.
var punctOnly = regexp.MustCompile(`^[^\w\s]$`)

// Tokenize splits text into an ordered sequence of word and punctuation
// tokens. Empty or non-matching input yields an empty, non-nil slice.
func Tokenize(text string) []string {
	if text == "" {
		return []string{}
	}
	matches := wordOrPunct.FindAllString(text, -1)
	if matches == nil {
		return []string{}
	}
	return matches
}

// Detokenize reconstructs text from tokens: the first token is emitted
// as-is; each subsequent token is preceded by a space unless it is pure
// punctuation (a single non-word character), in which case it is appended
// to the previous token without a separator.
func Detokenize(tokens []string) string {
	var b strings.Builder
	for i, tok := range tokens {
		switch {
		case i == 0:
			b.WriteString(tok)
		case punctOnly.MatchString(tok):
			b.WriteString(tok)
		default:
			b.WriteByte(' ')
			b.WriteString(tok)
		}
	}
	return b.String()
}

// LCPLen returns the longest common prefix length between two token
// sequences, comparing case-sensitively (ASR is expected to be stable in
// capitalization within a segment).
func LCPLen(a, b []string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}
