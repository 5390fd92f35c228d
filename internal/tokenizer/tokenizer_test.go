package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizeWordsAndPunctuation(t *testing.T) {
	assert.Equal(t, []string{"hello", "world"}, Tokenize("hello world"))
	assert.Equal(t, []string{"won't", "it's", "fine"}, Tokenize("won't it's fine"))
	assert.Equal(t, []string{"Hello", ",", "world", "!"}, Tokenize("Hello, world!"))
}

func TestTokenizeEmpty(t *testing.T) {
	assert.Equal(t, []string{}, Tokenize(""))
	assert.Equal(t, []string{}, Tokenize("   "))
}

func TestDetokenizeGluesPunctuation(t *testing.T) {
	assert.Equal(t, "Hello, world!", Detokenize([]string{"Hello", ",", "world", "!"}))
	assert.Equal(t, "won't it's fine", Detokenize([]string{"won't", "it's", "fine"}))
	assert.Equal(t, "", Detokenize(nil))
}

func TestLCPLen(t *testing.T) {
	assert.Equal(t, 3, LCPLen([]string{"a", "b", "c", "d"}, []string{"a", "b", "c", "e"}))
	assert.Equal(t, 0, LCPLen([]string{"a"}, []string{"b"}))
	assert.Equal(t, 2, LCPLen([]string{"a", "b"}, []string{"a", "b"}))
	assert.Equal(t, 0, LCPLen(nil, []string{"a"}))
}
