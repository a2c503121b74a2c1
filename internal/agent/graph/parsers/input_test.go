package parsers

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		raw    string
		tokens []string
		words  []string
	}{
		{
			name:   "lowercases and strips punctuation",
			line:   "Hello, World!",
			raw:    "hello, world!",
			tokens: []string{"hello", "world"},
			words:  []string{"Hello", "World"},
		},
		{
			name:   "keeps apostrophes",
			line:   "I'm here",
			raw:    "i'm here",
			tokens: []string{"i'm", "here"},
			words:  []string{"I'm", "here"},
		},
		{
			name:   "folds typographic apostrophes",
			line:   "I’m fine",
			raw:    "i'm fine",
			tokens: []string{"i'm", "fine"},
			words:  []string{"I'm", "fine"},
		},
		{
			name:   "preserves empty tokens",
			line:   "a  b ?",
			raw:    "a  b ?",
			tokens: []string{"a", "", "b", ""},
			words:  []string{"a", "", "b", ""},
		},
		{
			name:   "drops digits and non-ascii letters",
			line:   "café 42",
			raw:    "café 42",
			tokens: []string{"caf", ""},
			words:  []string{"caf", ""},
		},
		{
			name:   "empty line",
			line:   "",
			raw:    "",
			tokens: []string{""},
			words:  []string{""},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Normalize(tt.line)
			assert.Equal(t, tt.raw, in.Raw)
			if diff := cmp.Diff(tt.tokens, in.Tokens); diff != "" {
				t.Errorf("tokens mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.words, in.Words); diff != "" {
				t.Errorf("words mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeEmptiness(t *testing.T) {
	assert.True(t, Normalize("").IsEmpty())
	assert.True(t, Normalize("   ").IsEmpty())
	assert.True(t, Normalize("?!").IsEmpty())
	assert.False(t, Normalize(" ok").IsEmpty())
	assert.Equal(t, 1, Normalize(" ok ").WordCount())
}

func TestNormalizeInvalidUTF8(t *testing.T) {
	in := Normalize("hi \xff there")
	assert.Equal(t, []string{"hi", "", "there"}, in.Tokens)
	assert.NotContains(t, in.Raw, "\xff")
}

func TestNormalizeTruncatesLongLines(t *testing.T) {
	in := Normalize(strings.Repeat("a", maxLineLen+100))
	require.Len(t, in.Tokens, 1)
	assert.Len(t, in.Raw, maxLineLen)
	assert.Len(t, in.Tokens[0], maxLineLen)
}
