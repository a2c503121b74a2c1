package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papashirogane/chatbot/internal/agent/graph/parsers"
	"github.com/papashirogane/chatbot/internal/agent/model"
)

func newCascade(t *testing.T) *Cascade {
	t.Helper()
	c, err := Compile(defaultBook(t))
	require.NoError(t, err)
	return c
}

func TestCompileNil(t *testing.T) {
	_, err := Compile(nil)
	assert.Error(t, err)
}

func TestMatcherFirstDeclaredWins(t *testing.T) {
	m, err := NewMatcher([]string{"not", "i'm not", "cat", "concatenate"})
	require.NoError(t, err)

	i, ok := m.Find("i'm not sure")
	require.True(t, ok)
	assert.Equal(t, "not", m.Trigger(i))

	i, ok = m.Find("concatenate")
	require.True(t, ok)
	assert.Equal(t, "cat", m.Trigger(i))

	assert.False(t, m.Contains("a dog barks"))
	assert.True(t, m.Contains("nothing"))
}

func TestMatcherEdgeCases(t *testing.T) {
	_, err := NewMatcher([]string{"ok", ""})
	require.Error(t, err)

	m, err := NewMatcher(nil)
	require.NoError(t, err)
	assert.False(t, m.Contains("anything"))

	m, err = NewMatcher([]string{"b", "a", "b"})
	require.NoError(t, err)
	i, ok := m.Find("xb a")
	require.True(t, ok)
	assert.Equal(t, 0, i)
	assert.False(t, m.Contains(""))
}

func TestEmpty(t *testing.T) {
	c := newCascade(t)

	m, ok := c.Empty(parsers.Normalize("?!"))
	require.True(t, ok)
	assert.Equal(t, "empty", m.Pool)

	_, ok = c.Empty(parsers.Normalize("hi"))
	assert.False(t, ok)
}

func TestRepeat(t *testing.T) {
	c := newCascade(t)
	short := parsers.Normalize("hello")
	long := parsers.Normalize("this is a rather long line")

	tests := []struct {
		in      model.NormalizedInput
		repeats int
		want    bool
	}{
		{short, 0, false},
		{short, 3, false},
		{short, 4, true},
		{long, 0, false},
		{long, 1, true},
	}
	for _, tt := range tests {
		m, ok := c.Repeat(tt.in, tt.repeats)
		assert.Equal(t, tt.want, ok, "%q x%d", tt.in.Raw, tt.repeats)
		if ok {
			assert.Equal(t, "repeat", m.Pool)
		}
	}
}

func TestLyricAlternates(t *testing.T) {
	c := newCascade(t)
	line := parsers.Normalize("Hakuna matata")

	var got []string
	for range 3 {
		m, ok := c.Lyric(line)
		require.True(t, ok)
		got = append(got, m.Text)
	}
	assert.Equal(t, []string{"what a wonderful phrase!", "ain't no passing craze!", "what a wonderful phrase!"}, got)

	m, ok := c.Lyric(parsers.Normalize("It means no worries"))
	require.True(t, ok)
	assert.Equal(t, "for the rest of your days!", m.Text)

	m, ok = c.Lyric(parsers.Normalize("Hakuna!"))
	require.True(t, ok)
	assert.Equal(t, "matata!", m.Text)

	_, ok = c.Lyric(parsers.Normalize("philosophy is fun"))
	assert.True(t, ok)

	_, ok = c.Lyric(parsers.Normalize("nothing to sing"))
	assert.False(t, ok)
}

func TestStructural(t *testing.T) {
	c := newCascade(t)
	tests := []struct {
		line string
		rule string
		pool string
	}{
		{"hi there", "greeting", "greetings"},
		{"Yo what is up", "greeting", "greetings"},
		{"why are you so mean?", "question:why_bot", "why_bot"},
		{"do you like cake?", "question:other_bot", "other_bot"},
		{"is it raining?", "question", "question_misc"},
		{"you are similar to a cat", "similarity", "alike_bot"},
		{"blah blah", "duplicate", "misc"},
		{"i am going home", "going", "going"},
	}
	for _, tt := range tests {
		m, ok := c.Structural(parsers.Normalize(tt.line), model.DefaultUserName)
		require.True(t, ok, tt.line)
		assert.Equal(t, tt.rule, m.Rule, tt.line)
		assert.Equal(t, tt.pool, m.Pool, tt.line)
	}

	for _, line := range []string{"the the", "i said i", "ok?", "nothing special"} {
		_, ok := c.Structural(parsers.Normalize(line), model.DefaultUserName)
		assert.False(t, ok, line)
	}
}

func TestStructuralNameQuery(t *testing.T) {
	c := newCascade(t)

	m, ok := c.Structural(parsers.Normalize("What's my name?"), "Bob")
	require.True(t, ok)
	assert.Equal(t, "Your name is Bob", m.Text)

	m, ok = c.Structural(parsers.Normalize("what is my name"), model.DefaultUserName)
	require.True(t, ok)
	assert.Equal(t, "Your name is your name", m.Text)
}

func TestRhetorical(t *testing.T) {
	c := newCascade(t)
	in := parsers.Normalize("I will have been eating")
	a := c.Grammar().Analyze(in.Tokens, in.Raw)

	m, ok := c.Rhetorical(a)
	require.True(t, ok)
	assert.Equal(t, "rhetorical:future-perfect-progressive", m.Rule)
	assert.Contains(t, m.Choices, "Why will you have been eating?")
	for _, q := range m.Choices {
		assert.NotContains(t, q, "{")
	}

	in = parsers.Normalize("nice weather")
	_, ok = c.Rhetorical(c.Grammar().Analyze(in.Tokens, in.Raw))
	assert.False(t, ok)
}

func TestKeyword(t *testing.T) {
	c := newCascade(t)
	tests := []struct {
		line string
		rule string
		pool string
	}{
		{"it is bad", "keyword:adjectives", "negative_adjectives"},
		{"it is not bad", "keyword:adjectives:negated", "positive_adjectives"},
		{"it is nice", "keyword:adjectives", "positive_adjectives"},
		{"it is not nice", "keyword:adjectives:negated", "negative_adjectives"},
		{"they hate pizza", "keyword:feelings", "feelings"},
		{"they don't like it", "keyword:feelings:negated", "negative_adjectives"},
		{"i do not love pizza", "keyword:feelings:negated", "negative_adjectives"},
		{"it's not sad", "keyword:negative_emotions:negated", "positive_adjectives"},
		{"you are awful", "keyword:adjectives:about_bot", "about_bot_reactions"},
		{"you are not awful", "keyword:adjectives:about_bot", "about_bot_reactions"},
		{"i am awful", "keyword:adjectives:about_user", "about_user_reactions"},
		{"thanks a lot", "keyword:thanks", "thanks"},
		{"on wednesday", "keyword:wednesday", "wednesday"},
	}
	for _, tt := range tests {
		in := parsers.Normalize(tt.line)
		m, ok := c.Keyword(in, c.Grammar().Analyze(in.Tokens, in.Raw))
		require.True(t, ok, tt.line)
		assert.Equal(t, tt.rule, m.Rule, tt.line)
		assert.Equal(t, tt.pool, m.Pool, tt.line)
	}

	in := parsers.Normalize("zzz qqq")
	_, ok := c.Keyword(in, c.Grammar().Analyze(in.Tokens, in.Raw))
	assert.False(t, ok)
}

func TestSingleWord(t *testing.T) {
	c := newCascade(t)

	m, ok := c.SingleWord(parsers.Normalize("Blue!"))
	require.True(t, ok)
	assert.Equal(t, "colours", m.Pool)

	m, ok = c.SingleWord(parsers.Normalize("oof"))
	require.True(t, ok)
	assert.Equal(t, "singles", m.Pool)

	// Padding spaces leave empty tokens behind.
	for _, line := range []string{"blue ", " oof", "blue  "} {
		_, ok = c.SingleWord(parsers.Normalize(line))
		assert.False(t, ok, "%q", line)
	}

	m, ok = c.SingleWord(parsers.Normalize("Hmm"))
	require.True(t, ok)
	assert.Equal(t, "echo", m.Rule)
	assert.Contains(t, m.Choices, "hmm...?")
	assert.Contains(t, m.Choices, "hmm? Like, hmm what?")

	_, ok = c.SingleWord(parsers.Normalize("two words"))
	assert.False(t, ok)
}

func TestFallback(t *testing.T) {
	assert.Equal(t, "misc", newCascade(t).Fallback().Pool)
}

func TestCaptureName(t *testing.T) {
	c := newCascade(t)
	tests := []struct {
		line string
		want string
		ok   bool
	}{
		{"My name is Bob", "Bob", true},
		{"my name's Ann.", "Ann", true},
		{"Call me Ishmael.", "Ishmael", true},
		{"hi, my name is Zoe and yours?", "Zoe", true},
		{"my name is not important", "", false},
		{"my name is", "", false},
		{"my name is 42", "", false},
		{"what is my name", "", false},
	}
	for _, tt := range tests {
		got, ok := c.CaptureName(parsers.Normalize(tt.line))
		assert.Equal(t, tt.ok, ok, tt.line)
		assert.Equal(t, tt.want, got, tt.line)
	}
	assert.Equal(t, "Nice to know, Bob!", c.NameAck("Bob"))
}
