package rules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	errx "github.com/papashirogane/chatbot/internal/core/error"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func defaultBook(t *testing.T) *Book {
	t.Helper()
	b, err := Default()
	require.NoError(t, err)
	return b
}

func TestDefaultBookIsValid(t *testing.T) {
	b := defaultBook(t)

	assert.Equal(t, 5, b.Repeat.Limit)
	assert.Equal(t, 18, b.Repeat.LongLine)
	assert.Equal(t, "misc", b.Fallback)
	require.NotEmpty(t, b.Keywords.Groups)
	assert.Equal(t, "feelings", b.Keywords.Groups[0].Name)
	assert.False(t, b.Keywords.Groups[0].SubjectAware)
	for _, g := range b.Keywords.Groups[1:] {
		assert.True(t, g.SubjectAware, g.Name)
	}

	_, err := Compile(b)
	require.NoError(t, err)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(strings.NewReader("pools: {a: [x]}\nmystery: true\n"))
	require.Error(t, err)
	assert.True(t, errx.IsCode(err, errx.CodeInvalidConfig))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, defaultBookBytes(), 0o600))

	b, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, defaultBook(t).Pools["misc"], b.Pools["misc"])

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errx.IsCode(err, errx.CodeInvalidConfig))
}

func defaultBookBytes() []byte {
	return append([]byte(nil), defaultRules...)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Book)
		want   string
	}{
		{"empty pool", func(b *Book) { b.Pools["misc"] = nil }, `pool "misc" has no responses`},
		{"empty response", func(b *Book) { b.Pools["misc"] = []string{"ok", ""} }, `response 1 is empty`},
		{"unknown fallback", func(b *Book) { b.Fallback = "nowhere" }, `fallback: unknown pool "nowhere"`},
		{"missing repeat pool", func(b *Book) { b.Repeat.Pool = "" }, `repeat: no pool`},
		{"zero limit", func(b *Book) { b.Repeat.Limit = 0 }, `limit must be at least 1`},
		{"short lyric", func(b *Book) { b.Lyric.Lines = b.Lyric.Lines[:1] }, `needs at least two lines`},
		{"empty trigger", func(b *Book) { b.Keywords.Groups[0].Triggers = append(b.Keywords.Groups[0].Triggers, "") }, `empty trigger`},
		{"unknown negated pool", func(b *Book) { b.Keywords.Groups[0].NegatedPool = "nope" }, `unknown pool "nope"`},
		{"no echoes", func(b *Book) { b.SingleWord.Echoes = nil }, `no echoes`},
		{"empty phrase", func(b *Book) { b.NameCapture.Phrases = append(b.NameCapture.Phrases, nil) }, `is empty`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := defaultBook(t)
			tt.mutate(b)
			err := b.Validate()
			require.Error(t, err)
			assert.True(t, errx.IsCode(err, errx.CodeInvalidConfig))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestGroupTriggerSets(t *testing.T) {
	g := Group{
		Triggers: []string{"a"},
		Pool:     "p",
		Sets:     []TriggerSet{{Triggers: []string{"b"}, Pool: "q"}},
	}
	sets := g.TriggerSets()
	require.Len(t, sets, 2)
	assert.Equal(t, "p", sets[0].Pool)
	assert.Equal(t, "q", sets[1].Pool)

	assert.Len(t, Group{Sets: g.Sets}.TriggerSets(), 1)
}
