package graph

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papashirogane/chatbot/internal/agent/graph/nodes"
	"github.com/papashirogane/chatbot/internal/agent/graph/parsers"
	"github.com/papashirogane/chatbot/internal/agent/model"
	"github.com/papashirogane/chatbot/internal/agent/pool"
	"github.com/papashirogane/chatbot/internal/agent/rules"
)

func newTestRunner(t *testing.T) (Runner, *rules.Book) {
	t.Helper()
	book, err := rules.Default()
	require.NoError(t, err)
	cascade, err := rules.Compile(book)
	require.NoError(t, err)
	pools, err := pool.NewSet(cascade.Pools(), rand.New(rand.NewPCG(7, 11)))
	require.NoError(t, err)

	r, err := BuildCascadeGraph(context.Background(), &nodes.Deps{Cascade: cascade, Pools: pools, BotName: "Regina"})
	require.NoError(t, err)
	return r, book
}

func turn(line string, repeats int) *model.Turn {
	return &model.Turn{Input: parsers.Normalize(line), Repeats: repeats, UserName: model.DefaultUserName}
}

func capitalized(responses []string) []string {
	out := make([]string, len(responses))
	for i, r := range responses {
		out[i] = nodes.Capitalize(r)
	}
	return out
}

func TestBuildGraphRejectsMissingDeps(t *testing.T) {
	_, err := BuildGraph(context.Background(), nil)
	assert.Error(t, err)
	_, err = BuildGraph(context.Background(), &GraphConfig{Deps: &nodes.Deps{}})
	assert.Error(t, err)
}

func TestCascadeRanks(t *testing.T) {
	r, book := newTestRunner(t)
	ctx := context.Background()

	tests := []struct {
		name string
		turn *model.Turn
		pool string
	}{
		{"empty", turn("", 0), "empty"},
		{"repeat beats every rank", turn("hi there", 4), "repeat"},
		{"greeting", turn("hi there", 0), "greetings"},
		{"question", turn("is it raining?", 0), "question_misc"},
		{"keyword", turn("it is not bad", 0), "positive_adjectives"},
		{"single word", turn("blue", 0), "colours"},
		{"fallback", turn("zzz qqq", 0), "misc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply, err := r.Invoke(ctx, tt.turn)
			require.NoError(t, err)
			assert.Contains(t, capitalized(book.Pools[tt.pool]), reply)
		})
	}
}

func TestCascadeRhetoricalQuestion(t *testing.T) {
	r, _ := newTestRunner(t)
	reply, err := r.Invoke(context.Background(), turn("I will have been eating", 0))
	require.NoError(t, err)
	assert.Contains(t, []string{
		"Why will you have been eating?",
		"Eating? Why will you have been doing that?",
		"Eating, right. Cool beans.",
		"Whatever, you may need to reevaluate some priorities.",
	}, reply)
}

func TestCascadeLyricIsCapitalised(t *testing.T) {
	r, _ := newTestRunner(t)
	ctx := context.Background()

	reply, err := r.Invoke(ctx, turn("hakuna matata", 0))
	require.NoError(t, err)
	assert.Equal(t, "What a wonderful phrase!", reply)

	reply, err = r.Invoke(ctx, turn("hakuna matata", 1))
	require.NoError(t, err)
	assert.Equal(t, "Ain't no passing craze!", reply)
}

func TestCascadeRendersPlaceholders(t *testing.T) {
	r, _ := newTestRunner(t)
	ctx := context.Background()

	tr := turn("what's my name", 0)
	tr.UserName = "Bob"
	reply, err := r.Invoke(ctx, tr)
	require.NoError(t, err)
	assert.Equal(t, "Your name is Bob", reply)

	// Every reply of the bot_name pool mentions the bot once rendered.
	for range 8 {
		reply, err = r.Invoke(ctx, turn("so what is your name", 0))
		require.NoError(t, err)
		assert.NotContains(t, reply, "{bot}")
	}
}

func TestRunnerRejectsNilTurn(t *testing.T) {
	r, _ := newTestRunner(t)
	_, err := r.Invoke(context.Background(), nil)
	assert.Error(t, err)
}
