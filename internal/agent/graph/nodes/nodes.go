package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	"github.com/papashirogane/chatbot/internal/agent/graph/prompts"
	"github.com/papashirogane/chatbot/internal/agent/model"
	"github.com/papashirogane/chatbot/internal/agent/pool"
	"github.com/papashirogane/chatbot/internal/agent/rules"
	logx "github.com/papashirogane/chatbot/pkg/logger"
)

// Deps is what every stage of the cascade reads from.
type Deps struct {
	Cascade *rules.Cascade
	Pools   *pool.Set
	BotName string
}

// Validate reports missing dependencies.
func (d *Deps) Validate() error {
	if d == nil {
		return fmt.Errorf("node deps are nil")
	}
	if d.Cascade == nil {
		return fmt.Errorf("rule cascade is nil")
	}
	if d.Pools == nil {
		return fmt.Errorf("response pools are nil")
	}
	return nil
}

// answer turns a rule match into the turn's reply.
func (d *Deps) answer(t *model.Turn, stage string, m rules.Match) *model.Turn {
	var reply string
	switch {
	case m.Text != "":
		reply = m.Text
	case len(m.Choices) > 0:
		reply = d.Pools.DrawFrom(m.Choices)
	default:
		reply = d.Pools.Draw(m.Pool)
	}
	t.Reply = prompts.Render(reply, prompts.Vars{"bot": d.BotName, "name": t.UserName})
	t.Stage = stage
	t.Trigger = m.Trigger

	logx.Debug().
		Str("stage", stage).
		Str("rule", m.Rule).
		Str("pool", m.Pool).
		Str("trigger", m.Trigger).
		Msg("Stage answered")
	return t
}

// stage wraps a rank that may or may not answer into a lambda node.
func (d *Deps) stage(name string, rank func(context.Context, *model.Turn) (rules.Match, bool, error)) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, t *model.Turn) (*model.Turn, error) {
		if t == nil {
			return nil, fmt.Errorf("%s: turn is nil", name)
		}
		m, ok, err := rank(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if ok {
			return d.answer(t, name, m), nil
		}
		return t, nil
	})
}

// NewAnalysisPreHandler resolves the grammar of the line once per turn and keeps it in graph state.
func NewAnalysisPreHandler(d *Deps) func(context.Context, *model.Turn, *model.TurnState) (*model.Turn, error) {
	return func(ctx context.Context, in *model.Turn, s *model.TurnState) (*model.Turn, error) {
		if in == nil || s.Analyzed {
			return in, nil
		}
		s.Analysis = d.Cascade.Grammar().Analyze(in.Input.Tokens, in.Input.Raw)
		s.Analyzed = true
		logx.Debug().
			Bool("subject", s.Analysis.HasSubject).
			Bool("verb", s.Analysis.HasVerb).
			Bool("tense", s.Analysis.HasTense).
			Msg("Line analysed")
		return in, nil
	}
}

// NewEmptyCheckNode answers lines without any word.
func NewEmptyCheckNode(d *Deps) *compose.Lambda {
	return d.stage(NodeEmptyCheck, func(_ context.Context, t *model.Turn) (rules.Match, bool, error) {
		m, ok := d.Cascade.Empty(t.Input)
		return m, ok, nil
	})
}

// NewRepeatCheckNode answers lines the user keeps saying.
func NewRepeatCheckNode(d *Deps) *compose.Lambda {
	return d.stage(NodeRepeatCheck, func(_ context.Context, t *model.Turn) (rules.Match, bool, error) {
		m, ok := d.Cascade.Repeat(t.Input, t.Repeats)
		return m, ok, nil
	})
}

func NewLyricNode(d *Deps) *compose.Lambda {
	return d.stage(NodeLyric, func(_ context.Context, t *model.Turn) (rules.Match, bool, error) {
		m, ok := d.Cascade.Lyric(t.Input)
		return m, ok, nil
	})
}

func NewStructuralNode(d *Deps) *compose.Lambda {
	return d.stage(NodeStructural, func(_ context.Context, t *model.Turn) (rules.Match, bool, error) {
		m, ok := d.Cascade.Structural(t.Input, t.UserName)
		return m, ok, nil
	})
}

// NewRhetoricalNode asks a question about the verb of the line.
func NewRhetoricalNode(d *Deps) *compose.Lambda {
	return d.stage(NodeRhetorical, func(ctx context.Context, t *model.Turn) (rules.Match, bool, error) {
		s, err := loadState(ctx)
		if err != nil {
			return rules.Match{}, false, err
		}
		m, ok := d.Cascade.Rhetorical(s.Analysis)
		return m, ok, nil
	})
}

func NewKeywordNode(d *Deps) *compose.Lambda {
	return d.stage(NodeKeyword, func(ctx context.Context, t *model.Turn) (rules.Match, bool, error) {
		s, err := loadState(ctx)
		if err != nil {
			return rules.Match{}, false, err
		}
		m, ok := d.Cascade.Keyword(t.Input, s.Analysis)
		return m, ok, nil
	})
}

func NewSingleWordNode(d *Deps) *compose.Lambda {
	return d.stage(NodeSingleWord, func(_ context.Context, t *model.Turn) (rules.Match, bool, error) {
		m, ok := d.Cascade.SingleWord(t.Input)
		return m, ok, nil
	})
}

// NewFallbackNode always answers.
func NewFallbackNode(d *Deps) *compose.Lambda {
	return d.stage(NodeFallback, func(_ context.Context, _ *model.Turn) (rules.Match, bool, error) {
		return d.Cascade.Fallback(), true, nil
	})
}

// NewFinalizeNode emits the reply with its first letter capitalised.
func NewFinalizeNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, t *model.Turn) (string, error) {
		if t == nil || !t.Answered() {
			return "", fmt.Errorf("turn reached %s without a reply", NodeFinalize)
		}
		return Capitalize(t.Reply), nil
	})
}

// NewStageCondition routes an answered turn to Finalize and any other turn to next.
func NewStageCondition(next string) func(context.Context, *model.Turn) (string, error) {
	return func(ctx context.Context, t *model.Turn) (string, error) {
		if t != nil && t.Answered() {
			return NodeFinalize, nil
		}
		return next, nil
	}
}

func loadState(ctx context.Context) (model.TurnState, error) {
	var out model.TurnState
	err := compose.ProcessState(ctx, func(_ context.Context, s *model.TurnState) error {
		if !s.Analyzed {
			return fmt.Errorf("missing line analysis in state")
		}
		out = *s
		return nil
	})
	if err != nil {
		return model.TurnState{}, fmt.Errorf("failed to access state: %w", err)
	}
	return out, nil
}
