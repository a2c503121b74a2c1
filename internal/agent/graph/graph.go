package graph

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	"github.com/papashirogane/chatbot/internal/agent/graph/nodes"
	"github.com/papashirogane/chatbot/internal/agent/graph/observers"
	"github.com/papashirogane/chatbot/internal/agent/model"
	logx "github.com/papashirogane/chatbot/pkg/logger"
)

// GraphName is the name the cascade graph reports to callbacks.
const GraphName = "ReplyCascade"

// Runner is a thin wrapper to execute the compiled cascade for one turn.
type Runner interface {
	Invoke(ctx context.Context, t *model.Turn) (string, error)
}

// GraphConfig holds all configuration needed to build the graph
type GraphConfig struct {
	Deps *nodes.Deps
}

// GraphBuilder handles the construction of the reply cascade graph
type GraphBuilder struct {
	config *GraphConfig
	graph  *compose.Graph[*model.Turn, string]
}

type graphRunner struct {
	runnable compose.Runnable[*model.Turn, string]
}

func (r *graphRunner) Invoke(ctx context.Context, t *model.Turn) (string, error) {
	if t == nil {
		return "", fmt.Errorf("turn is nil")
	}
	return r.runnable.Invoke(ctx, t, compose.WithCallbacks(observers.NewAllCallbacks()))
}

// BuildCascadeGraph builds the graph and returns a Runner.
func BuildCascadeGraph(ctx context.Context, deps *nodes.Deps) (Runner, error) {
	runnable, err := BuildGraph(ctx, &GraphConfig{Deps: deps})
	if err != nil {
		return nil, err
	}
	logx.Debug().Msg("Cascade graph built successfully")
	return &graphRunner{runnable: runnable}, nil
}

// BuildGraph constructs and returns the compiled cascade graph
func BuildGraph(ctx context.Context, config *GraphConfig) (compose.Runnable[*model.Turn, string], error) {
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if err := config.Deps.Validate(); err != nil {
		return nil, err
	}

	builder := &GraphBuilder{
		config: config,
		graph: compose.NewGraph[*model.Turn, string](
			compose.WithGenLocalState(func(ctx context.Context) *model.TurnState {
				return &model.TurnState{}
			}),
		),
	}

	if err := builder.addNodes(); err != nil {
		return nil, err
	}
	if err := builder.addEdges(); err != nil {
		return nil, err
	}
	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	return builder.compile(ctx)
}

// addNodes adds one lambda per stage plus Finalize
func (b *GraphBuilder) addNodes() error {
	d := b.config.Deps

	stages := []struct {
		key    string
		lambda *compose.Lambda
		opts   []compose.GraphAddNodeOpt
	}{
		{nodes.NodeEmptyCheck, nodes.NewEmptyCheckNode(d), []compose.GraphAddNodeOpt{
			compose.WithStatePreHandler(nodes.NewAnalysisPreHandler(d)),
		}},
		{nodes.NodeRepeatCheck, nodes.NewRepeatCheckNode(d), nil},
		{nodes.NodeLyric, nodes.NewLyricNode(d), nil},
		{nodes.NodeStructural, nodes.NewStructuralNode(d), nil},
		{nodes.NodeRhetorical, nodes.NewRhetoricalNode(d), nil},
		{nodes.NodeKeyword, nodes.NewKeywordNode(d), nil},
		{nodes.NodeSingleWord, nodes.NewSingleWordNode(d), nil},
		{nodes.NodeFallback, nodes.NewFallbackNode(d), nil},
		{nodes.NodeFinalize, nodes.NewFinalizeNode(), nil},
	}

	for _, s := range stages {
		opts := append([]compose.GraphAddNodeOpt{compose.WithNodeName(s.key)}, s.opts...)
		if err := b.graph.AddLambdaNode(s.key, s.lambda, opts...); err != nil {
			logx.Error().Err(err).Str("node", s.key).Msg("Error adding node")
			return fmt.Errorf("error adding node %s: %w", s.key, err)
		}
	}
	return nil
}

// addEdges creates the fixed connections; every other hop is a branch
func (b *GraphBuilder) addEdges() error {
	edges := [][2]string{
		{compose.START, nodes.NodeEmptyCheck},
		{nodes.NodeFallback, nodes.NodeFinalize},
		{nodes.NodeFinalize, compose.END},
	}

	for _, edge := range edges {
		if err := b.graph.AddEdge(edge[0], edge[1]); err != nil {
			logx.Error().Err(err).Str("from", edge[0]).Str("to", edge[1]).Msg("Error adding edge")
			return fmt.Errorf("error adding edge %s -> %s: %w", edge[0], edge[1], err)
		}
	}
	return nil
}

// addBranches routes each stage to Finalize once it answered, or on to the next stage
func (b *GraphBuilder) addBranches() error {
	for i := 0; i < len(nodes.Stages)-1; i++ {
		from, next := nodes.Stages[i], nodes.Stages[i+1]
		branch := compose.NewGraphBranch(
			nodes.NewStageCondition(next),
			map[string]bool{
				next:               true,
				nodes.NodeFinalize: true,
			},
		)
		if err := b.graph.AddBranch(from, branch); err != nil {
			logx.Error().Err(err).Str("node", from).Msg("Error adding stage branch")
			return fmt.Errorf("error adding branch after %s: %w", from, err)
		}
	}
	return nil
}

// compile finalizes and compiles the graph
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[*model.Turn, string], error) {
	// Every stage plus Finalize, with room to spare
	maxSteps := 2 * (len(nodes.Stages) + 1)

	runnable, err := b.graph.Compile(ctx,
		compose.WithGraphName(GraphName),
		compose.WithMaxRunSteps(maxSteps),
	)
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}
