package observers

import (
	einocb "github.com/cloudwego/eino/callbacks"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"
)

// NewAllCallbacks aggregates all observer handlers (stages and the graph itself) into one callbacks.Handler.
func NewAllCallbacks() einocb.Handler {
	stageHandler := newStageHandler()
	graphHandler := newGraphHandler()

	return callbackHelper.NewHandlerHelper().
		Lambda(stageHandler).
		Graph(graphHandler).
		Handler()
}
