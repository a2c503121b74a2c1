package observers

import (
	"context"

	einocb "github.com/cloudwego/eino/callbacks"

	"github.com/papashirogane/chatbot/internal/agent/model"
	logx "github.com/papashirogane/chatbot/pkg/logger"
)

// newStageHandler logs every cascade stage around its lambda.
func newStageHandler() einocb.Handler {
	return einocb.NewHandlerBuilder().
		OnStartFn(func(ctx context.Context, info *einocb.RunInfo, input einocb.CallbackInput) context.Context {
			ev := logx.Debug().Str("stage", info.Name)
			if t, ok := input.(*model.Turn); ok && t != nil {
				ev = ev.Str("raw", t.Input.Raw).Int("repeats", t.Repeats)
			}
			ev.Msg("Stage start")
			return ctx
		}).
		OnEndFn(func(ctx context.Context, info *einocb.RunInfo, output einocb.CallbackOutput) context.Context {
			ev := logx.Debug().Str("stage", info.Name)
			switch out := output.(type) {
			case *model.Turn:
				if out != nil {
					ev = ev.Bool("answered", out.Answered())
				}
			case string:
				ev = ev.Str("reply", out)
			}
			ev.Msg("Stage end")
			return ctx
		}).
		OnErrorFn(func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			logx.Error().Err(err).Str("stage", info.Name).Msg("Stage failed")
			return ctx
		}).
		Build()
}

// newGraphHandler logs the start and end of a whole turn.
func newGraphHandler() einocb.Handler {
	return einocb.NewHandlerBuilder().
		OnStartFn(func(ctx context.Context, info *einocb.RunInfo, _ einocb.CallbackInput) context.Context {
			logx.Debug().Str("graph", info.Name).Msg("Turn start")
			return ctx
		}).
		OnEndFn(func(ctx context.Context, info *einocb.RunInfo, output einocb.CallbackOutput) context.Context {
			ev := logx.Debug().Str("graph", info.Name)
			if reply, ok := output.(string); ok {
				ev = ev.Str("reply", reply)
			}
			ev.Msg("Turn end")
			return ctx
		}).
		OnErrorFn(func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			logx.Error().Err(err).Str("graph", info.Name).Msg("Turn failed")
			return ctx
		}).
		Build()
}
