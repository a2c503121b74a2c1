package observers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/papashirogane/chatbot/internal/agent/model"
	"github.com/papashirogane/chatbot/internal/core"
	logx "github.com/papashirogane/chatbot/pkg/logger"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	level := zerolog.DebugLevel
	logx.Init(logx.LoggerOpts{Environment: core.Production, Level: &level, Output: buf})
	t.Cleanup(func() {
		quiet := zerolog.WarnLevel
		logx.Init(logx.LoggerOpts{Environment: core.Testing, Level: &quiet, Output: io.Discard})
	})
	return buf
}

func TestStageHandlerLogsTurn(t *testing.T) {
	buf := captureLogs(t)
	h := newStageHandler()
	info := &einocb.RunInfo{Name: "Keyword"}
	ctx := context.Background()

	turn := &model.Turn{Input: model.NormalizedInput{Raw: "i feel sad"}, Repeats: 2}
	h.OnStart(ctx, info, turn)
	turn.Stage = "Keyword"
	h.OnEnd(ctx, info, turn)
	h.OnError(ctx, info, errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, `"stage":"Keyword"`)
	assert.Contains(t, out, `"raw":"i feel sad"`)
	assert.Contains(t, out, `"repeats":2`)
	assert.Contains(t, out, `"answered":true`)
	assert.Contains(t, out, `"error":"boom"`)
}

func TestGraphHandlerLogsReply(t *testing.T) {
	buf := captureLogs(t)
	h := newGraphHandler()
	h.OnEnd(context.Background(), &einocb.RunInfo{Name: "ReplyCascade"}, "Hello.")

	assert.Contains(t, buf.String(), `"graph":"ReplyCascade"`)
	assert.Contains(t, buf.String(), `"reply":"Hello."`)
}

func TestNewAllCallbacks(t *testing.T) {
	assert.NotNil(t, NewAllCallbacks())
}
