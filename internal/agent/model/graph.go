package model

import (
	"github.com/papashirogane/chatbot/internal/agent/grammar"
)

// TurnState stores per-invocation state for the Eino Graph.
// Concurrency model:
//   - This struct is registered as Graph Local State via compose.WithGenLocalState.
//   - All reads/writes happen only inside Eino state handlers:
//     WithStatePreHandler or compose.ProcessState.
//   - A fresh value is generated for every invocation and dropped when it ends.
type TurnState struct {
	Analysis grammar.Analysis
	Analyzed bool
}

// Turn is the value that flows through the cascade graph. Each stage either
// sets Reply or leaves it empty for the next one.
type Turn struct {
	Input NormalizedInput
	// Repeats counts earlier identical lines in the session.
	Repeats  int
	UserName string

	Reply string
	// Stage names the stage that produced Reply.
	Stage   string
	Trigger string
}

// Answered reports whether a stage has produced a reply.
func (t *Turn) Answered() bool {
	return t.Stage != ""
}
