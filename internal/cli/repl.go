package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/papashirogane/chatbot/internal/agent/bot"
	"github.com/papashirogane/chatbot/internal/agent/graph/conversations"
)

const (
	cmdHistory = "/history"
	cmdReset   = "/reset"
	cmdQuit    = "/quit"
)

// repl feeds lines from in to the bot and writes every reply to out.
type repl struct {
	in     io.Reader
	out    io.Writer
	mm     *conversations.MessagesManager
	id     string
	name   string
	newBot func() (*bot.Bot, error)
	// prompt is shown only when a person is typing.
	prompt bool
}

// run chats until /quit or end of input, then drops the transcript.
func (r *repl) run(ctx context.Context) error {
	defer func() { _ = r.mm.End(ctx, r.id) }()
	return r.loop(ctx)
}

func (r *repl) loop(ctx context.Context) error {
	label := color.New(color.FgCyan, color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	if r.prompt {
		fmt.Fprintf(r.out, "%s\n", dim(fmt.Sprintf("Talking to %s. %s, %s, %s.", r.name, cmdHistory, cmdReset, cmdQuit)))
	}

	scanner := bufio.NewScanner(r.in)
	for {
		if r.prompt {
			fmt.Fprint(r.out, "> ")
		}
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()

		switch strings.TrimSpace(line) {
		case cmdQuit:
			return nil
		case cmdHistory:
			transcript, err := r.mm.RecentTranscript(ctx, r.id)
			if err != nil {
				return fmt.Errorf("load transcript: %w", err)
			}
			total, err := r.mm.MessageCount(ctx, r.id)
			if err != nil {
				return fmt.Errorf("count messages: %w", err)
			}
			fmt.Fprint(r.out, dim(transcript))
			fmt.Fprintln(r.out, dim(fmt.Sprintf("(%d messages in total)", total)))
			continue
		case cmdReset:
			b, err := r.newBot()
			if err != nil {
				return err
			}
			if err := r.mm.Reset(ctx, r.id, b); err != nil {
				return fmt.Errorf("reset conversation: %w", err)
			}
			fmt.Fprintln(r.out, dim("(conversation reset)"))
			continue
		}

		// A store failure is logged by the manager; the reply still stands.
		reply, _ := r.mm.Exchange(ctx, r.id, line)
		fmt.Fprintf(r.out, "%s %s\n", label(r.name+":"), reply)
	}
	return scanner.Err()
}
