package conversations

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/papashirogane/chatbot/internal/agent/model"
	logx "github.com/papashirogane/chatbot/pkg/logger"
)

// Responder is the turn-by-turn interface of a bot.
type Responder interface {
	Submit(line string)
	ReplyContext(ctx context.Context) string
}

// MessagesManager runs one conversation: each line goes to the bot and both
// sides of the exchange are mirrored into the transcript store.
type MessagesManager struct {
	conversationRepo model.ConversationRepository
	bot              Responder
	historyTurns     int
}

func NewMessagesManager(conversationRepo model.ConversationRepository, bot Responder, config model.ConversationConfig) *MessagesManager {
	return &MessagesManager{
		conversationRepo: conversationRepo,
		bot:              bot,
		historyTurns:     config.HistoryTurns,
	}
}

// Exchange submits line and returns the bot's reply. A failing store never
// costs the user a reply; the error is logged and returned alongside it.
func (cm *MessagesManager) Exchange(ctx context.Context, conversationID string, line string) (string, error) {
	var errs []error
	if err := cm.conversationRepo.AddMessage(ctx, conversationID, schema.UserMessage(line)); err != nil {
		errs = append(errs, fmt.Errorf("save user message: %w", err))
	}

	cm.bot.Submit(line)
	reply := cm.bot.ReplyContext(ctx)

	if err := cm.SaveResponse(ctx, conversationID, reply); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		logx.Warn().Str("conversation_id", conversationID).Errs("errors", errs).Msg("Transcript not fully saved")
		return reply, errs[0]
	}
	return reply, nil
}

func (cm *MessagesManager) SaveResponse(ctx context.Context, conversationID string, content string) error {
	assistantMsg := schema.AssistantMessage(content, nil)
	if err := cm.conversationRepo.AddMessage(ctx, conversationID, assistantMsg); err != nil {
		return fmt.Errorf("save reply: %w", err)
	}
	return nil
}

// RecentTranscript renders the last configured number of messages, one per line.
func (cm *MessagesManager) RecentTranscript(ctx context.Context, conversationID string) (string, error) {
	history, err := cm.conversationRepo.LoadHistory(ctx, conversationID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, msg := range trimTail(history.Messages, cm.historyTurns) {
		if msg == nil {
			continue
		}
		switch msg.Role {
		case schema.User:
			b.WriteString("you: " + msg.Content + "\n")
		case schema.Assistant:
			b.WriteString("bot: " + msg.Content + "\n")
		}
	}
	return b.String(), nil
}

// MessageCount returns how many lines the transcript holds in total.
func (cm *MessagesManager) MessageCount(ctx context.Context, conversationID string) (int, error) {
	return cm.conversationRepo.GetMessageCount(ctx, conversationID)
}

// End drops the transcript once the conversation is over. Nothing outlives
// the process, even in a store with its own expiry.
func (cm *MessagesManager) End(ctx context.Context, conversationID string) error {
	if err := cm.conversationRepo.ClearHistory(ctx, conversationID); err != nil {
		logx.Warn().Err(err).Str("conversation_id", conversationID).Msg("Transcript not cleared")
		return err
	}
	return nil
}

// Reset swaps in a fresh bot and drops the transcript.
func (cm *MessagesManager) Reset(ctx context.Context, conversationID string, bot Responder) error {
	if bot != nil {
		cm.bot = bot
	}
	return cm.conversationRepo.ClearHistory(ctx, conversationID)
}

// ====================== Helper function ======================
func trimTail(messages []*schema.Message, maxTurns int) []*schema.Message {
	if maxTurns <= 0 || len(messages) <= maxTurns {
		result := make([]*schema.Message, len(messages))
		copy(result, messages)
		return result
	}
	source := messages[len(messages)-maxTurns:]
	result := make([]*schema.Message, len(source))
	copy(result, source)
	return result
}
