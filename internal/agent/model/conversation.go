package model

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// ConversationRepository stores the transcript of a conversation.
// It mirrors what was said; the bot never reads it back to decide a reply.
type ConversationRepository interface {
	// AddMessage appends a message to the transcript of conversationID.
	AddMessage(ctx context.Context, conversationID string, message *schema.Message) error

	// LoadHistory retrieves the transcript of a conversation.
	LoadHistory(ctx context.Context, conversationID string) (*ConversationHistory, error)

	// ClearHistory removes the transcript of a conversation.
	ClearHistory(ctx context.Context, conversationID string) error

	// GetMessageCount returns the number of messages in the transcript.
	GetMessageCount(ctx context.Context, conversationID string) (int, error)
}

// ConversationHistory represents a loaded transcript.
type ConversationHistory struct {
	ConversationID string
	Messages       []*schema.Message
}
