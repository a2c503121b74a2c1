package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"

	"github.com/papashirogane/chatbot/internal/agent/model"
	errx "github.com/papashirogane/chatbot/internal/core/error"
	logx "github.com/papashirogane/chatbot/pkg/logger"
)

// transcriptKey is the Redis list holding one conversation, oldest line first.
func transcriptKey(conversationID string) string {
	return "chatbot:conversation:" + conversationID + ":messages"
}

// transcriptRow is one stored line. Only the speaker and the text are kept;
// a bot turn carries no tool calls or token usage worth persisting.
type transcriptRow struct {
	Role    schema.RoleType `json:"role"`
	Content string          `json:"content"`
}

// RedisConversationRepository mirrors transcripts into Redis lists. Each
// write refreshes the TTL so an idle conversation expires on its own.
type RedisConversationRepository struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisConversationRepository(rdb redis.Cmdable, ttl time.Duration) *RedisConversationRepository {
	return &RedisConversationRepository{rdb: rdb, ttl: ttl}
}

func (r *RedisConversationRepository) AddMessage(ctx context.Context, conversationID string, message *schema.Message) error {
	if message == nil {
		return fmt.Errorf("message is nil")
	}
	b, err := json.Marshal(transcriptRow{Role: message.Role, Content: message.Content})
	if err != nil {
		return fmt.Errorf("marshal transcript row: %w", err)
	}

	key := transcriptKey(conversationID)
	if err := r.rdb.RPush(ctx, key, b).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to append transcript row")
		return errx.WrapRedis(err)
	}
	return r.touch(ctx, key)
}

func (r *RedisConversationRepository) touch(ctx context.Context, key string) error {
	if r.ttl <= 0 {
		return nil
	}
	ok, err := r.rdb.Expire(ctx, key, r.ttl).Result()
	if err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to refresh transcript TTL")
		return errx.WrapRedis(err)
	}
	if !ok {
		logx.Warn().Str("key", key).Dur("ttl", r.ttl).Msg("transcript vanished before its TTL was set")
	}
	return nil
}

func (r *RedisConversationRepository) LoadHistory(ctx context.Context, conversationID string) (*model.ConversationHistory, error) {
	key := transcriptKey(conversationID)
	rows, err := r.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		logx.Error().Err(err).Str("key", key).Msg("failed to load transcript")
		return nil, errx.WrapRedis(err)
	}

	msgs, err := decodeRows(rows)
	if err != nil {
		logx.Error().Err(err).Str("key", key).Msg("corrupt transcript")
		return nil, err
	}
	return &model.ConversationHistory{ConversationID: conversationID, Messages: msgs}, nil
}

func decodeRows(rows []string) ([]*schema.Message, error) {
	msgs := make([]*schema.Message, 0, len(rows))
	for i, s := range rows {
		var row transcriptRow
		if err := json.Unmarshal([]byte(s), &row); err != nil {
			return nil, fmt.Errorf("transcript row %d: %w", i, err)
		}
		msgs = append(msgs, &schema.Message{Role: row.Role, Content: row.Content})
	}
	return msgs, nil
}

func (r *RedisConversationRepository) ClearHistory(ctx context.Context, conversationID string) error {
	if err := r.rdb.Del(ctx, transcriptKey(conversationID)).Err(); err != nil {
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisConversationRepository) GetMessageCount(ctx context.Context, conversationID string) (int, error) {
	n, err := r.rdb.LLen(ctx, transcriptKey(conversationID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, errx.WrapRedis(err)
	}
	return int(n), nil
}

var _ model.ConversationRepository = (*RedisConversationRepository)(nil)
