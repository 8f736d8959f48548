package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"huddle/internal/core/domain"
	"huddle/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

const (
	chatLogKey = "huddle:chat:messages"

	// chatLogCap bounds the persisted log. Only the recent tail is ever read.
	chatLogCap = 1000
)

// RedisMessageRepository stores the chat log as a Redis list in append
// order, so LRANGE over the tail yields ascending timestamps for free.
type RedisMessageRepository struct {
	client *redis.Client
}

func NewRedisMessageRepository(client *redis.Client) ports.MessageRepository {
	return &RedisMessageRepository{client: client}
}

func (r *RedisMessageRepository) Append(ctx context.Context, msg *domain.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.RPush(ctx, chatLogKey, data)
	pipe.LTrim(ctx, chatLogKey, -chatLogCap, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append message to Redis: %w", err)
	}
	return nil
}

func (r *RedisMessageRepository) Recent(ctx context.Context, limit int) ([]*domain.Message, error) {
	if limit <= 0 {
		return nil, nil
	}

	entries, err := r.client.LRange(ctx, chatLogKey, int64(-limit), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read chat log from Redis: %w", err)
	}

	messages := make([]*domain.Message, 0, len(entries))
	for _, entry := range entries {
		var msg domain.Message
		if err := json.Unmarshal([]byte(entry), &msg); err != nil {
			// Skip entries that no longer parse
			continue
		}
		messages = append(messages, &msg)
	}
	return messages, nil
}
