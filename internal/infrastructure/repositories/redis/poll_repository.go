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
	pollKeyPrefix = "huddle:poll:"
	pollIndexKey  = "huddle:polls"
)

type RedisPollRepository struct {
	client *redis.Client
}

func NewRedisPollRepository(client *redis.Client) ports.PollRepository {
	return &RedisPollRepository{client: client}
}

func (r *RedisPollRepository) pollKey(id string) string {
	return pollKeyPrefix + id
}

func (r *RedisPollRepository) Save(ctx context.Context, poll *domain.Poll) error {
	data, err := json.Marshal(poll)
	if err != nil {
		return fmt.Errorf("failed to marshal poll: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.pollKey(poll.ID), data, 0)
	pipe.SAdd(ctx, pollIndexKey, poll.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save poll in Redis: %w", err)
	}
	return nil
}

func (r *RedisPollRepository) GetByID(ctx context.Context, id string) (*domain.Poll, error) {
	data, err := r.client.Get(ctx, r.pollKey(id)).Result()
	if err == redis.Nil {
		return nil, domain.ErrPollNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get poll from Redis: %w", err)
	}

	var poll domain.Poll
	if err := json.Unmarshal([]byte(data), &poll); err != nil {
		return nil, fmt.Errorf("failed to unmarshal poll: %w", err)
	}
	return &poll, nil
}

func (r *RedisPollRepository) List(ctx context.Context) ([]*domain.Poll, error) {
	ids, err := r.client.SMembers(ctx, pollIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get poll index from Redis: %w", err)
	}

	var polls []*domain.Poll
	for _, id := range ids {
		poll, err := r.GetByID(ctx, id)
		if err != nil {
			// Skip polls that no longer exist
			continue
		}
		polls = append(polls, poll)
	}
	return polls, nil
}
