package ports

import (
	"context"

	"huddle/internal/core/domain"
)

// MessageRepository is the append-only chat log. Recent returns the newest
// limit messages in ascending timestamp order.
type MessageRepository interface {
	Append(ctx context.Context, msg *domain.Message) error
	Recent(ctx context.Context, limit int) ([]*domain.Message, error)
}

type PollRepository interface {
	Save(ctx context.Context, poll *domain.Poll) error
	GetByID(ctx context.Context, id string) (*domain.Poll, error)
	List(ctx context.Context) ([]*domain.Poll, error)
}
