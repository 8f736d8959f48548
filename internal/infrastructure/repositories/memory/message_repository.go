package memory

import (
	"context"
	"sync"

	"huddle/internal/core/domain"
	"huddle/internal/core/ports"
)

// maxRetained caps the in-memory chat log. The log only ever serves the
// recent-history query, so old entries can be discarded.
const maxRetained = 1000

type MemoryMessageRepository struct {
	messages []*domain.Message
	mu       sync.RWMutex
}

func NewMemoryMessageRepository() ports.MessageRepository {
	return &MemoryMessageRepository{}
}

func (r *MemoryMessageRepository) Append(ctx context.Context, msg *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *msg
	r.messages = append(r.messages, &cp)
	if len(r.messages) > maxRetained {
		r.messages = r.messages[len(r.messages)-maxRetained:]
	}
	return nil
}

func (r *MemoryMessageRepository) Recent(ctx context.Context, limit int) ([]*domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > len(r.messages) {
		limit = len(r.messages)
	}

	out := make([]*domain.Message, 0, limit)
	for _, msg := range r.messages[len(r.messages)-limit:] {
		cp := *msg
		out = append(out, &cp)
	}
	return out, nil
}
