package memory

import (
	"context"
	"sort"
	"sync"

	"huddle/internal/core/domain"
	"huddle/internal/core/ports"
)

type MemoryPollRepository struct {
	polls map[string]*domain.Poll
	mu    sync.RWMutex
}

func NewMemoryPollRepository() ports.PollRepository {
	return &MemoryPollRepository{
		polls: make(map[string]*domain.Poll),
	}
}

func (r *MemoryPollRepository) Save(ctx context.Context, poll *domain.Poll) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.polls[poll.ID] = clonePoll(poll)
	return nil
}

func (r *MemoryPollRepository) GetByID(ctx context.Context, id string) (*domain.Poll, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	poll, exists := r.polls[id]
	if !exists {
		return nil, domain.ErrPollNotFound
	}
	return clonePoll(poll), nil
}

func (r *MemoryPollRepository) List(ctx context.Context) ([]*domain.Poll, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Poll, 0, len(r.polls))
	for _, poll := range r.polls {
		out = append(out, clonePoll(poll))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// clonePoll deep-copies a poll so callers mutate their own view, matching the
// load-modify-save semantics of the Redis implementation.
func clonePoll(poll *domain.Poll) *domain.Poll {
	cp := *poll
	cp.Options = make([]domain.PollOption, len(poll.Options))
	for i, opt := range poll.Options {
		cp.Options[i] = domain.PollOption{
			Text:  opt.Text,
			Votes: append([]domain.Vote(nil), opt.Votes...),
		}
	}
	return &cp
}
