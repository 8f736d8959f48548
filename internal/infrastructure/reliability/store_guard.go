package reliability

import (
	"context"

	"huddle/internal/core/domain"
	"huddle/internal/core/ports"
	"huddle/pkg/circuitbreaker"

	"go.uber.org/zap"
)

// NewStoreBreaker builds the shared circuit breaker guarding the persistent
// store. State changes are logged; an open breaker fails store calls fast so
// the live feed never waits on a dead backend.
func NewStoreBreaker(cfg circuitbreaker.Config, logger *zap.SugaredLogger) *circuitbreaker.CircuitBreaker {
	cb := circuitbreaker.New(cfg)
	cb.OnStateChange(func(from, to circuitbreaker.State) {
		logger.Warnw("store circuit breaker state changed",
			"from", from.String(),
			"to", to.String(),
		)
	})
	return cb
}

// GuardedMessageRepository wraps a message repository with the store breaker.
type GuardedMessageRepository struct {
	inner   ports.MessageRepository
	breaker *circuitbreaker.CircuitBreaker
}

func NewGuardedMessageRepository(inner ports.MessageRepository, breaker *circuitbreaker.CircuitBreaker) ports.MessageRepository {
	return &GuardedMessageRepository{inner: inner, breaker: breaker}
}

func (r *GuardedMessageRepository) Append(ctx context.Context, msg *domain.Message) error {
	return r.breaker.Execute(ctx, func() error {
		return r.inner.Append(ctx, msg)
	})
}

func (r *GuardedMessageRepository) Recent(ctx context.Context, limit int) ([]*domain.Message, error) {
	result, err := r.breaker.ExecuteWithResult(ctx, func() (interface{}, error) {
		return r.inner.Recent(ctx, limit)
	})
	if err != nil {
		return nil, err
	}
	return result.([]*domain.Message), nil
}

// GuardedPollRepository wraps a poll repository with the store breaker.
type GuardedPollRepository struct {
	inner   ports.PollRepository
	breaker *circuitbreaker.CircuitBreaker
}

func NewGuardedPollRepository(inner ports.PollRepository, breaker *circuitbreaker.CircuitBreaker) ports.PollRepository {
	return &GuardedPollRepository{inner: inner, breaker: breaker}
}

func (r *GuardedPollRepository) Save(ctx context.Context, poll *domain.Poll) error {
	return r.breaker.Execute(ctx, func() error {
		return r.inner.Save(ctx, poll)
	})
}

func (r *GuardedPollRepository) GetByID(ctx context.Context, id string) (*domain.Poll, error) {
	result, err := r.breaker.ExecuteWithResult(ctx, func() (interface{}, error) {
		return r.inner.GetByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.Poll), nil
}

func (r *GuardedPollRepository) List(ctx context.Context) ([]*domain.Poll, error) {
	result, err := r.breaker.ExecuteWithResult(ctx, func() (interface{}, error) {
		return r.inner.List(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.([]*domain.Poll), nil
}
