package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"huddle/internal/core/domain"
	"huddle/internal/core/events"
	"huddle/internal/core/ports"
	"huddle/pkg/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PollAggregator creates polls, records at-most-one-vote-per-voter and
// broadcasts recomputed tallies. Vote mutations are serialized on one mutex
// so concurrent load-modify-save cycles cannot double-count a ballot.
//
// Store failures are logged and do not block the live broadcast; the feed
// and the persisted history are eventually consistent.
type PollAggregator struct {
	roster  ports.Roster
	gateway ports.Pusher
	repo    ports.PollRepository
	metrics ports.MetricsRecorder
	logger  *zap.SugaredLogger

	mu sync.Mutex
}

func NewPollAggregator(roster ports.Roster, gateway ports.Pusher, repo ports.PollRepository, metrics ports.MetricsRecorder, logger *zap.SugaredLogger) *PollAggregator {
	return &PollAggregator{
		roster:  roster,
		gateway: gateway,
		repo:    repo,
		metrics: metrics,
		logger:  logger,
	}
}

// CreatePoll validates, persists and announces a new poll. Option texts are
// re-validated here even when the transport already checked them.
func (p *PollAggregator) CreatePoll(ctx context.Context, creator domain.ConnID, question string, options []string) (*domain.Poll, error) {
	if err := validation.ValidatePollQuestion(question); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidPoll, err)
	}
	if err := validation.ValidatePollOptions(options); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidPoll, err)
	}

	creatorName, _ := p.roster.Resolve(creator)

	poll := &domain.Poll{
		ID:        uuid.New().String(),
		Question:  strings.TrimSpace(question),
		Creator:   creatorName,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	for _, opt := range options {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}
		poll.Options = append(poll.Options, domain.PollOption{Text: opt})
	}

	if err := p.repo.Save(ctx, poll); err != nil {
		// Availability over durability: announce the poll anyway.
		p.logger.Errorw("failed to persist poll", "poll_id", poll.ID, "error", err)
	}

	if p.metrics != nil {
		p.metrics.RecordPollCreated()
	}
	p.logger.Infow("poll created", "poll_id", poll.ID, "creator", creatorName, "options", len(poll.Options))

	p.gateway.Broadcast(events.TypePollCreated, events.PollCreatedPayload{
		ID:        poll.ID,
		Question:  poll.Question,
		Options:   poll.Tally(),
		Creator:   poll.Creator,
		CreatedAt: poll.CreatedAt.UnixMilli(),
	})
	return poll, nil
}

// Vote moves the voter's ballot to optionIndex. An out-of-range index
// retracts the ballot; that is a policy, not an error. The updated tally is
// broadcast to everyone, counts only.
func (p *PollAggregator) Vote(ctx context.Context, pollID string, voter domain.ConnID, optionIndex int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	poll, err := p.repo.GetByID(ctx, pollID)
	if err != nil {
		return domain.ErrPollNotFound
	}
	if !poll.IsActive {
		return domain.ErrPollInactive
	}

	voterName, _ := p.roster.Resolve(voter)
	poll.SetVote(domain.Vote{VoterID: voter, DisplayName: voterName}, optionIndex)

	if err := p.repo.Save(ctx, poll); err != nil {
		p.logger.Errorw("failed to persist vote", "poll_id", poll.ID, "voter", voter, "error", err)
	}

	if p.metrics != nil {
		p.metrics.RecordVoteCast()
	}

	p.gateway.Broadcast(events.TypePollUpdated, events.PollUpdatedPayload{
		ID:      poll.ID,
		Options: poll.Tally(),
	})
	return nil
}
