package services

import (
	"context"
	"testing"

	"huddle/internal/core/domain"
	"huddle/internal/core/events"
	"huddle/internal/infrastructure/repositories/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPollFixture(t *testing.T) (*PollAggregator, *fakePusher, func(id string) *domain.Poll) {
	t.Helper()

	roster := NewRosterService(testLogger())
	roster.Join("conn_1", "alice")
	roster.Join("conn_2", "bob")

	pusher := &fakePusher{}
	repo := memory.NewMemoryPollRepository()
	svc := NewPollAggregator(roster, pusher, repo, nil, testLogger())

	lookup := func(id string) *domain.Poll {
		poll, err := repo.GetByID(context.Background(), id)
		require.NoError(t, err)
		return poll
	}
	return svc, pusher, lookup
}

func TestPoll_CreateValidatesOptionCount(t *testing.T) {
	svc, pusher, _ := newPollFixture(t)

	_, err := svc.CreatePoll(context.Background(), "conn_1", "lunch?", []string{"pizza"})
	assert.ErrorIs(t, err, domain.ErrInvalidPoll)

	_, err = svc.CreatePoll(context.Background(), "conn_1", "lunch?",
		[]string{"a", "b", "c", "d", "e", "f", "g"})
	assert.ErrorIs(t, err, domain.ErrInvalidPoll)

	_, err = svc.CreatePoll(context.Background(), "conn_1", "   ", []string{"a", "b"})
	assert.ErrorIs(t, err, domain.ErrInvalidPoll)

	assert.Empty(t, pusher.broadcasts(events.TypePollCreated))
}

func TestPoll_CreateBroadcastsZeroTally(t *testing.T) {
	svc, pusher, _ := newPollFixture(t)

	poll, err := svc.CreatePoll(context.Background(), "conn_1", "lunch?", []string{"pizza", "sushi"})
	require.NoError(t, err)
	assert.Equal(t, "alice", poll.Creator)
	assert.True(t, poll.IsActive)

	got := pusher.broadcasts(events.TypePollCreated)
	require.Len(t, got, 1)
	payload, ok := got[0].Payload.(events.PollCreatedPayload)
	require.True(t, ok)
	assert.Equal(t, poll.ID, payload.ID)
	require.Len(t, payload.Options, 2)
	assert.Equal(t, "pizza", payload.Options[0].Text)
	assert.Equal(t, 0, payload.Options[0].Count)
}

func TestPoll_VoteMoveAndRetract(t *testing.T) {
	svc, pusher, lookup := newPollFixture(t)

	poll, err := svc.CreatePoll(context.Background(), "conn_1", "lunch?", []string{"pizza", "sushi"})
	require.NoError(t, err)

	// First ballot.
	require.NoError(t, svc.Vote(context.Background(), poll.ID, "conn_2", 0))
	counts := lookup(poll.ID).Tally()
	assert.Equal(t, 1, counts[0].Count)
	assert.Equal(t, 0, counts[1].Count)

	// Moving the ballot does not double count.
	require.NoError(t, svc.Vote(context.Background(), poll.ID, "conn_2", 1))
	counts = lookup(poll.ID).Tally()
	assert.Equal(t, 0, counts[0].Count)
	assert.Equal(t, 1, counts[1].Count)

	// Out-of-range index retracts the ballot.
	require.NoError(t, svc.Vote(context.Background(), poll.ID, "conn_2", 99))
	counts = lookup(poll.ID).Tally()
	assert.Equal(t, 0, counts[0].Count)
	assert.Equal(t, 0, counts[1].Count)

	updates := pusher.broadcasts(events.TypePollUpdated)
	require.Len(t, updates, 3)
	last, ok := updates[2].Payload.(events.PollUpdatedPayload)
	require.True(t, ok)
	assert.Equal(t, poll.ID, last.ID)
}

func TestPoll_TwoVotersCountIndependently(t *testing.T) {
	svc, _, lookup := newPollFixture(t)

	poll, err := svc.CreatePoll(context.Background(), "conn_1", "lunch?", []string{"pizza", "sushi"})
	require.NoError(t, err)

	require.NoError(t, svc.Vote(context.Background(), poll.ID, "conn_1", 0))
	require.NoError(t, svc.Vote(context.Background(), poll.ID, "conn_2", 0))

	counts := lookup(poll.ID).Tally()
	assert.Equal(t, 2, counts[0].Count)
}

func TestPoll_VoteUnknownPoll(t *testing.T) {
	svc, pusher, _ := newPollFixture(t)

	err := svc.Vote(context.Background(), "missing", "conn_1", 0)
	assert.ErrorIs(t, err, domain.ErrPollNotFound)
	assert.Empty(t, pusher.broadcasts(events.TypePollUpdated))
}

func TestPoll_VoteInactivePoll(t *testing.T) {
	roster := NewRosterService(testLogger())
	roster.Join("conn_1", "alice")

	pusher := &fakePusher{}
	repo := memory.NewMemoryPollRepository()
	svc := NewPollAggregator(roster, pusher, repo, nil, testLogger())

	poll, err := svc.CreatePoll(context.Background(), "conn_1", "lunch?", []string{"a", "b"})
	require.NoError(t, err)

	closed, err := repo.GetByID(context.Background(), poll.ID)
	require.NoError(t, err)
	closed.IsActive = false
	require.NoError(t, repo.Save(context.Background(), closed))

	err = svc.Vote(context.Background(), poll.ID, "conn_1", 0)
	assert.ErrorIs(t, err, domain.ErrPollInactive)
}
