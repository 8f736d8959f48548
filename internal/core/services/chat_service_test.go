package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"huddle/internal/core/domain"
	"huddle/internal/core/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureMessageRepo records appends and can be told to fail the first N.
type captureMessageRepo struct {
	mu       sync.Mutex
	appended []*domain.Message
	failures int
}

func (r *captureMessageRepo) Append(ctx context.Context, msg *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failures > 0 {
		r.failures--
		return errors.New("store down")
	}
	r.appended = append(r.appended, msg)
	return nil
}

func (r *captureMessageRepo) Recent(ctx context.Context, limit int) ([]*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit > len(r.appended) {
		limit = len(r.appended)
	}
	return r.appended[len(r.appended)-limit:], nil
}

func (r *captureMessageRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.appended)
}

func (r *captureMessageRepo) texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.appended))
	for _, m := range r.appended {
		out = append(out, m.Text)
	}
	return out
}

func newChatFixture(t *testing.T, repo *captureMessageRepo) (*ChatService, *fakePusher) {
	t.Helper()

	roster := NewRosterService(testLogger())
	roster.Join("conn_1", "alice")
	roster.Join("conn_2", "bob")

	pusher := &fakePusher{}
	svc := NewChatService(roster, pusher, repo, nil, 4096, testLogger())
	t.Cleanup(svc.Close)
	return svc, pusher
}

func TestChat_PostMessageBroadcastsAndPersists(t *testing.T) {
	repo := &captureMessageRepo{}
	svc, pusher := newChatFixture(t, repo)

	require.NoError(t, svc.PostMessage(context.Background(), "conn_1", "hello"))

	got := pusher.broadcastsExcept(events.TypeMessageReceived)
	require.Len(t, got, 1)
	assert.Equal(t, domain.ConnID("conn_1"), got[0].To)
	assert.Equal(t, events.MessageReceivedPayload{Sender: "alice", Text: "hello"}, got[0].Payload)

	assert.Eventually(t, func() bool { return repo.count() == 1 }, time.Second, 5*time.Millisecond)
}

func TestChat_UnannouncedSenderIsDroppedSilently(t *testing.T) {
	repo := &captureMessageRepo{}
	svc, pusher := newChatFixture(t, repo)

	require.NoError(t, svc.PostMessage(context.Background(), "conn_stranger", "hello"))

	assert.Empty(t, pusher.broadcastsExcept(events.TypeMessageReceived))
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, repo.count())
}

func TestChat_RejectsOversizedMessage(t *testing.T) {
	repo := &captureMessageRepo{}
	svc, pusher := newChatFixture(t, repo)

	err := svc.PostMessage(context.Background(), "conn_1", strings.Repeat("x", 5000))
	assert.Error(t, err)
	assert.Empty(t, pusher.broadcastsExcept(events.TypeMessageReceived))
}

func TestChat_PersistenceKeepsSubmissionOrder(t *testing.T) {
	repo := &captureMessageRepo{}
	svc, _ := newChatFixture(t, repo)

	require.NoError(t, svc.PostMessage(context.Background(), "conn_1", "first"))
	require.NoError(t, svc.PostMessage(context.Background(), "conn_2", "second"))
	require.NoError(t, svc.PostMessage(context.Background(), "conn_1", "third"))

	assert.Eventually(t, func() bool { return repo.count() == 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"first", "second", "third"}, repo.texts())
}

func TestChat_PersistenceRetriesTransientFailure(t *testing.T) {
	repo := &captureMessageRepo{failures: 1}
	svc, _ := newChatFixture(t, repo)

	require.NoError(t, svc.PostMessage(context.Background(), "conn_1", "flaky"))

	assert.Eventually(t, func() bool { return repo.count() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestChat_RelayFileBroadcastsMetadata(t *testing.T) {
	repo := &captureMessageRepo{}
	svc, pusher := newChatFixture(t, repo)

	meta := domain.FileMeta{
		URL:          "/uploads/images/1_cat.png",
		Filename:     "1_cat.png",
		OriginalName: "cat.png",
		MimeType:     "image/png",
		Size:         1234,
	}
	svc.RelayFile("conn_1", meta)

	got := pusher.broadcastsExcept(events.TypeFileReceived)
	require.Len(t, got, 1)
	assert.Equal(t, events.FileReceivedPayload{Sender: "alice", Meta: meta}, got[0].Payload)

	// An unannounced sender shares nothing.
	svc.RelayFile("conn_stranger", meta)
	assert.Len(t, pusher.broadcastsExcept(events.TypeFileReceived), 1)
}

func TestChat_RecentHistoryPassesThrough(t *testing.T) {
	repo := &captureMessageRepo{}
	svc, _ := newChatFixture(t, repo)

	require.NoError(t, svc.PostMessage(context.Background(), "conn_1", "one"))
	require.NoError(t, svc.PostMessage(context.Background(), "conn_1", "two"))
	assert.Eventually(t, func() bool { return repo.count() == 2 }, time.Second, 5*time.Millisecond)

	history, err := svc.RecentHistory(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "two", history[0].Text)
}
