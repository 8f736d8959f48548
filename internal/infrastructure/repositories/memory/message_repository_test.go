package memory_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"huddle/internal/core/domain"
	"huddle/internal/infrastructure/repositories/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageRepository_AppendAndRecent(t *testing.T) {
	repo := memory.NewMemoryMessageRepository()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := repo.Append(ctx, &domain.Message{
			ID:        fmt.Sprintf("msg_%d", i),
			Sender:    "alice",
			Text:      fmt.Sprintf("message %d", i),
			Timestamp: time.Now(),
		})
		require.NoError(t, err)
	}

	recent, err := repo.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)

	// Tail of the log, oldest first.
	assert.Equal(t, "message 2", recent[0].Text)
	assert.Equal(t, "message 4", recent[2].Text)
}

func TestMessageRepository_RecentLimitLargerThanLog(t *testing.T) {
	repo := memory.NewMemoryMessageRepository()
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, &domain.Message{ID: "msg_1", Text: "only one"}))

	recent, err := repo.Recent(ctx, 50)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestMessageRepository_RecentEmpty(t *testing.T) {
	repo := memory.NewMemoryMessageRepository()

	recent, err := repo.Recent(context.Background(), 20)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestMessageRepository_ReturnsCopies(t *testing.T) {
	repo := memory.NewMemoryMessageRepository()
	ctx := context.Background()

	msg := &domain.Message{ID: "msg_1", Text: "original"}
	require.NoError(t, repo.Append(ctx, msg))

	// Mutating the caller's message must not affect the stored entry.
	msg.Text = "mutated after append"

	recent, err := repo.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "original", recent[0].Text)

	// Mutating a returned message must not affect later reads.
	recent[0].Text = "mutated after read"

	again, err := repo.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "original", again[0].Text)
}
