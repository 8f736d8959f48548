package services

import (
	"context"
	"time"

	"huddle/internal/core/domain"
	"huddle/internal/core/events"
	"huddle/internal/core/ports"
	"huddle/pkg/retry"
	"huddle/pkg/utils"
	"huddle/pkg/validation"

	"go.uber.org/zap"
)

// ChatService appends chat events to the message log and fans them out.
// Broadcasts are optimistic: the live feed is sent before the durable write
// confirms, and a failed write is logged but never rolled back.
//
// Persistence goes through a single worker goroutine, which keeps the
// persisted order equal to the submission order.
type ChatService struct {
	roster  ports.Roster
	gateway ports.Pusher
	repo    ports.MessageRepository
	metrics ports.MetricsRecorder
	logger  *zap.SugaredLogger

	maxMessageLen int

	persistQueue chan *domain.Message
	done         chan struct{}
}

func NewChatService(roster ports.Roster, gateway ports.Pusher, repo ports.MessageRepository, metrics ports.MetricsRecorder, maxMessageLen int, logger *zap.SugaredLogger) *ChatService {
	s := &ChatService{
		roster:        roster,
		gateway:       gateway,
		repo:          repo,
		metrics:       metrics,
		logger:        logger,
		maxMessageLen: maxMessageLen,
		persistQueue:  make(chan *domain.Message, 256),
		done:          make(chan struct{}),
	}
	go s.persistLoop()
	return s
}

// Close drains the persist queue and stops the worker.
func (s *ChatService) Close() {
	close(s.persistQueue)
	<-s.done
}

// PostMessage persists and broadcasts a chat message. A message from a
// connection that never announced itself is silently dropped.
func (s *ChatService) PostMessage(ctx context.Context, sender domain.ConnID, text string) error {
	name, ok := s.roster.Resolve(sender)
	if !ok {
		s.logger.Debugw("dropping message from unannounced connection", "conn_id", sender)
		return nil
	}

	if err := validation.ValidateMessageText(text, s.maxMessageLen); err != nil {
		return err
	}

	msg := &domain.Message{
		ID:        utils.GenerateMessageID(),
		Sender:    name,
		Text:      text,
		Timestamp: time.Now(),
	}

	s.gateway.BroadcastExcept(sender, events.TypeMessageReceived, events.MessageReceivedPayload{
		Sender: name,
		Text:   text,
	})
	if s.metrics != nil {
		s.metrics.RecordMessagePosted()
	}

	select {
	case s.persistQueue <- msg:
	default:
		// Queue full: favor the live feed, lose the history entry.
		s.logger.Warnw("persist queue full, dropping message from history", "id", msg.ID)
	}
	return nil
}

// RecentHistory returns the newest limit messages in ascending timestamp
// order. Used once per connection at join time.
func (s *ChatService) RecentHistory(ctx context.Context, limit int) ([]*domain.Message, error) {
	return s.repo.Recent(ctx, limit)
}

// RelayFile fans out the metadata of an already-uploaded file. The blob never
// touches the hub and nothing is persisted here.
func (s *ChatService) RelayFile(sender domain.ConnID, meta domain.FileMeta) {
	name, ok := s.roster.Resolve(sender)
	if !ok {
		return
	}

	s.gateway.BroadcastExcept(sender, events.TypeFileReceived, events.FileReceivedPayload{
		Sender: name,
		Meta:   meta,
	})
	if s.metrics != nil {
		s.metrics.RecordFileShared()
	}
}

func (s *ChatService) persistLoop() {
	defer close(s.done)

	for msg := range s.persistQueue {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := retry.Do(ctx, retry.DefaultConfig(), func() error {
			return s.repo.Append(ctx, msg)
		})
		cancel()
		if err != nil {
			s.logger.Errorw("failed to persist message", "id", msg.ID, "error", err)
		}
	}
}
