package services

import (
	"encoding/json"

	"huddle/internal/core/domain"
	"huddle/internal/core/events"
	"huddle/internal/core/ports"

	"go.uber.org/zap"
)

// SignalService relays opaque media-negotiation payloads between the two
// parties of a call. Payloads are forwarded byte-for-byte, tagged with the
// sender; the hub never inspects them.
//
// Forwarding requires an existing session between the pair. Stray signaling
// after a call has been torn down is refused rather than delivered.
type SignalService struct {
	calls   ports.CallCoordinator
	gateway ports.Pusher
	metrics ports.MetricsRecorder
	logger  *zap.SugaredLogger
}

func NewSignalService(calls ports.CallCoordinator, gateway ports.Pusher, metrics ports.MetricsRecorder, logger *zap.SugaredLogger) ports.SignalRelay {
	return &SignalService{
		calls:   calls,
		gateway: gateway,
		metrics: metrics,
		logger:  logger,
	}
}

func (s *SignalService) RelayOffer(from, to domain.ConnID, payload json.RawMessage) error {
	return s.relay(events.TypeSignalOffer, from, to, payload)
}

func (s *SignalService) RelayAnswer(from, to domain.ConnID, payload json.RawMessage) error {
	return s.relay(events.TypeSignalAnswer, from, to, payload)
}

func (s *SignalService) RelayCandidate(from, to domain.ConnID, payload json.RawMessage) error {
	return s.relay(events.TypeSignalCandidate, from, to, payload)
}

func (s *SignalService) relay(kind string, from, to domain.ConnID, payload json.RawMessage) error {
	if !s.calls.HasSession(from, to) {
		s.logger.Debugw("refusing signaling outside a call session", "kind", kind, "from", from, "to", to)
		return domain.ErrNoSuchSession
	}

	if err := s.gateway.SendTo(to, kind, events.SignalForwardPayload{
		SenderID: from,
		Data:     payload,
	}); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.RecordSignalRelayed(kind)
	}
	return nil
}
