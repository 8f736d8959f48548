package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"huddle/internal/core/domain"
	"huddle/internal/core/events"
	"huddle/pkg/tracing"
	"huddle/pkg/validation"
)

// dispatch routes one decoded envelope to the owning service. Errors returned
// from here are reported to the sender as a generic error event; errors with
// a dedicated event type (call_busy, call_error, poll_error) are sent inside
// the case and swallowed.
func (s *Server) dispatch(ctx context.Context, id domain.ConnID, env events.Envelope) error {
	ctx, span := tracing.TraceEvent(ctx, env.Type, string(id))
	defer span.End()

	switch env.Type {
	case events.TypeJoin:
		return s.handleJoin(ctx, id, env.Payload)

	case events.TypeSendMessage:
		var p events.SendMessagePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return fmt.Errorf("invalid send_message payload: %w", err)
		}
		return s.svc.Chat.PostMessage(ctx, id, p.Text)

	case events.TypeRequestCall:
		var p events.RequestCallPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return fmt.Errorf("invalid request_call payload: %w", err)
		}
		return s.handleRequestCall(id, p.TargetID)

	case events.TypeAcceptCall:
		var p events.AcceptCallPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return fmt.Errorf("invalid accept_call payload: %w", err)
		}
		if err := s.svc.Calls.AcceptCall(id, p.CallerID); err != nil {
			s.SendTo(id, events.TypeCallError, events.CallErrorPayload{Reason: "no ringing call from that party"})
		}
		return nil

	case events.TypeRejectCall:
		var p events.RejectCallPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return fmt.Errorf("invalid reject_call payload: %w", err)
		}
		s.svc.Calls.RejectCall(id, p.CallerID)
		return nil

	case events.TypeEndCall:
		var p events.EndCallPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return fmt.Errorf("invalid end_call payload: %w", err)
		}
		s.svc.Calls.EndCall(id, p.PeerID)
		return nil

	case events.TypeSignalOffer, events.TypeSignalAnswer, events.TypeSignalCandidate:
		return s.handleSignal(env.Type, id, env.Payload)

	case events.TypeCreatePoll:
		var p events.CreatePollPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return fmt.Errorf("invalid create_poll payload: %w", err)
		}
		if _, err := s.svc.Polls.CreatePoll(ctx, id, p.Question, p.Options); err != nil {
			s.SendTo(id, events.TypePollError, events.PollErrorPayload{Message: err.Error()})
		}
		return nil

	case events.TypeVotePoll:
		var p events.VotePollPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return fmt.Errorf("invalid vote_poll payload: %w", err)
		}
		if err := s.svc.Polls.Vote(ctx, p.PollID, id, p.OptionIndex); err != nil {
			s.SendTo(id, events.TypePollError, events.PollErrorPayload{Message: err.Error()})
		}
		return nil

	case events.TypeShareFile:
		var p events.ShareFilePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return fmt.Errorf("invalid share_file payload: %w", err)
		}
		s.svc.Chat.RelayFile(id, p.Meta)
		return nil

	default:
		return fmt.Errorf("unknown event type: %s", env.Type)
	}
}

// handleJoin announces the connection. The joiner gets the recent history,
// its own join ack and the current roster; everyone else learns about the
// newcomer.
func (s *Server) handleJoin(ctx context.Context, id domain.ConnID, payload json.RawMessage) error {
	var p events.JoinPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("invalid join payload: %w", err)
	}
	if err := validation.ValidateDisplayName(p.DisplayName); err != nil {
		return err
	}

	count := s.svc.Roster.Join(id, p.DisplayName)
	s.logger.Infow("client joined", "conn_id", id, "display_name", p.DisplayName, "presence", count)

	history, err := s.svc.Chat.RecentHistory(ctx, s.opts.HistoryLimit)
	if err != nil {
		s.logger.Errorw("failed to load chat history", "conn_id", id, "error", err)
		history = nil
	}

	s.SendTo(id, events.TypeChatHistory, events.ChatHistoryPayload{Messages: history})
	s.SendTo(id, events.TypeSelfJoined, events.SelfJoinedPayload{DisplayName: p.DisplayName, PresenceCount: count})
	s.SendTo(id, events.TypeOnlineUsers, events.OnlineUsersPayload{Users: s.svc.Roster.ListOthers(id)})

	s.BroadcastExcept(id, events.TypeUserJoined, events.UserJoinedPayload{DisplayName: p.DisplayName, PresenceCount: count})
	s.BroadcastExcept(id, events.TypeUserOnline, events.UserOnlinePayload{ConnID: id, DisplayName: p.DisplayName})
	return nil
}

func (s *Server) handleRequestCall(caller, callee domain.ConnID) error {
	err := s.svc.Calls.RequestCall(caller, callee)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrBusy):
		s.SendTo(caller, events.TypeCallBusy, events.CallErrorPayload{Reason: "target is in another call"})
		return nil
	case errors.Is(err, domain.ErrTargetUnavailable):
		s.SendTo(caller, events.TypeCallError, events.CallErrorPayload{Reason: "target is not available"})
		return nil
	default:
		return err
	}
}

func (s *Server) handleSignal(kind string, from domain.ConnID, payload json.RawMessage) error {
	var p events.SignalPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("invalid %s payload: %w", kind, err)
	}

	var err error
	switch kind {
	case events.TypeSignalOffer:
		err = s.svc.Signals.RelayOffer(from, p.TargetID, p.Data)
	case events.TypeSignalAnswer:
		err = s.svc.Signals.RelayAnswer(from, p.TargetID, p.Data)
	case events.TypeSignalCandidate:
		err = s.svc.Signals.RelayCandidate(from, p.TargetID, p.Data)
	}

	if errors.Is(err, domain.ErrNoSuchSession) {
		return fmt.Errorf("no call session with %s", p.TargetID)
	}
	return err
}
