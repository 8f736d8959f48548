package services

import (
	"sync"
	"time"

	"huddle/internal/core/domain"
	"huddle/internal/core/events"
	"huddle/internal/core/ports"
	"huddle/pkg/utils"

	"go.uber.org/zap"
)

// callSession pairs the domain session with its ring timer so timer
// cancellation happens under the same lock as state transitions.
type callSession struct {
	domain.CallSession
	ringTimer *time.Timer
}

// CallService is the call session coordinator. One mutex guards the whole
// session table; every transition — request, accept, reject, end, timeout,
// disconnect — resolves under it, so a racing accept and ring timeout cannot
// both win.
//
// Busy detection indexes sessions by both parties, RINGING included. Tracking
// the ring phase closes the window where two callers could simultaneously
// ring the same target.
type CallService struct {
	roster  ports.Roster
	gateway ports.Pusher
	metrics ports.MetricsRecorder
	logger  *zap.SugaredLogger

	ringTimeout time.Duration

	mu       sync.Mutex
	sessions map[domain.ConnID]*callSession // both parties map to the same session
}

func NewCallService(roster ports.Roster, gateway ports.Pusher, metrics ports.MetricsRecorder, ringTimeout time.Duration, logger *zap.SugaredLogger) *CallService {
	return &CallService{
		roster:      roster,
		gateway:     gateway,
		metrics:     metrics,
		logger:      logger,
		ringTimeout: ringTimeout,
		sessions:    make(map[domain.ConnID]*callSession),
	}
}

// RequestCall starts ringing callee. The busy check and session creation are
// one atomic step; the loser of two concurrent requests gets ErrBusy.
func (s *CallService) RequestCall(caller, callee domain.ConnID) error {
	callerName, ok := s.roster.Resolve(caller)
	if !ok {
		return domain.ErrNotRegistered
	}
	if _, ok := s.roster.Resolve(callee); !ok {
		return domain.ErrTargetUnavailable
	}

	s.mu.Lock()
	if _, busy := s.sessions[caller]; busy {
		s.mu.Unlock()
		return domain.ErrBusy
	}
	if _, busy := s.sessions[callee]; busy {
		s.mu.Unlock()
		return domain.ErrBusy
	}

	sess := &callSession{
		CallSession: domain.CallSession{
			ID:        utils.GenerateCallID(),
			Caller:    caller,
			Callee:    callee,
			State:     domain.CallRinging,
			CreatedAt: time.Now(),
		},
	}
	sess.ringTimer = time.AfterFunc(s.ringTimeout, func() {
		s.onRingTimeout(sess.ID)
	})
	s.sessions[caller] = sess
	s.sessions[callee] = sess
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordCallRinging()
	}
	s.logger.Infow("call ringing", "call_id", sess.ID, "caller", caller, "callee", callee)

	s.gateway.SendTo(callee, events.TypeIncomingCall, events.IncomingCallPayload{
		CallerID:   caller,
		CallerName: callerName,
	})
	return nil
}

// AcceptCall transitions a ringing session for exactly this pair to
// CONNECTED and notifies both parties. A stale or duplicate accept gets
// ErrNoSuchSession.
func (s *CallService) AcceptCall(callee, caller domain.ConnID) error {
	s.mu.Lock()
	sess, ok := s.sessions[callee]
	if !ok || sess.State != domain.CallRinging || sess.Caller != caller || sess.Callee != callee {
		s.mu.Unlock()
		return domain.ErrNoSuchSession
	}

	sess.State = domain.CallConnected
	sess.ringTimer.Stop()
	s.mu.Unlock()

	s.logger.Infow("call connected", "call_id", sess.ID, "caller", caller, "callee", callee)

	callerName, _ := s.roster.Resolve(caller)
	calleeName, _ := s.roster.Resolve(callee)
	s.gateway.SendTo(caller, events.TypeCallConnected, events.CallConnectedPayload{PeerID: callee, PeerName: calleeName})
	s.gateway.SendTo(callee, events.TypeCallConnected, events.CallConnectedPayload{PeerID: caller, PeerName: callerName})
	return nil
}

// RejectCall tears down a ringing session for this pair and tells the caller.
// Rejecting a session that no longer exists is a no-op.
func (s *CallService) RejectCall(callee, caller domain.ConnID) {
	s.mu.Lock()
	sess, ok := s.sessions[callee]
	if !ok || sess.State != domain.CallRinging || sess.Caller != caller || sess.Callee != callee {
		s.mu.Unlock()
		return
	}
	s.removeLocked(sess)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordCallResolved(domain.CallRinging, "rejected", time.Since(sess.CreatedAt))
	}
	s.logger.Infow("call rejected", "call_id", sess.ID, "caller", caller, "callee", callee)

	s.gateway.SendTo(caller, events.TypeCallRejected, events.CallRejectedPayload{CalleeID: callee})
}

// EndCall destroys the session involving party and notifies the other side.
// A ringing session is treated as a cancel. Idempotent: ending a resolved or
// unknown session does nothing and produces no second broadcast.
func (s *CallService) EndCall(party, peer domain.ConnID) {
	s.mu.Lock()
	sess, ok := s.sessions[party]
	if !ok || !sess.Involves(party) {
		s.mu.Unlock()
		return
	}
	other := sess.PeerOf(party)
	if peer != "" && other != peer {
		s.mu.Unlock()
		return
	}
	s.removeLocked(sess)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordCallResolved(sess.State, "ended", time.Since(sess.CreatedAt))
	}
	s.logger.Infow("call ended", "call_id", sess.ID, "by", party, "peer", other, "state", sess.State)

	s.gateway.SendTo(other, events.TypeCallEnded, events.CallEndedPayload{PeerID: party})
}

// OnDisconnect destroys any session the connection participates in and
// notifies the surviving party. Runs as part of the gateway's disconnect
// step, right after the registry leave.
func (s *CallService) OnDisconnect(id domain.ConnID) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	other := sess.PeerOf(id)
	s.removeLocked(sess)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordCallResolved(sess.State, "disconnected", time.Since(sess.CreatedAt))
	}
	s.logger.Infow("call torn down on disconnect", "call_id", sess.ID, "gone", id, "peer", other)

	s.gateway.SendTo(other, events.TypeCallEnded, events.CallEndedPayload{PeerID: id})
}

// HasSession reports whether a session (either state) binds the two
// connections. The signaling relay refuses to forward without one.
func (s *CallService) HasSession(a, b domain.ConnID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[a]
	return ok && sess.Involves(b)
}

// onRingTimeout fires when the ring window elapses without accept or reject.
// It revalidates the session under the table lock: if an accept or reject won
// the race first, the session is gone or connected and the timer loses.
func (s *CallService) onRingTimeout(callID string) {
	s.mu.Lock()
	var sess *callSession
	for _, c := range s.sessions {
		if c.ID == callID {
			sess = c
			break
		}
	}
	if sess == nil || sess.State != domain.CallRinging {
		s.mu.Unlock()
		return
	}
	s.removeLocked(sess)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordCallResolved(domain.CallRinging, "timeout", time.Since(sess.CreatedAt))
	}
	s.logger.Infow("call ring timed out", "call_id", sess.ID, "caller", sess.Caller, "callee", sess.Callee)

	s.gateway.SendTo(sess.Caller, events.TypeCallTimeout, events.CallTimeoutPayload{CalleeID: sess.Callee})
}

func (s *CallService) removeLocked(sess *callSession) {
	sess.ringTimer.Stop()
	delete(s.sessions, sess.Caller)
	delete(s.sessions, sess.Callee)
}
