package domain

import "time"

type CallState string

const (
	CallRinging   CallState = "ringing"
	CallConnected CallState = "connected"
)

// CallSession is one pending or ongoing call between exactly two connections.
// Caller is the initiator, Callee the recipient. A connection may participate
// in at most one session at a time, in either state — the busy invariant
// covers the ring phase as well as the connected phase.
type CallSession struct {
	ID        string
	Caller    ConnID
	Callee    ConnID
	State     CallState
	CreatedAt time.Time
}

// Involves reports whether id is a party to the session.
func (s *CallSession) Involves(id ConnID) bool {
	return s.Caller == id || s.Callee == id
}

// PeerOf returns the other party of the session. Returns "" when id is not a
// party at all.
func (s *CallSession) PeerOf(id ConnID) ConnID {
	switch id {
	case s.Caller:
		return s.Callee
	case s.Callee:
		return s.Caller
	default:
		return ""
	}
}
