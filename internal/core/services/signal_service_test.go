package services

import (
	"encoding/json"
	"testing"

	"huddle/internal/core/domain"
	"huddle/internal/core/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCoordinator answers HasSession from a fixed pair.
type stubCoordinator struct {
	a, b domain.ConnID
}

func (s *stubCoordinator) RequestCall(caller, callee domain.ConnID) error  { return nil }
func (s *stubCoordinator) AcceptCall(callee, caller domain.ConnID) error  { return nil }
func (s *stubCoordinator) RejectCall(callee, caller domain.ConnID)        {}
func (s *stubCoordinator) EndCall(party, peer domain.ConnID)              {}
func (s *stubCoordinator) OnDisconnect(id domain.ConnID)                  {}
func (s *stubCoordinator) HasSession(a, b domain.ConnID) bool {
	return (a == s.a && b == s.b) || (a == s.b && b == s.a)
}

func TestSignal_ForwardsWithinSession(t *testing.T) {
	pusher := &fakePusher{}
	relay := NewSignalService(&stubCoordinator{a: "caller", b: "callee"}, pusher, nil, testLogger())

	payload := json.RawMessage(`{"sdp":"v=0..."}`)
	require.NoError(t, relay.RelayOffer("caller", "callee", payload))

	last, ok := pusher.lastTo("callee")
	require.True(t, ok)
	assert.Equal(t, events.TypeSignalOffer, last.Type)
	fwd, ok := last.Payload.(events.SignalForwardPayload)
	require.True(t, ok)
	assert.Equal(t, domain.ConnID("caller"), fwd.SenderID)
	// Payload passes through byte-for-byte.
	assert.JSONEq(t, string(payload), string(fwd.Data))
}

func TestSignal_RefusesOutsideSession(t *testing.T) {
	pusher := &fakePusher{}
	relay := NewSignalService(&stubCoordinator{a: "caller", b: "callee"}, pusher, nil, testLogger())

	err := relay.RelayCandidate("caller", "other", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, domain.ErrNoSuchSession)
	assert.Empty(t, pusher.sentTo("other"))
}

func TestSignal_AllKindsShareTheGuard(t *testing.T) {
	pusher := &fakePusher{}
	relay := NewSignalService(&stubCoordinator{a: "x", b: "y"}, pusher, nil, testLogger())

	data := json.RawMessage(`{"k":1}`)
	require.NoError(t, relay.RelayOffer("x", "y", data))
	require.NoError(t, relay.RelayAnswer("y", "x", data))
	require.NoError(t, relay.RelayCandidate("x", "y", data))

	assert.Len(t, pusher.sentTo("y"), 2)
	assert.Len(t, pusher.sentTo("x"), 1)
}
