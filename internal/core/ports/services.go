package ports

import (
	"context"
	"encoding/json"

	"huddle/internal/core/domain"
)

// Roster is the connection registry: the bidirectional binding between live
// connections and display names. Backs every other component.
type Roster interface {
	// Join records the binding and returns the resulting presence count.
	// Duplicate display names are not rejected; a rejoin under the same
	// connection replaces the prior binding.
	Join(id domain.ConnID, displayName string) int
	// Leave removes the binding. A second leave for the same connection is a
	// no-op; ok reports whether a binding existed.
	Leave(id domain.ConnID) (displayName string, ok bool)
	Resolve(id domain.ConnID) (displayName string, ok bool)
	ListOthers(exclude domain.ConnID) []domain.PresenceEntry
	Count() int
}

type ChatService interface {
	PostMessage(ctx context.Context, sender domain.ConnID, text string) error
	RecentHistory(ctx context.Context, limit int) ([]*domain.Message, error)
	RelayFile(sender domain.ConnID, meta domain.FileMeta)
}

// CallCoordinator owns the per-identity call state machine. All mutating
// operations are serialized on one session-table lock; every failure is a
// typed, recoverable error reported to the initiator only.
type CallCoordinator interface {
	RequestCall(caller, callee domain.ConnID) error
	AcceptCall(callee, caller domain.ConnID) error
	RejectCall(callee, caller domain.ConnID)
	EndCall(party, peer domain.ConnID)
	OnDisconnect(id domain.ConnID)
	// HasSession reports whether a RINGING or CONNECTED session binds the two
	// connections. Used by the signaling relay as a forwarding guard.
	HasSession(a, b domain.ConnID) bool
}

type SignalRelay interface {
	RelayOffer(from, to domain.ConnID, payload json.RawMessage) error
	RelayAnswer(from, to domain.ConnID, payload json.RawMessage) error
	RelayCandidate(from, to domain.ConnID, payload json.RawMessage) error
}

type PollService interface {
	CreatePoll(ctx context.Context, creator domain.ConnID, question string, options []string) (*domain.Poll, error)
	Vote(ctx context.Context, pollID string, voter domain.ConnID, optionIndex int) error
}
