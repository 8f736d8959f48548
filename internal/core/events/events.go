package events

import (
	"encoding/json"

	"huddle/internal/core/domain"
)

// Envelope frames every message on the wire, both directions. Payload stays
// raw until the type switch at the gateway boundary picks a concrete struct.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client-to-server event types. The gateway switch over these is exhaustive;
// anything else is answered with TypeError.
const (
	TypeJoin            = "join"
	TypeSendMessage     = "send_message"
	TypeRequestCall     = "request_call"
	TypeAcceptCall      = "accept_call"
	TypeRejectCall      = "reject_call"
	TypeEndCall         = "end_call"
	TypeSignalOffer     = "signal_offer"
	TypeSignalAnswer    = "signal_answer"
	TypeSignalCandidate = "signal_candidate"
	TypeCreatePoll      = "create_poll"
	TypeVotePoll        = "vote_poll"
	TypeShareFile       = "share_file"
)

// Server-to-client event types.
const (
	TypeSelfJoined      = "self_joined"
	TypeChatHistory     = "chat_history"
	TypeOnlineUsers     = "online_users"
	TypeUserJoined      = "user_joined"
	TypeUserOnline      = "user_online"
	TypeUserLeft        = "user_left"
	TypeUserOffline     = "user_offline"
	TypePresenceCount   = "presence_count"
	TypeMessageReceived = "message_received"
	TypeIncomingCall    = "incoming_call"
	TypeCallConnected   = "call_connected"
	TypeCallRejected    = "call_rejected"
	TypeCallTimeout     = "call_timeout"
	TypeCallEnded       = "call_ended"
	TypeCallBusy        = "call_busy"
	TypeCallError       = "call_error"
	TypePollCreated     = "poll_created"
	TypePollUpdated     = "poll_updated"
	TypePollError       = "poll_error"
	TypeFileReceived    = "file_received"
	TypeError           = "error"
)

// Inbound payloads.

type JoinPayload struct {
	DisplayName string `json:"display_name"`
}

type SendMessagePayload struct {
	Text string `json:"text"`
}

type RequestCallPayload struct {
	TargetID domain.ConnID `json:"target_id"`
}

type AcceptCallPayload struct {
	CallerID domain.ConnID `json:"caller_id"`
}

type RejectCallPayload struct {
	CallerID domain.ConnID `json:"caller_id"`
}

type EndCallPayload struct {
	PeerID domain.ConnID `json:"peer_id"`
}

// SignalPayload carries opaque negotiation data. Data is never parsed by the
// hub; it is forwarded byte-for-byte.
type SignalPayload struct {
	TargetID domain.ConnID   `json:"target_id"`
	Data     json.RawMessage `json:"data"`
}

type CreatePollPayload struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type VotePollPayload struct {
	PollID      string `json:"poll_id"`
	OptionIndex int    `json:"option_index"`
}

type ShareFilePayload struct {
	Meta domain.FileMeta `json:"meta"`
}

// Outbound payloads.

type SelfJoinedPayload struct {
	DisplayName   string `json:"display_name"`
	PresenceCount int    `json:"presence_count"`
}

type ChatHistoryPayload struct {
	Messages []*domain.Message `json:"messages"`
}

type OnlineUsersPayload struct {
	Users []domain.PresenceEntry `json:"users"`
}

type UserJoinedPayload struct {
	DisplayName   string `json:"display_name"`
	PresenceCount int    `json:"presence_count"`
}

type UserOnlinePayload struct {
	ConnID      domain.ConnID `json:"id"`
	DisplayName string        `json:"display_name"`
}

type UserLeftPayload struct {
	DisplayName string `json:"display_name"`
}

type UserOfflinePayload struct {
	ConnID domain.ConnID `json:"id"`
}

type PresenceCountPayload struct {
	Count int `json:"count"`
}

type MessageReceivedPayload struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

type IncomingCallPayload struct {
	CallerID   domain.ConnID `json:"caller_id"`
	CallerName string        `json:"caller_name"`
}

type CallConnectedPayload struct {
	PeerID   domain.ConnID `json:"peer_id"`
	PeerName string        `json:"peer_name"`
}

type CallRejectedPayload struct {
	CalleeID domain.ConnID `json:"callee_id"`
}

type CallTimeoutPayload struct {
	CalleeID domain.ConnID `json:"callee_id"`
}

type CallEndedPayload struct {
	PeerID domain.ConnID `json:"peer_id"`
}

type CallErrorPayload struct {
	Reason string `json:"reason"`
}

type PollCreatedPayload struct {
	ID        string               `json:"id"`
	Question  string               `json:"question"`
	Options   []domain.OptionCount `json:"options"`
	Creator   string               `json:"creator"`
	CreatedAt int64                `json:"created_at"`
}

type PollUpdatedPayload struct {
	ID      string               `json:"id"`
	Options []domain.OptionCount `json:"options"`
}

type PollErrorPayload struct {
	Message string `json:"message"`
}

type FileReceivedPayload struct {
	Sender string          `json:"sender"`
	Meta   domain.FileMeta `json:"meta"`
}

type SignalForwardPayload struct {
	SenderID domain.ConnID   `json:"sender_id"`
	Data     json.RawMessage `json:"data"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
