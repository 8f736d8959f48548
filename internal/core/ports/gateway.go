package ports

import (
	"time"

	"huddle/internal/core/domain"
)

// Pusher is the outbound fan-out primitive shared by every service. Sends are
// fire-and-forget: a slow or gone recipient never blocks the caller.
type Pusher interface {
	SendTo(id domain.ConnID, eventType string, payload interface{}) error
	BroadcastExcept(exclude domain.ConnID, eventType string, payload interface{})
	Broadcast(eventType string, payload interface{})
}

// MetricsRecorder receives operational counters from the core services.
// Implementations may be nil-safe wrappers; services tolerate a nil recorder.
type MetricsRecorder interface {
	RecordClientConnected()
	RecordClientDisconnected()
	RecordMessagePosted()
	RecordFileShared()
	RecordCallRinging()
	RecordCallResolved(state domain.CallState, outcome string, lifetime time.Duration)
	RecordSignalRelayed(kind string)
	RecordPollCreated()
	RecordVoteCast()
	RecordSendQueueDrop()
}
