package services

import (
	"sync"

	"huddle/internal/core/domain"

	"go.uber.org/zap"
)

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

type sentEvent struct {
	To      domain.ConnID // receiver for SendTo, excluded conn for BroadcastExcept, "" for Broadcast
	Type    string
	Payload interface{}
}

// fakePusher records everything the services push so tests can assert on the
// outbound event stream without a real websocket.
type fakePusher struct {
	mu     sync.Mutex
	direct []sentEvent
	except []sentEvent
	global []sentEvent
}

func (f *fakePusher) SendTo(id domain.ConnID, eventType string, payload interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.direct = append(f.direct, sentEvent{To: id, Type: eventType, Payload: payload})
	return nil
}

func (f *fakePusher) BroadcastExcept(exclude domain.ConnID, eventType string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.except = append(f.except, sentEvent{To: exclude, Type: eventType, Payload: payload})
}

func (f *fakePusher) Broadcast(eventType string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.global = append(f.global, sentEvent{Type: eventType, Payload: payload})
}

func (f *fakePusher) sentTo(id domain.ConnID) []sentEvent {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []sentEvent
	for _, e := range f.direct {
		if e.To == id {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakePusher) lastTo(id domain.ConnID) (sentEvent, bool) {
	events := f.sentTo(id)
	if len(events) == 0 {
		return sentEvent{}, false
	}
	return events[len(events)-1], true
}

func (f *fakePusher) broadcasts(eventType string) []sentEvent {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []sentEvent
	for _, e := range f.global {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakePusher) broadcastsExcept(eventType string) []sentEvent {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []sentEvent
	for _, e := range f.except {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
