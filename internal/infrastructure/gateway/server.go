package gateway

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"huddle/internal/core/domain"
	"huddle/internal/core/events"
	"huddle/internal/core/ports"
	"huddle/pkg/utils"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Options configures the websocket endpoint.
type Options struct {
	PingInterval  time.Duration
	PongTimeout   time.Duration
	WriteTimeout  time.Duration
	SendQueueSize int

	// HistoryLimit is how many recent messages a joining client receives.
	HistoryLimit int

	AllowedOrigins []string

	RateLimitEnabled  bool
	MessagesPerSecond float64
	Burst             int
	MaxMessageSize    int64
}

// Services are the core components the gateway dispatches into. Bound after
// construction because every service needs the gateway as its Pusher.
type Services struct {
	Roster  ports.Roster
	Chat    ports.ChatService
	Calls   ports.CallCoordinator
	Signals ports.SignalRelay
	Polls   ports.PollService
}

// Server is the websocket gateway. It owns the live connection set, assigns
// connection identities, decodes inbound envelopes into service calls and
// implements ports.Pusher for the outbound direction.
type Server struct {
	opts    Options
	svc     Services
	metrics ports.MetricsRecorder
	logger  *zap.SugaredLogger

	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[domain.ConnID]*client
}

func NewServer(opts Options, metrics ports.MetricsRecorder, logger *zap.SugaredLogger) *Server {
	s := &Server{
		opts:    opts,
		metrics: metrics,
		logger:  logger,
		clients: make(map[domain.ConnID]*client),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// Bind attaches the core services. Must be called before the first upgrade.
func (s *Server) Bind(svc Services) {
	s.svc = svc
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.opts.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// HandleWebSocket upgrades the request and runs the connection's read loop
// until the peer goes away. The connection identity is hub-assigned and never
// taken from the client.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorw("websocket upgrade failed", "error", err)
		return
	}

	var limiter *rate.Limiter
	if s.opts.RateLimitEnabled {
		limiter = rate.NewLimiter(rate.Limit(s.opts.MessagesPerSecond), s.opts.Burst)
	}

	id := domain.ConnID(utils.GenerateConnectionID())
	c := newClient(id, conn, s.opts.SendQueueSize, limiter)

	s.mu.Lock()
	s.clients[id] = c
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordClientConnected()
	}
	s.logger.Infow("client connected", "conn_id", id, "remote", r.RemoteAddr)

	go c.writePump(s.opts.PingInterval, s.opts.WriteTimeout)

	if s.opts.MaxMessageSize > 0 {
		conn.SetReadLimit(s.opts.MaxMessageSize)
	}
	conn.SetReadDeadline(time.Now().Add(s.opts.PongTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.opts.PongTimeout))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.logger.Infow("read error", "conn_id", id, "error", err)
			}
			break
		}
		conn.SetReadDeadline(time.Now().Add(s.opts.PongTimeout))

		if c.limiter != nil && !c.limiter.Allow() {
			s.sendEvent(c, events.TypeError, events.ErrorPayload{Message: "rate limit exceeded"})
			continue
		}

		var env events.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			s.sendEvent(c, events.TypeError, events.ErrorPayload{Message: "malformed message envelope"})
			continue
		}

		if err := s.dispatch(r.Context(), id, env); err != nil {
			s.logger.Debugw("event rejected", "conn_id", id, "type", env.Type, "error", err)
			s.sendEvent(c, events.TypeError, events.ErrorPayload{Message: err.Error()})
		}
	}

	s.disconnect(c)
}

// disconnect tears a connection down: unregister, registry leave, call
// teardown, then the presence broadcasts. The registry is updated before the
// call coordinator so a surviving peer resolves a consistent view.
func (s *Server) disconnect(c *client) {
	s.mu.Lock()
	delete(s.clients, c.id)
	s.mu.Unlock()
	c.close()

	if s.metrics != nil {
		s.metrics.RecordClientDisconnected()
	}

	name, wasJoined := s.svc.Roster.Leave(c.id)
	s.svc.Calls.OnDisconnect(c.id)

	if wasJoined {
		s.Broadcast(events.TypeUserLeft, events.UserLeftPayload{DisplayName: name})
		s.Broadcast(events.TypeUserOffline, events.UserOfflinePayload{ConnID: c.id})
		s.Broadcast(events.TypePresenceCount, events.PresenceCountPayload{Count: s.svc.Roster.Count()})
	}

	s.logger.Infow("client disconnected", "conn_id", c.id, "display_name", name)
}

// SendTo queues an event for one connection. Returns ErrNotConnected when the
// connection is gone; the caller decides whether that matters.
func (s *Server) SendTo(id domain.ConnID, eventType string, payload interface{}) error {
	frame, err := encodeFrame(eventType, payload)
	if err != nil {
		return err
	}

	s.mu.RLock()
	c, ok := s.clients[id]
	s.mu.RUnlock()
	if !ok {
		return domain.ErrNotConnected
	}

	s.deliver(c, eventType, frame)
	return nil
}

// BroadcastExcept queues an event for every connection but one.
func (s *Server) BroadcastExcept(exclude domain.ConnID, eventType string, payload interface{}) {
	frame, err := encodeFrame(eventType, payload)
	if err != nil {
		s.logger.Errorw("failed to encode broadcast", "type", eventType, "error", err)
		return
	}

	for _, c := range s.snapshot() {
		if c.id == exclude {
			continue
		}
		s.deliver(c, eventType, frame)
	}
}

// Broadcast queues an event for every connection.
func (s *Server) Broadcast(eventType string, payload interface{}) {
	frame, err := encodeFrame(eventType, payload)
	if err != nil {
		s.logger.Errorw("failed to encode broadcast", "type", eventType, "error", err)
		return
	}

	for _, c := range s.snapshot() {
		s.deliver(c, eventType, frame)
	}
}

// deliver enqueues a frame. Overflow means the client stopped draining its
// queue; it is disconnected rather than allowed to stall the hub.
func (s *Server) deliver(c *client, eventType string, frame []byte) {
	if c.enqueue(frame) {
		return
	}
	if s.metrics != nil {
		s.metrics.RecordSendQueueDrop()
	}
	s.logger.Warnw("send queue overflow, dropping client", "conn_id", c.id, "type", eventType)
	c.close()
}

func (s *Server) sendEvent(c *client, eventType string, payload interface{}) {
	frame, err := encodeFrame(eventType, payload)
	if err != nil {
		return
	}
	s.deliver(c, eventType, frame)
}

func (s *Server) snapshot() []*client {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, c)
	}
	return out
}

// ConnectionCount reports live websocket connections, joined or not.
func (s *Server) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().Unix(),
		"connections": s.ConnectionCount(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func encodeFrame(eventType string, payload interface{}) ([]byte, error) {
	env := events.Envelope{Type: eventType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		env.Payload = raw
	}
	return json.Marshal(env)
}
