package gateway

import (
	"sync"
	"time"

	"huddle/internal/core/domain"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// client is one websocket connection with its bounded outbound queue. Every
// frame written to the socket goes through writePump, so the connection has a
// single writer and SendTo never blocks on a slow peer.
type client struct {
	id   domain.ConnID
	conn *websocket.Conn

	send chan []byte
	done chan struct{}

	closeOnce sync.Once

	limiter *rate.Limiter // nil when websocket rate limiting is disabled
}

func newClient(id domain.ConnID, conn *websocket.Conn, queueSize int, limiter *rate.Limiter) *client {
	return &client{
		id:      id,
		conn:    conn,
		send:    make(chan []byte, queueSize),
		done:    make(chan struct{}),
		limiter: limiter,
	}
}

// enqueue hands a frame to the writer without blocking. A full queue means
// the recipient is not keeping up; the frame is not queued and ok is false so
// the server can cut the laggard loose.
func (c *client) enqueue(frame []byte) bool {
	select {
	case c.send <- frame:
		return true
	case <-c.done:
		return true // already closing, nothing to report
	default:
		return false
	}
}

// close shuts the connection down exactly once. The read loop unblocks with
// an error and runs the normal disconnect path.
func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// writePump drains the send queue onto the socket and keeps the connection
// alive with pings. It owns all writes for this connection.
func (c *client) writePump(pingInterval, writeTimeout time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case frame := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.close()
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}

		case <-c.done:
			return
		}
	}
}
