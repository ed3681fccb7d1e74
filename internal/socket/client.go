package socket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period, must be less than pongWait.
	pingPeriod = 54 * time.Second
	// Maximum inbound frame size; document saves carry full content.
	maxMessageSize = 8 << 20
	// Outbound queue depth per connection.
	sendBuffer = 256
)

// Client is one live connection.  The hub never writes to the
// websocket directly; everything outbound goes through the buffered
// send channel drained by writePump.
type Client struct {
	ID   string
	conn *websocket.Conn

	// mu guards send and closed: the hub snapshots targets outside
	// its own lock, so an emit can race the disconnect path.
	mu     sync.Mutex
	send   chan []byte
	closed bool
}

// NewClient wraps an upgraded websocket connection.  conn may be nil
// in tests, in which case outbound frames are read from Outbound.
func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		ID:   newConnID(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
}

// Outbound exposes the send queue for tests.
func (c *Client) Outbound() <-chan []byte { return c.send }

// enqueue hands a frame to the write pump without blocking; it
// reports false when the buffer is full.  A frame for an already
// closed connection is dropped silently.
func (c *Client) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// readPump reads inbound frames and dispatches them until the
// connection drops, then runs disconnect handling exactly once.
func (c *Client) readPump(d *Dispatcher) {
	defer d.Disconnect(c)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("socket: read %s: %v", c.ID, err)
			}
			return
		}
		var frame struct {
			Event   string          `json:"event"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := json.Unmarshal(raw, &frame); err != nil {
			log.Printf("socket: bad frame from %s: %v", c.ID, err)
			continue
		}
		d.Dispatch(c, frame.Event, frame.Payload)
	}
}

// writePump drains the send queue to the websocket and keeps the
// connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
