package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 32768
	sendBuffer     = 64
)

// Envelope is the JSON frame clients send to the server.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Client is one WebSocket connection attached to a namespace.
type Client struct {
	id        string
	namespace string
	conn      *websocket.Conn
	send      chan *Message

	closeOnce sync.Once
	closed    chan struct{}
	writeMu   sync.Mutex
}

// NewClient wraps an upgraded connection.
func NewClient(conn *websocket.Conn, namespace string) *Client {
	return &Client{
		id:        uuid.NewString(),
		namespace: namespace,
		conn:      conn,
		send:      make(chan *Message, sendBuffer),
		closed:    make(chan struct{}),
	}
}

// ID returns the connection's identifier.
func (c *Client) ID() string {
	return c.id
}

// Close tears the connection down. Safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		if c.conn != nil {
			c.writeMu.Lock()
			_ = c.conn.Close()
			c.writeMu.Unlock()
		}
	})
}

// IsClosed reports whether the client has been closed.
func (c *Client) IsClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// Send queues an event for delivery to this client.
func (c *Client) Send(event string, data any) {
	c.enqueue(&Message{Event: event, Data: data})
}

// SendError reports a handler failure back to the offending client.
func (c *Client) SendError(message string) {
	c.Send(ErrorEvent, map[string]string{"message": message})
}

func (c *Client) enqueue(msg *Message) {
	select {
	case <-c.closed:
	case c.send <- msg:
	default:
		// Slow consumer; drop rather than block the broadcaster.
		log.Printf("ws client %s send buffer full, dropping %s", c.id, msg.Event)
	}
}

// readPump reads inbound frames and dispatches them to the gateway. It owns
// the connection's read side and unregisters the client on exit.
func (c *Client) readPump(hub *Hub, gw Gateway) {
	defer func() {
		hub.Remove(c)
		gw.OnDisconnect(c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.closed:
			return
		default:
		}

		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Printf("ws read error (client %s): %v", c.id, err)
			}
			return
		}
		if len(raw) == 0 {
			continue
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.SendError("malformed message")
			continue
		}
		gw.HandleEvent(c, env)
	}
}

// writePump flushes queued messages and keeps the connection alive with
// pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.writeMu.Lock()
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.conn.WriteJSON(msg)
			c.writeMu.Unlock()
			if err != nil {
				log.Printf("ws write error (client %s): %v", c.id, err)
				return
			}

		case <-ticker.C:
			c.writeMu.Lock()
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()
			if err != nil {
				return
			}

		case <-c.closed:
			return
		}
	}
}
