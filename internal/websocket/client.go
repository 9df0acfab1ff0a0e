package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"giftboard/internal/config"
)

const (
	defaultSendBuffer = 32
	defaultWriteWait  = 10 * time.Second
	defaultPongWait   = 60 * time.Second

	maxMessageSize = 512
)

const (
	actionSubscribe   = "subscribe"
	actionUnsubscribe = "unsubscribe"
	actionPing        = "ping"
)

// Client is one WebSocket connection with its topic subscriptions.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID string

	writeWait time.Duration
	pongWait  time.Duration

	mu     sync.RWMutex
	topics map[string]struct{}
}

func newClient(hub *Hub, conn *websocket.Conn, userID string, cfg config.WSConfig) *Client {
	buffer := cfg.SendBuffer
	if buffer <= 0 {
		buffer = defaultSendBuffer
	}
	writeWait := cfg.WriteWait
	if writeWait <= 0 {
		writeWait = defaultWriteWait
	}
	pongWait := cfg.PongWait
	if pongWait <= 0 {
		pongWait = defaultPongWait
	}

	return &Client{
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, buffer),
		userID:    userID,
		writeWait: writeWait,
		pongWait:  pongWait,
		topics:    make(map[string]struct{}),
	}
}

type clientMessage struct {
	Action string `json:"action"`
	Topic  string `json:"topic,omitempty"`
}

func (c *Client) subscribed(topic string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.topics[topic]
	return ok
}

func (c *Client) subscribe(topic string) {
	c.mu.Lock()
	c.topics[topic] = struct{}{}
	c.mu.Unlock()
}

func (c *Client) unsubscribe(topic string) {
	c.mu.Lock()
	delete(c.topics, topic)
	c.mu.Unlock()
}

func (c *Client) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
	}
}

// readPump consumes subscription control frames until the connection fails.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("ws: read failed", "user_id", c.userID, "err", err)
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}

		switch msg.Action {
		case actionSubscribe:
			if msg.Topic != "" {
				c.subscribe(msg.Topic)
			}
		case actionUnsubscribe:
			if msg.Topic != "" {
				c.unsubscribe(msg.Topic)
			}
		case actionPing:
			c.enqueue([]byte(`{"event":"PONG"}`))
		}
	}
}

// writePump writes queued events to the connection and keeps it alive
// with periodic pings. Ping period must stay below the pong deadline.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.pongWait * 9 / 10)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
