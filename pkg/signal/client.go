package signal

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer; SDP offers are the largest frames.
	maxMessageSize = 64 * 1024

	sendBufferSize = 256
)

// Client represents a connected WebSocket client
type Client struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	router *Router
	log    *logrus.Entry
}

func newClient(conn *websocket.Conn, router *Router) *Client {
	id := uuid.NewString()
	return &Client{
		id:     id,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
		router: router,
		log: logrus.WithFields(logrus.Fields{
			"conn":   id,
			"remote": conn.RemoteAddr().String(),
		}),
	}
}

// ID returns the connection identity.
func (c *Client) ID() string {
	return c.id
}

// Closed reports whether the client has been torn down.
func (c *Client) Closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Send queues msg for the write pump. Messages for a closed or saturated
// client are dropped.
func (c *Client) Send(msg SignalMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.log.WithError(err).Error("Failed to encode message")
		return
	}

	if c.Closed() {
		return
	}

	select {
	case c.send <- data:
	default:
		c.log.Warnf("Send buffer full, dropped %s", msg.Type)
	}
}

// close tears the client down exactly once and tells the router.
func (c *Client) close() {
	c.once.Do(func() {
		close(c.done)
		c.router.Disconnect(c)
		c.conn.Close()
		c.log.Info("Client disconnected")
	})
}

// readPump reads messages from the WebSocket
func (c *Client) readPump() {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.WithError(err).Warn("WebSocket error")
			}
			return
		}

		var msg SignalMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.log.WithError(err).Debug("Invalid message format")
			continue
		}

		c.router.Handle(c, msg)
	}
}

// writePump sends queued messages and keepalive pings to the WebSocket
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.log.WithError(err).Debug("WebSocket write error")
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
