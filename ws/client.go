package ws

import (
	"sync"
	"time"

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

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// Client is one live notification channel bound to a user. The channel is
// push-only: inbound frames are drained solely to detect disconnects.
type Client struct {
	ID        string
	logger    *logrus.Logger
	hub       *Hub
	conn      *websocket.Conn
	userID    uint
	send      chan []byte
	closeOnce sync.Once
}

type ClientCfg struct {
	ID     string
	Logger *logrus.Logger
	Hub    *Hub
	Conn   *websocket.Conn
	UserID uint
	Send   chan []byte
}

func NewClient(cfg *ClientCfg) *Client {
	return &Client{
		ID:     cfg.ID,
		logger: cfg.Logger,
		hub:    cfg.Hub,
		conn:   cfg.Conn,
		userID: cfg.UserID,
		send:   cfg.Send,
	}
}

func (c *Client) UserID() uint {
	return c.userID
}

// ReadPump drains the connection until it errors. Its exit is the single
// disconnect path: natural closes, protocol errors and explicit Close calls
// all funnel through the deferred unregister, so unregister fires exactly
// once per connection.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(appData string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.WithFields(logrus.Fields{
					"user_id":   c.userID,
					"client_id": c.ID,
				}).WithError(err).Warn("read pump closed")
			}
			return
		}
	}
}

// WritePump flushes queued notifications and keeps the connection alive
// with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close tears down the underlying connection. Safe to call more than once;
// unregistration happens through the ReadPump exit, not here.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		if c.conn != nil {
			c.conn.Close()
		}
	})
}
