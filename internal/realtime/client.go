package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 512
)

// Reloader recomputes one viewer's feed markup. Loading is the markup shown
// while a reload is in flight.
type Reloader interface {
	Loading() string
	Reload(ctx context.Context) string
	SetTab(tab string)
}

// Message is the JSON frame exchanged with the browser
type Message struct {
	Type string `json:"type"`
	Tab  string `json:"tab,omitempty"`
	HTML string `json:"html,omitempty"`
}

// Message types
const (
	TypeFeed = "feed"
	TypeTab  = "tab"
	TypePing = "ping"
	TypePong = "pong"
)

// Client is one browser connection. Only writePump writes to conn.
type Client struct {
	id       string
	conn     *websocket.Conn
	hub      *Hub
	reloader Reloader
	reload   chan struct{}
	pong     chan struct{}
	done     chan struct{}
	once     sync.Once
	logger   *zap.Logger
}

// NewClient creates a Client for an upgraded connection
func NewClient(conn *websocket.Conn, hub *Hub, reloader Reloader, logger *zap.Logger) *Client {
	id := uuid.NewString()
	return &Client{
		id:       id,
		conn:     conn,
		hub:      hub,
		reloader: reloader,
		reload:   make(chan struct{}, 1),
		pong:     make(chan struct{}, 1),
		done:     make(chan struct{}),
		logger:   logger.With(zap.String("client_id", id)),
	}
}

// Serve registers the client, sends the initial feed and blocks until the
// connection ends.
func (c *Client) Serve(ctx context.Context) {
	if !c.hub.Register(c) {
		c.conn.Close()
		return
	}
	c.requestReload()
	go c.writePump(ctx)
	c.readPump()
}

// requestReload schedules a reload. A reload already pending absorbs the
// request since it will read the latest rows anyway.
func (c *Client) requestReload() {
	select {
	case c.reload <- struct{}{}:
	default:
	}
}

func (c *Client) close() {
	c.once.Do(func() { close(c.done) })
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("live client read error", zap.Error(err))
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Debug("ignoring malformed message", zap.Error(err))
			continue
		}
		switch msg.Type {
		case TypeTab:
			c.reloader.SetTab(msg.Tab)
			c.requestReload()
		case TypePing:
			select {
			case c.pong <- struct{}{}:
			default:
			}
		}
	}
}

func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case <-c.reload:
			if err := c.write(Message{Type: TypeFeed, HTML: c.reloader.Loading()}); err != nil {
				c.logger.Debug("live client write failed", zap.Error(err))
				return
			}
			markup := c.reloader.Reload(ctx)
			if err := c.write(Message{Type: TypeFeed, HTML: markup}); err != nil {
				c.logger.Debug("live client write failed", zap.Error(err))
				return
			}

		case <-c.pong:
			if err := c.write(Message{Type: TypePong}); err != nil {
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

func (c *Client) write(msg Message) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(msg)
}
