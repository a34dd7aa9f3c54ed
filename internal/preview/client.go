package preview

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/inamate/vecgfx/internal/emit"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 64 * 1024
)

type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	send        chan *Message
	closed      bool // guarded by hub.mu
	UserID      string
	DisplayName string
	DrawingID   string
	ClientID    string

	mu     sync.Mutex
	format string
	opts   *emit.Options
}

func NewClient(hub *Hub, conn *websocket.Conn, userID, displayName, drawingID, clientID string) *Client {
	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan *Message, 256),
		UserID:      userID,
		DisplayName: displayName,
		DrawingID:   drawingID,
		ClientID:    clientID,
		format:      "svg",
	}
}

// Format returns what the client is subscribed to.
func (c *Client) Format() (string, *emit.Options) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.format, c.opts
}

func (c *Client) setFormat(format string, opts *emit.Options) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.format, c.opts = format, opts
}

// ReadPump decodes client frames until the connection ends. A frame that is
// not a JSON message closes the connection.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.CloseNow()
	}()

	c.conn.SetReadLimit(maxMsgSize)

	for {
		var msg Message
		if err := wsjson.Read(ctx, c.conn, &msg); err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				slog.Debug("preview read ended", "error", err, "client", c.ClientID)
			}
			return
		}

		msg.UserID = c.UserID
		msg.ClientID = c.ClientID
		msg.DrawingID = c.DrawingID
		c.hub.handleMessage(c, &msg)
	}
}

// WritePump drains the queue onto the connection and keeps it alive with
// pings. It closes the connection when the queue is closed.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		var err error
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			err = c.write(ctx, msg)
		case <-ticker.C:
			err = c.ping(ctx)
		case <-ctx.Done():
			c.conn.CloseNow()
			return
		}
		if err != nil {
			slog.Debug("preview write failed", "error", err, "client", c.ClientID)
			c.conn.Close(websocket.StatusInternalError, "write failed")
			return
		}
	}
}

func (c *Client) write(ctx context.Context, msg *Message) error {
	ctx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return wsjson.Write(ctx, c.conn, msg)
}

func (c *Client) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return c.conn.Ping(ctx)
}

// queue hands msg to the write pump without blocking. Messages may be shared
// between clients and are never modified after queueing. Callers hold hub.mu.
func (c *Client) queue(msg *Message) {
	if c.closed {
		return
	}
	select {
	case c.send <- msg:
	default:
		slog.Warn("preview queue full, dropping message", "type", msg.Type, "client", c.ClientID)
	}
}
