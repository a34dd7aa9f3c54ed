// Package preview pushes fresh renderings of a drawing to websocket clients
// whenever the drawing changes.
package preview

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/inamate/vecgfx/internal/document"
	"github.com/inamate/vecgfx/internal/emit"
)

const loadTimeout = 10 * time.Second

// Loader fetches the current version of a drawing.
type Loader func(ctx context.Context, drawingID string) (*document.Drawing, error)

type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // drawingID -> room
	register   chan *Client
	unregister chan *Client
	publish    chan *document.Drawing
	done       chan struct{}
	stopOnce   sync.Once

	registry *emit.Registry
	defaults emit.Options
	loader   Loader
}

func NewHub(registry *emit.Registry, defaults emit.Options, loader Loader) *Hub {
	return &Hub{
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		publish:    make(chan *document.Drawing, 64),
		done:       make(chan struct{}),
		registry:   registry,
		defaults:   defaults,
		loader:     loader,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case doc := <-h.publish:
			h.broadcastRender(doc)
		case <-h.done:
			return
		}
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish announces a new version of a drawing to everyone watching it.
func (h *Hub) Publish(doc *document.Drawing) {
	select {
	case h.publish <- doc:
	case <-h.done:
	}
}

// Stop ends Run and disconnects every client.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)

		h.mu.Lock()
		defer h.mu.Unlock()
		for id, room := range h.rooms {
			for _, c := range room.clients {
				h.closeClient(c)
			}
			delete(h.rooms, id)
		}
	})
}

// Viewers lists who is watching a drawing.
func (h *Hub) Viewers(drawingID string) []Viewer {
	h.mu.RLock()
	defer h.mu.RUnlock()
	room, ok := h.rooms[drawingID]
	if !ok {
		return []Viewer{}
	}
	return room.viewers.List()
}

func (h *Hub) addClient(client *Client) {
	h.mu.RLock()
	room, ok := h.rooms[client.DrawingID]
	h.mu.RUnlock()

	// Only this goroutine creates rooms, so loading outside the lock is safe
	if !ok {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		doc, err := h.loader(ctx, client.DrawingID)
		cancel()
		if err != nil {
			slog.Error("load drawing for preview", "error", err, "drawing", client.DrawingID)
			h.mu.Lock()
			client.queue(errorMessage("drawing could not be loaded"))
			h.closeClient(client)
			h.mu.Unlock()
			return
		}
		room = NewRoom(client.DrawingID, doc)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.rooms[client.DrawingID] = room
	room.clients[client.ClientID] = client
	first := room.viewers.Add(client.UserID, client.DisplayName)

	format, _ := client.Format()
	welcome := newMessage(TypeWelcome, WelcomePayload{
		ClientID: client.ClientID,
		Format:   format,
		Viewers:  room.viewers.List(),
	})
	welcome.DrawingID = client.DrawingID
	client.queue(welcome)
	client.queue(h.renderFor(room, client))

	if first {
		join := newMessage(TypeViewerJoin, ViewerJoinPayload{
			UserID:      client.UserID,
			DisplayName: client.DisplayName,
		})
		join.UserID = client.UserID
		h.broadcastLocked(room, join, client.ClientID)
	}

	slog.Info("client joined", "user", client.UserID, "drawing", client.DrawingID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[client.DrawingID]
	if !ok || room.clients[client.ClientID] != client {
		return
	}

	delete(room.clients, client.ClientID)
	h.closeClient(client)
	last := room.viewers.Remove(client.UserID)

	if len(room.clients) == 0 {
		delete(h.rooms, client.DrawingID)
	}

	if last {
		leave := newMessage(TypeViewerLeave, ViewerLeavePayload{UserID: client.UserID})
		leave.UserID = client.UserID
		h.broadcastLocked(room, leave, "")
	}

	slog.Info("client left", "user", client.UserID, "drawing", client.DrawingID)
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypeFormatSet:
		h.handleFormatSet(sender, msg)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "user", sender.UserID)
		h.sendTo(sender, errorMessage("unknown message type "+msg.Type))
	}
}

func (h *Hub) handleFormatSet(sender *Client, msg *Message) {
	var p FormatPayload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		h.sendTo(sender, errorMessage("invalid format payload"))
		return
	}
	if _, err := h.registry.Lookup(p.Format); err != nil {
		h.sendTo(sender, errorMessage(err.Error()))
		return
	}

	sender.setFormat(p.Format, p.Options)

	h.mu.RLock()
	defer h.mu.RUnlock()
	if room, ok := h.rooms[sender.DrawingID]; ok {
		sender.queue(h.renderFor(room, sender))
	}
}

func (h *Hub) broadcastRender(doc *document.Drawing) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	room, ok := h.rooms[doc.ID]
	if !ok || !room.state.Replace(doc) {
		return
	}
	for _, c := range room.clients {
		c.queue(h.renderFor(room, c))
	}
}

// renderFor builds the render message matching the client's subscription.
func (h *Hub) renderFor(room *Room, c *Client) *Message {
	format, opts := c.Format()
	p, err := room.state.Render(h.registry, format, opts, h.defaults)
	if err != nil {
		slog.Warn("preview render failed", "error", err, "drawing", room.drawingID, "format", format)
		return errorMessage(err.Error())
	}

	msg := newMessage(TypeRender, p)
	msg.DrawingID = room.drawingID
	msg.Seq = int64(p.Version)
	return msg
}

// broadcastLocked sends msg to every client of room except one. Callers hold h.mu.
func (h *Hub) broadcastLocked(room *Room, msg *Message, excludeClientID string) {
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			c.queue(msg)
		}
	}
}

func (h *Hub) sendTo(c *Client, msg *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c.queue(msg)
}

// closeClient closes the client's queue once. Callers hold h.mu for writing.
func (h *Hub) closeClient(c *Client) {
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func errorMessage(text string) *Message {
	return newMessage(TypeError, ErrorPayload{Message: text})
}
