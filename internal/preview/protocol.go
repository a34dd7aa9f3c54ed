package preview

import (
	"encoding/json"

	"github.com/inamate/vecgfx/internal/emit"
)

type Message struct {
	Type      string          `json:"type"`
	DrawingID string          `json:"drawingId,omitempty"`
	ClientID  string          `json:"clientId,omitempty"`
	UserID    string          `json:"userId,omitempty"`
	Seq       int64           `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

const (
	// Server to client
	TypeWelcome     = "welcome"
	TypeRender      = "render"
	TypeViewerJoin  = "viewer.join"
	TypeViewerLeave = "viewer.leave"
	TypeError       = "error"

	// Client to server
	TypeFormatSet = "format.set"
)

type WelcomePayload struct {
	ClientID string   `json:"clientId"`
	Format   string   `json:"format"`
	Viewers  []Viewer `json:"viewers"`
}

// RenderPayload carries one rendering of a drawing version. Viewers that
// share a format and options receive the same ID.
type RenderPayload struct {
	ID          string `json:"id"`
	Version     int    `json:"version"`
	Format      string `json:"format"`
	ContentType string `json:"contentType"`
	ETag        string `json:"etag"`
	Body        string `json:"body"`
}

// FormatPayload selects what a client wants to receive.
type FormatPayload struct {
	Format  string        `json:"format"`
	Options *emit.Options `json:"options,omitempty"`
}

type ViewerJoinPayload struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

type ViewerLeavePayload struct {
	UserID string `json:"userId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func newMessage(typ string, payload any) *Message {
	data, err := json.Marshal(payload)
	if err != nil {
		data = nil
	}
	return &Message{Type: typ, Payload: data}
}
