package preview

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"

	"github.com/inamate/vecgfx/internal/auth"
	"github.com/inamate/vecgfx/internal/drawing"
	"github.com/inamate/vecgfx/internal/typeid"
)

// Authorizer decides whether a user may watch a drawing.
type Authorizer func(ctx context.Context, drawingID, userID string) error

type Handler struct {
	hub            *Hub
	tokens         *auth.Service
	authorize      Authorizer
	originPatterns []string
}

func NewHandler(hub *Hub, tokens *auth.Service, authorize Authorizer, originPatterns []string) *Handler {
	return &Handler{
		hub:            hub,
		tokens:         tokens,
		authorize:      authorize,
		originPatterns: originPatterns,
	}
}

// ServeHTTP upgrades to a websocket subscribed to the drawing in the route.
// Browsers cannot set headers on websocket requests, so the token comes in
// the query string.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	drawingID := mux.Vars(r)["drawingId"]

	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	user, err := h.tokens.ValidateToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	if err := h.authorize(r.Context(), drawingID, user.ID); err != nil {
		switch {
		case errors.Is(err, drawing.ErrNotFound):
			http.Error(w, "drawing not found", http.StatusNotFound)
		case errors.Is(err, drawing.ErrForbidden):
			http.Error(w, "forbidden", http.StatusForbidden)
		default:
			slog.Error("authorize preview", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	client := NewClient(h.hub, conn, user.ID, user.DisplayName, drawingID, typeid.NewClientID())
	h.hub.Register(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}
