package drawing

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/inamate/vecgfx/internal/auth"
	"github.com/inamate/vecgfx/internal/document"
	"github.com/inamate/vecgfx/internal/emit"
	"github.com/inamate/vecgfx/internal/export"
	"github.com/inamate/vecgfx/internal/path"
)

const maxDocumentSize = 8 << 20 // 8MB

type Handler struct {
	service  *Service
	registry *emit.Registry
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service, registry: service.registry}
}

type createRequest struct {
	Name    string          `json:"name"`
	Sample  bool            `json:"sample"`
	Drawing json.RawMessage `json:"drawing"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req createRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxDocumentSize)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	var doc *document.Drawing
	switch {
	case len(req.Drawing) > 0:
		parsed, err := document.Parse(req.Drawing)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		doc = parsed
	case req.Sample:
		doc = document.NewSampleDrawing("")
	}

	created, err := h.service.Create(r.Context(), userID, req.Name, doc)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	drawingID := mux.Vars(r)["drawingId"]

	doc, err := h.service.Get(r.Context(), drawingID, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	drawings, err := h.service.List(r.Context(), userID)
	if err != nil {
		slog.Error("list drawings failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, drawings)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	drawingID := mux.Vars(r)["drawingId"]

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentSize))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request too large"})
		return
	}
	doc, err := document.Parse(body)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	updated, err := h.service.Update(r.Context(), drawingID, userID, doc)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) Transform(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	drawingID := mux.Vars(r)["drawingId"]

	var req Transform
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Move == nil && req.Scale == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "move or scale is required"})
		return
	}

	updated, err := h.service.Transform(r.Context(), drawingID, userID, req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	drawingID := mux.Vars(r)["drawingId"]

	err := h.service.Delete(r.Context(), drawingID, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	vars := mux.Vars(r)
	drawingID, format := vars["drawingId"], vars["format"]

	doc, err := h.service.Get(r.Context(), drawingID, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	opts, err := export.OptionsFromQuery(r, h.service.Options(doc))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	out, err := h.service.Render(r.Context(), drawingID, userID, format, &opts)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	export.Write(w, r, format, h.registry.ContentType(format), out)
}

func (h *Handler) Bounds(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	drawingID := mux.Vars(r)["drawingId"]

	b, err := h.service.Bounds(r.Context(), drawingID, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, b)
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, ErrForbidden):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
	case errors.Is(err, ErrConflict):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "version conflict"})
	case errors.Is(err, ErrInvalid), errors.Is(err, path.ErrMalformedInterchange):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		export.HandleRenderError(w, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
