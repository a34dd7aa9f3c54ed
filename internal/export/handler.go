package export

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/inamate/vecgfx/internal/document"
	"github.com/inamate/vecgfx/internal/emit"
	"github.com/inamate/vecgfx/internal/engine"
	"github.com/inamate/vecgfx/internal/path"
)

const maxDocumentSize = 8 << 20 // 8MB

type Handler struct {
	registry *emit.Registry
	defaults emit.Options
}

func NewHandler(registry *emit.Registry, defaults emit.Options) *Handler {
	return &Handler{registry: registry, defaults: defaults}
}

type formatInfo struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
}

// Formats lists the registered output formats.
func (h *Handler) Formats(w http.ResponseWriter, r *http.Request) {
	names := h.registry.Names()
	out := make([]formatInfo, 0, len(names))
	for _, name := range names {
		out = append(out, formatInfo{Name: name, ContentType: h.registry.ContentType(name)})
	}
	writeJSON(w, http.StatusOK, out)
}

// Render renders the drawing posted in the body without storing it.
func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	format := mux.Vars(r)["format"]
	if _, err := h.registry.Lookup(format); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentSize))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request too large"})
		return
	}

	doc, err := document.Parse(body)
	if err != nil {
		HandleRenderError(w, err)
		return
	}

	base := h.defaults
	if doc.Options != nil {
		base = doc.Options.Resolve()
	}
	opts, err := OptionsFromQuery(r, base)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	out, err := engine.RenderDrawing(h.registry, doc, format, &opts)
	if err != nil {
		HandleRenderError(w, err)
		return
	}

	slog.Debug("rendered", "format", format, "items", len(doc.Items), "bytes", len(out))
	Write(w, r, format, h.registry.ContentType(format), out)
}

// HandleRenderError maps document and emission errors to status codes.
func HandleRenderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, emit.ErrUnknownFormat):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, path.ErrMalformedInterchange):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, emit.ErrEmissionFailure):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	default:
		slog.Error("render failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
