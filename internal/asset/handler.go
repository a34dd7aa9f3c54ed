package asset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/mux"

	"github.com/inamate/vecgfx/internal/document"
	"github.com/inamate/vecgfx/internal/glyph"
	"github.com/inamate/vecgfx/internal/graphic"
	"github.com/inamate/vecgfx/internal/path"
	"github.com/inamate/vecgfx/internal/typeid"
)

const (
	maxUploadSize = 10 << 20 // 10MB
	maxTextLength = 4096
	fontExt       = ".font"
)

var ErrFontNotFound = errors.New("font not found")

// UploadResponse is returned from the upload endpoint.
type UploadResponse struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Glyphs int    `json:"glyphs"`
	Name   string `json:"name"`
}

// Handler stores uploaded fonts and lays out text with them.
type Handler struct {
	dir         string // directory to store font files
	defaultFont []byte
}

// NewHandler creates a font handler storing files in dir. A nil defaultFont
// uses Go Regular.
func NewHandler(dir string, defaultFont []byte) *Handler {
	// Ensure directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		slog.Error("create font dir", "error", err, "dir", dir)
	}
	return &Handler{dir: dir, defaultFont: defaultFont}
}

// Upload handles POST /fonts/upload (multipart form with "file" field).
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "file too large (max 10MB)", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read file", http.StatusBadRequest)
		return
	}

	face, err := glyph.NewFace(data, 16)
	if err != nil {
		http.Error(w, "invalid font: "+err.Error(), http.StatusBadRequest)
		return
	}

	fontID := typeid.NewFontID()
	if err := os.WriteFile(filepath.Join(h.dir, fontID+fontExt), data, 0644); err != nil {
		slog.Error("write font file", "error", err)
		http.Error(w, "failed to save file", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, UploadResponse{
		ID:     fontID,
		URL:    fmt.Sprintf("/fonts/%s%s", fontID, fontExt),
		Glyphs: face.NumGlyphs(),
		Name:   header.Filename,
	})
}

// Serve returns an http.Handler that serves stored font files with caching headers.
func (h *Handler) Serve() http.Handler {
	fs := http.FileServer(http.Dir(h.dir))
	return http.StripPrefix("/fonts/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Font IDs are unique, so files are immutable
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		w.Header().Set("Content-Type", "font/sfnt")
		fs.ServeHTTP(w, r)
	}))
}

// Delete removes a font file from disk.
func (h *Handler) Delete(fontID string) error {
	if err := typeid.Validate(fontID, typeid.PrefixFont); err != nil {
		return fmt.Errorf("%w: %w", ErrFontNotFound, err)
	}
	if err := os.Remove(filepath.Join(h.dir, fontID+fontExt)); err != nil {
		return fmt.Errorf("%w: %s", ErrFontNotFound, fontID)
	}
	return nil
}

// Remove handles DELETE /fonts/{fontId}.
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.Delete(mux.Vars(r)["fontId"]); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "font not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type strokeRequest struct {
	Width float32             `json:"width"`
	Color document.ColorValue `json:"color"`
}

// TextRequest describes text to turn into drawing items.
type TextRequest struct {
	Text   string               `json:"text"`
	Font   string               `json:"font,omitempty"`
	Size   float32              `json:"size"`
	X      float32              `json:"x"`
	Y      float32              `json:"y"`
	Fill   *document.ColorValue `json:"fill,omitempty"`
	Stroke *strokeRequest       `json:"stroke,omitempty"`
	// Cached emits one path per glyph sharing cache tags; otherwise the
	// whole text is a single path.
	Cached bool `json:"cached"`
}

// Text handles POST /text. The response is a drawing holding the outlined text.
func (h *Handler) Text(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUploadSize)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Text == "" || len(req.Text) > maxTextLength {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("text must be 1 to %d bytes", maxTextLength)})
		return
	}
	if req.Size <= 0 {
		req.Size = 32
	}

	face, err := h.face(req.Font, req.Size)
	if err != nil {
		if errors.Is(err, ErrFontNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "font not found"})
			return
		}
		slog.Error("load font", "error", err, "font", req.Font)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	stroke, fill := graphic.NoStroke, graphic.FillStyle(graphic.Black)
	if req.Fill != nil {
		fill = graphic.FillStyle(req.Fill.Color)
	}
	if req.Stroke != nil && req.Stroke.Color.Color != nil {
		stroke = graphic.StrokeStyle(req.Stroke.Width, req.Stroke.Color.Color)
	}

	var items graphic.Items
	if req.Cached {
		items, err = face.Items(req.Text, req.X, req.Y, stroke, fill)
	} else {
		var segs path.Segments
		segs, err = face.Text(req.Text, req.X, req.Y)
		if len(segs) > 0 {
			items = graphic.Items{graphic.Path{Segments: segs, Stroke: stroke, Fill: fill}}
		}
	}
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}

	doc := document.NewEmptyDrawing("", req.Text)
	doc.Items = document.FromItems(items)
	writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) face(fontID string, size float32) (*glyph.Face, error) {
	if fontID == "" {
		if h.defaultFont != nil {
			return glyph.NewFace(h.defaultFont, size)
		}
		return glyph.DefaultFace(size)
	}

	if err := typeid.Validate(fontID, typeid.PrefixFont); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFontNotFound, err)
	}
	data, err := os.ReadFile(filepath.Join(h.dir, fontID+fontExt))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrFontNotFound
		}
		return nil, err
	}
	return glyph.NewFace(data, size)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
