package preview

import (
	"errors"
	"sync"

	"github.com/inamate/vecgfx/internal/document"
	"github.com/inamate/vecgfx/internal/emit"
	"github.com/inamate/vecgfx/internal/engine"
	"github.com/inamate/vecgfx/internal/export"
	"github.com/inamate/vecgfx/internal/typeid"
)

var errNotLoaded = errors.New("drawing not loaded")

// DrawingState holds the latest version of a room's drawing and the
// renderings made from it.
type DrawingState struct {
	mu      sync.Mutex
	doc     *document.Drawing
	renders map[renderKey]RenderPayload
}

type renderKey struct {
	format string
	opts   emit.Options
}

func NewDrawingState(doc *document.Drawing) *DrawingState {
	return &DrawingState{
		doc:     doc,
		renders: make(map[renderKey]RenderPayload),
	}
}

// Replace installs a newer version. Older or equal versions are ignored and
// reported as false.
func (ds *DrawingState) Replace(doc *document.Drawing) bool {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.doc != nil && doc.Version <= ds.doc.Version {
		return false
	}
	ds.doc = doc
	clear(ds.renders)
	return true
}

func (ds *DrawingState) Version() int {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.doc == nil {
		return 0
	}
	return ds.doc.Version
}

// Render renders the current version, reusing an earlier rendering with the
// same format and options. Nil opts use the drawing's options, then defaults.
func (ds *DrawingState) Render(reg *emit.Registry, format string, opts *emit.Options, defaults emit.Options) (RenderPayload, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.doc == nil {
		return RenderPayload{}, errNotLoaded
	}

	resolved := defaults
	switch {
	case opts != nil:
		resolved = opts.Resolve()
	case ds.doc.Options != nil:
		resolved = ds.doc.Options.Resolve()
	}
	opts = &resolved

	key := renderKey{format: format, opts: resolved}
	if p, ok := ds.renders[key]; ok {
		return p, nil
	}

	out, err := engine.RenderDrawing(reg, ds.doc, format, opts)
	if err != nil {
		return RenderPayload{}, err
	}

	p := RenderPayload{
		ID:          typeid.NewRenderID(),
		Version:     ds.doc.Version,
		Format:      format,
		ContentType: reg.ContentType(format),
		ETag:        export.ETag(out),
		Body:        out,
	}
	ds.renders[key] = p
	return p, nil
}

// Room is the set of clients watching one drawing.
type Room struct {
	drawingID string
	clients   map[string]*Client // clientID -> client
	viewers   *ViewerSet
	state     *DrawingState
}

func NewRoom(drawingID string, doc *document.Drawing) *Room {
	return &Room{
		drawingID: drawingID,
		clients:   make(map[string]*Client),
		viewers:   NewViewerSet(),
		state:     NewDrawingState(doc),
	}
}
