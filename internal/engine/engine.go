package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/inamate/vecgfx/internal/document"
	"github.com/inamate/vecgfx/internal/emit"
	"github.com/inamate/vecgfx/internal/emit/commands"
	"github.com/inamate/vecgfx/internal/emit/script"
	"github.com/inamate/vecgfx/internal/emit/svg"
	"github.com/inamate/vecgfx/internal/graphic"
)

// nopHandler discards every record.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// NewRegistry returns a registry holding every built-in format.
func NewRegistry(tmpl script.Template) *emit.Registry {
	reg := emit.NewRegistry()
	// Names are distinct constants, so registration cannot fail.
	_ = reg.Register(svg.Format, svg.ContentType, svg.New())
	_ = reg.Register(script.Format, script.ContentType, script.New(tmpl))
	_ = reg.Register(commands.Format, commands.ContentType, commands.New())
	return reg
}

// RenderDrawing renders doc through reg without engine state, so it is safe
// for concurrent use. Nil opts fall back to the drawing's own options.
func RenderDrawing(reg *emit.Registry, doc *document.Drawing, format string, opts *emit.Options) (string, error) {
	b, err := reg.Lookup(format)
	if err != nil {
		return "", err
	}

	items, err := doc.GraphicItems()
	if err != nil {
		return "", err
	}

	if opts == nil {
		opts = doc.Options
	}
	out, err := b.Build(items, opts)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", format, err)
	}
	return out, nil
}

// Engine owns one drawing and renders it on demand.
// It is not safe for concurrent use; callers serialize access.
type Engine struct {
	registry *emit.Registry
	logger   *slog.Logger

	// Document state
	doc   *document.Drawing
	items graphic.Items
	opts  emit.Options
}

// NewEngine creates an engine rendering through reg. A nil logger disables logging.
func NewEngine(reg *emit.Registry, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(nopHandler{})
	}
	return &Engine{
		registry: reg,
		logger:   logger,
		opts:     emit.DefaultOptions(),
	}
}

// --- Commands ---

// LoadDocument loads a drawing from JSON.
func (e *Engine) LoadDocument(jsonData string) error {
	doc, err := document.Parse([]byte(jsonData))
	if err != nil {
		return err
	}
	return e.Load(doc)
}

// LoadSampleDocument loads the built-in sample drawing.
func (e *Engine) LoadSampleDocument(drawingID string) {
	// the sample always converts cleanly
	_ = e.Load(document.NewSampleDrawing(drawingID))
}

// Load makes doc the drawing being edited.
func (e *Engine) Load(doc *document.Drawing) error {
	items, err := doc.GraphicItems()
	if err != nil {
		return err
	}

	e.doc = doc
	e.items = items
	e.opts = doc.Options.Resolve()

	e.logger.Debug("drawing loaded", "id", doc.ID, "items", len(items))
	return nil
}

// SetItems replaces the drawing contents.
func (e *Engine) SetItems(items graphic.Items) {
	if e.doc == nil {
		e.doc = document.NewEmptyDrawing("", "Untitled")
	}
	e.items = items
	e.touch()
}

// SetOptions changes the default render options.
func (e *Engine) SetOptions(opts emit.Options) {
	e.opts = (&opts).Resolve()
	if e.doc != nil {
		e.doc.Options = &e.opts
	}
}

// Move translates the whole drawing.
func (e *Engine) Move(dx, dy float32) {
	e.items = e.items.Move(dx, dy)
	e.touch()
}

// Scale scales the whole drawing; stroke widths follow strokeScale.
func (e *Engine) Scale(sx, sy, strokeScale float32) {
	e.items = e.items.Scale(sx, sy, strokeScale)
	e.touch()
}

func (e *Engine) touch() {
	if e.doc == nil {
		return
	}
	e.doc.Items = document.FromItems(e.items)
	e.doc.Version++
	e.doc.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
}

// --- Queries ---

// Render renders the drawing with the document's options.
func (e *Engine) Render(format string) (string, error) {
	return e.RenderWith(format, &e.opts)
}

// RenderWith renders the drawing with explicit options.
func (e *Engine) RenderWith(format string, opts *emit.Options) (string, error) {
	b, err := e.registry.Lookup(format)
	if err != nil {
		return "", err
	}

	start := time.Now()
	out, err := b.Build(e.items, opts)
	if err != nil {
		e.logger.Warn("render failed", "format", format, "error", err)
		return "", fmt.Errorf("render %s: %w", format, err)
	}

	e.logger.Debug("rendered", "format", format, "items", len(e.items), "bytes", len(out), "took", time.Since(start))
	return out, nil
}

// Items returns the current drawing contents.
func (e *Engine) Items() graphic.Items {
	return e.items
}

// Formats lists the available output formats.
func (e *Engine) Formats() []string {
	return e.registry.Names()
}

// Bounds is the JSON form of a bounding box.
type Bounds struct {
	XMin   float32 `json:"xMin"`
	YMin   float32 `json:"yMin"`
	XMax   float32 `json:"xMax"`
	YMax   float32 `json:"yMax"`
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
	Empty  bool    `json:"empty"`
}

// GetBounds returns the drawing's bounding box. An empty drawing reports
// zeros with Empty set.
func (e *Engine) GetBounds() Bounds {
	r := e.items.BBox()
	if r.IsEmpty() {
		return Bounds{Empty: true}
	}
	return Bounds{
		XMin:   r.XMin,
		YMin:   r.YMin,
		XMax:   r.XMax,
		YMax:   r.YMax,
		Width:  r.Width(),
		Height: r.Height(),
	}
}

// BoundsJSON serializes GetBounds.
func (e *Engine) BoundsJSON() string {
	data, _ := json.Marshal(e.GetBounds())
	return string(data)
}

// Document returns the drawing being edited, or nil.
func (e *Engine) Document() *document.Drawing {
	return e.doc
}

// GetDocument returns the full drawing as JSON.
func (e *Engine) GetDocument() string {
	if e.doc == nil {
		return "{}"
	}
	data, _ := json.Marshal(e.doc)
	return string(data)
}
