package drawing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/inamate/vecgfx/internal/document"
	"github.com/inamate/vecgfx/internal/emit"
	"github.com/inamate/vecgfx/internal/engine"
	"github.com/inamate/vecgfx/internal/store"
	"github.com/inamate/vecgfx/internal/typeid"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrConflict  = errors.New("version conflict")
	ErrInvalid   = errors.New("invalid drawing")
)

// Publisher is told about every stored change to a drawing.
type Publisher interface {
	Publish(doc *document.Drawing)
}

type Service struct {
	store     store.Store
	registry  *emit.Registry
	defaults  emit.Options
	publisher Publisher
}

// NewService wires the drawing service. A nil publisher disables change
// notifications.
func NewService(st store.Store, registry *emit.Registry, defaults emit.Options, publisher Publisher) *Service {
	return &Service{
		store:     st,
		registry:  registry,
		defaults:  defaults,
		publisher: publisher,
	}
}

type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Transform is applied as Move first, then Scale. Either may be nil.
type Transform struct {
	Move  *Offset `json:"move,omitempty"`
	Scale *Factor `json:"scale,omitempty"`
}

type Offset struct {
	DX float32 `json:"dx"`
	DY float32 `json:"dy"`
}

// Factor scales geometry by (SX, SY). StrokeScale defaults to 1 so strokes
// keep their width.
type Factor struct {
	SX          float32  `json:"sx"`
	SY          float32  `json:"sy"`
	StrokeScale *float32 `json:"strokeScale,omitempty"`
}

func (f *Factor) strokeScale() float32 {
	if f.StrokeScale == nil {
		return 1
	}
	return *f.StrokeScale
}

// Create stores a new drawing owned by userID. A nil doc creates an empty
// drawing; the id is always assigned here.
func (s *Service) Create(ctx context.Context, userID, name string, doc *document.Drawing) (*document.Drawing, error) {
	if doc == nil {
		doc = document.NewEmptyDrawing("", "")
	}
	doc.ID = typeid.NewDrawingID()
	doc.Version = 1
	if name = strings.TrimSpace(name); name != "" {
		doc.Name = name
	}
	if doc.Name == "" {
		doc.Name = "Untitled"
	}

	if _, err := doc.GraphicItems(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal drawing: %w", err)
	}

	rec := &store.Drawing{
		ID:       doc.ID,
		OwnerID:  userID,
		Name:     doc.Name,
		Version:  doc.Version,
		Document: data,
	}
	if err := s.store.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create drawing: %w", err)
	}

	stamp(doc, rec)
	return doc, nil
}

func (s *Service) Get(ctx context.Context, drawingID, userID string) (*document.Drawing, error) {
	rec, err := s.owned(ctx, drawingID, userID)
	if err != nil {
		return nil, err
	}
	return decode(rec)
}

// Load returns a drawing without an ownership check.
func (s *Service) Load(ctx context.Context, drawingID string) (*document.Drawing, error) {
	rec, err := s.store.Get(ctx, drawingID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return decode(rec)
}

func (s *Service) List(ctx context.Context, userID string) ([]Summary, error) {
	recs, err := s.store.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list drawings: %w", err)
	}

	out := make([]Summary, len(recs))
	for i, rec := range recs {
		out[i] = Summary{
			ID:        rec.ID,
			Name:      rec.Name,
			Version:   rec.Version,
			CreatedAt: rec.CreatedAt,
			UpdatedAt: rec.UpdatedAt,
		}
	}
	return out, nil
}

// Update replaces a drawing's contents. A non-zero doc.Version must match the
// stored version.
func (s *Service) Update(ctx context.Context, drawingID, userID string, doc *document.Drawing) (*document.Drawing, error) {
	rec, err := s.owned(ctx, drawingID, userID)
	if err != nil {
		return nil, err
	}
	if doc.Version != 0 && doc.Version != rec.Version {
		return nil, ErrConflict
	}
	if _, err := doc.GraphicItems(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	return s.save(ctx, rec, doc)
}

// Transform moves then scales every item of a drawing.
func (s *Service) Transform(ctx context.Context, drawingID, userID string, t Transform) (*document.Drawing, error) {
	if t.Scale != nil && (t.Scale.SX == 0 || t.Scale.SY == 0) {
		return nil, fmt.Errorf("%w: scale factors must be non-zero", ErrInvalid)
	}

	rec, err := s.owned(ctx, drawingID, userID)
	if err != nil {
		return nil, err
	}
	doc, err := decode(rec)
	if err != nil {
		return nil, err
	}

	e := engine.NewEngine(s.registry, nil)
	if err := e.Load(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if t.Move != nil {
		e.Move(t.Move.DX, t.Move.DY)
	}
	if t.Scale != nil {
		e.Scale(t.Scale.SX, t.Scale.SY, t.Scale.strokeScale())
	}

	return s.save(ctx, rec, e.Document())
}

func (s *Service) Delete(ctx context.Context, drawingID, userID string) error {
	if _, err := s.owned(ctx, drawingID, userID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, drawingID); err != nil {
		return mapStoreError(err)
	}
	return nil
}

// Render renders a stored drawing. Nil opts use the drawing's options, then
// the service defaults.
func (s *Service) Render(ctx context.Context, drawingID, userID, format string, opts *emit.Options) (string, error) {
	doc, err := s.Get(ctx, drawingID, userID)
	if err != nil {
		return "", err
	}
	if opts == nil {
		resolved := s.Options(doc)
		opts = &resolved
	}
	return engine.RenderDrawing(s.registry, doc, format, opts)
}

// Bounds reports the bounding box of a stored drawing.
func (s *Service) Bounds(ctx context.Context, drawingID, userID string) (engine.Bounds, error) {
	doc, err := s.Get(ctx, drawingID, userID)
	if err != nil {
		return engine.Bounds{}, err
	}
	e := engine.NewEngine(s.registry, nil)
	if err := e.Load(doc); err != nil {
		return engine.Bounds{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return e.GetBounds(), nil
}

// Options returns the render options in effect for doc.
func (s *Service) Options(doc *document.Drawing) emit.Options {
	if doc.Options != nil {
		return doc.Options.Resolve()
	}
	return s.defaults
}

func (s *Service) save(ctx context.Context, rec *store.Drawing, doc *document.Drawing) (*document.Drawing, error) {
	prev := rec.Version
	doc.ID = rec.ID
	doc.Version = prev + 1
	if doc.Name == "" {
		doc.Name = rec.Name
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal drawing: %w", err)
	}

	next := &store.Drawing{
		ID:        rec.ID,
		OwnerID:   rec.OwnerID,
		Name:      doc.Name,
		Version:   doc.Version,
		Document:  data,
		CreatedAt: rec.CreatedAt,
	}
	if err := s.store.Update(ctx, next, prev); err != nil {
		return nil, mapStoreError(err)
	}

	stamp(doc, next)
	if s.publisher != nil {
		s.publisher.Publish(doc)
	}
	return doc, nil
}

func (s *Service) owned(ctx context.Context, drawingID, userID string) (*store.Drawing, error) {
	rec, err := s.store.Get(ctx, drawingID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if rec.OwnerID != userID {
		return nil, ErrForbidden
	}
	return rec, nil
}

func decode(rec *store.Drawing) (*document.Drawing, error) {
	doc, err := document.Parse(rec.Document)
	if err != nil {
		return nil, fmt.Errorf("decode drawing %s: %w", rec.ID, err)
	}
	stamp(doc, rec)
	return doc, nil
}

// stamp copies the stored identity onto doc.
func stamp(doc *document.Drawing, rec *store.Drawing) {
	doc.ID = rec.ID
	doc.Name = rec.Name
	doc.Version = rec.Version
	doc.CreatedAt = rec.CreatedAt.UTC().Format(time.RFC3339)
	doc.UpdatedAt = rec.UpdatedAt.UTC().Format(time.RFC3339)
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, store.ErrConflict):
		return ErrConflict
	default:
		return err
	}
}
