package drawing

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/vecgfx/internal/document"
	"github.com/inamate/vecgfx/internal/emit"
	"github.com/inamate/vecgfx/internal/emit/script"
	"github.com/inamate/vecgfx/internal/engine"
	"github.com/inamate/vecgfx/internal/graphic"
	"github.com/inamate/vecgfx/internal/store"
	"github.com/inamate/vecgfx/internal/typeid"
)

type recorder struct {
	mu        sync.Mutex
	published []*document.Drawing
}

func (r *recorder) Publish(doc *document.Drawing) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published = append(r.published, doc)
}

func newService(pub Publisher) *Service {
	return NewService(store.NewMemory(), engine.NewRegistry(script.DefaultTemplate()), emit.DefaultOptions(), pub)
}

func TestCreateAndGet(t *testing.T) {
	s := newService(nil)
	ctx := context.Background()
	owner := typeid.NewUserID()

	created, err := s.Create(ctx, owner, " Logo ", nil)
	require.NoError(t, err)
	assert.NoError(t, typeid.Validate(created.ID, typeid.PrefixDrawing))
	assert.Equal(t, "Logo", created.Name)
	assert.Equal(t, 1, created.Version)
	assert.NotEmpty(t, created.CreatedAt)

	got, err := s.Get(ctx, created.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Empty(t, got.Items)

	_, err = s.Get(ctx, created.ID, typeid.NewUserID())
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = s.Get(ctx, typeid.NewDrawingID(), owner)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateRejectsInvalidItems(t *testing.T) {
	doc := &document.Drawing{Items: []document.ItemNode{{Type: "star"}}}
	_, err := newService(nil).Create(context.Background(), "user_x", "", doc)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestUpdateBumpsVersionAndPublishes(t *testing.T) {
	pub := &recorder{}
	s := newService(pub)
	ctx := context.Background()

	created, err := s.Create(ctx, "owner", "", document.NewSampleDrawing(""))
	require.NoError(t, err)
	assert.Equal(t, "Sample", created.Name)

	next := document.NewEmptyDrawing("", "")
	next.Items = document.FromItems(graphic.Items{graphic.Line{X2: 5, Stroke: graphic.StrokeStyle(1, graphic.Red)}})
	next.Version = 1

	updated, err := s.Update(ctx, created.ID, "owner", next)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Sample", updated.Name)
	require.Len(t, pub.published, 1)
	assert.Equal(t, 2, pub.published[0].Version)

	next.Version = 1
	_, err = s.Update(ctx, created.ID, "owner", next)
	assert.ErrorIs(t, err, ErrConflict)

	next.Version = 0
	again, err := s.Update(ctx, created.ID, "owner", next)
	require.NoError(t, err)
	assert.Equal(t, 3, again.Version)

	_, err = s.Update(ctx, created.ID, "intruder", next)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestTransform(t *testing.T) {
	s := newService(nil)
	ctx := context.Background()

	doc := document.NewEmptyDrawing("", "box")
	doc.Items = document.FromItems(graphic.Items{graphic.Rect{X: 1, Y: 1, W: 2, H: 2, Stroke: graphic.StrokeStyle(2, graphic.Black)}})
	created, err := s.Create(ctx, "owner", "", doc)
	require.NoError(t, err)

	moved, err := s.Transform(ctx, created.ID, "owner", Transform{
		Move:  &Offset{DX: -1, DY: -1},
		Scale: &Factor{SX: 2, SY: 2, StrokeScale: ptr(float32(0.5))},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, moved.Version)

	items, err := moved.GraphicItems()
	require.NoError(t, err)
	assert.Equal(t, graphic.Items{graphic.Rect{X: 0, Y: 0, W: 4, H: 4, Stroke: graphic.StrokeStyle(1, graphic.Black)}}, items)

	b, err := s.Bounds(ctx, created.ID, "owner")
	require.NoError(t, err)
	assert.Equal(t, engine.Bounds{XMin: -0.5, YMin: -0.5, XMax: 4.5, YMax: 4.5, Width: 5, Height: 5}, b)
}

func ptr[T any](v T) *T { return &v }

func TestTransformScaleDefaults(t *testing.T) {
	s := newService(nil)
	ctx := context.Background()

	doc := document.NewEmptyDrawing("", "box")
	doc.Items = document.FromItems(graphic.Items{graphic.Rect{X: 1, Y: 1, W: 2, H: 2, Stroke: graphic.StrokeStyle(2, graphic.Black)}})
	created, err := s.Create(ctx, "owner", "", doc)
	require.NoError(t, err)

	scaled, err := s.Transform(ctx, created.ID, "owner", Transform{Scale: &Factor{SX: 2, SY: 2}})
	require.NoError(t, err)
	items, err := scaled.GraphicItems()
	require.NoError(t, err)
	assert.Equal(t, graphic.Items{graphic.Rect{X: 2, Y: 2, W: 4, H: 4, Stroke: graphic.StrokeStyle(2, graphic.Black)}}, items)

	tests := []struct {
		name  string
		scale *Factor
	}{
		{"empty", &Factor{}},
		{"zero x", &Factor{SX: 0, SY: 2}},
		{"zero y", &Factor{SX: 2, SY: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Transform(ctx, created.ID, "owner", Transform{Scale: tt.scale})
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}

	got, err := s.Get(ctx, created.ID, "owner")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version)
}

func TestRender(t *testing.T) {
	s := NewService(store.NewMemory(), engine.NewRegistry(script.DefaultTemplate()), emit.Options{Unit: emit.Rem, Scaling: 1}, nil)
	ctx := context.Background()

	created, err := s.Create(ctx, "owner", "", document.NewSampleDrawing(""))
	require.NoError(t, err)

	out, err := s.Render(ctx, created.ID, "owner", "svg", nil)
	require.NoError(t, err)
	assert.Contains(t, out, `rem"`)
	assert.Equal(t, 3, strings.Count(out, `xlink:href="#dot"`))

	_, err = s.Render(ctx, created.ID, "owner", "gif", nil)
	assert.ErrorIs(t, err, emit.ErrUnknownFormat)
}

func TestListAndDelete(t *testing.T) {
	s := newService(nil)
	ctx := context.Background()

	a, err := s.Create(ctx, "owner", "a", nil)
	require.NoError(t, err)
	_, err = s.Create(ctx, "owner", "b", nil)
	require.NoError(t, err)
	_, err = s.Create(ctx, "someone", "c", nil)
	require.NoError(t, err)

	list, err := s.List(ctx, "owner")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	assert.ErrorIs(t, s.Delete(ctx, a.ID, "someone"), ErrForbidden)
	require.NoError(t, s.Delete(ctx, a.ID, "owner"))
	assert.ErrorIs(t, s.Delete(ctx, a.ID, "owner"), ErrNotFound)

	_, err = s.Load(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
