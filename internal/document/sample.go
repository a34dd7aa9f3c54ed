package document

import (
	"time"

	"github.com/inamate/vecgfx/internal/graphic"
	"github.com/inamate/vecgfx/internal/path"
	"github.com/inamate/vecgfx/internal/typeid"
)

// NewEmptyDrawing creates a drawing with no items.
func NewEmptyDrawing(drawingID, name string) *Drawing {
	now := time.Now().UTC().Format(time.RFC3339)
	return &Drawing{
		ID:        drawingID,
		Name:      name,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
		Items:     []ItemNode{},
	}
}

// NewSampleDrawing creates a small drawing exercising every item kind,
// including a cached path drawn three times.
func NewSampleDrawing(drawingID string) *Drawing {
	if drawingID == "" {
		drawingID = typeid.NewDrawingID()
	}

	triangle := path.Segments{
		path.MoveTo{0, 150},
		path.LineTo{100, 0},
		path.LineTo{200, 150},
		path.Close{},
	}

	dot := path.Segments{
		path.MoveTo{0, 10},
		path.QuadTo{0, 0, 10, 0},
		path.QuadTo{20, 0, 20, 10},
		path.QuadTo{20, 20, 10, 20},
		path.QuadTo{0, 20, 0, 10},
		path.Close{},
	}

	items := graphic.Items{
		graphic.Rect{X: 200, Y: 200, W: 200, H: 150, Stroke: graphic.StrokeStyle(2, graphic.Black), Fill: graphic.FillStyle(graphic.Red)},
		graphic.Ellipse{X: 520, Y: 280, W: 240, H: 160, Stroke: graphic.StrokeStyle(2, graphic.Purple), Fill: graphic.FillStyle(graphic.Blue)},
		graphic.Path{Segments: triangle.Move(900, 200), Stroke: graphic.StrokeStyle(2, graphic.Green), Fill: graphic.FillStyle(graphic.Lime)},
		graphic.Line{X1: 200, Y1: 420, X2: 1100, Y2: 420, Stroke: graphic.StrokeStyle(4, graphic.Gray)},
	}
	for i := range 3 {
		x := float32(470 + i*40)
		items = append(items, graphic.Path{
			Segments: dot.Move(x, 450),
			Fill:     graphic.FillStyle(graphic.Orange),
			Cache:    graphic.Cached("dot", float32(i*40), 0),
		})
	}

	d := NewEmptyDrawing(drawingID, "Sample")
	d.Items = FromItems(items)
	return d
}
