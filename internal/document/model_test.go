package document

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/vecgfx/internal/emit"
	"github.com/inamate/vecgfx/internal/graphic"
	"github.com/inamate/vecgfx/internal/path"
	"github.com/inamate/vecgfx/internal/typeid"
)

const drawingJSON = `{
	"id": "drw_01h455vb4pex5vsknk084sn02q",
	"name": "demo",
	"options": {"unit": "rem", "scaling": 0.1},
	"items": [
		{"type": "line", "x1": 0, "y1": 0, "x2": 10, "y2": 0, "stroke": {"width": 2, "color": "red"}},
		{"type": "rect", "x": 1, "y": 2, "width": 3, "height": 4, "fill": {"color": {"r": 1, "g": 2, "b": 3}}},
		{"type": "ellipse", "x": 0, "y": 0, "width": 5, "height": 5, "fill": {"color": "rgba(9,9,9,0)"}},
		{"type": "path", "path": [["M",[0,0]],["L",[1,1]],["Z",[]]], "cache": {"tag": "g1", "x": 0, "y": 0}}
	]
}`

func TestParse(t *testing.T) {
	d, err := Parse([]byte(drawingJSON))
	require.NoError(t, err)

	assert.Equal(t, "demo", d.Name)
	require.NotNil(t, d.Options)
	assert.Equal(t, emit.Options{Unit: emit.Rem, Scaling: 0.1}, *d.Options)

	items, err := d.GraphicItems()
	require.NoError(t, err)
	require.Len(t, items, 4)

	assert.Equal(t, graphic.Line{X2: 10, Stroke: graphic.StrokeStyle(2, graphic.Red)}, items[0])
	assert.Equal(t, graphic.Rect{X: 1, Y: 2, W: 3, H: 4, Fill: graphic.FillStyle(graphic.RGBA{1, 2, 3, 255})}, items[1])
	assert.Equal(t, graphic.FillStyle(graphic.RGBA{9, 9, 9, 0}), items[2].(graphic.Ellipse).Fill)

	p := items[3].(graphic.Path)
	assert.Equal(t, path.Segments{path.MoveTo{0, 0}, path.LineTo{1, 1}, path.Close{}}, p.Segments)
	assert.Equal(t, graphic.Cached("g1", 0, 0), p.Cache)
}

func TestParseMalformedPath(t *testing.T) {
	_, err := Parse([]byte(`{"items": [
		{"type": "rect", "width": 1, "height": 1},
		{"type": "path", "path": [["M",[0,0]],["B",[1]]]}
	]}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, path.ErrMalformedInterchange))

	var ie *ItemError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, 1, ie.Index)

	var pe *path.InterchangeError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 1, pe.Index)
	assert.Equal(t, "B", pe.Tag)
}

func TestGraphicItemsErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unknown type", `{"items": [{"type": "star"}]}`},
		{"line fill", `{"items": [{"type": "line", "fill": {"color": "red"}}]}`},
		{"stroke without color", `{"items": [{"type": "rect", "stroke": {"width": 1}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Parse([]byte(tt.input))
			require.NoError(t, err)

			_, err = d.GraphicItems()
			require.Error(t, err)
			assert.True(t, errors.Is(err, path.ErrMalformedInterchange))

			var ie *ItemError
			require.True(t, errors.As(err, &ie))
			assert.Equal(t, 0, ie.Index)
		})
	}
}

func TestParseBadColor(t *testing.T) {
	_, err := Parse([]byte(`{"items": [{"type": "rect", "fill": {"color": "teal"}}]}`))
	assert.True(t, errors.Is(err, graphic.ErrUnknownColor))
	assert.True(t, errors.Is(err, path.ErrMalformedInterchange))
}

func TestFromItemsRoundTrip(t *testing.T) {
	d := NewSampleDrawing("")
	assert.NoError(t, typeid.Validate(d.ID, typeid.PrefixDrawing))

	items, err := d.GraphicItems()
	require.NoError(t, err)

	data, err := json.Marshal(d)
	require.NoError(t, err)

	back, err := Parse(data)
	require.NoError(t, err)
	again, err := back.GraphicItems()
	require.NoError(t, err)
	assert.Equal(t, items, again)
}

func TestSampleDrawingSharesDot(t *testing.T) {
	items, err := NewSampleDrawing("drw_test").GraphicItems()
	require.NoError(t, err)

	var tagged int
	for _, it := range items {
		if p, ok := it.(graphic.Path); ok && p.Cache.Tag == "dot" {
			tagged++
		}
	}
	assert.Equal(t, 3, tagged)
}
