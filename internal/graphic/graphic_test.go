package graphic

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/vecgfx/internal/path"
)

func sampleItems() Items {
	return Items{
		Line{X1: 0, Y1: 0, X2: 10, Y2: 5, Stroke: StrokeStyle(2, Red)},
		Rect{X: 5, Y: 5, W: 10, H: -4, Fill: FillStyle(Blue)},
		Ellipse{X: -3, Y: 1, W: 4, H: 4, Stroke: StrokeStyle(1, RGBA{1, 2, 3, 255}), Fill: FillStyle(Lime)},
		Path{
			Segments: path.Segments{path.MoveTo{0, 0}, path.QuadTo{5, -6, 10, 0}, path.Close{}},
			Stroke:   StrokeStyle(4, Black),
			Cache:    Cached("g1", 2, 3),
		},
	}
}

func TestColorString(t *testing.T) {
	assert.Equal(t, "lightgray", LightGray.String())
	assert.Equal(t, "purple", Purple.String())
	assert.Equal(t, "rgba(10,20,30,1)", RGBA{10, 20, 30, 255}.String())
	assert.Equal(t, "rgba(0,0,0,0)", RGBA{}.String())
	assert.Equal(t, "rgba(1,2,3,0.5019608)", RGBA{1, 2, 3, 128}.String())
}

func TestColorEquality(t *testing.T) {
	var a, b Color = RGBA{1, 2, 3, 4}, RGBA{1, 2, 3, 4}
	assert.True(t, a == b)
	assert.False(t, Color(Red) == Color(Blue))
	assert.False(t, Color(Red) == Color(RGBA{255, 0, 0, 255}))
}

func TestParseColor(t *testing.T) {
	for _, n := range Palette {
		c, err := ParseColor(n.String())
		require.NoError(t, err)
		assert.Equal(t, Color(n), c)
	}

	for _, want := range []RGBA{{}, {255, 255, 255, 255}, {1, 2, 3, 128}, {9, 8, 7, 1}} {
		c, err := ParseColor(want.String())
		require.NoError(t, err)
		assert.Equal(t, Color(want), c)
	}

	c, err := ParseColor(" LightGray ")
	require.NoError(t, err)
	assert.Equal(t, Color(LightGray), c)

	for _, bad := range []string{"", "teal", "rgba(1,2,3)", "rgba(1,2,3,2)", "rgba(300,0,0,1)", "rgba(1,2,3,1"} {
		_, err := ParseColor(bad)
		assert.True(t, errors.Is(err, ErrUnknownColor), "input %q", bad)
	}
}

func TestBBoxStrokeInflation(t *testing.T) {
	r := Items{Rect{X: 0, Y: 0, W: 10, H: 10, Stroke: StrokeStyle(4, Red)}}.BBox()
	assert.Equal(t, Rectangle{-2, -2, 12, 12}, r)
}

func TestBBoxKinds(t *testing.T) {
	tests := []struct {
		name string
		item Item
		want Rectangle
	}{
		{"line unstroked", Line{X1: 4, Y1: 8, X2: -2, Y2: 1}, Rectangle{-2, 1, 4, 8}},
		{"negative rect", Rect{X: 5, Y: 5, W: -5, H: -10}, Rectangle{0, -5, 5, 5}},
		{"ellipse uses enclosing rect", Ellipse{X: 1, Y: 1, W: 2, H: 6, Stroke: StrokeStyle(2, Gray)}, Rectangle{0, 0, 4, 8}},
		{
			"path includes control points",
			Path{Segments: path.Segments{path.MoveTo{0, 0}, path.CubicTo{-5, 20, 15, 20, 10, 0}, path.Close{}}},
			Rectangle{-5, 0, 15, 20},
		},
		{"fill does not inflate", Rect{W: 1, H: 1, Fill: FillStyle(Red)}, Rectangle{0, 0, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Items{tt.item}.BBox())
		})
	}
}

func TestBBoxEmpty(t *testing.T) {
	r := Items{}.BBox()
	assert.True(t, r.IsEmpty())
	assert.Equal(t, EmptyRectangle(), r)
	assert.Zero(t, r.Width())
	assert.Zero(t, r.Height())

	// a single point is degenerate, not empty
	p := Items{Line{X1: 1, Y1: 1, X2: 1, Y2: 1}}.BBox()
	assert.False(t, p.IsEmpty())
	assert.True(t, p.Contains(1, 1))
}

func TestMovePreservesShape(t *testing.T) {
	in := sampleItems()
	out := in.Move(3, -4)
	require.Len(t, out, len(in))

	for i := range in {
		assert.IsType(t, in[i], out[i])
	}

	before, after := in.BBox(), out.BBox()
	assert.Equal(t, before.Width(), after.Width())
	assert.Equal(t, before.XMin+3, after.XMin)
	assert.Equal(t, before.YMin-4, after.YMin)

	// styles, sizes and cache hints survive
	assert.Equal(t, in[1].(Rect).W, out[1].(Rect).W)
	assert.Equal(t, in[3].(Path).Cache, out[3].(Path).Cache)
	assert.Equal(t, in[3].(Path).Stroke, out[3].(Path).Stroke)

	// input untouched
	assert.Equal(t, sampleItems(), in)
}

func TestMoveComposes(t *testing.T) {
	in := sampleItems()
	got := in.Move(1.5, 2).Move(-0.5, 3)
	want := in.Move(1, 5)
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("composed move mismatch (-want +got):\n%s", diff)
	}
}

func TestScaleIdentity(t *testing.T) {
	in := sampleItems()
	assert.Equal(t, in, in.Scale(1, 1, 1))
}

func TestScale(t *testing.T) {
	out := sampleItems().Scale(2, -3, 0.5)

	line := out[0].(Line)
	assert.Equal(t, Line{X1: 0, Y1: 0, X2: 20, Y2: -15, Stroke: StrokeStyle(1, Red)}, line)

	rect := out[1].(Rect)
	assert.Equal(t, Rect{X: 10, Y: -15, W: 20, H: 12, Fill: FillStyle(Blue)}, rect)

	p := out[3].(Path)
	assert.Equal(t, CacheHint{Tag: "g1", X: 4, Y: -9}, p.Cache)
	assert.Equal(t, float32(2), p.Stroke.Width)
	assert.Equal(t, Color(Black), p.Stroke.Color)
}

func TestScaleNegativeStrokeFactor(t *testing.T) {
	out := Items{Line{X2: 1, Stroke: StrokeStyle(2, Red)}, Rect{W: 1, H: 1}}.Scale(1, 1, -3)
	assert.Equal(t, float32(6), out[0].(Line).Stroke.Width)
	assert.Equal(t, NoStroke, out[1].(Rect).Stroke)
}

func TestOutline(t *testing.T) {
	assert.Equal(t,
		path.Segments{path.MoveTo{1, 2}, path.LineTo{3, 4}},
		Outline(Line{X1: 1, Y1: 2, X2: 3, Y2: 4}))

	assert.Equal(t,
		path.Segments{path.MoveTo{1, 1}, path.LineTo{4, 1}, path.LineTo{4, 3}, path.LineTo{1, 3}, path.Close{}},
		Outline(Rect{X: 1, Y: 1, W: 3, H: 2}))

	segs := path.Segments{path.MoveTo{0, 0}, path.LineTo{1, 1}}
	assert.Equal(t, segs, Outline(Path{Segments: segs}))
}

func TestOutlineEllipse(t *testing.T) {
	segs := Outline(Ellipse{X: 0, Y: 0, W: 4, H: 2})
	require.Len(t, segs, 6)
	assert.Equal(t, path.MoveTo{4, 1}, segs[0])
	assert.Equal(t, path.Close{}, segs[5])

	// arcs pass through the four extreme points
	ends := []path.CubicTo{segs[1].(path.CubicTo), segs[2].(path.CubicTo), segs[3].(path.CubicTo), segs[4].(path.CubicTo)}
	got := [][2]float32{}
	for _, c := range ends {
		got = append(got, [2]float32{c.X, c.Y})
	}
	want := [][2]float32{{2, 2}, {0, 1}, {2, 0}, {4, 1}}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("arc end points (-want +got):\n%s", diff)
	}

	// the outline stays inside the enclosing rect
	r := BBox(Path{Segments: segs})
	assert.InDelta(t, 0, r.XMin, 1e-6)
	assert.InDelta(t, 4, r.XMax, 1e-6)
	assert.InDelta(t, 0, r.YMin, 1e-6)
	assert.InDelta(t, 2, r.YMax, 1e-6)
}

func TestResolveCache(t *testing.T) {
	glyph := path.Segments{path.MoveTo{0, 0}, path.LineTo{4, 0}, path.LineTo{4, 4}, path.Close{}}
	items := Items{
		Path{Segments: glyph.Move(1, 2), Cache: Cached("g1", 1, 2)},
		Path{Fill: FillStyle(Blue), Cache: Cached("g1", 100, 0)},
		Path{Cache: Cached("ghost", 5, 5)},
	}

	got := items.ResolveCache()
	require.Len(t, got, 3)
	assert.Equal(t, glyph.Move(100, 0), got[1].(Path).Segments)
	assert.Equal(t, FillStyle(Blue), got[1].(Path).Fill)
	assert.Empty(t, got[2].(Path).Segments)
	assert.Empty(t, items[1].(Path).Segments, "input must not change")

	plain := Items{Rect{W: 1, H: 1}}
	assert.Equal(t, plain, plain.ResolveCache())
}

func TestBBoxIncludesPlacementOnlyPaths(t *testing.T) {
	glyph := path.Segments{path.MoveTo{0, 0}, path.LineTo{4, 0}, path.LineTo{4, 4}, path.Close{}}
	r := Items{
		Path{Segments: glyph, Cache: Cached("g1", 0, 0)},
		Path{Cache: Cached("g1", 100, 0)},
	}.BBox()
	assert.Equal(t, Rectangle{XMin: 0, YMin: 0, XMax: 104, YMax: 4}, r)
}
