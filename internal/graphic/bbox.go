package graphic

import (
	"github.com/chewxy/math32"
)

// Rectangle is an axis-aligned bounding box given by its extremes.
type Rectangle struct {
	XMin, YMin float32
	XMax, YMax float32
}

// EmptyRectangle is the identity for Union: (+Inf, +Inf, -Inf, -Inf).
func EmptyRectangle() Rectangle {
	return Rectangle{
		XMin: math32.Inf(1),
		YMin: math32.Inf(1),
		XMax: math32.Inf(-1),
		YMax: math32.Inf(-1),
	}
}

// IsEmpty reports whether the rectangle contains no point at all.
// A degenerate box (zero width or height) is not empty.
func (r Rectangle) IsEmpty() bool {
	return r.XMin > r.XMax || r.YMin > r.YMax
}

// Width returns XMax - XMin, or 0 for an empty rectangle.
func (r Rectangle) Width() float32 {
	if r.IsEmpty() {
		return 0
	}
	return r.XMax - r.XMin
}

// Height returns YMax - YMin, or 0 for an empty rectangle.
func (r Rectangle) Height() float32 {
	if r.IsEmpty() {
		return 0
	}
	return r.YMax - r.YMin
}

// Contains checks if a point is inside the rectangle, edges included.
func (r Rectangle) Contains(x, y float32) bool {
	return x >= r.XMin && x <= r.XMax && y >= r.YMin && y <= r.YMax
}

// Union returns the smallest rectangle containing both rectangles.
func (r Rectangle) Union(other Rectangle) Rectangle {
	return Rectangle{
		XMin: math32.Min(r.XMin, other.XMin),
		YMin: math32.Min(r.YMin, other.YMin),
		XMax: math32.Max(r.XMax, other.XMax),
		YMax: math32.Max(r.YMax, other.YMax),
	}
}

// include grows r to cover the square of half-size pad around (x, y).
func (r *Rectangle) include(x, y, pad float32) {
	r.XMin = math32.Min(r.XMin, x-pad)
	r.YMin = math32.Min(r.YMin, y-pad)
	r.XMax = math32.Max(r.XMax, x+pad)
	r.YMax = math32.Max(r.YMax, y+pad)
}

// BBox returns the conservative bounding box of a single item, inflated by
// half its stroke width. Paths include their control points; ellipses use
// their enclosing rectangle.
func BBox(it Item) Rectangle {
	r := EmptyRectangle()
	switch v := it.(type) {
	case Line:
		pad := v.Stroke.halfWidth()
		r.include(v.X1, v.Y1, pad)
		r.include(v.X2, v.Y2, pad)
	case Rect:
		pad := v.Stroke.halfWidth()
		r.include(v.X, v.Y, pad)
		r.include(v.X+v.W, v.Y+v.H, pad)
	case Ellipse:
		pad := v.Stroke.halfWidth()
		r.include(v.X, v.Y, pad)
		r.include(v.X+v.W, v.Y+v.H, pad)
	case Path:
		pad := v.Stroke.halfWidth()
		for x, y := range v.Segments.Points() {
			r.include(x, y, pad)
		}
	}
	return r
}

// BBox returns the union of every item's bounding box, with placement-only
// cached paths resolved first. An empty drawing returns EmptyRectangle.
func (items Items) BBox() Rectangle {
	r := EmptyRectangle()
	for _, it := range items.ResolveCache() {
		r = r.Union(BBox(it))
	}
	return r
}
