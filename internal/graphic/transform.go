package graphic

import "github.com/chewxy/math32"

// Move returns a copy of the item translated by (dx, dy).
// Sizes, styles and cache placement are unchanged.
func Move(it Item, dx, dy float32) Item {
	switch v := it.(type) {
	case Line:
		v.X1 += dx
		v.Y1 += dy
		v.X2 += dx
		v.Y2 += dy
		return v
	case Rect:
		v.X += dx
		v.Y += dy
		return v
	case Ellipse:
		v.X += dx
		v.Y += dy
		return v
	case Path:
		v.Segments = v.Segments.Move(dx, dy)
		return v
	}
	return it
}

// Scale returns a copy of the item with positions and sizes multiplied by
// (sx, sy) and stroke width multiplied by |strokeScale|. Cache placement is
// scaled with the geometry.
func Scale(it Item, sx, sy, strokeScale float32) Item {
	switch v := it.(type) {
	case Line:
		v.X1 *= sx
		v.Y1 *= sy
		v.X2 *= sx
		v.Y2 *= sy
		v.Stroke = scaleStroke(v.Stroke, strokeScale)
		return v
	case Rect:
		v.X *= sx
		v.Y *= sy
		v.W *= sx
		v.H *= sy
		v.Stroke = scaleStroke(v.Stroke, strokeScale)
		return v
	case Ellipse:
		v.X *= sx
		v.Y *= sy
		v.W *= sx
		v.H *= sy
		v.Stroke = scaleStroke(v.Stroke, strokeScale)
		return v
	case Path:
		v.Segments = v.Segments.Scale(sx, sy)
		v.Stroke = scaleStroke(v.Stroke, strokeScale)
		v.Cache.X *= sx
		v.Cache.Y *= sy
		return v
	}
	return it
}

func scaleStroke(s Stroke, factor float32) Stroke {
	if !s.IsSet() {
		return s
	}
	s.Width *= math32.Abs(factor)
	return s
}

// Move returns a new drawing with every item translated by (dx, dy).
func (items Items) Move(dx, dy float32) Items {
	out := make(Items, len(items))
	for i, it := range items {
		out[i] = Move(it, dx, dy)
	}
	return out
}

// Scale returns a new drawing with every item scaled. See Scale.
func (items Items) Scale(sx, sy, strokeScale float32) Items {
	out := make(Items, len(items))
	for i, it := range items {
		out[i] = Scale(it, sx, sy, strokeScale)
	}
	return out
}
