package graphic

import "github.com/inamate/vecgfx/internal/path"

// kappa places cubic control points so four arcs approximate a quarter ellipse each.
// k = 4 * (sqrt(2) - 1) / 3
const kappa = 0.5522847498

// Outline returns the geometry of any item as path segments. Rectangles are
// traced clockwise from (X, Y) and closed; ellipses are four cubic arcs
// starting at the rightmost point; lines are a single open segment.
func Outline(it Item) path.Segments {
	switch v := it.(type) {
	case Line:
		return path.Segments{path.MoveTo{v.X1, v.Y1}, path.LineTo{v.X2, v.Y2}}
	case Rect:
		return rectOutline(v.X, v.Y, v.W, v.H)
	case Ellipse:
		return ellipseOutline(v.X, v.Y, v.W, v.H)
	case Path:
		return v.Segments
	}
	return nil
}

func rectOutline(x, y, w, h float32) path.Segments {
	return path.Segments{
		path.MoveTo{x, y},
		path.LineTo{x + w, y},
		path.LineTo{x + w, y + h},
		path.LineTo{x, y + h},
		path.Close{},
	}
}

func ellipseOutline(x, y, w, h float32) path.Segments {
	rx, ry := w/2, h/2
	cx, cy := x+rx, y+ry
	kx, ky := rx*kappa, ry*kappa

	return path.Segments{
		path.MoveTo{cx + rx, cy},
		path.CubicTo{cx + rx, cy + ky, cx + kx, cy + ry, cx, cy + ry},
		path.CubicTo{cx - kx, cy + ry, cx - rx, cy + ky, cx - rx, cy},
		path.CubicTo{cx - rx, cy - ky, cx - kx, cy - ry, cx, cy - ry},
		path.CubicTo{cx + kx, cy - ry, cx + rx, cy - ky, cx + rx, cy},
		path.Close{},
	}
}
