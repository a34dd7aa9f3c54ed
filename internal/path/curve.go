package path

// QuadraticToCubic returns the control points of the cubic bezier that traces
// exactly the same curve as the quadratic from (prevX, prevY) through control
// point (cx, cy) to (x, y).
//
//	c1 = prev + 2/3 (ctrl - prev)
//	c2 = end  + 2/3 (ctrl - end)
func QuadraticToCubic(prevX, prevY, cx, cy, x, y float32) (c1x, c1y, c2x, c2y float32) {
	c1x = prevX + 2.0/3.0*(cx-prevX)
	c1y = prevY + 2.0/3.0*(cy-prevY)
	c2x = x + 2.0/3.0*(cx-x)
	c2y = y + 2.0/3.0*(cy-y)
	return c1x, c1y, c2x, c2y
}

// Cubic returns a copy of the path where every QuadTo is replaced by the
// equivalent CubicTo. The pen position is tracked across segments; Close
// returns it to the start of the current subpath.
func (s Segments) Cubic() Segments {
	out := make(Segments, len(s))
	var curX, curY, startX, startY float32
	for i, seg := range s {
		switch v := seg.(type) {
		case MoveTo:
			curX, curY = v.X, v.Y
			startX, startY = v.X, v.Y
			out[i] = v
		case LineTo:
			curX, curY = v.X, v.Y
			out[i] = v
		case QuadTo:
			c1x, c1y, c2x, c2y := QuadraticToCubic(curX, curY, v.CX, v.CY, v.X, v.Y)
			out[i] = CubicTo{c1x, c1y, c2x, c2y, v.X, v.Y}
			curX, curY = v.X, v.Y
		case CubicTo:
			curX, curY = v.X, v.Y
			out[i] = v
		case Close:
			curX, curY = startX, startY
			out[i] = v
		}
	}
	return out
}
