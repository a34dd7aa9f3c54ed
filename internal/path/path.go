package path

import (
	"iter"
	"strconv"
	"strings"
)

// Segment is a single path-drawing instruction.
// The set of segment kinds is closed: MoveTo, LineTo, QuadTo, CubicTo and Close.
type Segment interface {
	segment()
}

// MoveTo starts a new subpath at (X, Y).
type MoveTo struct {
	X, Y float32
}

// LineTo draws a straight line to (X, Y).
type LineTo struct {
	X, Y float32
}

// QuadTo draws a quadratic bezier through control point (CX, CY) to (X, Y).
type QuadTo struct {
	CX, CY float32
	X, Y   float32
}

// CubicTo draws a cubic bezier with control points C1 and C2 ending at (X, Y).
type CubicTo struct {
	C1X, C1Y float32
	C2X, C2Y float32
	X, Y     float32
}

// Close closes the current subpath.
type Close struct{}

func (MoveTo) segment()  {}
func (LineTo) segment()  {}
func (QuadTo) segment()  {}
func (CubicTo) segment() {}
func (Close) segment()   {}

// Segments is an ordered path. Order is significant and every transform keeps it.
type Segments []Segment

// Move returns a copy of the path translated by (dx, dy).
func (s Segments) Move(dx, dy float32) Segments {
	out := make(Segments, len(s))
	for i, seg := range s {
		switch v := seg.(type) {
		case MoveTo:
			out[i] = MoveTo{v.X + dx, v.Y + dy}
		case LineTo:
			out[i] = LineTo{v.X + dx, v.Y + dy}
		case QuadTo:
			out[i] = QuadTo{v.CX + dx, v.CY + dy, v.X + dx, v.Y + dy}
		case CubicTo:
			out[i] = CubicTo{v.C1X + dx, v.C1Y + dy, v.C2X + dx, v.C2Y + dy, v.X + dx, v.Y + dy}
		default:
			out[i] = seg
		}
	}
	return out
}

// Scale returns a copy of the path with every coordinate multiplied by (sx, sy).
// Negative factors mirror the path.
func (s Segments) Scale(sx, sy float32) Segments {
	out := make(Segments, len(s))
	for i, seg := range s {
		switch v := seg.(type) {
		case MoveTo:
			out[i] = MoveTo{v.X * sx, v.Y * sy}
		case LineTo:
			out[i] = LineTo{v.X * sx, v.Y * sy}
		case QuadTo:
			out[i] = QuadTo{v.CX * sx, v.CY * sy, v.X * sx, v.Y * sy}
		case CubicTo:
			out[i] = CubicTo{v.C1X * sx, v.C1Y * sy, v.C2X * sx, v.C2Y * sy, v.X * sx, v.Y * sy}
		default:
			out[i] = seg
		}
	}
	return out
}

// Clone returns an independent copy of the path.
func (s Segments) Clone() Segments {
	if s == nil {
		return nil
	}
	out := make(Segments, len(s))
	copy(out, s)
	return out
}

// Points yields every coordinate pair in the path, control points included.
// Close segments yield nothing.
func (s Segments) Points() iter.Seq2[float32, float32] {
	return func(yield func(float32, float32) bool) {
		for _, seg := range s {
			var pts []float32
			switch v := seg.(type) {
			case MoveTo:
				pts = []float32{v.X, v.Y}
			case LineTo:
				pts = []float32{v.X, v.Y}
			case QuadTo:
				pts = []float32{v.CX, v.CY, v.X, v.Y}
			case CubicTo:
				pts = []float32{v.C1X, v.C1Y, v.C2X, v.C2Y, v.X, v.Y}
			}
			for i := 0; i+1 < len(pts); i += 2 {
				if !yield(pts[i], pts[i+1]) {
					return
				}
			}
		}
	}
}

// Syntax renders the path as SVG path data, e.g. "M 0 0 L 10 0 Z ".
// Each segment is a letter followed by its numbers, all space separated,
// with a trailing space.
func (s Segments) Syntax() string {
	var b strings.Builder
	for _, seg := range s {
		switch v := seg.(type) {
		case MoveTo:
			writeCommand(&b, 'M', v.X, v.Y)
		case LineTo:
			writeCommand(&b, 'L', v.X, v.Y)
		case QuadTo:
			writeCommand(&b, 'Q', v.CX, v.CY, v.X, v.Y)
		case CubicTo:
			writeCommand(&b, 'C', v.C1X, v.C1Y, v.C2X, v.C2Y, v.X, v.Y)
		case Close:
			writeCommand(&b, 'Z')
		}
	}
	return b.String()
}

// String implements fmt.Stringer using the SVG path syntax.
func (s Segments) String() string {
	return s.Syntax()
}

func writeCommand(b *strings.Builder, letter byte, nums ...float32) {
	b.WriteByte(letter)
	b.WriteByte(' ')
	for _, n := range nums {
		b.WriteString(FormatNumber(n))
		b.WriteByte(' ')
	}
}

// FormatNumber formats v with the fewest digits that round-trip as a float32.
func FormatNumber(v float32) string {
	if v == 0 {
		// avoids "-0"
		return "0"
	}
	return strconv.FormatFloat(float64(v), 'f', -1, 32)
}
