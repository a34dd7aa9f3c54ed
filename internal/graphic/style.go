package graphic

// Stroke describes how an outline is drawn. The zero value is NoStroke.
type Stroke struct {
	Width float32
	Color Color
}

// Fill describes how an interior is painted. The zero value is NoFill.
type Fill struct {
	Color Color
}

var (
	// NoStroke draws no outline.
	NoStroke = Stroke{}
	// NoFill leaves the interior transparent.
	NoFill = Fill{}
)

// StrokeStyle returns a stroke of the given width and color.
func StrokeStyle(width float32, c Color) Stroke {
	return Stroke{Width: width, Color: c}
}

// FillStyle returns a solid fill.
func FillStyle(c Color) Fill {
	return Fill{Color: c}
}

// IsSet reports whether the stroke draws anything.
func (s Stroke) IsSet() bool {
	return s.Color != nil
}

// halfWidth is how far a stroke extends past the geometry it outlines.
func (s Stroke) halfWidth() float32 {
	if !s.IsSet() {
		return 0
	}
	return s.Width / 2
}

// IsSet reports whether the fill paints anything.
func (f Fill) IsSet() bool {
	return f.Color != nil
}
