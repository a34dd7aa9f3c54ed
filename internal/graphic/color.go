package graphic

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownColor is returned by ParseColor for text that is neither a palette
// name nor an rgba(...) literal.
var ErrUnknownColor = errors.New("unknown color")

// Color is either a Named palette entry or an explicit RGBA value.
// Colors are comparable with ==.
type Color interface {
	fmt.Stringer
	color()
}

// Named is one of the fixed palette colors.
type Named uint8

const (
	Blue Named = iota
	Red
	Orange
	Purple
	Lime
	Gray
	LightGray
	Green
	Black
	White
)

var namedText = [...]string{
	Blue:      "blue",
	Red:       "red",
	Orange:    "orange",
	Purple:    "purple",
	Lime:      "lime",
	Gray:      "gray",
	LightGray: "lightgray",
	Green:     "green",
	Black:     "black",
	White:     "white",
}

// Palette lists every named color in declaration order.
var Palette = []Named{Blue, Red, Orange, Purple, Lime, Gray, LightGray, Green, Black, White}

func (Named) color() {}

// String returns the lowercase SVG color keyword.
func (n Named) String() string {
	if int(n) < len(namedText) {
		return namedText[n]
	}
	return "Named(" + strconv.Itoa(int(n)) + ")"
}

// RGBA is an explicit 8-bit color. A is 0 for transparent, 255 for opaque.
type RGBA struct {
	R, G, B, A uint8
}

func (RGBA) color() {}

// String returns the CSS form rgba(r,g,b,a) with alpha scaled to 0..1.
func (c RGBA) String() string {
	alpha := strconv.FormatFloat(float64(c.A)/255, 'f', -1, 32)
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", c.R, c.G, c.B, alpha)
}

// ParseColor parses a palette name (case-insensitive) or an rgba(r,g,b,a)
// literal with alpha in 0..1, the form RGBA.String produces.
func ParseColor(s string) (Color, error) {
	text := strings.ToLower(strings.TrimSpace(s))
	for i, name := range namedText {
		if name == text {
			return Named(i), nil
		}
	}

	inner, ok := strings.CutPrefix(text, "rgba(")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColor, s)
	}
	inner, ok = strings.CutSuffix(inner, ")")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColor, s)
	}

	parts := strings.Split(inner, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColor, s)
	}

	var channels [3]uint8
	for i := range channels {
		v, err := strconv.ParseUint(strings.TrimSpace(parts[i]), 10, 8)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColor, s)
		}
		channels[i] = uint8(v)
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
	if err != nil || f < 0 || f > 1 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColor, s)
	}
	alpha := uint8(f*255 + 0.5)

	return RGBA{channels[0], channels[1], channels[2], alpha}, nil
}
