package script

import (
	"fmt"

	"github.com/inamate/vecgfx/internal/graphic"
	"github.com/inamate/vecgfx/internal/path"
)

// pixels holds the 0..1 channel literals for the named palette.
var pixels = map[graphic.Named]string{
	graphic.Blue:      "{R = 0, G = 0, B = 1, A = 1}",
	graphic.Red:       "{R = 1, G = 0, B = 0, A = 1}",
	graphic.Orange:    "{R = 1, G = .65, B = 0, A = 1}",
	graphic.Purple:    "{R = .5, G = 0, B = .5, A = 1}",
	graphic.Lime:      "{R = 0, G = 1, B = 0, A = 1}",
	graphic.Gray:      "{R = .5, G = .5, B = .5, A = 1}",
	graphic.LightGray: "{R = .83, G = .83, B = .83, A = 1}",
	graphic.Green:     "{R = 0, G = .5, B = 0, A = 1}",
	graphic.Black:     "{R = 0, G = 0, B = 0, A = 1}",
	graphic.White:     "{R = 1, G = 1, B = 1, A = 1}",
}

// fallback is used for colors outside the palette table.
const fallback = "{R = .5, G = .5, B = .5, A = 1}"

// Pixel returns the Lua table literal for c with channels in 0..1.
func Pixel(c graphic.Color) string {
	switch v := c.(type) {
	case graphic.Named:
		if lit, ok := pixels[v]; ok {
			return lit
		}
	case graphic.RGBA:
		return fmt.Sprintf("{R = %s, G = %s, B = %s, A = %s}",
			channel(v.R), channel(v.G), channel(v.B), channel(v.A))
	}
	return fallback
}

func channel(v uint8) string {
	return path.FormatNumber(float32(v) / 255)
}
