// Package emit defines the contract shared by every output format: a Builder
// turns a drawing into text after normalizing it to the origin.
package emit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chewxy/math32"

	"github.com/inamate/vecgfx/internal/graphic"
	"github.com/inamate/vecgfx/internal/path"
)

// ErrEmissionFailure is returned when a builder cannot produce output.
var ErrEmissionFailure = errors.New("emission failure")

// ErrUnknownUnit is returned by ParseSizeUnit.
var ErrUnknownUnit = errors.New("unknown size unit")

// Builder renders a drawing to one output format.
// Implementations must not retain items or share state between calls.
type Builder interface {
	Build(items graphic.Items, opts *Options) (string, error)
}

// BuilderFunc adapts a function to the Builder interface.
type BuilderFunc func(items graphic.Items, opts *Options) (string, error)

func (f BuilderFunc) Build(items graphic.Items, opts *Options) (string, error) {
	return f(items, opts)
}

// SizeUnit is the unit suffix used for document width and height.
type SizeUnit int

const (
	Pixel SizeUnit = iota
	Rem
)

// Suffix returns the textual unit: "px" or "rem".
func (u SizeUnit) Suffix() string {
	if u == Rem {
		return "rem"
	}
	return "px"
}

func (u SizeUnit) String() string {
	return u.Suffix()
}

// ParseSizeUnit accepts "px" (or "pixel") and "rem". Empty means Pixel.
func ParseSizeUnit(s string) (SizeUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "px", "pixel":
		return Pixel, nil
	case "rem":
		return Rem, nil
	}
	return Pixel, fmt.Errorf("%w: %q", ErrUnknownUnit, s)
}

func (u SizeUnit) MarshalText() ([]byte, error) {
	return []byte(u.Suffix()), nil
}

func (u *SizeUnit) UnmarshalText(text []byte) error {
	v, err := ParseSizeUnit(string(text))
	if err != nil {
		return err
	}
	*u = v
	return nil
}

// Options control document sizing. Scaling applies to the reported width and
// height only, never to geometry.
type Options struct {
	Unit    SizeUnit `json:"unit"`
	Scaling float32  `json:"scaling"`
}

// DefaultOptions returns pixel units at scale 1.
func DefaultOptions() Options {
	return Options{Unit: Pixel, Scaling: 1}
}

// Resolve returns the effective options: nil means DefaultOptions and a
// zero Scaling means 1.
func (o *Options) Resolve() Options {
	if o == nil {
		return DefaultOptions()
	}
	out := *o
	if out.Scaling == 0 {
		out.Scaling = 1
	}
	return out
}

// Normalized is a drawing translated so its bounding box starts at the origin.
type Normalized struct {
	Items  graphic.Items
	Width  float32
	Height float32
}

// Normalize resolves placement-only cached paths, then translates items by
// (-XMin, -YMin) unless the box already starts at the origin. An empty drawing
// normalizes to a 0x0 extent without moving.
func Normalize(items graphic.Items) Normalized {
	items = items.ResolveCache()
	bbox := items.BBox()
	if bbox.IsEmpty() {
		return Normalized{Items: items}
	}

	out := items
	if bbox.XMin != 0 || bbox.YMin != 0 {
		out = items.Move(-bbox.XMin, -bbox.YMin)
	}
	return Normalized{
		Items:  out,
		Width:  bbox.XMax - bbox.XMin,
		Height: bbox.YMax - bbox.YMin,
	}
}

// Error identifies the item that could not be emitted.
type Error struct {
	Format string
	Index  int
	Tag    string
	Reason string
}

func (e *Error) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("%s: item %d (tag %q): %s", e.Format, e.Index, e.Tag, e.Reason)
	}
	return fmt.Sprintf("%s: item %d: %s", e.Format, e.Index, e.Reason)
}

func (e *Error) Unwrap() error {
	return ErrEmissionFailure
}

// Validate rejects items no format can represent: non-finite coordinates,
// negative stroke widths and cached paths without geometry whose tag has no
// earlier definition.
func Validate(format string, items graphic.Items) error {
	defined := make(map[string]bool)
	for i, it := range items {
		if reason := invalid(it); reason != "" {
			return &Error{Format: format, Index: i, Reason: reason}
		}
		p, ok := it.(graphic.Path)
		if !ok || !p.Cache.IsSet() {
			continue
		}
		if len(p.Segments) > 0 {
			defined[p.Cache.Tag] = true
		} else if !defined[p.Cache.Tag] {
			return &Error{Format: format, Index: i, Tag: p.Cache.Tag, Reason: "cache tag has no definition"}
		}
	}
	return nil
}

func invalid(it graphic.Item) string {
	var coords []float32
	var stroke graphic.Stroke
	var segments path.Segments

	switch v := it.(type) {
	case graphic.Line:
		coords = []float32{v.X1, v.Y1, v.X2, v.Y2}
		stroke = v.Stroke
	case graphic.Rect:
		coords = []float32{v.X, v.Y, v.W, v.H}
		stroke = v.Stroke
	case graphic.Ellipse:
		coords = []float32{v.X, v.Y, v.W, v.H}
		stroke = v.Stroke
	case graphic.Path:
		coords = []float32{v.Cache.X, v.Cache.Y}
		stroke = v.Stroke
		segments = v.Segments
	case nil:
		return "nil item"
	default:
		return fmt.Sprintf("unsupported item %T", it)
	}

	for x, y := range segments.Points() {
		coords = append(coords, x, y)
	}
	for _, c := range coords {
		if math32.IsNaN(c) || math32.IsInf(c, 0) {
			return "non-finite coordinate"
		}
	}
	if stroke.IsSet() && (stroke.Width < 0 || math32.IsNaN(stroke.Width) || math32.IsInf(stroke.Width, 0)) {
		return "invalid stroke width"
	}
	return ""
}
