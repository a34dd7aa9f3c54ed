// Package glyph turns text into path segments using TrueType/OpenType outlines.
package glyph

import (
	"encoding/hex"
	"fmt"
	"os"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/inamate/vecgfx/internal/graphic"
	"github.com/inamate/vecgfx/internal/path"
)

// Face is a font at a fixed pixel size. A Face reuses an internal buffer and
// must not be used from several goroutines at once.
type Face struct {
	font *sfnt.Font
	ppem fixed.Int26_6
	key  string
	buf  sfnt.Buffer
}

// NewFace parses font data and sizes it to size pixels per em.
func NewFace(data []byte, size float32) (*Face, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid font size %v", size)
	}

	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}

	ppem := fixed.Int26_6(size * 64)
	sum := blake2b.Sum256(append([]byte(fmt.Sprintf("%d:", ppem)), data...))

	return &Face{
		font: f,
		ppem: ppem,
		key:  hex.EncodeToString(sum[:4]),
	}, nil
}

// LoadFace reads a font file from disk.
func LoadFace(fontPath string, size float32) (*Face, error) {
	data, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	return NewFace(data, size)
}

// DefaultFace returns the Go Regular font at size.
func DefaultFace(size float32) (*Face, error) {
	return NewFace(goregular.TTF, size)
}

// NumGlyphs reports how many glyphs the font defines.
func (f *Face) NumGlyphs() int {
	return f.font.NumGlyphs()
}

// Glyph returns the outline of r with its origin on the baseline at (0, 0)
// and y growing downwards, plus the horizontal advance. Each contour is closed.
func (f *Face) Glyph(r rune) (path.Segments, float32, error) {
	gid, err := f.font.GlyphIndex(&f.buf, r)
	if err != nil {
		return nil, 0, fmt.Errorf("glyph index %q: %w", r, err)
	}
	return f.outline(gid)
}

func (f *Face) outline(gid sfnt.GlyphIndex) (path.Segments, float32, error) {
	advance, err := f.font.GlyphAdvance(&f.buf, gid, f.ppem, font.HintingNone)
	if err != nil {
		return nil, 0, fmt.Errorf("glyph advance %d: %w", gid, err)
	}

	segs, err := f.font.LoadGlyph(&f.buf, gid, f.ppem, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("load glyph %d: %w", gid, err)
	}

	out := make(path.Segments, 0, len(segs)+4)
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			if len(out) > 0 {
				out = append(out, path.Close{})
			}
			x, y := point(seg.Args[0])
			out = append(out, path.MoveTo{x, y})
		case sfnt.SegmentOpLineTo:
			x, y := point(seg.Args[0])
			out = append(out, path.LineTo{x, y})
		case sfnt.SegmentOpQuadTo:
			cx, cy := point(seg.Args[0])
			x, y := point(seg.Args[1])
			out = append(out, path.QuadTo{cx, cy, x, y})
		case sfnt.SegmentOpCubeTo:
			c1x, c1y := point(seg.Args[0])
			c2x, c2y := point(seg.Args[1])
			x, y := point(seg.Args[2])
			out = append(out, path.CubicTo{c1x, c1y, c2x, c2y, x, y})
		}
	}
	if len(out) > 0 {
		out = append(out, path.Close{})
	}
	return out, fixedToFloat(advance), nil
}

// Placed is one glyph positioned on the page.
type Placed struct {
	Rune     rune
	Index    sfnt.GlyphIndex
	X, Y     float32
	Segments path.Segments // outline at the origin
}

// Layout positions each rune of text with its baseline starting at (x, y).
// Kerning is applied when the font has it; '\n' starts a new line.
func (f *Face) Layout(text string, x, y float32) ([]Placed, error) {
	metrics, err := f.font.Metrics(&f.buf, f.ppem, font.HintingNone)
	if err != nil {
		return nil, fmt.Errorf("font metrics: %w", err)
	}
	lineHeight := fixedToFloat(metrics.Height)

	var placed []Placed
	penX, penY := x, y
	var prev sfnt.GlyphIndex
	hasPrev := false

	for _, r := range text {
		if r == '\n' {
			penX = x
			penY += lineHeight
			hasPrev = false
			continue
		}

		gid, err := f.font.GlyphIndex(&f.buf, r)
		if err != nil {
			return nil, fmt.Errorf("glyph index %q: %w", r, err)
		}

		if hasPrev {
			// fonts without a kern table report an error; no kerning then
			if k, err := f.font.Kern(&f.buf, prev, gid, f.ppem, font.HintingNone); err == nil {
				penX += fixedToFloat(k)
			}
		}

		segs, advance, err := f.outline(gid)
		if err != nil {
			return nil, err
		}

		placed = append(placed, Placed{Rune: r, Index: gid, X: penX, Y: penY, Segments: segs})
		penX += advance
		prev, hasPrev = gid, true
	}
	return placed, nil
}

// Text returns the outline of a whole string as one path.
func (f *Face) Text(text string, x, y float32) (path.Segments, error) {
	placed, err := f.Layout(text, x, y)
	if err != nil {
		return nil, err
	}

	var out path.Segments
	for _, p := range placed {
		out = append(out, p.Segments.Move(p.X, p.Y)...)
	}
	return out, nil
}

// Items returns one Path per visible glyph. Every occurrence of the same glyph
// shares a cache tag, with the glyph origin as canonical geometry and the pen
// position as placement.
func (f *Face) Items(text string, x, y float32, stroke graphic.Stroke, fill graphic.Fill) (graphic.Items, error) {
	placed, err := f.Layout(text, x, y)
	if err != nil {
		return nil, err
	}

	items := make(graphic.Items, 0, len(placed))
	for _, p := range placed {
		if len(p.Segments) == 0 {
			continue
		}
		items = append(items, graphic.Path{
			Segments: p.Segments.Move(p.X, p.Y),
			Stroke:   stroke,
			Fill:     fill,
			Cache:    graphic.Cached(f.Tag(p.Index), p.X, p.Y),
		})
	}
	return items, nil
}

// Tag is the cache tag for a glyph of this face. It is stable for the same
// font data and size.
func (f *Face) Tag(gid sfnt.GlyphIndex) string {
	return fmt.Sprintf("glyph-%s-%d", f.key, gid)
}

func point(p fixed.Point26_6) (float32, float32) {
	return fixedToFloat(p.X), fixedToFloat(p.Y)
}

func fixedToFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}
