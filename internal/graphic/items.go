package graphic

import "github.com/inamate/vecgfx/internal/path"

// Item is one drawable primitive: Line, Rect, Ellipse or Path.
type Item interface {
	item()
}

// Line is a straight stroke between two points. Lines have no fill.
type Line struct {
	X1, Y1 float32
	X2, Y2 float32
	Stroke Stroke
}

// Rect is an axis-aligned rectangle with origin (X, Y).
// W and H may be negative; emitters normalize them.
type Rect struct {
	X, Y   float32
	W, H   float32
	Stroke Stroke
	Fill   Fill
}

// Ellipse is the ellipse inscribed in the rectangle (X, Y, W, H).
type Ellipse struct {
	X, Y   float32
	W, H   float32
	Stroke Stroke
	Fill   Fill
}

// Path is an arbitrary outline.
//
// Segments hold the item's real geometry. When Cache names a tag, the first
// item carrying that tag defines the shared geometry and every item with the
// tag (the first included) is drawn as that geometry offset by (Cache.X, Cache.Y).
// Later items may leave Segments empty and supply only the placement.
type Path struct {
	Segments path.Segments
	Stroke   Stroke
	Fill     Fill
	Cache    CacheHint
}

// CacheHint marks a path as deduplicable. The zero value is NoCache.
type CacheHint struct {
	Tag  string
	X, Y float32
}

// NoCache disables deduplication for a path.
var NoCache = CacheHint{}

// Cached returns a hint placing the shared geometry for tag at offset (x, y).
func Cached(tag string, x, y float32) CacheHint {
	return CacheHint{Tag: tag, X: x, Y: y}
}

// IsSet reports whether the hint names a cache tag.
func (c CacheHint) IsSet() bool {
	return c.Tag != ""
}

func (Line) item()    {}
func (Rect) item()    {}
func (Ellipse) item() {}
func (Path) item()    {}

// Items is an ordered drawing. Order is render order.
type Items []Item

// ResolveCache fills in cached paths that carry only a placement. Such a path
// takes the geometry of the first earlier path with the same tag and real
// segments, shifted to its own placement. Paths whose tag has no earlier
// geometry are returned as they are. The input is not modified.
func (items Items) ResolveCache() Items {
	var canonical map[string]path.Segments
	var out Items

	for i, it := range items {
		p, ok := it.(Path)
		if !ok || !p.Cache.IsSet() {
			continue
		}
		if len(p.Segments) > 0 {
			if _, seen := canonical[p.Cache.Tag]; !seen {
				if canonical == nil {
					canonical = make(map[string]path.Segments)
				}
				canonical[p.Cache.Tag] = p.Segments.Move(-p.Cache.X, -p.Cache.Y)
			}
			continue
		}
		shared, found := canonical[p.Cache.Tag]
		if !found {
			continue
		}
		if out == nil {
			out = make(Items, len(items))
			copy(out, items)
		}
		p.Segments = shared.Move(p.Cache.X, p.Cache.Y)
		out[i] = p
	}

	if out == nil {
		return items
	}
	return out
}
