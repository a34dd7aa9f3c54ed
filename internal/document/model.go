package document

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/inamate/vecgfx/internal/emit"
	"github.com/inamate/vecgfx/internal/graphic"
	"github.com/inamate/vecgfx/internal/path"
)

type Drawing struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Version   int           `json:"version"`
	CreatedAt string        `json:"createdAt"`
	UpdatedAt string        `json:"updatedAt"`
	Options   *emit.Options `json:"options,omitempty"`
	Items     []ItemNode    `json:"items"`
}

type ItemType string

const (
	ItemTypeLine    ItemType = "line"
	ItemTypeRect    ItemType = "rect"
	ItemTypeEllipse ItemType = "ellipse"
	ItemTypePath    ItemType = "path"
)

type ItemNode struct {
	Type ItemType `json:"type"`

	// Line
	X1 float32 `json:"x1,omitempty"`
	Y1 float32 `json:"y1,omitempty"`
	X2 float32 `json:"x2,omitempty"`
	Y2 float32 `json:"y2,omitempty"`

	// Rect and Ellipse
	X      float32 `json:"x,omitempty"`
	Y      float32 `json:"y,omitempty"`
	Width  float32 `json:"width,omitempty"`
	Height float32 `json:"height,omitempty"`

	// Path
	Path  path.Segments `json:"path,omitempty"`
	Cache *CacheNode    `json:"cache,omitempty"`

	Stroke *StrokeNode `json:"stroke,omitempty"`
	Fill   *FillNode   `json:"fill,omitempty"`
}

type StrokeNode struct {
	Width float32    `json:"width"`
	Color ColorValue `json:"color"`
}

type FillNode struct {
	Color ColorValue `json:"color"`
}

type CacheNode struct {
	Tag string  `json:"tag"`
	X   float32 `json:"x"`
	Y   float32 `json:"y"`
}

// ColorValue carries a graphic.Color through JSON. It accepts a palette name,
// an "rgba(r,g,b,a)" string or an object {"r":0,"g":0,"b":0,"a":255}.
// It always encodes as the canonical string.
type ColorValue struct {
	graphic.Color
}

func (c ColorValue) MarshalJSON() ([]byte, error) {
	if c.Color == nil {
		return []byte("null"), nil
	}
	return json.Marshal(c.Color.String())
}

func (c *ColorValue) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		c.Color = nil
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		parsed, err := graphic.ParseColor(text)
		if err != nil {
			return err
		}
		c.Color = parsed
		return nil
	}

	var obj struct {
		R, G, B uint8
		A       *uint8
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("%w: color must be a string or {r,g,b,a}", graphic.ErrUnknownColor)
	}
	rgba := graphic.RGBA{R: obj.R, G: obj.G, B: obj.B, A: 255}
	if obj.A != nil {
		rgba.A = *obj.A
	}
	c.Color = rgba
	return nil
}

// ItemError reports which item of a drawing failed to decode. It matches
// path.ErrMalformedInterchange with errors.Is.
type ItemError struct {
	Index int
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

func (e *ItemError) Unwrap() []error {
	return []error{path.ErrMalformedInterchange, e.Err}
}

// Parse decodes a drawing from JSON. Errors inside an item are reported as
// *ItemError with the item's index.
func Parse(data []byte) (*Drawing, error) {
	var shadow struct {
		Drawing
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(data, &shadow); err != nil {
		return nil, fmt.Errorf("%w: %v", path.ErrMalformedInterchange, err)
	}

	d := shadow.Drawing
	d.Items = make([]ItemNode, len(shadow.Items))
	for i, raw := range shadow.Items {
		if err := json.Unmarshal(raw, &d.Items[i]); err != nil {
			return nil, &ItemError{Index: i, Err: err}
		}
	}
	return &d, nil
}

// GraphicItems converts the drawing to the primitive model.
func (d *Drawing) GraphicItems() (graphic.Items, error) {
	items := make(graphic.Items, len(d.Items))
	for i, node := range d.Items {
		it, err := node.Item()
		if err != nil {
			return nil, &ItemError{Index: i, Err: err}
		}
		items[i] = it
	}
	return items, nil
}

var errMissingColor = errors.New("style has no color")

// Item converts one node to a primitive.
func (n ItemNode) Item() (graphic.Item, error) {
	stroke, fill := graphic.NoStroke, graphic.NoFill
	if n.Stroke != nil {
		if n.Stroke.Color.Color == nil {
			return nil, fmt.Errorf("stroke: %w", errMissingColor)
		}
		stroke = graphic.StrokeStyle(n.Stroke.Width, n.Stroke.Color.Color)
	}
	if n.Fill != nil {
		if n.Fill.Color.Color == nil {
			return nil, fmt.Errorf("fill: %w", errMissingColor)
		}
		fill = graphic.FillStyle(n.Fill.Color.Color)
	}

	switch n.Type {
	case ItemTypeLine:
		if n.Fill != nil {
			return nil, errors.New("line cannot have a fill")
		}
		return graphic.Line{X1: n.X1, Y1: n.Y1, X2: n.X2, Y2: n.Y2, Stroke: stroke}, nil
	case ItemTypeRect:
		return graphic.Rect{X: n.X, Y: n.Y, W: n.Width, H: n.Height, Stroke: stroke, Fill: fill}, nil
	case ItemTypeEllipse:
		return graphic.Ellipse{X: n.X, Y: n.Y, W: n.Width, H: n.Height, Stroke: stroke, Fill: fill}, nil
	case ItemTypePath:
		p := graphic.Path{Segments: n.Path, Stroke: stroke, Fill: fill}
		if n.Cache != nil {
			p.Cache = graphic.Cached(n.Cache.Tag, n.Cache.X, n.Cache.Y)
		}
		return p, nil
	}
	return nil, fmt.Errorf("unknown item type %q", n.Type)
}

// FromItems builds interchange nodes for a drawing.
func FromItems(items graphic.Items) []ItemNode {
	nodes := make([]ItemNode, 0, len(items))
	for _, it := range items {
		var node ItemNode
		switch v := it.(type) {
		case graphic.Line:
			node = ItemNode{Type: ItemTypeLine, X1: v.X1, Y1: v.Y1, X2: v.X2, Y2: v.Y2, Stroke: strokeNode(v.Stroke)}
		case graphic.Rect:
			node = ItemNode{Type: ItemTypeRect, X: v.X, Y: v.Y, Width: v.W, Height: v.H, Stroke: strokeNode(v.Stroke), Fill: fillNode(v.Fill)}
		case graphic.Ellipse:
			node = ItemNode{Type: ItemTypeEllipse, X: v.X, Y: v.Y, Width: v.W, Height: v.H, Stroke: strokeNode(v.Stroke), Fill: fillNode(v.Fill)}
		case graphic.Path:
			node = ItemNode{Type: ItemTypePath, Path: v.Segments, Stroke: strokeNode(v.Stroke), Fill: fillNode(v.Fill)}
			if v.Cache.IsSet() {
				node.Cache = &CacheNode{Tag: v.Cache.Tag, X: v.Cache.X, Y: v.Cache.Y}
			}
		default:
			continue
		}
		nodes = append(nodes, node)
	}
	return nodes
}

func strokeNode(s graphic.Stroke) *StrokeNode {
	if !s.IsSet() {
		return nil
	}
	return &StrokeNode{Width: s.Width, Color: ColorValue{s.Color}}
}

func fillNode(f graphic.Fill) *FillNode {
	if !f.IsSet() {
		return nil
	}
	return &FillNode{Color: ColorValue{f.Color}}
}
