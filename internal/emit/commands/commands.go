// Package commands renders drawings as a JSON draw-command list that a
// Canvas2D front end can replay directly.
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/inamate/vecgfx/internal/emit"
	"github.com/inamate/vecgfx/internal/graphic"
	"github.com/inamate/vecgfx/internal/path"
)

// Format is the registry name of this builder.
const Format = "commands"

// ContentType is the media type of the produced document.
const ContentType = "application/json"

// PathCommand is one segment in Canvas2D form: ["M", x, y], ["C", x1, y1, x2, y2, x, y], ["Z"].
type PathCommand []any

// DrawCommand is a single drawing operation for the front end to execute.
type DrawCommand struct {
	Op          string        `json:"op"`                    // "path" or "use"
	Index       int           `json:"index"`                 // Position in the source drawing
	Ref         string        `json:"ref,omitempty"`         // Shared path id for "use" ops
	Transform   []float32     `json:"transform,omitempty"`   // [a, b, c, d, e, f] affine matrix
	Path        []PathCommand `json:"path,omitempty"`        // Path data for "path" ops
	Fill        string        `json:"fill,omitempty"`        // Fill color
	Stroke      string        `json:"stroke,omitempty"`      // Stroke color
	StrokeWidth float32       `json:"strokeWidth,omitempty"` // Stroke width
}

// Document is the full output: extent, shared paths and commands in painter's order.
type Document struct {
	Width    float32                  `json:"width"`
	Height   float32                  `json:"height"`
	Defs     map[string][]PathCommand `json:"defs,omitempty"`
	Commands []DrawCommand            `json:"commands"`
}

// Builder produces JSON draw commands.
type Builder struct{}

// New creates a commands builder.
func New() *Builder {
	return &Builder{}
}

// Build implements emit.Builder.
func (b *Builder) Build(items graphic.Items, opts *emit.Options) (string, error) {
	doc, err := Compile(items)
	if err != nil {
		return "", err
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal commands: %w", err)
	}
	return string(data), nil
}

// Compile normalizes items and generates the command document.
// Rectangles and ellipses are converted to paths; lines become open paths.
func Compile(items graphic.Items) (*Document, error) {
	if err := emit.Validate(Format, items); err != nil {
		return nil, err
	}

	n := emit.Normalize(items)
	doc := &Document{
		Width:    n.Width,
		Height:   n.Height,
		Commands: make([]DrawCommand, 0, len(n.Items)),
	}

	for i, it := range n.Items {
		cmd := DrawCommand{Op: "path", Index: i}

		var stroke graphic.Stroke
		var fill graphic.Fill
		switch v := it.(type) {
		case graphic.Line:
			stroke = v.Stroke
		case graphic.Rect:
			stroke, fill = v.Stroke, v.Fill
		case graphic.Ellipse:
			stroke, fill = v.Stroke, v.Fill
		case graphic.Path:
			stroke, fill = v.Stroke, v.Fill
			if v.Cache.IsSet() {
				if _, ok := doc.Defs[v.Cache.Tag]; !ok {
					if len(v.Segments) == 0 {
						return nil, &emit.Error{Format: Format, Index: i, Tag: v.Cache.Tag, Reason: "cache tag has no definition"}
					}
					if doc.Defs == nil {
						doc.Defs = make(map[string][]PathCommand)
					}
					doc.Defs[v.Cache.Tag] = toCommands(v.Segments.Move(-v.Cache.X, -v.Cache.Y))
				}
				cmd.Op = "use"
				cmd.Ref = v.Cache.Tag
				cmd.Transform = []float32{1, 0, 0, 1, v.Cache.X, v.Cache.Y}
			}
		}

		if cmd.Op == "path" {
			cmd.Path = toCommands(graphic.Outline(it))
		}
		if stroke.IsSet() {
			cmd.Stroke = stroke.Color.String()
			cmd.StrokeWidth = stroke.Width
		}
		if fill.IsSet() {
			cmd.Fill = fill.Color.String()
		}
		doc.Commands = append(doc.Commands, cmd)
	}

	return doc, nil
}

func toCommands(segs path.Segments) []PathCommand {
	out := make([]PathCommand, 0, len(segs))
	for _, seg := range segs {
		switch v := seg.(type) {
		case path.MoveTo:
			out = append(out, PathCommand{"M", v.X, v.Y})
		case path.LineTo:
			out = append(out, PathCommand{"L", v.X, v.Y})
		case path.QuadTo:
			out = append(out, PathCommand{"Q", v.CX, v.CY, v.X, v.Y})
		case path.CubicTo:
			out = append(out, PathCommand{"C", v.C1X, v.C1Y, v.C2X, v.C2Y, v.X, v.Y})
		case path.Close:
			out = append(out, PathCommand{"Z"})
		}
	}
	return out
}
