// Package script renders drawings as a Lua snippet for a node-based
// compositor. Each styled stroke or fill becomes its own shape that is
// traced, optionally outlined, and merged onto the output image channel.
package script

import (
	"fmt"
	"strings"

	"github.com/inamate/vecgfx/internal/emit"
	"github.com/inamate/vecgfx/internal/graphic"
	"github.com/inamate/vecgfx/internal/path"
)

// Format is the registry name of this builder.
const Format = "script"

// ContentType is the media type of the produced snippet.
const ContentType = "text/x-lua; charset=utf-8"

// Marker separates the prologue from the generated statements.
const Marker = "-- dynamically added items:"

// bezierSteps is the subdivision count passed to BezierTo2.
const bezierSteps = 20

// Template holds the host boilerplate wrapped around the generated body.
// Both parts are copied through unchanged.
type Template struct {
	Prologue string
	Epilogue string
}

// Builder produces script output. It holds only its immutable template.
type Builder struct {
	tmpl Template
}

// New creates a script builder around tmpl.
func New(tmpl Template) *Builder {
	return &Builder{tmpl: tmpl}
}

// Build implements emit.Builder. Options are accepted for interface
// compatibility; the script has no document size.
func (b *Builder) Build(items graphic.Items, opts *emit.Options) (string, error) {
	if err := emit.Validate(Format, items); err != nil {
		return "", err
	}

	n := emit.Normalize(items)

	var body strings.Builder
	body.WriteString("\n\n" + Marker + "\n\n")

	for i, it := range n.Items {
		switch v := it.(type) {
		case graphic.Line:
			if v.Stroke.IsSet() {
				writeStroke(&body, graphic.Outline(v), v.Stroke)
			}
		case graphic.Rect:
			writeShape(&body, graphic.Outline(v), v.Stroke, v.Fill)
		case graphic.Ellipse:
			writeShape(&body, graphic.Outline(v), v.Stroke, v.Fill)
		case graphic.Path:
			writeShape(&body, v.Segments, v.Stroke, v.Fill)
		default:
			return "", &emit.Error{Format: Format, Index: i, Reason: fmt.Sprintf("unsupported item %T", it)}
		}
	}

	return b.tmpl.Prologue + "\n\n" + body.String() + "\n\n" + b.tmpl.Epilogue, nil
}

// writeShape emits the fill pass, then the stroke pass. Each styling is an
// independent block.
func writeShape(b *strings.Builder, segs path.Segments, s graphic.Stroke, f graphic.Fill) {
	if f.IsSet() {
		trace(b, segs, true)
		composite(b, f.Color)
	}
	if s.IsSet() {
		writeStroke(b, segs, s)
	}
}

func writeStroke(b *strings.Builder, segs path.Segments, s graphic.Stroke) {
	trace(b, segs, false)
	fmt.Fprintf(b, "\n\tline = line:OutlineOfShape(%s,\"OLT_Solid\")", num(s.Width))
	composite(b, s.Color)
}

// trace builds a fresh Shape following segs. Filled shapes close their
// subpaths; stroked shapes draw back to the subpath start instead.
func trace(b *strings.Builder, segs path.Segments, filled bool) {
	var curX, curY, startX, startY float32

	b.WriteString("\n\tline = Shape()")
	for _, seg := range segs {
		switch v := seg.(type) {
		case path.MoveTo:
			fmt.Fprintf(b, "\n\tline:MoveTo(%s, %s)", num(v.X), num(v.Y))
			curX, curY = v.X, v.Y
			startX, startY = v.X, v.Y
		case path.LineTo:
			fmt.Fprintf(b, "\n\tline:LineTo(%s, %s)", num(v.X), num(v.Y))
			curX, curY = v.X, v.Y
		case path.QuadTo:
			c1x, c1y, c2x, c2y := path.QuadraticToCubic(curX, curY, v.CX, v.CY, v.X, v.Y)
			bezier(b, curX, curY, c1x, c1y, c2x, c2y, v.X, v.Y)
			curX, curY = v.X, v.Y
		case path.CubicTo:
			bezier(b, curX, curY, v.C1X, v.C1Y, v.C2X, v.C2Y, v.X, v.Y)
			curX, curY = v.X, v.Y
		case path.Close:
			if filled {
				b.WriteString("\n\tline:Close()")
			} else if curX != startX || curY != startY {
				fmt.Fprintf(b, "\n\tline:LineTo(%s, %s)", num(startX), num(startY))
			}
			curX, curY = startX, startY
		}
	}
}

func bezier(b *strings.Builder, sx, sy, c1x, c1y, c2x, c2y, x, y float32) {
	fmt.Fprintf(b, "\n\tline = BezierTo2(line, {X=%s, Y=%s}, {X=%s, Y=%s}, {X=%s, Y=%s}, {X=%s, Y=%s}, %d)",
		num(sx), num(sy), num(c1x), num(c1y), num(c2x), num(c2y), num(x), num(y), bezierSteps)
}

// composite merges the current shape onto the output channel in color c.
func composite(b *strings.Builder, c graphic.Color) {
	b.WriteString("\n\tic = ImageChannel(out, 8)")
	b.WriteString("\n\tic:ShapeFill(line)\t")
	b.WriteString("\n\tcs = ChannelStyle()")
	fmt.Fprintf(b, "\n\tcs.Color = Pixel(%s)", Pixel(c))
	b.WriteString("\n\tif self.Status == \"OK\" then")
	b.WriteString("\n\t    ic:PutToImage(\"CM_Merge\", cs)")
	b.WriteString("\n\tend")
	b.WriteString("\n\t")
}

func num(v float32) string {
	return path.FormatNumber(v)
}
