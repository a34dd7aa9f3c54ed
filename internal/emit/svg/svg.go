// Package svg renders drawings as standalone SVG documents.
package svg

import (
	"bytes"
	"fmt"
	"strconv"

	svgo "github.com/ajstarks/svgo"
	"github.com/chewxy/math32"

	"github.com/inamate/vecgfx/internal/emit"
	"github.com/inamate/vecgfx/internal/graphic"
	"github.com/inamate/vecgfx/internal/path"
)

// Format is the registry name of this builder.
const Format = "svg"

// ContentType is the media type of the produced document.
const ContentType = "image/svg+xml"

const (
	nsSVG   = "http://www.w3.org/2000/svg"
	nsXLink = "http://www.w3.org/1999/xlink"
)

// Builder produces SVG documents. Paths sharing a cache tag are written once
// into <defs> and drawn with <use> references.
type Builder struct{}

// New creates an SVG builder.
func New() *Builder {
	return &Builder{}
}

// Build implements emit.Builder.
func (b *Builder) Build(items graphic.Items, opts *emit.Options) (string, error) {
	if err := emit.Validate(Format, items); err != nil {
		return "", err
	}

	o := opts.Resolve()
	n := emit.Normalize(items)

	var buf bytes.Buffer
	canvas := svgo.New(&buf)

	fmt.Fprintf(canvas.Writer, "<?xml version=\"1.0\"?>\n<svg width=\"%s%s\" height=\"%s%s\" viewBox=\"0 0 %s %s\" xmlns=%q xmlns:xlink=%q>\n",
		dimension(n.Width*o.Scaling), o.Unit.Suffix(),
		dimension(n.Height*o.Scaling), o.Unit.Suffix(),
		num(n.Width), num(n.Height),
		nsSVG, nsXLink,
	)

	// The cache lives for this call only.
	defs, err := writeDefs(canvas, n.Items)
	if err != nil {
		return "", err
	}

	for i, it := range n.Items {
		if err := writeItem(canvas, defs, i, it); err != nil {
			return "", err
		}
	}

	// Transparent anchor spanning the whole document.
	fmt.Fprintf(canvas.Writer, "<rect x=\"0\" y=\"0\" width=\"%s\" height=\"%s\" fill=\"none\" stroke=\"none\"/>\n",
		num(n.Width), num(n.Height))

	canvas.End()
	return buf.String(), nil
}

// writeDefs emits one reusable definition per cache tag, taken from the first
// item carrying it, and returns the set of defined tags.
func writeDefs(canvas *svgo.SVG, items graphic.Items) (map[string]path.Segments, error) {
	defs := make(map[string]path.Segments)
	seen := make(map[string]bool)
	var order []string

	for i, it := range items {
		p, ok := it.(graphic.Path)
		if !ok || !p.Cache.IsSet() || seen[p.Cache.Tag] {
			continue
		}
		if !validID(p.Cache.Tag) {
			return nil, &emit.Error{Format: Format, Index: i, Tag: p.Cache.Tag, Reason: "cache tag is not a valid identifier"}
		}
		seen[p.Cache.Tag] = true
		if len(p.Segments) == 0 {
			// nothing to share; references to this tag fail below
			continue
		}
		defs[p.Cache.Tag] = p.Segments.Move(-p.Cache.X, -p.Cache.Y)
		order = append(order, p.Cache.Tag)
	}

	if len(order) == 0 {
		return defs, nil
	}

	canvas.Def()
	for _, tag := range order {
		canvas.Path(defs[tag].Syntax(), attr("id", tag))
	}
	canvas.DefEnd()
	return defs, nil
}

func writeItem(canvas *svgo.SVG, defs map[string]path.Segments, index int, it graphic.Item) error {
	switch v := it.(type) {
	case graphic.Line:
		fmt.Fprintf(canvas.Writer, "<line x1=\"%s\" y1=\"%s\" x2=\"%s\" y2=\"%s\"%s/>\n",
			num(v.X1), num(v.Y1), num(v.X2), num(v.Y2), inline(strokeAttrs(v.Stroke)))

	case graphic.Rect:
		x, w := span(v.X, v.W)
		y, h := span(v.Y, v.H)
		fmt.Fprintf(canvas.Writer, "<rect x=\"%s\" y=\"%s\" width=\"%s\" height=\"%s\"%s/>\n",
			num(x), num(y), num(w), num(h), inline(styleAttrs(v.Stroke, v.Fill)))

	case graphic.Ellipse:
		x, w := span(v.X, v.W)
		y, h := span(v.Y, v.H)
		fmt.Fprintf(canvas.Writer, "<ellipse cx=\"%s\" cy=\"%s\" rx=\"%s\" ry=\"%s\"%s/>\n",
			num(x+w/2), num(y+h/2), num(w/2), num(h/2), inline(styleAttrs(v.Stroke, v.Fill)))

	case graphic.Path:
		if !v.Cache.IsSet() {
			canvas.Path(v.Segments.Syntax(), styleAttrs(v.Stroke, v.Fill)...)
			return nil
		}
		if _, ok := defs[v.Cache.Tag]; !ok {
			return &emit.Error{Format: Format, Index: index, Tag: v.Cache.Tag, Reason: "cache tag has no definition"}
		}
		fmt.Fprintf(canvas.Writer, "<use xlink:href=\"#%s\" x=\"%s\" y=\"%s\"%s/>\n",
			v.Cache.Tag, num(v.Cache.X), num(v.Cache.Y), inline(styleAttrs(v.Stroke, v.Fill)))

	default:
		return &emit.Error{Format: Format, Index: index, Reason: fmt.Sprintf("unsupported item %T", it)}
	}
	return nil
}

func strokeAttrs(s graphic.Stroke) []string {
	if !s.IsSet() {
		return nil
	}
	return []string{attr("stroke", s.Color.String()), attr("stroke-width", num(s.Width))}
}

// styleAttrs always carries a fill attribute so an absent fill reads "none".
func styleAttrs(s graphic.Stroke, f graphic.Fill) []string {
	attrs := strokeAttrs(s)
	if f.IsSet() {
		return append(attrs, attr("fill", f.Color.String()))
	}
	return append(attrs, attr("fill", "none"))
}

func attr(name, value string) string {
	return name + "=" + strconv.Quote(value)
}

func inline(attrs []string) string {
	var b bytes.Buffer
	for _, a := range attrs {
		b.WriteByte(' ')
		b.WriteString(a)
	}
	return b.String()
}

// span turns a signed extent into an origin and a non-negative size.
func span(origin, size float32) (float32, float32) {
	if size < 0 {
		return origin + size, -size
	}
	return origin, size
}

func num(v float32) string {
	return path.FormatNumber(v)
}

// dimension rounds a document size to two decimals.
func dimension(v float32) string {
	return strconv.FormatFloat(float64(math32.Abs(v)), 'f', 2, 32)
}

// validID accepts XML name characters only, so tags can be used unescaped.
func validID(tag string) bool {
	for i, r := range tag {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case i > 0 && (r >= '0' && r <= '9' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return tag != ""
}
