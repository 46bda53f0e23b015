// Package svg renders one layer of a layout model as an SVG preview.
//
// The viewBox is the block in inches ("0 0 L W") with the origin at the
// top-left corner, matching normalized cavity positions. Stroke widths scale
// with the larger block side so previews of small and large blocks look
// alike.
package svg

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/foamlayout/pkg/geom"
	"github.com/matzehuels/foamlayout/pkg/layout"
	"github.com/matzehuels/foamlayout/pkg/shape"
)

// Stroke widths and label size as a fraction of max(L, W).
const (
	outlineStroke = 0.006
	cavityStroke  = 0.004
	labelSize     = 0.025
)

const (
	blockFill   = "#e8e2d4"
	cavityFill  = "#ffffff"
	strokeColor = "#333333"
	labelColor  = "#555555"
)

// Option configures Render.
type Option func(*renderer)

type renderer struct {
	layer  int
	labels bool
}

// ForLayer draws stack layer i instead of the first.
func ForLayer(i int) Option { return func(r *renderer) { r.layer = i } }

// WithLabels writes each cavity's label at its top-left corner.
func WithLabels() Option { return func(r *renderer) { r.labels = true } }

// Render returns the SVG document for one layer of m, the first by default.
// It returns nil when the block has no positive size, or the layer does not
// exist or has no positive thickness.
func Render(m layout.Model, opts ...Option) []byte {
	var r renderer
	for _, opt := range opts {
		opt(&r)
	}
	if !m.Block.Valid() {
		return nil
	}
	cavities, ok := m.LayerCavities(r.layer)
	if !ok {
		return nil
	}
	if len(m.Stack) > 0 && !m.Stack[r.layer].Displayed() {
		return nil
	}

	b := m.Block
	scale := math.Max(b.LengthIn, b.WidthIn)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" width="%sin" height="%sin">`+"\n",
		num(b.LengthIn), num(b.WidthIn), num(b.LengthIn), num(b.WidthIn))
	renderOutline(&buf, b, scale)

	fmt.Fprintf(&buf, `  <g class="cavities" fill="%s" stroke="%s" stroke-width="%s">`+"\n",
		cavityFill, strokeColor, num(scale*cavityStroke))
	for _, c := range cavities {
		renderCavity(&buf, b, c)
	}
	buf.WriteString("  </g>\n")

	if r.labels {
		renderLabels(&buf, b, cavities, scale)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderOutline(buf *bytes.Buffer, b layout.Block, scale float64) {
	style := fmt.Sprintf(`fill="%s" stroke="%s" stroke-width="%s"`, blockFill, strokeColor, num(scale*outlineStroke))
	if !b.Chamfered() {
		fmt.Fprintf(buf, `  <rect class="block" x="0" y="0" width="%s" height="%s" %s/>`+"\n",
			num(b.LengthIn), num(b.WidthIn), style)
		return
	}
	l, w, c := b.LengthIn, b.WidthIn, b.ChamferIn
	pts := []geom.DrawPt{
		{X: c, Y: 0}, {X: l - c, Y: 0}, {X: l, Y: c}, {X: l, Y: w - c},
		{X: l - c, Y: w}, {X: c, Y: w}, {X: 0, Y: w - c}, {X: 0, Y: c},
	}
	fmt.Fprintf(buf, `  <polygon class="block" points="%s" %s/>`+"\n", points(pts), style)
}

func renderCavity(buf *bytes.Buffer, b layout.Block, c layout.Cavity) {
	f := b.Frame()
	origin := f.Denormalize(c.Pos)
	id := escape(c.ID)

	switch s := c.Shape.(type) {
	case layout.Circle:
		r := s.DiameterIn / 2
		if _, ok := clip(b, origin.X, origin.Y, s.DiameterIn, s.DiameterIn); !ok {
			return
		}
		fmt.Fprintf(buf, `    <circle id="%s" cx="%s" cy="%s" r="%s"/>`+"\n",
			id, num(origin.X+r), num(origin.Y+r), num(r))

	case layout.Poly:
		pts := make([]geom.DrawPt, len(s.Points))
		ring := make([]geom.TracePt, len(s.Points))
		for i, p := range s.Points {
			pts[i] = f.Denormalize(geom.ClampNorm(p))
			ring[i] = geom.TracePt(pts[i])
		}
		if len(pts) < 3 || shape.Area(ring) <= 0 {
			return
		}
		fmt.Fprintf(buf, `    <polygon id="%s" points="%s"/>`+"\n", id, points(pts))

	case layout.Rect:
		box, ok := clip(b, origin.X, origin.Y, s.LengthIn, s.WidthIn)
		if !ok {
			return
		}
		rx := ""
		if s.CornerRadiusIn > 0 {
			rx = fmt.Sprintf(` rx="%s"`, num(math.Min(s.CornerRadiusIn, math.Min(box.Width(), box.Height())/2)))
		}
		fmt.Fprintf(buf, `    <rect id="%s" x="%s" y="%s" width="%s" height="%s"%s/>`+"\n",
			id, num(box.MinX), num(box.MinY), num(box.Width()), num(box.Height()), rx)
	}
}

func renderLabels(buf *bytes.Buffer, b layout.Block, cavities []layout.Cavity, scale float64) {
	fmt.Fprintf(buf, `  <g class="labels" font-family="sans-serif" font-size="%s" fill="%s" text-anchor="middle" dominant-baseline="middle">`+"\n",
		num(scale*labelSize), labelColor)
	f := b.Frame()
	for _, c := range cavities {
		label := c.Label
		if label == "" {
			label = layout.Label(c)
		}
		l, w := c.Extent()
		origin := f.Denormalize(c.Pos)
		box, ok := clip(b, origin.X, origin.Y, l, w)
		if !ok {
			continue
		}
		cx, cy := box.Center()
		fmt.Fprintf(buf, `    <text x="%s" y="%s">%s</text>`+"\n", num(cx), num(cy), escape(label))
	}
	buf.WriteString("  </g>\n")
}

// clip intersects a cavity's bounding box with the block. ok is false when
// nothing of positive area remains.
func clip(b layout.Block, x, y, l, w float64) (geom.BBox, bool) {
	box := geom.BBox{
		MinX: math.Max(0, x),
		MinY: math.Max(0, y),
		MaxX: math.Min(b.LengthIn, x+l),
		MaxY: math.Min(b.WidthIn, y+w),
	}
	return box, box.Valid()
}

func points(pts []geom.DrawPt) string {
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = num(p.X) + "," + num(p.Y)
	}
	return strings.Join(parts, " ")
}

// num formats v with at most four decimals.
func num(v float64) string {
	v = math.Round(v*1e4) / 1e4
	if v == 0 {
		v = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
