// Package dxf renders layout models as AutoCAD Release 12 ASCII DXF.
//
// The output is the minimal HEADER/TABLES/BLOCKS/ENTITIES subset that CNC
// foam cutters accept. Coordinates are block-local inches measured from the
// block's top-left corner, so normalized cavity positions only need scaling:
//
//	x = pos.x · L    y = pos.y · W
//
// The default output draws the block outline and the rectangle of every
// rectangular cavity. Circles, polygons and chamfered outlines are opt-in:
//
//	data := dxf.Render(m, dxf.ForLayer(1), dxf.WithCircles())
//
// Rendering one layer and rendering all layers produce the same cavity
// entities, in stack order, so per-layer files concatenate to the combined
// file.
package dxf

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/matzehuels/foamlayout/pkg/geom"
	"github.com/matzehuels/foamlayout/pkg/layout"
)

// OutlineLayer is the DXF layer that carries the block outline.
const OutlineLayer = "OUTLINE"

// Entity types.
const (
	TypeLine   = "LINE"
	TypeCircle = "CIRCLE"
)

// Entity is one drawing primitive. LINE uses Start and End; CIRCLE uses Start
// as its center and Radius.
type Entity struct {
	Type   string
	Layer  string
	Start  geom.DrawPt
	End    geom.DrawPt
	Radius float64
}

// Option configures Render and Entities.
type Option func(*renderer)

type renderer struct {
	layer     *int
	circles   bool
	polylines bool
	chamfer   bool
}

// ForLayer restricts the cavities to stack layer i. The outline is always drawn.
func ForLayer(i int) Option { return func(r *renderer) { r.layer = &i } }

// WithCircles emits circular cavities as CIRCLE entities.
func WithCircles() Option { return func(r *renderer) { r.circles = true } }

// WithPolylines emits polygon cavities as closed runs of LINE entities.
func WithPolylines() Option { return func(r *renderer) { r.polylines = true } }

// WithChamferOutline draws the cut corners of a chamfered block.
func WithChamferOutline() Option { return func(r *renderer) { r.chamfer = true } }

func newRenderer(opts ...Option) renderer {
	var r renderer
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// Render returns the DXF document for m, or nil when the block has no
// positive size or the requested layer does not exist.
func Render(m layout.Model, opts ...Option) []byte {
	ents, ok := Entities(m, opts...)
	if !ok {
		return nil
	}
	return Encode(ents)
}

// Entities returns the entities Render would write: the outline first, then
// each selected layer's cavities in stack order.
func Entities(m layout.Model, opts ...Option) ([]Entity, bool) {
	r := newRenderer(opts...)
	if !m.Block.Valid() {
		return nil, false
	}

	ents := r.outline(m.Block)
	if r.layer != nil {
		cavities, ok := m.LayerCavities(*r.layer)
		if !ok {
			return nil, false
		}
		return append(ents, r.cavities(m.Block, LayerName(*r.layer), cavities)...), true
	}

	if len(m.Stack) == 0 {
		return append(ents, r.cavities(m.Block, LayerName(0), m.Cavities)...), true
	}
	for i, l := range m.Stack {
		ents = append(ents, r.cavities(m.Block, LayerName(i), l.Cavities)...)
	}
	return ents, true
}

// LayerName returns the DXF layer name for stack layer i.
func LayerName(i int) string {
	return "CAVITIES_" + strconv.Itoa(i+1)
}

func (r renderer) outline(b layout.Block) []Entity {
	l, w := b.LengthIn, b.WidthIn
	if r.chamfer && b.Chamfered() {
		c := b.ChamferIn
		return loop(OutlineLayer, []geom.DrawPt{
			{X: c, Y: 0}, {X: l - c, Y: 0}, {X: l, Y: c}, {X: l, Y: w - c},
			{X: l - c, Y: w}, {X: c, Y: w}, {X: 0, Y: w - c}, {X: 0, Y: c},
		})
	}
	return loop(OutlineLayer, corners(0, 0, l, w))
}

func (r renderer) cavities(b layout.Block, name string, cavities []layout.Cavity) []Entity {
	f := b.Frame()
	var ents []Entity
	for _, c := range cavities {
		origin := f.Denormalize(c.Pos)
		switch s := c.Shape.(type) {
		case layout.Circle:
			if !r.circles || s.DiameterIn <= 0 {
				continue
			}
			rad := s.DiameterIn / 2
			ents = append(ents, Entity{
				Type:   TypeCircle,
				Layer:  name,
				Start:  geom.DrawPt{X: origin.X + rad, Y: origin.Y + rad},
				Radius: rad,
			})
		case layout.Poly:
			if !r.polylines || len(s.Points) < 3 {
				continue
			}
			pts := make([]geom.DrawPt, len(s.Points))
			for i, p := range s.Points {
				pts[i] = f.Denormalize(p)
			}
			ents = append(ents, loop(name, pts)...)
		case layout.Rect:
			ents = append(ents, loop(name, corners(origin.X, origin.Y, origin.X+s.LengthIn, origin.Y+s.WidthIn))...)
		}
	}
	return ents
}

func corners(x0, y0, x1, y1 float64) []geom.DrawPt {
	return []geom.DrawPt{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
}

// loop closes pts into one LINE per edge.
func loop(layer string, pts []geom.DrawPt) []Entity {
	ents := make([]Entity, len(pts))
	for i, p := range pts {
		ents[i] = Entity{Type: TypeLine, Layer: layer, Start: p, End: pts[(i+1)%len(pts)]}
	}
	return ents
}

// Encode writes entities as a complete DXF document.
func Encode(ents []Entity) []byte {
	var buf bytes.Buffer
	section(&buf, "HEADER", func() {
		pair(&buf, 9, "$ACADVER")
		pair(&buf, 1, "AC1009")
		pair(&buf, 9, "$INSUNITS")
		pair(&buf, 70, "1")
	})
	section(&buf, "TABLES", nil)
	section(&buf, "BLOCKS", nil)
	section(&buf, "ENTITIES", func() {
		for _, e := range ents {
			writeEntity(&buf, e)
		}
	})
	pair(&buf, 0, "EOF")
	return buf.Bytes()
}

func section(buf *bytes.Buffer, name string, body func()) {
	pair(buf, 0, "SECTION")
	pair(buf, 2, name)
	if body != nil {
		body()
	}
	pair(buf, 0, "ENDSEC")
}

func writeEntity(buf *bytes.Buffer, e Entity) {
	pair(buf, 0, e.Type)
	pair(buf, 8, e.Layer)
	pair(buf, 10, coord(e.Start.X))
	pair(buf, 20, coord(e.Start.Y))
	pair(buf, 30, coord(0))
	switch e.Type {
	case TypeCircle:
		pair(buf, 40, coord(e.Radius))
	default:
		pair(buf, 11, coord(e.End.X))
		pair(buf, 21, coord(e.End.Y))
		pair(buf, 31, coord(0))
	}
}

func pair(buf *bytes.Buffer, code int, value string) {
	fmt.Fprintf(buf, "%d\n%s\n", code, value)
}

// coord formats v with four decimals. Negative zero prints as zero.
func coord(v float64) string {
	s := strconv.FormatFloat(v, 'f', 4, 64)
	if s == "-0.0000" {
		return "0.0000"
	}
	return s
}
