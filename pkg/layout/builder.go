package layout

import (
	"fmt"

	"github.com/matzehuels/foamlayout/pkg/faces"
	"github.com/matzehuels/foamlayout/pkg/geom"
	"github.com/matzehuels/foamlayout/pkg/shape"
	"github.com/matzehuels/foamlayout/pkg/units"
)

// Builder defaults, in inches.
const (
	DefaultDepthIn     = 1.0
	DefaultThicknessIn = 2.0
	DefaultLengthIn    = 10.0
	DefaultWidthIn     = 10.0
)

// Option configures Build.
type Option func(*buildOptions)

type buildOptions struct {
	depthIn     float64
	thicknessIn float64
	fallback    shape.Policy
}

// WithDepth sets the depth given to every cavity. Non-positive values keep
// the default.
func WithDepth(in float64) Option {
	return func(o *buildOptions) {
		if in > 0 {
			o.depthIn = in
		}
	}
}

// WithThickness sets the block and layer thickness. Non-positive values keep
// the default.
func WithThickness(in float64) Option {
	return func(o *buildOptions) {
		if in > 0 {
			o.thicknessIn = in
		}
	}
}

// WithFallback selects how irregular loops are stored.
func WithFallback(p shape.Policy) Option {
	return func(o *buildOptions) { o.fallback = p }
}

func newOptions(opts []Option) buildOptions {
	o := buildOptions{
		depthIn:     DefaultDepthIn,
		thicknessIn: DefaultThicknessIn,
		fallback:    shape.FallbackPolygon,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Default returns the model used when a faces document has no usable outer
// loop: a 10×10 square block with no cavities.
func Default(opts ...Option) Model {
	o := newOptions(opts)
	return Model{
		Block: Block{
			LengthIn:    DefaultLengthIn,
			WidthIn:     DefaultWidthIn,
			ThicknessIn: o.thicknessIn,
			CornerStyle: CornerSquare,
		},
		Cavities: []Cavity{},
		Stack:    []Layer{newLayer(1, o.thicknessIn, nil)},
	}
}

// FromFaces extracts and builds a model from a faces document.
func FromFaces(doc faces.Document, opts ...Option) Model {
	return Build(faces.Extract(doc), opts...)
}

// Build assembles the layout model from cleaned loops. It never fails: an
// extraction without a usable outer loop yields [Default].
func Build(ext faces.Extraction, opts ...Option) Model {
	o := newOptions(opts)
	if !ext.OK {
		return Default(opts...)
	}

	block := Block{
		LengthIn:    units.SnapPretty(ext.Bounds.Width(), ext.Units),
		WidthIn:     units.SnapPretty(ext.Bounds.Height(), ext.Units),
		ThicknessIn: units.SnapInches(o.thicknessIn),
		CornerStyle: CornerSquare,
	}
	if !block.Valid() {
		return Default(opts...)
	}
	if c, ok := shape.DetectChamfer(ext.Outer.Points); ok {
		chamfered := block
		chamfered.CornerStyle = CornerChamfer
		chamfered.ChamferIn = units.SnapPretty(c, ext.Units)
		if chamfered.Chamfered() {
			block = chamfered
		}
	}

	b := cavityBuilder{
		trace: ext.Frame(),
		frame: block.Frame(),
		depth: units.SnapInches(o.depthIn),
		opts:  o,
	}
	cavities := make([]Cavity, 0, len(ext.Inner))
	for _, ring := range ext.Inner {
		if !ring.Bounds.Valid() {
			continue
		}
		c := b.cavity(ring)
		c.ID = fmt.Sprintf("cav-%d", len(cavities)+1)
		cavities = append(cavities, c)
	}

	m := Model{
		Block:    block,
		Cavities: cavities,
		Stack:    []Layer{newLayer(1, block.ThicknessIn, cavities)},
	}
	m.Sync()
	return m
}

type cavityBuilder struct {
	trace geom.TraceFrame
	frame geom.Frame
	depth float64
	opts  buildOptions
}

func (b cavityBuilder) cavity(ring faces.Ring) Cavity {
	cls := shape.Classify(ring.Points, b.opts.fallback)
	scale := b.trace.Scale

	c := Cavity{DepthIn: b.depth}
	switch cls.Kind {
	case shape.KindCircle:
		d := units.SnapInches(cls.Diameter * scale)
		center := b.trace.ToLocal(cls.Centroid)
		c.Pos = b.frame.Normalize(geom.LocalPt{X: center.X - d/2, Y: center.Y + d/2})
		c.Shape = Circle{DiameterIn: d}

	case shape.KindPoly:
		pts := make([]geom.NormPt, len(cls.Points))
		for i, p := range cls.Points {
			pts[i] = b.frame.Normalize(b.trace.ToLocal(p))
		}
		c.Pos = b.topLeft(cls.Bounds)
		c.Shape = Poly{
			LengthIn: units.SnapInches(cls.Bounds.Width() * scale),
			WidthIn:  units.SnapInches(cls.Bounds.Height() * scale),
			Points:   pts,
		}

	default:
		c.Pos = b.topLeft(cls.Bounds)
		c.Shape = Rect{
			LengthIn: units.SnapInches(cls.Bounds.Width() * scale),
			WidthIn:  units.SnapInches(cls.Bounds.Height() * scale),
		}
	}
	c.Label = Label(c)
	return c
}

// topLeft normalizes the top-left corner of a trace-space bounding box.
func (b cavityBuilder) topLeft(bb geom.BBox) geom.NormPt {
	return b.frame.Normalize(b.trace.ToLocal(geom.TracePt{X: bb.MinX, Y: bb.MaxY}))
}

func newLayer(n int, thicknessIn float64, cavities []Cavity) Layer {
	cs := make([]Cavity, len(cavities))
	copy(cs, cavities)
	return Layer{
		ID:          fmt.Sprintf("layer-%d", n),
		Label:       fmt.Sprintf("Layer %d", n),
		ThicknessIn: thicknessIn,
		Cavities:    cs,
	}
}
