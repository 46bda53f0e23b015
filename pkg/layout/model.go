package layout

import (
	"slices"

	"github.com/matzehuels/foamlayout/pkg/geom"
	"github.com/matzehuels/foamlayout/pkg/shape"
)

// CornerStyle describes how the block's outer corners are cut.
type CornerStyle string

// Corner styles.
const (
	CornerSquare  CornerStyle = "square"
	CornerChamfer CornerStyle = "chamfer"
)

// Block is the outer foam slab.
type Block struct {
	LengthIn    float64     `json:"lengthIn"`
	WidthIn     float64     `json:"widthIn"`
	ThicknessIn float64     `json:"thicknessIn"`
	CornerStyle CornerStyle `json:"cornerStyle,omitempty"`
	ChamferIn   float64     `json:"chamferIn,omitempty"`
}

// Valid reports whether the block has positive length and width.
func (b Block) Valid() bool { return b.LengthIn > 0 && b.WidthIn > 0 }

// Frame returns the normalization frame anchored on the block.
func (b Block) Frame() geom.Frame {
	return geom.Frame{LengthIn: b.LengthIn, WidthIn: b.WidthIn}
}

// Chamfered reports whether the block has a usable chamfer: the style is
// set and the size is positive and below half the shorter side.
func (b Block) Chamfered() bool {
	return b.CornerStyle == CornerChamfer && b.ChamferIn > 0 &&
		b.ChamferIn < min(b.LengthIn, b.WidthIn)/2
}

// Shape is the geometry of a cavity. It is implemented only by [Rect],
// [Circle] and [Poly].
type Shape interface {
	// Kind returns the shape tag used in layout JSON.
	Kind() shape.Kind

	// Extent returns the bounding-box size in inches.
	Extent() (lengthIn, widthIn float64)

	isShape()
}

// Rect is a rectangular pocket.
type Rect struct {
	LengthIn       float64
	WidthIn        float64
	CornerRadiusIn float64
}

// Circle is a round pocket.
type Circle struct {
	DiameterIn float64
}

// Poly is a pocket with an arbitrary outline. Points are in the block's
// normalized top-left space; LengthIn/WidthIn are the outline's extents.
type Poly struct {
	LengthIn float64
	WidthIn  float64
	Points   []geom.NormPt
}

func (Rect) Kind() shape.Kind   { return shape.KindRect }
func (Circle) Kind() shape.Kind { return shape.KindCircle }
func (Poly) Kind() shape.Kind   { return shape.KindPoly }

func (r Rect) Extent() (float64, float64)   { return r.LengthIn, r.WidthIn }
func (c Circle) Extent() (float64, float64) { return c.DiameterIn, c.DiameterIn }
func (p Poly) Extent() (float64, float64)   { return p.LengthIn, p.WidthIn }

func (Rect) isShape()   {}
func (Circle) isShape() {}
func (Poly) isShape()   {}

// Cavity is a pocket cut into a layer. Pos is the normalized top-left corner
// of the cavity's bounding box.
type Cavity struct {
	ID      string
	Label   string
	DepthIn float64
	Pos     geom.NormPt
	Shape   Shape
}

// Extent returns the cavity's bounding-box size in inches. A cavity without a
// shape has zero extent.
func (c Cavity) Extent() (lengthIn, widthIn float64) {
	if c.Shape == nil {
		return 0, 0
	}
	return c.Shape.Extent()
}

// Kind returns the cavity's shape tag, defaulting to rect.
func (c Cavity) Kind() shape.Kind {
	if c.Shape == nil {
		return shape.KindRect
	}
	return c.Shape.Kind()
}

// Layer is one slice of a foam stack.
type Layer struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	ThicknessIn float64  `json:"thicknessIn"`
	Cavities    []Cavity `json:"cavities"`
}

// Model is the structured layout: one block, the flat cavity list read by
// single-layer consumers, and the layer stack.
type Model struct {
	Block    Block    `json:"block"`
	Cavities []Cavity `json:"cavities"`
	Stack    []Layer  `json:"stack"`
}

// Displayed reports whether the layer is shown in previews and pickers. A
// layer without positive thickness is not.
func (l Layer) Displayed() bool { return l.ThicknessIn > 0 }

// DisplayLayers returns the displayed layers, in stack order.
func (m Model) DisplayLayers() []Layer {
	out := make([]Layer, 0, len(m.Stack))
	for _, l := range m.Stack {
		if l.Displayed() {
			out = append(out, l)
		}
	}
	return out
}

// DisplayIndexes returns the stack indexes of the displayed layers.
func (m Model) DisplayIndexes() []int {
	var out []int
	for i, l := range m.Stack {
		if l.Displayed() {
			out = append(out, i)
		}
	}
	return out
}

// LayerCavities returns the cavities of layer i, or the flat cavity list when
// the model has no stack and i is 0. ok is false for any other index outside
// the stack.
func (m Model) LayerCavities(i int) (cavities []Cavity, ok bool) {
	if len(m.Stack) == 0 {
		return m.Cavities, i == 0
	}
	if i < 0 || i >= len(m.Stack) {
		return nil, false
	}
	return m.Stack[i].Cavities, true
}

// Sync restores the single-layer invariant: a model with at most one layer
// has a stack entry whose cavities equal the flat list. When the stack holds
// one layer, the layer's cavities win; the flat list only seeds an empty
// layer.
func (m *Model) Sync() {
	switch len(m.Stack) {
	case 0:
		m.Stack = []Layer{newLayer(1, m.Block.ThicknessIn, m.Cavities)}
	case 1:
		if len(m.Stack[0].Cavities) == 0 {
			m.Stack[0].Cavities = slices.Clone(m.Cavities)
		} else {
			m.Cavities = slices.Clone(m.Stack[0].Cavities)
		}
	}
	if m.Cavities == nil {
		m.Cavities = []Cavity{}
	}
	for i := range m.Stack {
		if m.Stack[i].Cavities == nil {
			m.Stack[i].Cavities = []Cavity{}
		}
	}
}
