package geom

import "math"

// Zeroish is the tolerance used to merge coordinates that differ only by
// floating point noise.
const Zeroish = 1e-6

// TracePt is a point as emitted by the tracer, in document units.
type TracePt struct {
	X, Y float64
}

// Finite reports whether both coordinates are finite numbers.
func (p TracePt) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// LocalPt is a point in block-local inches (Y up, origin at the block's
// lower-left corner).
type LocalPt struct {
	X, Y float64
}

// NormPt is a point in the block's top-left unit square. Both coordinates are
// in [0,1] once produced by [Frame.Normalize] or [ClampNorm].
type NormPt struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DrawPt is a point in absolute top-left inches.
type DrawPt struct {
	X, Y float64
}

// BBox is an axis-aligned bounding box. The zero value is empty.
type BBox struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Width returns the horizontal extent.
func (b BBox) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent.
func (b BBox) Height() float64 { return b.MaxY - b.MinY }

// Valid reports whether the box has positive width and height.
func (b BBox) Valid() bool { return b.Width() > 0 && b.Height() > 0 }

// Center returns the midpoint of the box.
func (b BBox) Center() (x, y float64) {
	return (b.MinX + b.MaxX) / 2, (b.MinY + b.MaxY) / 2
}

// BoundsOf computes the bounding box of pts. It returns the zero box when pts
// is empty.
func BoundsOf(pts []TracePt) BBox {
	if len(pts) == 0 {
		return BBox{}
	}
	b := BBox{MinX: pts[0].X, MinY: pts[0].Y, MaxX: pts[0].X, MaxY: pts[0].Y}
	for _, p := range pts[1:] {
		b.MinX = math.Min(b.MinX, p.X)
		b.MinY = math.Min(b.MinY, p.Y)
		b.MaxX = math.Max(b.MaxX, p.X)
		b.MaxY = math.Max(b.MaxY, p.Y)
	}
	return b
}

// LocalBounds computes the bounding box of block-local points.
func LocalBounds(pts []LocalPt) BBox {
	tp := make([]TracePt, len(pts))
	for i, p := range pts {
		tp[i] = TracePt(p)
	}
	return BoundsOf(tp)
}

// Clamp01 limits v to [0,1]. NaN becomes 0.
func Clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// ClampNorm clamps both coordinates of p to [0,1].
func ClampNorm(p NormPt) NormPt {
	return NormPt{X: Clamp01(p.X), Y: Clamp01(p.Y)}
}

// TraceFrame converts trace-space points to block-local inches.
type TraceFrame struct {
	Origin TracePt // lower-left corner of the outer loop's bounding box
	Scale  float64 // inches per trace unit
}

// ToLocal translates p to the frame origin and scales it to inches.
func (f TraceFrame) ToLocal(p TracePt) LocalPt {
	s := f.Scale
	if s <= 0 {
		s = 1
	}
	return LocalPt{X: (p.X - f.Origin.X) * s, Y: (p.Y - f.Origin.Y) * s}
}

// Frame holds the block dimensions that anchor the normalized unit square.
type Frame struct {
	LengthIn float64 // extent along X
	WidthIn  float64 // extent along Y
}

// Valid reports whether both dimensions are positive.
func (f Frame) Valid() bool { return f.LengthIn > 0 && f.WidthIn > 0 }

// Normalize maps a block-local point into the top-left unit square, flipping
// the Y axis. The result is clamped to [0,1].
func (f Frame) Normalize(p LocalPt) NormPt {
	if !f.Valid() {
		return NormPt{}
	}
	return ClampNorm(NormPt{X: p.X / f.LengthIn, Y: 1 - p.Y/f.WidthIn})
}

// Denormalize scales a normalized point back to absolute top-left inches.
func (f Frame) Denormalize(n NormPt) DrawPt {
	return DrawPt{X: n.X * f.LengthIn, Y: n.Y * f.WidthIn}
}
