package shape

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/matzehuels/foamlayout/pkg/geom"
)

// Kind names a cavity primitive. The values match the layout JSON "shape"
// field.
type Kind string

// Primitive kinds.
const (
	KindRect   Kind = "rect"
	KindCircle Kind = "circle"
	KindPoly   Kind = "poly"
)

// Circle test parameters.
const (
	// MinCircleVertices is the fewest vertices a loop needs to be considered
	// a circle.
	MinCircleVertices = 12

	// CircleTolerance is the largest accepted stddev/mean of the centroid
	// radii.
	CircleTolerance = 0.02
)

// Rectangle test parameters.
const (
	rectEdgeTolerance = 0.01 // fraction of the smaller extent
	rectFillRatio     = 0.98 // loop area / bounding-box area
)

// Policy selects what happens to loops that are neither circles nor
// rectangles.
type Policy int

const (
	// FallbackPolygon keeps the traced outline as a polygon.
	FallbackPolygon Policy = iota

	// FallbackBoundingBox replaces the outline with its bounding rectangle.
	//
	// Deprecated: the bounding box loses concavity. Use FallbackPolygon.
	FallbackBoundingBox
)

// ParsePolicy maps "poly"/"polygon" and "bbox"/"rect" to a Policy. Unknown
// names select FallbackPolygon.
func ParsePolicy(s string) Policy {
	switch s {
	case "bbox", "rect", "bounding-box":
		return FallbackBoundingBox
	}
	return FallbackPolygon
}

// String returns the policy's config name.
func (p Policy) String() string {
	if p == FallbackBoundingBox {
		return "bbox"
	}
	return "poly"
}

// Classification is the outcome of classifying one loop. All lengths are in
// the units of the input points.
type Classification struct {
	Kind     Kind
	Bounds   geom.BBox
	Centroid geom.TracePt   // arithmetic mean of the vertices
	Diameter float64        // KindCircle only
	Points   []geom.TracePt // KindPoly only
}

// Classify decides which primitive pts describe. pts must be a cleaned ring
// with at least three vertices; shorter input classifies as a degenerate
// rectangle.
func Classify(pts []geom.TracePt, policy Policy) Classification {
	c := Classification{
		Kind:     KindRect,
		Bounds:   geom.BoundsOf(pts),
		Centroid: centroid(pts),
	}
	if len(pts) < 3 {
		return c
	}
	if d, ok := circleDiameter(pts, c.Centroid); ok {
		c.Kind = KindCircle
		c.Diameter = d
		return c
	}
	if IsRectangle(pts) {
		return c
	}
	if policy == FallbackPolygon {
		c.Kind = KindPoly
		c.Points = append([]geom.TracePt(nil), pts...)
	}
	return c
}

// IsCircle reports whether pts pass the circle test and returns the fitted
// diameter.
func IsCircle(pts []geom.TracePt) (float64, bool) {
	return circleDiameter(pts, centroid(pts))
}

func circleDiameter(pts []geom.TracePt, center geom.TracePt) (float64, bool) {
	if len(pts) < MinCircleVertices {
		return 0, false
	}
	radii := make([]float64, len(pts))
	for i, p := range pts {
		radii[i] = math.Hypot(p.X-center.X, p.Y-center.Y)
	}
	mean, std := stat.PopMeanStdDev(radii, nil)
	if mean <= 0 || std/mean > CircleTolerance {
		return 0, false
	}
	return 2 * mean, true
}

// IsRectangle reports whether pts trace an axis-aligned rectangle: every
// vertex on the bounding box and a loop area that fills it.
func IsRectangle(pts []geom.TracePt) bool {
	b := geom.BoundsOf(pts)
	if !b.Valid() || len(pts) < 4 {
		return false
	}
	tol := rectEdgeTolerance * math.Min(b.Width(), b.Height())
	for _, p := range pts {
		onEdge := math.Abs(p.X-b.MinX) <= tol || math.Abs(p.X-b.MaxX) <= tol ||
			math.Abs(p.Y-b.MinY) <= tol || math.Abs(p.Y-b.MaxY) <= tol
		if !onEdge {
			return false
		}
	}
	return Area(pts) >= rectFillRatio*b.Width()*b.Height()
}

// Area returns the unsigned shoelace area of the ring pts.
func Area(pts []geom.TracePt) float64 {
	var sum float64
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return math.Abs(sum) / 2
}

func centroid(pts []geom.TracePt) geom.TracePt {
	if len(pts) == 0 {
		return geom.TracePt{}
	}
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = p.X, p.Y
	}
	return geom.TracePt{X: stat.Mean(xs, nil), Y: stat.Mean(ys, nil)}
}
