package faces

import (
	"math"

	"github.com/matzehuels/foamlayout/pkg/geom"
	"github.com/matzehuels/foamlayout/pkg/units"
)

// MinRingPoints is the fewest usable vertices a loop needs to be kept.
const MinRingPoints = 3

// Ring is a cleaned loop: finite points only, no repeated closing vertex.
type Ring struct {
	Index  int            // position of the loop in the source document
	Points []geom.TracePt // vertices in trace units
	Bounds geom.BBox      // bounding box in trace units
}

// Extraction is the result of cleaning a faces document.
type Extraction struct {
	Units  units.Unit
	Outer  Ring
	Inner  []Ring
	Bounds geom.BBox // outer bounding box, trace units

	// OK is false when the document has no usable outer loop. Callers fall
	// back to a default model instead of treating it as an error.
	OK bool

	// Skipped counts loops dropped for having too few usable points.
	Skipped int
}

// Frame returns the trace-to-local conversion anchored at the outer loop.
func (e Extraction) Frame() geom.TraceFrame {
	return geom.TraceFrame{
		Origin: geom.TracePt{X: e.Bounds.MinX, Y: e.Bounds.MinY},
		Scale:  units.Scale(e.Units),
	}
}

// Extract cleans every loop in doc and splits them into the outer loop and
// the cavities. It never fails; see [Extraction.OK].
func Extract(doc Document) Extraction {
	ext := Extraction{Units: doc.Unit()}

	rings := make([]Ring, 0, len(doc.Loops))
	for i, loop := range doc.Loops {
		r, ok := clean(i, loop)
		if !ok {
			ext.Skipped++
			continue
		}
		rings = append(rings, r)
	}
	if len(rings) == 0 {
		return ext
	}

	outer := outerPosition(doc, rings)
	ext.Outer = rings[outer]
	ext.Bounds = ext.Outer.Bounds
	for i, r := range rings {
		if i != outer {
			ext.Inner = append(ext.Inner, r)
		}
	}
	ext.OK = ext.Bounds.Valid()
	return ext
}

// outerPosition resolves the document's outer loop index to a position in
// rings. An index that is missing, out of range or points at a dropped loop
// selects the first usable loop.
func outerPosition(doc Document, rings []Ring) int {
	if doc.OuterLoopIndex == nil {
		return 0
	}
	want := *doc.OuterLoopIndex
	for i, r := range rings {
		if r.Index == want {
			return i
		}
	}
	return 0
}

func clean(index int, loop Loop) (Ring, bool) {
	pts := make([]geom.TracePt, 0, len(loop.Points))
	for _, p := range loop.Points {
		tp := p.Trace()
		if !tp.Finite() {
			continue
		}
		if n := len(pts); n > 0 && samePoint(pts[n-1], tp) {
			continue
		}
		pts = append(pts, tp)
	}
	if n := len(pts); n > 1 && samePoint(pts[0], pts[n-1]) {
		pts = pts[:n-1]
	}
	if len(pts) < MinRingPoints {
		return Ring{}, false
	}
	return Ring{Index: index, Points: pts, Bounds: geom.BoundsOf(pts)}, true
}

func samePoint(a, b geom.TracePt) bool {
	return math.Abs(a.X-b.X) <= geom.Zeroish && math.Abs(a.Y-b.Y) <= geom.Zeroish
}
