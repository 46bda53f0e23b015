package shape

import (
	"math"
	"slices"

	"github.com/matzehuels/foamlayout/pkg/geom"
)

// Chamfer acceptance thresholds.
const (
	// ChamferRunRatio bounds max(run)/min(run) for a fully chamfered outline.
	ChamferRunRatio = 1.25

	// SimplifiedChamferRatio is the looser bound used when only three distinct
	// coordinates per axis survive tracing.
	SimplifiedChamferRatio = 2.0
)

// DetectChamfer reports whether pts outline a rectangle with 45° corner cuts
// and returns the cut size in the same units as pts.
//
// Four distinct X and four distinct Y coordinates are the classic encoding:
// each axis contributes a run at both ends, all four runs must be positive
// and within [ChamferRunRatio] of each other, and the size is the smallest
// run. Three and three is the simplified encoding: the two smallest of the
// four candidate runs must be within [SimplifiedChamferRatio] and the size
// is their mean. Any other cardinality is a square-cornered block.
func DetectChamfer(pts []geom.TracePt) (float64, bool) {
	if len(pts) < 5 {
		return 0, false
	}
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = p.X, p.Y
	}
	xs = distinct(xs, geom.Zeroish)
	ys = distinct(ys, geom.Zeroish)

	switch {
	case len(xs) == 4 && len(ys) == 4:
		runs := []float64{xs[1] - xs[0], xs[3] - xs[2], ys[1] - ys[0], ys[3] - ys[2]}
		lo, hi := slices.Min(runs), slices.Max(runs)
		if lo <= 0 || hi/lo > ChamferRunRatio {
			return 0, false
		}
		return lo, true

	case len(xs) == 3 && len(ys) == 3:
		runs := []float64{xs[1] - xs[0], xs[2] - xs[1], ys[1] - ys[0], ys[2] - ys[1]}
		slices.Sort(runs)
		a, b := runs[0], runs[1]
		if a <= 0 || b/a > SimplifiedChamferRatio {
			return 0, false
		}
		return (a + b) / 2, true
	}
	return 0, false
}

// distinct returns the sorted values of vs with neighbours closer than tol
// merged.
func distinct(vs []float64, tol float64) []float64 {
	s := slices.Clone(vs)
	slices.Sort(s)
	out := s[:0]
	for _, v := range s {
		if n := len(out); n > 0 && math.Abs(v-out[n-1]) <= tol {
			continue
		}
		out = append(out, v)
	}
	return out
}
