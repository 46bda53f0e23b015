package shape

import (
	"math"
	"testing"

	"github.com/matzehuels/foamlayout/pkg/geom"
)

func regularPolygon(n int, cx, cy, rx, ry float64) []geom.TracePt {
	pts := make([]geom.TracePt, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = geom.TracePt{X: cx + rx*math.Cos(a), Y: cy + ry*math.Sin(a)}
	}
	return pts
}

// chamferedSquare returns the 8-vertex outline of a square with four equal
// 45° corner cuts.
func chamferedSquare(s, c float64) []geom.TracePt {
	return []geom.TracePt{
		{X: c, Y: 0}, {X: s - c, Y: 0}, {X: s, Y: c}, {X: s, Y: s - c},
		{X: s - c, Y: s}, {X: c, Y: s}, {X: 0, Y: s - c}, {X: 0, Y: c},
	}
}

func TestDetectChamfer(t *testing.T) {
	tests := []struct {
		name   string
		pts    []geom.TracePt
		wantOK bool
		want   float64
	}{
		{
			name:   "eight point encoding",
			pts:    chamferedSquare(12, 0.75),
			wantOK: true,
			want:   0.75,
		},
		{
			// Five vertices plus the repeated closing vertex: one cut corner
			// leaves three distinct coordinates per axis. A square with four
			// equal cuts c < s/2 always has the four X values 0, c, s-c, s,
			// so it can only arrive in the eight point encoding; three and
			// three comes from a trace that kept a single cut.
			name: "six point encoding",
			pts: []geom.TracePt{
				{X: 0, Y: 0.75}, {X: 0.75, Y: 0}, {X: 12, Y: 0}, {X: 12, Y: 12}, {X: 0, Y: 12}, {X: 0, Y: 0.75},
			},
			wantOK: true,
			want:   0.75,
		},
		{
			name:   "slightly uneven cuts",
			pts:    []geom.TracePt{{X: 1, Y: 0}, {X: 8.9, Y: 0}, {X: 10, Y: 1}, {X: 10, Y: 8.8}, {X: 8.9, Y: 10}, {X: 1, Y: 10}, {X: 0, Y: 8.8}, {X: 0, Y: 1}},
			wantOK: true,
			want:   1,
		},
		{
			name:   "inconsistent cuts",
			pts:    []geom.TracePt{{X: 1, Y: 0}, {X: 7, Y: 0}, {X: 10, Y: 1}, {X: 10, Y: 9}, {X: 7, Y: 10}, {X: 1, Y: 10}, {X: 0, Y: 9}, {X: 0, Y: 1}},
			wantOK: false,
		},
		{
			name:   "extra coordinates",
			pts:    []geom.TracePt{{X: 1, Y: 0}, {X: 7, Y: 0}, {X: 10, Y: 3}, {X: 10, Y: 9}, {X: 9, Y: 10}, {X: 1, Y: 10}, {X: 0, Y: 9}, {X: 0, Y: 1}},
			wantOK: false,
		},
		{
			name:   "plain rectangle",
			pts:    []geom.TracePt{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 6}, {X: 0, Y: 6}},
			wantOK: false,
		},
		{
			name:   "circle",
			pts:    regularPolygon(32, 5, 5, 5, 5),
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DetectChamfer(tt.pts)
			if ok != tt.wantOK {
				t.Fatalf("DetectChamfer() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("DetectChamfer() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyCircle(t *testing.T) {
	r := 0.625
	c := Classify(regularPolygon(16, 3, 2, r, r), FallbackPolygon)
	if c.Kind != KindCircle {
		t.Fatalf("Kind = %q, want circle", c.Kind)
	}
	if math.Abs(c.Diameter-2*r) > 1e-9 {
		t.Errorf("Diameter = %v, want %v", c.Diameter, 2*r)
	}
	if math.Abs(c.Centroid.X-3) > 1e-9 || math.Abs(c.Centroid.Y-2) > 1e-9 {
		t.Errorf("Centroid = %+v, want {3 2}", c.Centroid)
	}
}

func TestClassifyEllipseIsNotCircle(t *testing.T) {
	c := Classify(regularPolygon(24, 0, 0, 1.2, 1), FallbackPolygon)
	if c.Kind == KindCircle {
		t.Fatal("ellipse with aspect 1.2 classified as circle")
	}
	if c.Kind != KindPoly {
		t.Errorf("Kind = %q, want poly", c.Kind)
	}
	if len(c.Points) != 24 {
		t.Errorf("poly kept %d points, want 24", len(c.Points))
	}
}

func TestClassifyFewVerticesNotCircle(t *testing.T) {
	if _, ok := IsCircle(regularPolygon(11, 0, 0, 1, 1)); ok {
		t.Error("11-gon should not pass the circle test")
	}
	if _, ok := IsCircle(regularPolygon(12, 0, 0, 1, 1)); !ok {
		t.Error("12-gon should pass the circle test")
	}
}

func TestClassifyRect(t *testing.T) {
	pts := []geom.TracePt{{X: 1, Y: 1}, {X: 3.5, Y: 1}, {X: 3.5, Y: 2.5}, {X: 2, Y: 2.5}, {X: 1, Y: 2.5}}
	c := Classify(pts, FallbackPolygon)
	if c.Kind != KindRect {
		t.Fatalf("Kind = %q, want rect", c.Kind)
	}
	if c.Bounds != (geom.BBox{MinX: 1, MinY: 1, MaxX: 3.5, MaxY: 2.5}) {
		t.Errorf("Bounds = %+v", c.Bounds)
	}
	if c.Points != nil {
		t.Error("rect should not carry points")
	}
}

func TestClassifyFallback(t *testing.T) {
	lshape := []geom.TracePt{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 3}, {X: 0, Y: 3}}

	tests := []struct {
		name   string
		policy Policy
		want   Kind
	}{
		{"polygon policy", FallbackPolygon, KindPoly},
		{"bounding box policy", FallbackBoundingBox, KindRect},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(lshape, tt.policy)
			if c.Kind != tt.want {
				t.Errorf("Kind = %q, want %q", c.Kind, tt.want)
			}
			if c.Bounds != (geom.BBox{MinX: 0, MinY: 0, MaxX: 4, MaxY: 3}) {
				t.Errorf("Bounds = %+v", c.Bounds)
			}
		})
	}
}

func TestArea(t *testing.T) {
	sq := []geom.TracePt{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}}
	if got := Area(sq); got != 4 {
		t.Errorf("Area = %v, want 4", got)
	}
	// Winding direction does not matter.
	rev := []geom.TracePt{sq[3], sq[2], sq[1], sq[0]}
	if got := Area(rev); got != 4 {
		t.Errorf("Area(reversed) = %v, want 4", got)
	}
}

func TestParsePolicy(t *testing.T) {
	if ParsePolicy("bbox") != FallbackBoundingBox {
		t.Error("bbox should parse to FallbackBoundingBox")
	}
	if ParsePolicy("poly") != FallbackPolygon || ParsePolicy("") != FallbackPolygon {
		t.Error("poly and empty should parse to FallbackPolygon")
	}
	if FallbackBoundingBox.String() != "bbox" || FallbackPolygon.String() != "poly" {
		t.Error("String round trip failed")
	}
}
