package geom

import (
	"math"
	"testing"
)

func TestBoundsOf(t *testing.T) {
	tests := []struct {
		name string
		pts  []TracePt
		want BBox
	}{
		{"empty", nil, BBox{}},
		{"single", []TracePt{{2, 3}}, BBox{2, 3, 2, 3}},
		{"square", []TracePt{{0, 0}, {4, 0}, {4, 2}, {0, 2}}, BBox{0, 0, 4, 2}},
		{"negative", []TracePt{{-1, -5}, {3, 1}}, BBox{-1, -5, 3, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BoundsOf(tt.pts); got != tt.want {
				t.Errorf("BoundsOf() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBBoxValid(t *testing.T) {
	if (BBox{0, 0, 0, 5}).Valid() {
		t.Error("zero-width box should be invalid")
	}
	if (BBox{0, 0, 5, -1}).Valid() {
		t.Error("negative-height box should be invalid")
	}
	if !(BBox{0, 0, 1, 1}).Valid() {
		t.Error("unit box should be valid")
	}
}

func TestClamp01(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.25, 0.25},
		{1, 1},
		{1.7, 1},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := Clamp01(tt.in); got != tt.want {
			t.Errorf("Clamp01(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTraceFrameToLocal(t *testing.T) {
	f := TraceFrame{Origin: TracePt{10, 20}, Scale: 1 / 25.4}
	got := f.ToLocal(TracePt{10 + 25.4, 20 + 50.8})
	if math.Abs(got.X-1) > 1e-12 || math.Abs(got.Y-2) > 1e-12 {
		t.Errorf("ToLocal() = %+v, want {1 2}", got)
	}
}

func TestFrameNormalizeFlipsOnce(t *testing.T) {
	f := Frame{LengthIn: 10, WidthIn: 6}

	// The block's upper-left corner in Y-up local space is (0, W).
	if got := f.Normalize(LocalPt{0, 6}); got != (NormPt{0, 0}) {
		t.Errorf("Normalize(top-left) = %+v, want {0 0}", got)
	}
	if got := f.Normalize(LocalPt{10, 0}); got != (NormPt{1, 1}) {
		t.Errorf("Normalize(bottom-right) = %+v, want {1 1}", got)
	}

	// Denormalize only scales.
	d := f.Denormalize(NormPt{0.5, 0.25})
	if d != (DrawPt{5, 1.5}) {
		t.Errorf("Denormalize() = %+v, want {5 1.5}", d)
	}
}

func TestFrameNormalizeClamps(t *testing.T) {
	f := Frame{LengthIn: 4, WidthIn: 4}
	got := f.Normalize(LocalPt{-2, 9})
	if got != (NormPt{0, 0}) {
		t.Errorf("Normalize(outside) = %+v, want {0 0}", got)
	}
	got = f.Normalize(LocalPt{8, -3})
	if got != (NormPt{1, 1}) {
		t.Errorf("Normalize(outside) = %+v, want {1 1}", got)
	}
}

func TestFrameInvalid(t *testing.T) {
	if got := (Frame{}).Normalize(LocalPt{1, 1}); got != (NormPt{}) {
		t.Errorf("Normalize on zero frame = %+v, want zero", got)
	}
}
