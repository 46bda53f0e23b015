package units

import (
	"math"
	"testing"
)

func TestSnapPretty(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		unit Unit
		want float64
	}{
		{"exact integer", 3, Inches, 3},
		{"just below integer", 2.991, Inches, 3},
		{"just above integer", 5.0099, Inches, 5},
		{"eighth", 1.126, Inches, 1.125},
		{"three eighths", 0.3745, Inches, 0.375},
		{"half", 2.5031, Inches, 2.5},
		{"sixteenth fallback", 1.06, Inches, 1.0625},
		{"sixteenth rounding", 0.97, Inches, 1},
		{"mm one inch", 25.4, Millimeters, 1},
		{"mm two and a half", 63.5, Millimeters, 2.5},
		{"mm noisy", 50.9, Millimeters, 2},
		{"zero", 0, Inches, 0},
		{"nan", math.NaN(), Inches, 0},
		{"inf", math.Inf(1), Inches, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SnapPretty(tt.in, tt.unit); got != tt.want {
				t.Errorf("SnapPretty(%v, %q) = %v, want %v", tt.in, tt.unit, got, tt.want)
			}
		})
	}
}

func TestSnapPrettyIntegerNeighbourhood(t *testing.T) {
	for n := 0; n <= 48; n++ {
		for _, d := range []float64{-0.01, -0.0075, -0.003, 0, 0.002, 0.006, 0.01} {
			v := float64(n) + d
			if v < 0 {
				continue
			}
			if got := SnapPretty(v, Inches); got != float64(n) {
				t.Fatalf("SnapPretty(%v) = %v, want %d", v, got, n)
			}
		}
	}
}

func TestSnapPrettyOutputIsSixteenth(t *testing.T) {
	for v := 0.0; v < 12; v += 0.0137 {
		got := SnapPretty(v, Inches)
		if frac := got * 16; math.Abs(frac-math.Round(frac)) > 1e-9 {
			t.Fatalf("SnapPretty(%v) = %v, not a multiple of 1/16", v, got)
		}
		if math.Abs(got-v) > 1.0/32+1e-9 {
			t.Fatalf("SnapPretty(%v) = %v moved more than 1/32", v, got)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Unit
	}{
		{"in", Inches},
		{"mm", Millimeters},
		{" MM ", Millimeters},
		{"millimetres", Millimeters},
		{"", Inches},
		{"furlongs", Inches},
	}
	for _, tt := range tests {
		if got := Parse(tt.in); got != tt.want {
			t.Errorf("Parse(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToInches(t *testing.T) {
	if got := ToInches(12.7, Millimeters); got != 0.5 {
		t.Errorf("ToInches(12.7mm) = %v, want 0.5", got)
	}
	if got := ToInches(3, Inches); got != 3 {
		t.Errorf("ToInches(3in) = %v, want 3", got)
	}
	if got := Scale(Millimeters) * MillimetersPerInch; math.Abs(got-1) > 1e-12 {
		t.Errorf("Scale(mm) * 25.4 = %v, want 1", got)
	}
}
