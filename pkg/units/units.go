// Package units converts traced measurements to inches and snaps them to
// dimensions a foam shop can actually cut.
//
// [SnapPretty] prefers whole inches, then common fractions, and only falls
// back to sixteenths when nothing prettier is close:
//
//	units.SnapPretty(2.996, units.Inches)     // 3
//	units.SnapPretty(1.126, units.Inches)     // 1.125
//	units.SnapPretty(25.4, units.Millimeters) // 1
package units

import (
	"math"
	"strings"
)

// Unit identifies the measurement system of a faces document.
type Unit string

// Supported units.
const (
	Inches      Unit = "in"
	Millimeters Unit = "mm"
)

// MillimetersPerInch is the exact conversion factor.
const MillimetersPerInch = 25.4

// Snap tolerances, in inches.
const (
	wholeTolerance    = 0.01
	fractionTolerance = 0.005
)

// Parse maps a unit string to a Unit. Anything that is not recognisably
// millimeters is treated as inches.
func Parse(s string) Unit {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mm", "millimeter", "millimeters", "millimetre", "millimetres":
		return Millimeters
	}
	return Inches
}

// Scale returns the number of inches per unit u.
func Scale(u Unit) float64 {
	if u == Millimeters {
		return 1 / MillimetersPerInch
	}
	return 1
}

// ToInches converts v from unit u to inches.
func ToInches(v float64, u Unit) float64 {
	if u == Millimeters {
		return v / MillimetersPerInch
	}
	return v
}

// SnapPretty converts v to inches and snaps it to the prettiest nearby value:
// an integer within 0.01", then a multiple of 1/8, 1/4 or 1/2 within 0.005",
// otherwise the nearest 1/16". Non-finite input yields 0.
func SnapPretty(v float64, u Unit) float64 {
	in := ToInches(v, u)
	if math.IsNaN(in) || math.IsInf(in, 0) {
		return 0
	}

	if r := math.Round(in); within(in, r, wholeTolerance) {
		return r
	}
	for _, step := range []float64{1.0 / 8, 1.0 / 4, 1.0 / 2} {
		if r := roundTo(in, step); within(in, r, fractionTolerance) {
			return r
		}
	}
	return roundTo(in, 1.0/16)
}

// SnapInches is SnapPretty for values already in inches.
func SnapInches(v float64) float64 { return SnapPretty(v, Inches) }

func roundTo(v, step float64) float64 {
	return math.Round(v/step) * step
}

// within compares with a little slack so values sitting exactly on the
// tolerance boundary still snap.
func within(v, target, tol float64) bool {
	return math.Abs(v-target) <= tol+1e-9
}
