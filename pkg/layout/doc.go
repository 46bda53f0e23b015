// Package layout holds the structured foam layout model and builds it from
// traced loops.
//
// A [Model] is one [Block], a flat cavity list and a stack of [Layer]s.
// Cavity positions are normalized to the block's top-left unit square: X runs
// left to right and Y runs top to bottom, both in [0,1]. [Build] is the only
// place trace-space coordinates (Y up) are flipped into that space.
//
// # Building
//
//	doc, _ := faces.Import("faces.json")
//	m := layout.FromFaces(doc, layout.WithDepth(1.5))
//
// Building never fails. A document without a usable outer loop yields
// [Default], a 10×10×2 in. square block with one empty layer.
//
// # Cavity shapes
//
// [Cavity.Shape] is one of [Rect], [Circle] or [Poly]. In JSON the variant is
// flattened into the cavity object with a "shape" tag:
//
//	{"id":"cav-1","shape":"circle","diameterIn":1,"depthIn":1,"x":0.45,"y":0.41}
//
// Decoding clamps positions and polygon points to [0,1] and degrades unknown
// or incomplete shapes to rectangles.
package layout
