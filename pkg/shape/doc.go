// Package shape classifies traced loops as foam-cutting primitives.
//
// # Primitives
//
// An inner loop becomes one of:
//
//   - [KindCircle]: at least [MinCircleVertices] vertices whose distance from
//     the centroid varies by no more than [CircleTolerance] of the mean radius.
//   - [KindRect]: an axis-aligned rectangle. Every vertex sits on the bounding
//     box and the loop fills it.
//   - [KindPoly]: anything else, with its vertices preserved.
//
// The outer loop is tested separately with [DetectChamfer], which recognises
// rectangles with 45° corner cuts from the cardinality of their distinct X
// and Y coordinates.
//
// # Fallback Policy
//
// [FallbackPolygon] is the canonical policy for loops that are neither
// circles nor rectangles. [FallbackBoundingBox] reproduces the older
// behaviour of storing only the bounding rectangle; it discards concavity
// and is kept for layouts that were built before polygon support.
package shape
