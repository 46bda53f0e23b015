// Package geom defines the coordinate spaces used by the foam layout engine
// and the conversions between them.
//
// # Coordinate Spaces
//
// Four spaces appear between a traced faces document and an exported file:
//
//   - [TracePt]: raw tracer output, in the document's units, Y increasing up.
//   - [LocalPt]: block-local inches, origin at the outer loop's lower-left
//     bounding-box corner, Y increasing up.
//   - [NormPt]: the block's unit square, origin at the top-left corner,
//     Y increasing down. Layout models store cavity positions in this space.
//   - [DrawPt]: absolute top-left inches, the space DXF and SVG output use.
//
// Each boundary has exactly one conversion: [TraceFrame.ToLocal],
// [Frame.Normalize] and [Frame.Denormalize]. [Frame.Normalize] is the only
// function that flips the Y axis; nothing downstream flips it again.
package geom
