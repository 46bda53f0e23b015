// Package pkg holds the libraries behind foamlayout, which turns the traced
// faces of a tool case into a foam block layout and the cut files for it.
//
// # Overview
//
// A tracer photographs tools lying on a cutting board and emits a faces
// document: closed loops in trace coordinates, Y up, with one loop marked as
// the outer boundary of the block. foamlayout classifies every inner loop as
// a circle, a rectangle or a free-form polygon, places it in normalized block
// coordinates and exports the result for a CNC router or a customer preview.
//
// The packages are organized in three layers:
//
//  1. Geometry: [geom], [units], [shape]
//  2. Model: [faces], [layout]
//  3. Delivery: [export/dxf], [export/svg], [pipeline], [cache], [store], [server]
//
// # Architecture
//
// The data flow through foamlayout:
//
//	faces JSON (tracer output)
//	         ↓
//	    [faces] package (decode, lint, extract loops)
//	         ↓
//	    [shape] package (circle / rect / polygon, chamfer detection)
//	         ↓
//	    [layout] package (block, cavities, layer stack)
//	         ↓
//	    [export/dxf] and [export/svg] packages
//	         ↓
//	    DXF cut files, SVG previews, layout JSON
//
// [pipeline] runs these stages behind a content-addressed [cache]. The CLI
// and [server] both go through it, so a file exported on the command line
// and a file downloaded from the server are identical.
//
// # Quick Start
//
// Build a layout from a faces file and write the cut file:
//
//	import (
//	    "os"
//
//	    "github.com/matzehuels/foamlayout/pkg/export/dxf"
//	    "github.com/matzehuels/foamlayout/pkg/faces"
//	    "github.com/matzehuels/foamlayout/pkg/layout"
//	)
//
//	doc, err := faces.Import("case.json")
//	if err != nil {
//	    return err
//	}
//	m := layout.FromFaces(doc, layout.WithDepth(1.5))
//	if out := dxf.Render(m); out != nil {
//	    os.WriteFile("case.dxf", out, 0o644)
//	}
//
// # Main Packages
//
// ## Geometry
//
// [geom] defines the coordinate spaces (trace, local, normalized and drawing
// points) and the frames that map between them. Normalizing flips Y exactly
// once; everything downstream is Y down.
//
// [units] converts millimetres to inches and snaps lengths to the nearest
// sixteenth so block sizes read like a tape measure.
//
// [shape] classifies a loop and detects a chamfered outer boundary.
//
// ## Model
//
// [faces] decodes tracer output leniently. Non-finite coordinates and short
// loops are dropped during extraction; [faces.Lint] reports them instead.
//
// [layout] builds the [layout.Model]: the block dimensions, its cavities in
// normalized coordinates and the stack of foam layers. A document without an
// outer loop still yields the default 10×10×2 block.
//
// ## Delivery
//
// [export/dxf] writes R12 ASCII DXF with one CAVITIES layer per foam layer
// plus an OUTLINE layer. [export/svg] draws a single layer for previews.
// Both return nil when there is nothing to draw.
//
// [pipeline] validates options, caches models and artifacts, and fans out
// per-layer exports.
//
// [cache] offers file, Redis and null backends. [store] persists saved
// layout packages in SQLite, MongoDB or memory.
//
// [server] exposes the pipeline and the package store over HTTP.
//
// ## Support
//
// [errors] carries the error codes shared by the CLI and the HTTP API.
// [config] loads the TOML configuration. [observability] provides hooks for
// metrics and tracing. [buildinfo] reports the version set at link time.
package pkg
