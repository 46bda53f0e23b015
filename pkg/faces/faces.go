// Package faces reads traced "faces" documents and extracts the cleaned loops
// the layout builder works from.
//
// # Document Format
//
// A faces document is produced by the vector tracer:
//
//	{
//	  "units": "mm",
//	  "outerLoopIndex": 0,
//	  "loops": [
//	    {"points": [{"x": 0, "y": 0}, {"x": 254, "y": 0}, ...]},
//	    {"points": [...]}
//	  ]
//	}
//
// Decoding is lenient: coordinates may be numbers or numeric strings and any
// other value decodes as NaN, which [Extract] filters out. The only decoding
// error is malformed JSON syntax.
//
// # Extraction
//
// [Extract] never fails. It drops non-finite points, skips loops with fewer
// than three usable points, picks the outer loop and computes its bounding
// box. When nothing usable remains, [Extraction.OK] is false and the builder
// falls back to its default model.
package faces

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/matzehuels/foamlayout/pkg/geom"
	"github.com/matzehuels/foamlayout/pkg/units"
)

// Document is a decoded faces document.
type Document struct {
	Units          string `json:"units"`
	OuterLoopIndex *int   `json:"outerLoopIndex,omitempty"`
	Loops          []Loop `json:"loops"`
}

// Loop is one traced contour.
type Loop struct {
	Points []Point `json:"points"`
}

// Point is a traced vertex. Unparseable coordinates decode as NaN.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// UnmarshalJSON decodes a point without ever failing on bad coordinates.
func (p *Point) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		// Not an object: keep the point but mark it unusable.
		p.X, p.Y = math.NaN(), math.NaN()
		return nil
	}
	p.X = lenientFloat(raw["x"])
	p.Y = lenientFloat(raw["y"])
	return nil
}

// MarshalJSON encodes non-finite coordinates as null so encoding never fails.
func (p Point) MarshalJSON() ([]byte, error) {
	return []byte(`{"x":` + jsonFloat(p.X) + `,"y":` + jsonFloat(p.Y) + `}`), nil
}

func jsonFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "null"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func lenientFloat(raw json.RawMessage) float64 {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return math.NaN()
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return v
		}
	}
	return math.NaN()
}

// Trace converts the point to trace space.
func (p Point) Trace() geom.TracePt { return geom.TracePt{X: p.X, Y: p.Y} }

// Read decodes a faces document from r.
func Read(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode faces: %w", err)
	}
	return doc, nil
}

// Parse decodes a faces document from data.
func Parse(data []byte) (Document, error) {
	return Read(bytes.NewReader(data))
}

// Import reads a faces document from the file at path.
func Import(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Unit returns the document's units, defaulting to inches.
func (d Document) Unit() units.Unit { return units.Parse(d.Units) }
