package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/foamlayout/pkg/geom"
	"github.com/matzehuels/foamlayout/pkg/shape"
)

// cavityJSON is the flattened wire form of a Cavity.
type cavityJSON struct {
	ID             string        `json:"id"`
	Label          string        `json:"label,omitempty"`
	Shape          shape.Kind    `json:"shape"`
	LengthIn       *float64      `json:"lengthIn,omitempty"`
	WidthIn        *float64      `json:"widthIn,omitempty"`
	DiameterIn     *float64      `json:"diameterIn,omitempty"`
	CornerRadiusIn *float64      `json:"cornerRadiusIn,omitempty"`
	DepthIn        float64       `json:"depthIn"`
	X              float64       `json:"x"`
	Y              float64       `json:"y"`
	Points         []geom.NormPt `json:"points,omitempty"`
}

func ptr(v float64) *float64 { return &v }

func val(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// MarshalJSON flattens the shape variant into the layout wire format.
func (c Cavity) MarshalJSON() ([]byte, error) {
	out := cavityJSON{
		ID:      c.ID,
		Label:   c.Label,
		Shape:   c.Kind(),
		DepthIn: c.DepthIn,
		X:       c.Pos.X,
		Y:       c.Pos.Y,
	}
	switch s := c.Shape.(type) {
	case Rect:
		out.LengthIn, out.WidthIn = ptr(s.LengthIn), ptr(s.WidthIn)
		out.CornerRadiusIn = ptr(s.CornerRadiusIn)
	case Circle:
		out.DiameterIn = ptr(s.DiameterIn)
	case Poly:
		out.LengthIn, out.WidthIn = ptr(s.LengthIn), ptr(s.WidthIn)
		out.Points = s.Points
	default:
		out.LengthIn, out.WidthIn = ptr(0), ptr(0)
	}
	return json.Marshal(out)
}

// UnmarshalJSON rebuilds the shape variant. It is fail-soft: positions and
// polygon points are clamped to [0,1], an unknown shape tag becomes a
// rectangle, and a polygon with fewer than three points becomes the
// rectangle of its extents.
func (c *Cavity) UnmarshalJSON(data []byte) error {
	var in cavityJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*c = Cavity{
		ID:      in.ID,
		Label:   in.Label,
		DepthIn: in.DepthIn,
		Pos:     geom.ClampNorm(geom.NormPt{X: in.X, Y: in.Y}),
	}

	switch in.Shape {
	case shape.KindCircle:
		d := val(in.DiameterIn)
		if d == 0 {
			d = max(val(in.LengthIn), val(in.WidthIn))
		}
		c.Shape = Circle{DiameterIn: d}
	case shape.KindPoly:
		if len(in.Points) >= 3 {
			pts := make([]geom.NormPt, len(in.Points))
			for i, p := range in.Points {
				pts[i] = geom.ClampNorm(p)
			}
			c.Shape = Poly{LengthIn: val(in.LengthIn), WidthIn: val(in.WidthIn), Points: pts}
			break
		}
		fallthrough
	default:
		c.Shape = Rect{
			LengthIn:       val(in.LengthIn),
			WidthIn:        val(in.WidthIn),
			CornerRadiusIn: val(in.CornerRadiusIn),
		}
	}
	return nil
}

// Marshal encodes m as indented JSON.
func Marshal(m Model) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(m, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a layout model and restores the single-layer invariant.
func Unmarshal(data []byte) (Model, error) {
	return Read(bytes.NewReader(data))
}

// Write encodes m as indented JSON to w.
func Write(m Model, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	return nil
}

// Read decodes a layout model from r.
func Read(r io.Reader) (Model, error) {
	var m Model
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return Model{}, fmt.Errorf("decode layout: %w", err)
	}
	m.Sync()
	return m, nil
}

// Export writes m to a JSON file at path.
func Export(m Model, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(m, f)
}

// Import reads a layout model from the JSON file at path.
func Import(path string) (Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return Model{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}
