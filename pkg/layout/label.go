package layout

import (
	"strconv"

	"github.com/matzehuels/foamlayout/pkg/shape"
)

// Label returns the human-readable description of a cavity, for example
// "2.5×1.5×1 rect" or "⌀1.25×0.75 circle".
func Label(c Cavity) string {
	switch s := c.Shape.(type) {
	case Circle:
		return "⌀" + num(s.DiameterIn) + "×" + num(c.DepthIn) + " " + string(shape.KindCircle)
	default:
		l, w := c.Extent()
		return num(l) + "×" + num(w) + "×" + num(c.DepthIn) + " " + string(c.Kind())
	}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// BlockLabel returns the block size as "L×W×T".
func BlockLabel(b Block) string {
	return num(b.LengthIn) + "×" + num(b.WidthIn) + "×" + num(b.ThicknessIn)
}
