package pipeline

import (
	"github.com/matzehuels/foamlayout/pkg/faces"
	"github.com/matzehuels/foamlayout/pkg/layout"
)

// GenerateLayout builds the layout model for doc. It never fails; a document
// without a usable outer loop yields the default block, which is logged.
func GenerateLayout(doc faces.Document, opts Options) layout.Model {
	opts.SetLayoutDefaults()

	ext := faces.Extract(doc)
	if ext.Skipped > 0 {
		opts.Logger.Debug("skipped loops with too few points", "count", ext.Skipped)
	}
	if !ext.OK {
		opts.Logger.Warn("no usable outer loop, using default block",
			"loops", len(doc.Loops),
			"length_in", layout.DefaultLengthIn,
			"width_in", layout.DefaultWidthIn)
	}

	m := layout.Build(ext, opts.LayoutOptions()...)
	opts.Logger.Debug("built layout",
		"block", layout.BlockLabel(m.Block),
		"corner", m.Block.CornerStyle,
		"cavities", len(m.Cavities))
	return m
}
