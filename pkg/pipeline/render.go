package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/foamlayout/pkg/errors"
	"github.com/matzehuels/foamlayout/pkg/export/dxf"
	"github.com/matzehuels/foamlayout/pkg/export/svg"
	"github.com/matzehuels/foamlayout/pkg/layout"
)

// Render generates output artifacts in the requested formats. A format whose
// exporter produces nothing fails with ErrCodeNoOutput so callers can disable
// the matching download.
func Render(m layout.Model, opts Options) (map[string][]byte, error) {
	if opts.Layer != nil {
		if err := errors.ValidateLayerIndex(*opts.Layer, len(m.Stack)); err != nil {
			return nil, err
		}
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := renderFormat(m, format, opts)
		if err != nil {
			return nil, err
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderFormat(m layout.Model, format string, opts Options) ([]byte, error) {
	var data []byte
	switch format {
	case FormatDXF:
		data = dxf.Render(m, opts.DXFOptions()...)
	case FormatSVG:
		data = svg.Render(m, opts.SVGOptions()...)
	case FormatJSON:
		b, err := layout.Marshal(m)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render json")
		}
		data = b
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
	}
	if data == nil {
		return nil, errors.New(errors.ErrCodeNoOutput, "%s export produced no output", format)
	}
	return data, nil
}

// RenderLayers renders format once per stack layer, concurrently. The result
// is indexed by layer.
func RenderLayers(ctx context.Context, m layout.Model, format string, opts Options) ([][]byte, error) {
	if format != FormatDXF && format != FormatSVG {
		return nil, errors.New(errors.ErrCodeUnsupported, "per-layer export not available for %s", format)
	}
	n := max(len(m.Stack), 1)
	out := make([][]byte, n)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			layerOpts := opts
			layerOpts.Layer = &i
			data, err := renderFormat(m, format, layerOpts)
			if err != nil {
				return fmt.Errorf("layer %d: %w", i, err)
			}
			out[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
