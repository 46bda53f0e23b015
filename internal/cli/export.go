package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/foamlayout/pkg/errors"
	"github.com/matzehuels/foamlayout/pkg/layout"
	"github.com/matzehuels/foamlayout/pkg/pipeline"
)

// exportFlags select formats and layers for export and render.
type exportFlags struct {
	output   string
	formats  string
	layer    int
	pick     bool
	perLayer bool
	labels   bool
	circles  bool
}

func (f *exportFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output base path (default: input name)")
	cmd.Flags().StringVarP(&f.formats, "format", "f", pipeline.FormatDXF, "output format(s): dxf, svg, json (comma-separated)")
	cmd.Flags().IntVar(&f.layer, "layer", -1, "export a single layer (0-based)")
	cmd.Flags().BoolVar(&f.pick, "pick", false, "choose the layer interactively")
	cmd.Flags().BoolVar(&f.perLayer, "per-layer", false, "write one file per layer")
	cmd.Flags().BoolVar(&f.labels, "labels", false, "label cavities in SVG output")
	cmd.Flags().BoolVar(&f.circles, "circles", false, "emit DXF circles, polygons and chamfered outlines")
	cmd.MarkFlagsMutuallyExclusive("layer", "pick", "per-layer")
}

// exportCommand creates the export command for writing DXF, SVG or JSON from a layout model.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		flags   exportFlags
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "export [layout.json]",
		Short: "Export a layout model as DXF, SVG or JSON",
		Long: `Export a layout model as DXF, SVG or JSON.

DXF output contains the block outline on layer OUTLINE and each cavity as
four LINE entities on CAVITIES_<n>. Without --layer every layer is merged
into one file; --per-layer writes one file per layer instead.

Formats the model cannot produce (for example SVG for a zero-size block) are
skipped with a warning.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := layout.Import(args[0])
			if err != nil {
				return fmt.Errorf("load layout %s: %w", args[0], err)
			}
			return c.runExport(cmd.Context(), m, args[0], flags, noCache)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runExport(ctx context.Context, m layout.Model, input string, flags exportFlags, noCache bool) error {
	formats := pipeline.ParseFormats(flags.formats)
	if err := pipeline.ValidateFormats(formats); err != nil {
		return err
	}

	opts := pipeline.Options{
		Labels:  flags.labels,
		Circles: flags.circles,
		Logger:  c.Logger,
	}
	switch {
	case flags.pick:
		layer, ok, err := pickLayer(m)
		if err != nil {
			return err
		}
		if !ok {
			printInfo("No layer selected")
			return nil
		}
		opts.Layer = &layer
	case flags.layer >= 0:
		opts.Layer = &flags.layer
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	base := outputBase(flags.output, input)
	if opts.Layer != nil {
		base = fmt.Sprintf("%s_layer%d", base, *opts.Layer+1)
	}

	if flags.perLayer {
		return c.exportLayers(ctx, runner, m, base, formats, opts)
	}

	prog := newProgress(c.Logger)
	var written []string
	for _, format := range formats {
		fopts := opts
		fopts.Formats = []string{format}
		artifacts, cached, err := runner.RenderWithCacheInfo(ctx, m, fopts)
		if errors.Is(err, errors.ErrCodeNoOutput) {
			printWarning("No %s output for this layout", format)
			continue
		}
		if err != nil {
			return fmt.Errorf("export %s: %w", format, err)
		}
		path := base + "." + format
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		c.Logger.Debug("wrote artifact", "path", path, "bytes", len(artifacts[format]), "cached", cached)
		written = append(written, path)
	}
	prog.done(fmt.Sprintf("Exported %d file(s)", len(written)))

	if len(written) == 0 {
		return errors.New(errors.ErrCodeNoOutput, "nothing to export")
	}
	printSuccess("Export complete")
	for _, path := range written {
		printFile(path)
	}
	return nil
}

func (c *CLI) exportLayers(ctx context.Context, runner *pipeline.Runner, m layout.Model, base string, formats []string, opts pipeline.Options) error {
	var written []string
	for _, format := range formats {
		if format == pipeline.FormatJSON {
			printWarning("json has no per-layer form, skipping")
			continue
		}
		layers, err := runner.ExportLayers(ctx, m, format, opts)
		if err != nil {
			return fmt.Errorf("export %s layers: %w", format, err)
		}
		for i, data := range layers {
			path := fmt.Sprintf("%s_layer%d.%s", base, i+1, format)
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			written = append(written, path)
		}
	}

	printSuccess("Exported %s", plural(len(written), "file", "files"))
	for _, path := range written {
		printFile(path)
	}
	return nil
}
