package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/foamlayout/pkg/layout"
	"github.com/matzehuels/foamlayout/pkg/pipeline"
)

// layoutFlags are the model-building flags shared by build and render. Zero
// values keep the config file's defaults.
type layoutFlags struct {
	units       string
	fallback    string
	depthIn     float64
	thicknessIn float64
	refresh     bool
	noCache     bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.units, "units", "", "override the document units: in, mm")
	cmd.Flags().StringVar(&f.fallback, "fallback", "", "irregular loop handling: poly (default), bbox (deprecated)")
	cmd.Flags().Float64Var(&f.depthIn, "depth", 0, "cavity depth in inches (default from config, 1)")
	cmd.Flags().Float64Var(&f.thicknessIn, "thickness", 0, "block thickness in inches (default from config, 2)")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "rebuild even when a cached model exists")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

// apply overlays the flags that were set on opts.
func (f *layoutFlags) apply(opts *pipeline.Options) {
	if f.units != "" {
		opts.Units = f.units
	}
	if f.fallback != "" {
		opts.Fallback = f.fallback
	}
	if f.depthIn != 0 {
		opts.DepthIn = f.depthIn
	}
	if f.thicknessIn != 0 {
		opts.ThicknessIn = f.thicknessIn
	}
	opts.Refresh = f.refresh
}

// buildCommand creates the build command for turning a faces document into a layout model.
func (c *CLI) buildCommand() *cobra.Command {
	var (
		output string
		flags  layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "build [faces.json]",
		Short: "Build a layout model from a traced faces document",
		Long: `Build a layout model from a traced faces document.

The largest loop becomes the foam block; every other loop becomes a cavity,
classified as a circle, a rectangle or a polygon. Block dimensions are
snapped to friendly fractions of an inch. The output is a layout.json file
that 'export' turns into DXF or SVG.

Documents without a usable outer loop produce the default 10×10 block.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd.Context(), args[0], output, flags)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	flags.register(cmd)

	return cmd
}

func (c *CLI) runBuild(ctx context.Context, input, output string, flags layoutFlags) error {
	m, cached, err := c.buildModel(ctx, input, flags)
	if err != nil {
		return err
	}

	if output == "" {
		output = outputBase("", input) + ".layout.json"
	}
	if err := layout.Export(m, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Layout complete")
	printFile(output)
	printLayoutStats(layout.BlockLabel(m.Block), len(m.Cavities), len(m.Stack), cached)
	printNewline()
	printNextStep("Export", appName+" export "+output+" -f dxf,svg")
	return nil
}

// buildModel reads input and builds its model through a cached runner.
func (c *CLI) buildModel(ctx context.Context, input string, flags layoutFlags) (layout.Model, bool, error) {
	data, err := os.ReadFile(input)
	if err != nil {
		return layout.Model{}, false, fmt.Errorf("read %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return layout.Model{}, false, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := c.layoutOptions()
	flags.apply(&opts)

	m, cached, err := runner.BuildWithCacheInfo(ctx, data, opts)
	if err != nil {
		return layout.Model{}, false, fmt.Errorf("build layout: %w", err)
	}
	return m, cached, nil
}
