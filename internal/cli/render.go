package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/foamlayout/pkg/layout"
	"github.com/matzehuels/foamlayout/pkg/store"
)

// renderCommand creates the render command, a build followed by an export.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		layoutOpts layoutFlags
		exportOpts exportFlags
		save       bool
	)

	cmd := &cobra.Command{
		Use:   "render [faces.json]",
		Short: "Build and export a faces document in one step",
		Long: `Build and export a faces document in one step.

Equivalent to 'build' followed by 'export' without writing the intermediate
layout.json. With --save the model and its rendered artifacts are stored as
a package in the configured store, ready to be served by 'serve'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], layoutOpts, exportOpts, save)
		},
	}

	layoutOpts.register(cmd)
	exportOpts.register(cmd)
	cmd.Flags().BoolVar(&save, "save", false, "store the result as a layout package")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, lf layoutFlags, ef exportFlags, save bool) error {
	m, cached, err := c.buildModel(ctx, input, lf)
	if err != nil {
		return err
	}
	printLayoutStats(layout.BlockLabel(m.Block), len(m.Cavities), len(m.Stack), cached)

	if err := c.runExport(ctx, m, input, ef, lf.noCache); err != nil {
		return err
	}

	if save {
		id, err := c.savePackage(ctx, m)
		if err != nil {
			return err
		}
		printNewline()
		printKeyValue("Package", id)
	}
	return nil
}

func (c *CLI) savePackage(ctx context.Context, m layout.Model) (string, error) {
	st, err := c.newStore(ctx)
	if err != nil {
		return "", fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	p := store.NewPackage(m)
	if err := st.Save(ctx, p); err != nil {
		return "", fmt.Errorf("save package: %w", err)
	}
	c.Logger.Debug("saved package", "id", p.ID, "backend", c.config.Store.Backend)
	return p.ID, nil
}
