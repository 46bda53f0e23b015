package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/foamlayout/pkg/cache"
	"github.com/matzehuels/foamlayout/pkg/server"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout API over HTTP",
		Long: `Serve the layout API over HTTP.

Routes:
  POST /api/v1/layouts                  faces JSON → layout JSON (?save=1)
  POST /api/v1/export/{format}          layout JSON → dxf, svg or json
  GET  /api/v1/packages[/{id}]          stored packages
  GET  /admin/packages/{id}/layout.dxf  cut file
  GET  /quote/{id}/preview.svg          customer preview

Cache and store backends come from the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.config.Server.Addr
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()
			// Server entries get their own keyspace on a backend shared with CLI runs.
			runner.Keyer = cache.NewScopedKeyer(runner.Keyer, "server:")

			st, err := c.newStore(ctx)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			c.Logger.Info("starting server",
				"addr", addr,
				"cache", c.config.Cache.Backend,
				"store", c.config.Store.Backend)

			srv := server.New(runner, st,
				server.WithLogger(c.Logger),
				server.WithBuildDefaults(c.config.Build))
			return srv.Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
