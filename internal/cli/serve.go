package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/treemap/pkg/server"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout and render HTTP API",
		Long: `Serve the layout and render HTTP API.

Endpoints:
  POST /v1/layout                 lay out a tree and store it under an id
  POST /v1/render/{format}        lay out and render a tree in one call
  GET  /v1/layouts/{id}           fetch a stored layout
  GET  /v1/layouts/{id}/{format}  render a stored layout
  GET  /healthz, /version

Stored layouts and rendered artifacts live in the configured cache backend,
so several servers can share one Redis or MongoDB instance.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := c.cfg().serverConfig(cmd, addr)
			if err != nil {
				return err
			}
			cfg.Logger = c.Logger.WithPrefix("server")

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			printInfo("Serving on %s", StyleLink.Render("http://"+displayAddr(cfg.Addr)))
			printDetail("Press Ctrl+C to stop")
			return server.New(runner, cfg).ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching (stored layouts are then unavailable)")

	return cmd
}

// displayAddr turns a listen address such as ":8080" into a host:port.
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
