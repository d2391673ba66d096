package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/accessmap/internal/server"
	"github.com/matzehuels/accessmap/pkg/observability"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		src         sourceFlags
		addr        string
		corsOrigins []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive map over HTTP",
		Long: `Serve the interactive map, its legend and the region API over HTTP.

Routes: / (page), /map.svg, /legend.svg, /map.geojson, /api/regions,
/api/regions/{code}, /api/fills, /healthz, /readyz and /metrics.
Map routes accept clinicMax and providerMax query parameters.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := server.Config{
				Addr:            c.cfg.Server.Addr,
				CORSOrigins:     c.cfg.Server.CORSOrigins,
				ShutdownTimeout: c.cfg.Server.ShutdownTimeout.Duration,
				Options:         c.options(&src),
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("cors-origin") {
				cfg.CORSOrigins = corsOrigins
			}

			runner, err := c.newRunner(ctx, src.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
			metrics.Install()
			defer observability.Reset()

			srv := server.New(cfg, runner,
				server.WithLogger(c.Logger),
				server.WithMetrics(metrics, prometheus.DefaultGatherer))
			printInfo("Serving on %s", StyleLink.Render(displayAddr(cfg.Addr)))
			return srv.Run(ctx)
		},
	}

	src.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().StringSliceVar(&corsOrigins, "cors-origin", nil, "allowed CORS origin (repeatable, default from config)")
	return cmd
}

// displayAddr turns ":8080" into a clickable URL.
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
