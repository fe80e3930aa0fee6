package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depcollect/pkg/observability"
	"github.com/matzehuels/depcollect/pkg/observability/prom"
	"github.com/matzehuels/depcollect/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		metrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve collection over HTTP",
		Long: `Serve exposes collection as a JSON API:

  POST /v1/collect                 collect a graph
  GET  /v1/versions/{group}/{name} list available versions
  GET  /healthz                    liveness
  GET  /metrics                    Prometheus metrics (unless --metrics=false)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			var reg *prometheus.Registry
			if metrics {
				reg = prometheus.NewRegistry()
				reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
				hooks := prom.New(reg)
				observability.SetCollectHooks(hooks)
				observability.SetCacheHooks(hooks)
				observability.SetHTTPHooks(hooks)
				defer observability.Reset()
			}

			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			if addr == "" {
				addr = runner.Settings.Server.Addr
			}
			srv := server.New(runner, server.Options{Logger: logger, Registry: reg})
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from settings, :8080)")
	cmd.Flags().BoolVar(&metrics, "metrics", true, "expose Prometheus metrics on /metrics")
	return cmd
}
