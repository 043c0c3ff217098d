package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cycler/pkg/observability"
	"github.com/matzehuels/cycler/pkg/server"
)

type serveOpts struct {
	addr      string
	noMetrics bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the document operations over HTTP",
		Long: `Serve exposes normalize, convert, inspect and graph as POST endpoints
under /v1, with Prometheus metrics at /metrics. The server shuts down
gracefully on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, &opts)
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&opts.noMetrics, "no-metrics", false, "disable the /metrics endpoint")
	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, o *serveOpts) error {
	ctx := cmd.Context()

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if o.addr != "" {
		cfg.Server.Addr = o.addr
	}
	runner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	srvOpts := server.Options{
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Strict:       cfg.Strict,
		Logger:       c.Logger,
	}
	if !o.noMetrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		prom, err := observability.NewPrometheus(reg)
		if err != nil {
			return err
		}
		prom.Install()
		defer observability.Reset()
		srvOpts.Metrics = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	}

	p := printer{c.Stderr}
	p.success("Serving on %s", cfg.Server.Addr)
	p.detail("classes: %d registered, cache: %s", runner.Registry.Len(), cfg.Cache.Backend)

	srv := server.New(runner, srvOpts)
	return srv.ListenAndServe(ctx, cfg.Server.Addr, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)
}
