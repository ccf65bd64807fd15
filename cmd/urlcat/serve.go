package main

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"mercator-hq/urlcat/pkg/cli"
	"mercator-hq/urlcat/pkg/config"
	"mercator-hq/urlcat/pkg/rules/manager"
	"mercator-hq/urlcat/pkg/server"
	"mercator-hq/urlcat/pkg/telemetry/metrics"
	"mercator-hq/urlcat/pkg/telemetry/tracing"
)

var serveFlags struct {
	listen   string
	rules    string
	watch    bool
	schedule string
	tlsCert  string
	tlsKey   string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the categorization HTTP API",
	Long: `Start the categorization HTTP API.

The server loads the rule file at startup and keeps serving the last good
ruleset when a reload fails. Rules are reloaded on POST /v1/rules/reload,
on file changes (--watch) and on a cron schedule (--reload-schedule).

Endpoints:
  GET  /v1/categorize?url=...   categorize one URL
  POST /v1/categorize           categorize {"urls": [...]}
  GET  /v1/rules                active ruleset
  POST /v1/rules/reload         reload the rule file
  GET  /health, /ready          liveness and readiness
  GET  /metrics                 Prometheus metrics

Examples:
  urlcat serve --config urlcat.yaml
  urlcat serve -c categorization.txt --listen :8080 --watch
  urlcat serve --reload-schedule "*/5 * * * *"
  urlcat serve --tls-cert server.crt --tls-key server.key`,
	Args: cobra.NoArgs,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveFlags.listen, "listen", "", "listen address (overrides server.listen_address)")
	serveCmd.Flags().StringVarP(&serveFlags.rules, "categorization-rules-file", "c", "", "rule file (overrides rules.file)")
	serveCmd.Flags().BoolVar(&serveFlags.watch, "watch", false, "reload the rule file when it changes")
	serveCmd.Flags().StringVar(&serveFlags.schedule, "reload-schedule", "", "cron expression for periodic reloads")
	serveCmd.Flags().StringVar(&serveFlags.tlsCert, "tls-cert", "", "certificate file; enables HTTPS together with --tls-key")
	serveCmd.Flags().StringVar(&serveFlags.tlsKey, "tls-key", "", "private key file for --tls-cert")
}

func applyServeFlags(cmd *cobra.Command, cfg *config.Config) error {
	if serveFlags.listen != "" {
		cfg.Server.ListenAddress = serveFlags.listen
	}
	if serveFlags.rules != "" {
		cfg.Rules.File = serveFlags.rules
	}
	if serveFlags.schedule != "" {
		cfg.Rules.ReloadSchedule = serveFlags.schedule
	}
	if flagChanged(cmd, "watch") {
		cfg.Rules.Watch = serveFlags.watch
	}
	if serveFlags.tlsCert != "" || serveFlags.tlsKey != "" {
		cfg.Server.TLS.Enabled = true
		cfg.Server.TLS.CertFile = serveFlags.tlsCert
		cfg.Server.TLS.KeyFile = serveFlags.tlsKey
	}
	if err := config.Validate(cfg); err != nil {
		return cli.NewConfigError("flags", err.Error())
	}
	return nil
}

// newCollector builds the metrics collector with Go runtime and process
// metrics registered alongside. It returns nil when metrics are disabled.
func newCollector(cfg *config.MetricsConfig) *metrics.Collector {
	if !cfg.Enabled {
		return nil
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return metrics.NewCollector(cfg, registry)
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, logger := currentConfig()
	if err := applyServeFlags(cmd, cfg); err != nil {
		return err
	}

	tracer, err := tracing.New(&cfg.Tracing, Version)
	if err != nil {
		return cli.NewCommandError("serve", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(ctx); err != nil {
			logger.Warn("Failed to flush traces", "error", err)
		}
	}()

	collector := newCollector(&cfg.Metrics)

	mgr, err := manager.New(&cfg.Rules, logger, collector)
	if err != nil {
		return cli.NewCommandError("serve", err)
	}
	rs, err := mgr.Load()
	if err != nil {
		return cli.NewCommandError("serve", err)
	}
	logger.Info("Rules loaded",
		"path", rs.Path,
		"ruleset_id", rs.ID,
		"segments", len(rs.Root.Segments),
		"warnings", len(rs.Warnings),
	)

	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	if cfg.Rules.Watch {
		go func() {
			if err := mgr.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Rule file watcher stopped", "error", err)
			}
		}()
	}

	if cfg.Rules.ReloadSchedule != "" {
		scheduler, err := mgr.StartSchedule(ctx, cfg.Rules.ReloadSchedule)
		if err != nil {
			return cli.NewCommandError("serve", err)
		}
		defer scheduler.Stop()
		logger.Info("Scheduled rule reloads", "schedule", cfg.Rules.ReloadSchedule, "next_run", scheduler.NextRun())
	}

	srv := server.New(cfg, mgr, collector, logger)
	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("serve", err)
	}
	return nil
}
