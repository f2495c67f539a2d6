package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Alias1177/Regimes/internal/config"
	"github.com/Alias1177/Regimes/internal/metrics"
)

// app carries the state shared by every subcommand
type app struct {
	cfg     *config.Config
	metrics *metrics.Registry

	configPath  string
	logLevel    string
	metricsAddr string
}

// Execute builds the command tree and runs it
func Execute(ctx context.Context) error {
	return newRootCmd(&app{}).ExecuteContext(ctx)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "regimes",
		Short:         "Segment price series into up and down regimes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML config file")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	flags.StringVar(&a.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	root.AddCommand(
		segmentCmd(a),
		classifyCmd(a),
		bandCmd(a),
		scaleCmd(a),
		indicatorsCmd(a),
		correlateCmd(a),
		fetchCmd(a),
		runJobsCmd(a),
	)
	return root
}

func (a *app) init(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.configPath != "" {
		if err := cfg.LoadFile(a.configPath); err != nil {
			return err
		}
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.metricsAddr != "" {
		cfg.MetricsAddr = a.metricsAddr
	}
	setupLogging(cfg.LogLevel)

	a.cfg = cfg
	a.metrics = metrics.New()

	if cfg.MetricsAddr != "" {
		a.serveMetrics(ctx, cfg.MetricsAddr)
	}
	return nil
}

func (a *app) serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info().Str("addr", addr).Msg("Serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Metrics server failed")
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Metrics server shutdown failed")
		}
	}()
}
