package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liquidityQuote/internal/config"
	"liquidityQuote/internal/server"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadServe(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	q, err := newQuoter(ctx, cfg.Config, logger, registry)
	if err != nil {
		return err
	}
	defer q.Close()

	srv := server.New(q.engine, server.Options{
		Logger:         logger,
		Metrics:        q.metrics,
		Gatherer:       registry,
		Recorder:       q.recorder,
		RequestTimeout: cfg.RequestTimeout,
	})
	if err := srv.Run(ctx, cfg.Addr); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}
