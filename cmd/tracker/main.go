package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rickgao/coindcx-tracker/internal/api"
	"github.com/rickgao/coindcx-tracker/internal/config"
	"github.com/rickgao/coindcx-tracker/internal/refresh"
	"github.com/rickgao/coindcx-tracker/internal/server"
	"github.com/rickgao/coindcx-tracker/internal/snapshot"
	"github.com/rickgao/coindcx-tracker/internal/stream"
	"github.com/rickgao/coindcx-tracker/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to config file (built-in defaults when empty)")
	flag.Parse()

	// Load configuration
	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadAndValidate(*configPath)
		if err != nil {
			slog.Error("failed to load config", "error", err, "config", *configPath)
			os.Exit(1)
		}
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting tracker",
		"version", version.String(),
		"config", *configPath,
		"rest_url", cfg.Exchange.RestURL,
		"public_url", cfg.Exchange.PublicURL,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	apiClient := api.NewClient(
		cfg.Exchange.RestURL,
		cfg.Exchange.PublicURL,
		api.WithLogger(logger),
		api.WithTimeout(cfg.Exchange.Timeout),
		api.WithRetries(cfg.Exchange.Retries(), cfg.Exchange.RetryInterval()),
		api.WithRateLimit(cfg.Exchange.RequestsPerSecond, cfg.Exchange.Burst),
	)

	stores := refresh.NewStores()

	var (
		hub  *stream.Hub
		opts []refresh.Option
	)
	if cfg.Stream.IsEnabled() {
		hub = stream.NewHub(stream.Config{
			BufferSize:     cfg.Stream.BufferSize,
			WriteTimeout:   cfg.Stream.WriteTimeout,
			PingInterval:   cfg.Stream.PingInterval,
			PongTimeout:    cfg.Stream.PongTimeout,
			MaxSubscribers: cfg.Stream.MaxSubscribers,
		}, logger)
		opts = append(opts, refresh.WithTickerListener(server.TickerFeed(hub, logger)))
	}

	engine := refresh.New(refresh.Config{
		Interval:         cfg.Refresh.Interval,
		OrderbookTimeout: cfg.Refresh.OrderbookTimeout,
		ExcludeMarkets:   cfg.Refresh.ExcludeMarkets,
	}, apiClient, stores, logger, opts...)

	// Initial load. A failed half is retried by the background loop.
	logger.Info("loading market data...")
	if err := engine.RefreshOnce(ctx); err != nil {
		logger.Warn("initial refresh incomplete", "error", err)
	}
	logger.Info("market data loaded",
		"markets", stores.Markets.Len(),
		"tickers", stores.Tickers.Len(),
	)

	if err := engine.Start(ctx); err != nil {
		logger.Error("failed to start refresh engine", "error", err)
		os.Exit(1)
	}

	deps := server.Deps{
		Snapshots: snapshot.New(stores, engine, logger),
		Engine:    engine,
	}
	if hub != nil {
		deps.Stream = hub
	}

	srv := server.New(server.Config{
		Addr:         cfg.Server.Addr(),
		Mode:         cfg.Server.Mode,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, deps, logger)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.ListenAndServe()
	}()

	logger.Info("tracker running",
		"addr", cfg.Server.Addr(),
		"stream", cfg.Stream.IsEnabled(),
	)

	// Wait for shutdown
	select {
	case <-ctx.Done():
	case err := <-srvErr:
		if err != nil {
			logger.Error("http server error", "error", err)
		}
		cancel()
	}

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown", "error", err)
	}
	if err := engine.Stop(shutdownCtx); err != nil {
		logger.Warn("refresh engine shutdown", "error", err)
	}
	if hub != nil {
		if err := hub.Close(); err != nil {
			logger.Warn("stream hub shutdown", "error", err)
		}
	}

	logger.Info("tracker stopped")
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
