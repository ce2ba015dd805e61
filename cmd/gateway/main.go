package main

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/charcoalshop/gateway"
	"github.com/example/charcoalshop/pkg/bootstrap"
	"github.com/example/charcoalshop/pkg/config"
	"github.com/example/charcoalshop/pkg/logging"
	"github.com/example/charcoalshop/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config file")
	flag.Parse()

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Setup logger
	logger, err := logging.New(cfg.Log)
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting API Gateway",
		zap.Int("port", cfg.Gateway.Port),
		zap.String("host", cfg.Gateway.Host))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialise services", zap.Error(err))
	}
	if err := app.Prepare(ctx); err != nil {
		logger.Fatal("Failed to prepare database", zap.Error(err))
	}

	gw := gateway.NewGateway(cfg, gateway.Services{
		Cart:     app.Cart,
		Checkout: app.Checkout,
		Ledger:   app.Ledger,
		Payments: app.Payments,
		Catalog:  app.Catalog,
		Products: app.Mongo.Products(),
		Audit:    app.Mongo,
		Ping:     app.Mongo.Ping,
		Metrics:  metrics.New("gateway"),
	}, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(gw.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Received shutdown signal")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return gw.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Gateway error", zap.Error(err))
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Close(closeCtx); err != nil {
		logger.Warn("Shutdown incomplete", zap.Error(err))
	}
	logger.Info("Gateway stopped")
}
