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

	"github.com/example/charcoalshop/pkg/bootstrap"
	"github.com/example/charcoalshop/pkg/config"
	"github.com/example/charcoalshop/pkg/discovery"
	"github.com/example/charcoalshop/pkg/grpc"
	"github.com/example/charcoalshop/pkg/logging"
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

	logger.Info("Starting order service",
		zap.String("name", cfg.Server.Name),
		zap.Int("port", cfg.Server.Port))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialise services", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Close(closeCtx); err != nil {
			logger.Warn("Shutdown incomplete", zap.Error(err))
		}
	}()

	server, health := grpc.NewServer(grpc.NewOrderServer(app.Ledger, app.Payments, logger), &cfg.Auth, logger)

	// Connect to etcd for service discovery
	var sd *discovery.ServiceDiscovery
	instance := &discovery.ServiceInstance{
		Name: cfg.Server.Name,
		Host: advertiseHost(cfg.Server.Host),
		Port: cfg.Server.Port,
	}
	if cfg.Etcd.Enabled() {
		sd, err = discovery.NewServiceDiscovery(&cfg.Etcd, logger)
		if err != nil {
			logger.Warn("Failed to connect to etcd, continuing without registration", zap.Error(err))
		} else {
			defer sd.Close()
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return grpc.Serve(server, cfg.Server.Addr(), logger)
	})
	if sd != nil {
		g.Go(func() error {
			// Register service
			if err := sd.Register(gctx, instance); err != nil {
				logger.Warn("Failed to register service", zap.Error(err))
				return nil
			}
			logger.Info("Service registered in etcd",
				zap.String("name", instance.Name),
				zap.String("address", instance.Addr()))
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Received shutdown signal")
		health.Shutdown()

		// Deregister service
		if sd != nil {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := sd.Deregister(dctx, instance); err != nil {
				logger.Error("Failed to deregister service", zap.Error(err))
			}
		}
		server.GracefulStop()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Order service error", zap.Error(err))
	}
	logger.Info("Service stopped")
}

// advertiseHost turns a wildcard bind address into one other processes can dial.
func advertiseHost(host string) string {
	switch host {
	case "", "0.0.0.0", "::":
		return "127.0.0.1"
	}
	return host
}
