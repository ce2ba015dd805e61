// Command orderctl runs staff operations against the internal order service.
//
//	orderctl [-config path] [-addr host:port] track  <orderNumber>
//	orderctl [-config path] [-addr host:port] status <orderNumber> <status> [-tracking n] [-description d] [-location l]
//	orderctl [-config path] [-addr host:port] event  <orderNumber> <status> [-description d] [-location l]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/example/charcoalshop/pkg/auth"
	"github.com/example/charcoalshop/pkg/config"
	"github.com/example/charcoalshop/pkg/discovery"
	"github.com/example/charcoalshop/pkg/grpc"
	"github.com/example/charcoalshop/pkg/logging"
	"github.com/example/charcoalshop/pkg/models"
	"github.com/example/charcoalshop/pkg/shop"
)

const operator = "orderctl"

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config file")
	addr := flag.String("addr", "", "order service address, skips discovery")
	timeout := flag.Duration("timeout", 10*time.Second, "request timeout")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(config.LogConfig{Level: "warn", Encoding: "console", OutputPaths: []string{"stderr"}})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client, err := connect(ctx, cfg, *addr, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer client.Close()

	result, err := run(ctx, client, flag.Arg(0), flag.Args()[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: orderctl [flags] track|status|event <orderNumber> [args]\n")
	flag.PrintDefaults()
}

func connect(ctx context.Context, cfg *config.Config, addr string, logger *zap.Logger) (*grpc.OrderClient, error) {
	token, err := auth.GenerateToken(&cfg.Auth, operator, models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to sign operator token: %w", err)
	}

	if addr == "" {
		var sd *discovery.ServiceDiscovery
		if cfg.Etcd.Enabled() {
			sd, err = discovery.NewServiceDiscovery(&cfg.Etcd, logger)
			if err != nil {
				logger.Warn("Failed to connect to etcd", zap.Error(err))
			} else {
				defer sd.Close()
			}
		}
		addr = grpc.ResolveTarget(ctx, sd, cfg.Server.Name, fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port), logger)
	}
	return grpc.Dial(addr, token)
}

func run(ctx context.Context, client *grpc.OrderClient, command string, args []string) (interface{}, error) {
	orderNumber := args[0]
	switch command {
	case "track":
		return client.TrackOrder(ctx, orderNumber)

	case "status":
		fs := flag.NewFlagSet("status", flag.ContinueOnError)
		tracking := fs.String("tracking", "", "carrier tracking number")
		description := fs.String("description", "", "tracking event description")
		location := fs.String("location", "", "tracking event location")
		if len(args) < 2 {
			return nil, fmt.Errorf("status requires <orderNumber> <status>")
		}
		if err := fs.Parse(args[2:]); err != nil {
			return nil, err
		}
		return client.UpdateOrderStatus(ctx, orderNumber, shop.StatusUpdate{
			Status:         models.OrderStatus(args[1]),
			TrackingNumber: *tracking,
			Description:    *description,
			Location:       *location,
		})

	case "event":
		fs := flag.NewFlagSet("event", flag.ContinueOnError)
		description := fs.String("description", "", "tracking event description")
		location := fs.String("location", "", "tracking event location")
		if len(args) < 2 {
			return nil, fmt.Errorf("event requires <orderNumber> <status>")
		}
		if err := fs.Parse(args[2:]); err != nil {
			return nil, err
		}
		return client.AppendTrackingEvent(ctx, orderNumber, models.TrackingEvent{
			Status:      args[1],
			Description: *description,
			Location:    *location,
		})
	}
	return nil, fmt.Errorf("unknown command %q", command)
}
