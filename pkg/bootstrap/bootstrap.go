// Package bootstrap assembles the shop services from configuration. The
// gateway and the order service share it so both run the same stack.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/charcoalshop/pkg/config"
	"github.com/example/charcoalshop/pkg/events"
	"github.com/example/charcoalshop/pkg/notify"
	"github.com/example/charcoalshop/pkg/repository"
	"github.com/example/charcoalshop/pkg/shop"
)

type App struct {
	Config *config.Config
	Logger *zap.Logger

	Mongo     *repository.MongoRepository
	Redis     *repository.RedisRepository
	MySQL     *gorm.DB
	Users     *repository.UserRepository
	Catalog   *repository.CachedCatalog
	Publisher events.Publisher
	Notifier  *notify.Dispatcher

	Ledger   *shop.Ledger
	Cart     *shop.CartService
	Checkout *shop.CheckoutService
	Payments *shop.PaymentService
}

// New connects every backing store and builds the services. Mongo is
// required; a missing MySQL only disables customer emails.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	pricing, err := shop.PricingFromConfig(cfg.Shop)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, Logger: logger}

	app.Mongo, err = repository.NewMongoRepository(&cfg.MongoDB, cfg.Timeouts.Database)
	if err != nil {
		return nil, err
	}
	if err := app.Mongo.Ping(ctx); err != nil {
		app.Close(ctx)
		return nil, fmt.Errorf("failed to reach MongoDB: %w", err)
	}

	// Redis is a cache; the services keep working when it is down.
	app.Redis = repository.NewRedisRepository(&cfg.Redis)
	if err := app.Redis.Ping(ctx); err != nil {
		logger.Warn("Redis connection failed", zap.Error(err))
	} else {
		logger.Info("Redis connected successfully")
	}

	activity := &shop.Activity{
		Auditor: app.Mongo.Auditor(cfg.Server.Name),
		Logger:  logger.Named("activity"),
	}

	app.MySQL, err = repository.OpenMySQL(&cfg.MySQL)
	if err != nil {
		logger.Warn("MySQL unavailable, customer emails disabled", zap.Error(err))
	} else {
		app.Users = repository.NewUserRepository(app.MySQL, app.Redis, cfg.Timeouts.Database, logger)
		activity.Users = app.Users
	}

	mailer, err := notify.NewMailer(&cfg.Notifier, logger)
	if err != nil {
		app.Close(ctx)
		return nil, err
	}
	app.Notifier, err = notify.NewDispatcher(mailer, cfg.Notifier.Timeout, cfg.Shop.Company.Name, logger)
	if err != nil {
		app.Close(ctx)
		return nil, err
	}
	activity.Notifier = app.Notifier

	app.Publisher = events.New(&cfg.Kafka, logger)
	activity.Publisher = app.Publisher

	app.Catalog = repository.NewCachedCatalog(app.Mongo.Products(), app.Redis, logger)
	app.Ledger = shop.NewLedger(app.Mongo.Orders(), logger,
		shop.WithTrackingCache(app.Redis),
		shop.WithOrderPrefix(cfg.Shop.OrderPrefix))
	app.Cart = shop.NewCartService(app.Mongo.Carts(), app.Catalog, logger)
	app.Checkout = shop.NewCheckoutService(app.Mongo.Carts(), app.Catalog, app.Ledger, pricing, activity, logger)
	app.Payments = shop.NewPaymentService(app.Ledger, shop.PaymentSettingsFromConfig(cfg), activity, logger)

	return app, nil
}

// Prepare creates indexes and aligns the order counter with existing orders.
func (a *App) Prepare(ctx context.Context) error {
	if err := a.Mongo.EnsureIndexes(ctx); err != nil {
		return err
	}
	seq, err := a.Mongo.Orders().SyncSequence(ctx)
	if err != nil {
		return err
	}
	a.Logger.Info("Order sequence ready", zap.Int64("sequence", seq))
	return nil
}

// Close stops the notifier first so queued emails are not lost, then releases
// the connections.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Notifier != nil {
		a.Notifier.Stop()
	}
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close event publisher: %w", err))
		}
	}
	if a.MySQL != nil {
		if sqlDB, err := a.MySQL.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close MySQL: %w", err))
			}
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}
	if a.Mongo != nil {
		if err := a.Mongo.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to close MongoDB: %w", err))
		}
	}
	return errors.Join(errs...)
}
