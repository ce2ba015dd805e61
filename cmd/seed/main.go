// Command seed loads the storefront catalog into MongoDB and ensures an admin
// user exists in MySQL. It is safe to run repeatedly.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/charcoalshop/pkg/auth"
	"github.com/example/charcoalshop/pkg/config"
	"github.com/example/charcoalshop/pkg/logging"
	"github.com/example/charcoalshop/pkg/models"
	"github.com/example/charcoalshop/pkg/notify"
	"github.com/example/charcoalshop/pkg/repository"
)

const defaultMaxOrderQuantity = 10000

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config file")
	adminEmail := flag.String("admin-email", "admin@manvithcharcoal.com", "admin account email")
	adminName := flag.String("admin-name", "Admin User", "admin account name")
	checkEmail := flag.String("check-email", "", "send one notification to this address and wait for the result")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	mongoRepo, err := repository.NewMongoRepository(&cfg.MongoDB, cfg.Timeouts.Database)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer mongoRepo.Close(context.Background())

	if err := mongoRepo.EnsureIndexes(ctx); err != nil {
		logger.Fatal("Failed to create indexes", zap.Error(err))
	}

	// Cached copies go stale once a product is rewritten.
	redisRepo := repository.NewRedisRepository(&cfg.Redis)
	defer redisRepo.Close()

	products := mongoRepo.Products()
	now := time.Now()
	for _, p := range storefront {
		if p.MaxOrderQuantity == 0 {
			p.MaxOrderQuantity = defaultMaxOrderQuantity
		}
		p.InStock = p.Stock > 0
		p.IsActive = true
		p.CreatedAt = now

		id, err := products.Upsert(ctx, p)
		if err != nil {
			logger.Fatal("Failed to seed product", zap.String("slug", p.Slug), zap.Error(err))
		}
		logger.Info("Product seeded", zap.String("slug", p.Slug), zap.String("id", id.Hex()))

		if err := redisRepo.Del(ctx, "product:"+id.Hex(), "product:slug:"+p.Slug); err != nil {
			logger.Warn("Failed to evict cached product", zap.String("slug", p.Slug), zap.Error(err))
		}
	}

	db, err := repository.OpenMySQL(&cfg.MySQL)
	if err != nil {
		logger.Fatal("Failed to connect to MySQL", zap.Error(err))
	}
	users := repository.NewUserRepository(db, redisRepo, cfg.Timeouts.Database, logger)
	admin, err := users.Upsert(ctx, &models.User{
		Name:  *adminName,
		Email: *adminEmail,
		Phone: "9876543210",
		Role:  models.RoleAdmin,
	})
	if err != nil {
		logger.Fatal("Failed to seed admin user", zap.Error(err))
	}

	token, err := auth.GenerateToken(&cfg.Auth, admin.ID, admin.Role)
	if err != nil {
		logger.Fatal("Failed to sign admin token", zap.Error(err))
	}

	fmt.Printf("Seeded %d products\n", len(storefront))
	fmt.Printf("Admin user: %s (%s)\n", admin.Email, admin.ID)
	fmt.Printf("Admin token: %s\n", token)

	if *checkEmail != "" {
		if err := sendCheck(cfg, *checkEmail, logger); err != nil {
			logger.Fatal("Notification check failed", zap.String("to", *checkEmail), zap.Error(err))
		}
		fmt.Printf("Notification check sent to %s\n", *checkEmail)
	}
}

func sendCheck(cfg *config.Config, to string, logger *zap.Logger) error {
	mailer, err := notify.NewMailer(&cfg.Notifier, logger)
	if err != nil {
		return err
	}
	d, err := notify.NewDispatcher(mailer, cfg.Notifier.Timeout, cfg.Shop.Company.Name, logger)
	if err != nil {
		return err
	}
	defer d.Stop()

	email, err := notify.CheckEmail(to, cfg.Shop.Company.Name)
	if err != nil {
		return err
	}
	return d.Deliver("notification_check", email, cfg.Notifier.Timeout+time.Second)
}
