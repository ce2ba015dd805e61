package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/example/charcoalshop/pkg/apperr"
	"github.com/example/charcoalshop/pkg/config"
	"github.com/example/charcoalshop/pkg/models"
)

// OpenMySQL connects gorm and migrates the users table.
func OpenMySQL(cfg *config.MySQLConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)

	if err := db.AutoMigrate(&models.User{}); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return db, nil
}

// UserRepository resolves users from MySQL with a Redis read-through cache.
type UserRepository struct {
	db      *gorm.DB
	cache   *RedisRepository
	timeout time.Duration
	logger  *zap.Logger
}

func NewUserRepository(db *gorm.DB, cache *RedisRepository, timeout time.Duration, logger *zap.Logger) *UserRepository {
	return &UserRepository{db: db, cache: cache, timeout: timeout, logger: logger.Named("users")}
}

func (r *UserRepository) GetUser(ctx context.Context, id string) (*models.User, error) {
	if r.cache != nil {
		if cached, err := r.cache.GetUserCache(ctx, id); err == nil {
			return &models.User{ID: cached.ID, Name: cached.Name, Email: cached.Email, Phone: cached.Phone, Role: cached.Role}, nil
		}
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user %s not found", id)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperr.Wrap(apperr.KindTransient, err, "user store unavailable")
		}
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}

	r.cacheUser(ctx, &user)
	return &user, nil
}

// Upsert creates the user or updates name, phone and role for an existing email.
func (r *UserRepository) Upsert(ctx context.Context, user *models.User) (*models.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var existing models.User
	err := r.db.WithContext(ctx).Where("email = ?", user.Email).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if user.ID == "" {
			user.ID = uuid.NewString()
		}
		if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		existing = *user
	case err != nil:
		return nil, fmt.Errorf("failed to look up user: %w", err)
	default:
		updates := map[string]interface{}{"name": user.Name, "phone": user.Phone, "role": user.Role}
		if err := r.db.WithContext(ctx).Model(&existing).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
		existing.Name, existing.Phone, existing.Role = user.Name, user.Phone, user.Role
	}

	r.cacheUser(ctx, &existing)
	return &existing, nil
}

func (r *UserRepository) cacheUser(ctx context.Context, user *models.User) {
	if r.cache == nil {
		return
	}
	err := r.cache.CacheUser(ctx, &UserCache{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Phone: user.Phone,
		Role:  user.Role,
	})
	if err != nil {
		r.logger.Warn("Failed to cache user", zap.String("user_id", user.ID), zap.Error(err))
	}
}
