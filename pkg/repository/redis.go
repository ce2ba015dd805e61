package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/example/charcoalshop/pkg/apperr"
	"github.com/example/charcoalshop/pkg/config"
	"github.com/example/charcoalshop/pkg/models"
)

type RedisRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRepository(cfg *config.RedisConfig) *RedisRepository {
	return NewRedisRepositoryWithClient(redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}), cfg.TTL)
}

func NewRedisRepositoryWithClient(client *redis.Client, ttl time.Duration) *RedisRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisRepository{client: client, ttl: ttl}
}

func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisRepository) Del(ctx context.Context, keys ...string) error {
	return cacheErr(r.client.Del(ctx, keys...).Err(), keys[0])
}

func (r *RedisRepository) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return cacheErr(r.client.Set(ctx, key, data, expiration).Err(), key)
}

// GetJSON decodes the cached value into dest. A missing key is NotFound.
func (r *RedisRepository) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return cacheErr(err, key)
	}
	return json.Unmarshal(data, dest)
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}

func cacheErr(err error, key string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis.Nil):
		return apperr.NotFound("cache miss for %s", key)
	}
	return apperr.Wrap(apperr.KindTransient, err, "cache unavailable")
}

type UserCache struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

func userKey(id string) string {
	return fmt.Sprintf("user:%s", id)
}

func (r *RedisRepository) CacheUser(ctx context.Context, user *UserCache) error {
	return r.SetJSON(ctx, userKey(user.ID), user, 30*time.Minute)
}

func (r *RedisRepository) GetUserCache(ctx context.Context, userID string) (*UserCache, error) {
	var user UserCache
	if err := r.GetJSON(ctx, userKey(userID), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func trackingKey(orderNumber string) string {
	return fmt.Sprintf("tracking:%s", orderNumber)
}

func (r *RedisRepository) GetTracking(ctx context.Context, orderNumber string) (*models.TrackingView, error) {
	var view models.TrackingView
	if err := r.GetJSON(ctx, trackingKey(orderNumber), &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (r *RedisRepository) CacheTracking(ctx context.Context, view *models.TrackingView) error {
	return r.SetJSON(ctx, trackingKey(view.OrderNumber), view, r.ttl)
}

func (r *RedisRepository) InvalidateTracking(ctx context.Context, orderNumber string) error {
	return r.Del(ctx, trackingKey(orderNumber))
}
