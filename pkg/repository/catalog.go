package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/charcoalshop/pkg/apperr"
	"github.com/example/charcoalshop/pkg/models"
	"github.com/example/charcoalshop/pkg/shop"
)

// CachedCatalog reads products through Redis. Cache failures fall through to
// the store and are only logged.
type CachedCatalog struct {
	store  shop.Catalog
	cache  *RedisRepository
	logger *zap.Logger
}

func NewCachedCatalog(store shop.Catalog, cache *RedisRepository, logger *zap.Logger) *CachedCatalog {
	return &CachedCatalog{store: store, cache: cache, logger: logger.Named("catalog")}
}

func (c *CachedCatalog) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return c.load(ctx, fmt.Sprintf("product:%s", id), func() (*models.Product, error) {
		return c.store.GetProduct(ctx, id)
	})
}

func (c *CachedCatalog) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return c.load(ctx, fmt.Sprintf("product:slug:%s", slug), func() (*models.Product, error) {
		return c.store.GetProductBySlug(ctx, slug)
	})
}

func (c *CachedCatalog) load(ctx context.Context, key string, fetch func() (*models.Product, error)) (*models.Product, error) {
	var cached models.Product
	err := c.cache.GetJSON(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		c.logger.Warn("Product cache read failed", zap.String("key", key), zap.Error(err))
	}

	product, err := fetch()
	if err != nil {
		return nil, err
	}
	if err := c.cache.SetJSON(ctx, key, product, c.cache.ttl); err != nil {
		c.logger.Warn("Failed to cache product", zap.String("key", key), zap.Error(err))
	}
	return product, nil
}
