package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/pricesync/internal/infrastructure/config"
	"go.uber.org/zap"
)

const defaultCleanupInterval = time.Minute

// PriceCacheFactory creates the price cache selected by configuration
type PriceCacheFactory struct {
	redisConfig config.RedisConfig
	cacheConfig config.PriceCacheConfig
	logger      *zap.Logger
}

// PriceCacheFactoryOption is a functional option for configuring the factory
type PriceCacheFactoryOption func(*PriceCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) PriceCacheFactoryOption {
	return func(f *PriceCacheFactory) {
		f.logger = logger
	}
}

// NewPriceCacheFactory creates a new factory
func NewPriceCacheFactory(redisCfg config.RedisConfig, cacheCfg config.PriceCacheConfig, opts ...PriceCacheFactoryOption) *PriceCacheFactory {
	f := &PriceCacheFactory{
		redisConfig: redisCfg,
		cacheConfig: cacheCfg,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateCache returns:
//   - NopPriceCache when price caching is disabled
//   - an in-memory cache when Redis is disabled
//   - a Redis cache when Redis is reachable
//   - an in-memory cache when Redis is unreachable and fallback is allowed
func (f *PriceCacheFactory) CreateCache(ctx context.Context) (PriceCache, error) {
	if !f.cacheConfig.Enabled {
		f.logger.Info("price cache disabled")
		return NopPriceCache{}, nil
	}
	if !f.redisConfig.Enabled {
		f.logger.Info("using in-memory price cache")
		return NewInMemoryPriceCache(defaultCleanupInterval), nil
	}

	c, err := NewRedisPriceCache(ctx, RedisConfig{
		Addr:      f.redisConfig.Addr(),
		Password:  f.redisConfig.Password,
		DB:        f.redisConfig.DB,
		KeyPrefix: f.cacheConfig.KeyPrefix,
	})
	if err == nil {
		f.logger.Info("using Redis price cache", zap.String("addr", f.redisConfig.Addr()))
		return c, nil
	}

	if !f.cacheConfig.InMemoryFallback {
		return nil, fmt.Errorf("redis required for price cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory price cache. "+
		"Price updates on other instances will not evict this cache.",
		zap.Error(err),
	)
	return NewInMemoryPriceCache(defaultCleanupInterval), nil
}
