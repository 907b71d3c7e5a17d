package cache

import (
	"context"
	"testing"

	"github.com/erp/pricesync/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// unreachableRedis points at a port nothing listens on
var unreachableRedis = config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}

func TestPriceCacheFactory_CreateCache(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled cache is a no-op", func(t *testing.T) {
		f := NewPriceCacheFactory(config.RedisConfig{}, config.PriceCacheConfig{Enabled: false})
		c, err := f.CreateCache(ctx)
		require.NoError(t, err)
		assert.IsType(t, NopPriceCache{}, c)
	})

	t.Run("redis disabled uses in-memory cache", func(t *testing.T) {
		f := NewPriceCacheFactory(config.RedisConfig{}, config.PriceCacheConfig{Enabled: true})
		c, err := f.CreateCache(ctx)
		require.NoError(t, err)
		defer c.Close()
		assert.IsType(t, &InMemoryPriceCache{}, c)
	})

	t.Run("unreachable redis falls back with a warning", func(t *testing.T) {
		core, recorded := observer.New(zapcore.WarnLevel)
		f := NewPriceCacheFactory(unreachableRedis,
			config.PriceCacheConfig{Enabled: true, InMemoryFallback: true},
			WithLogger(zap.New(core)),
		)
		c, err := f.CreateCache(ctx)
		require.NoError(t, err)
		defer c.Close()

		assert.IsType(t, &InMemoryPriceCache{}, c)
		assert.Equal(t, 1, recorded.Len())
	})

	t.Run("unreachable redis without fallback fails", func(t *testing.T) {
		f := NewPriceCacheFactory(unreachableRedis, config.PriceCacheConfig{Enabled: true})
		_, err := f.CreateCache(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis required")
	})
}
