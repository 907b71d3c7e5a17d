package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/erp/pricesync/internal/domain/catalog"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "price:product:"

// RedisPriceCache implements PriceCache using Redis. It lets several server
// instances share cached quotes and evictions.
type RedisPriceCache struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// NewRedisPriceCache connects to Redis and verifies the connection
func NewRedisPriceCache(ctx context.Context, cfg RedisConfig) (*RedisPriceCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisPriceCacheWithClient(client, cfg.KeyPrefix), nil
}

// NewRedisPriceCacheWithClient creates a cache with an existing Redis client
func NewRedisPriceCacheWithClient(client *redis.Client, keyPrefix string) *RedisPriceCache {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisPriceCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

func (c *RedisPriceCache) key(productID int64) string {
	return c.keyPrefix + strconv.FormatInt(productID, 10)
}

// Get returns the cached quote for productID
func (c *RedisPriceCache) Get(ctx context.Context, productID int64) (catalog.PriceQuote, bool, error) {
	raw, err := c.client.Get(ctx, c.key(productID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return catalog.PriceQuote{}, false, nil
	}
	if err != nil {
		return catalog.PriceQuote{}, false, fmt.Errorf("failed to read cached price: %w", err)
	}

	var quote catalog.PriceQuote
	if err := sonic.Unmarshal(raw, &quote); err != nil {
		return catalog.PriceQuote{}, false, fmt.Errorf("failed to decode cached price: %w", err)
	}
	return quote, true, nil
}

// Set stores quote with the given TTL
func (c *RedisPriceCache) Set(ctx context.Context, quote catalog.PriceQuote, ttl time.Duration) error {
	raw, err := sonic.Marshal(quote)
	if err != nil {
		return fmt.Errorf("failed to encode price: %w", err)
	}
	if err := c.client.Set(ctx, c.key(quote.ProductID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache price: %w", err)
	}
	return nil
}

// Delete evicts the quote for productID
func (c *RedisPriceCache) Delete(ctx context.Context, productID int64) error {
	if err := c.client.Del(ctx, c.key(productID)).Err(); err != nil {
		return fmt.Errorf("failed to evict cached price: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisPriceCache) Close() error {
	return c.client.Close()
}

var _ PriceCache = (*RedisPriceCache)(nil)
