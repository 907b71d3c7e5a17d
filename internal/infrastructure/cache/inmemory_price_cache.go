package cache

import (
	"context"
	"sync"
	"time"

	"github.com/erp/pricesync/internal/domain/catalog"
)

type quoteEntry struct {
	quote     catalog.PriceQuote
	expiresAt time.Time
}

// InMemoryPriceCache implements PriceCache with a map and per-entry expiry.
// Suitable for single-instance deployments and tests.
type InMemoryPriceCache struct {
	mu        sync.RWMutex
	entries   map[int64]quoteEntry
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryPriceCache creates the cache and starts a goroutine that purges
// expired entries every cleanupInterval. Close stops it.
func NewInMemoryPriceCache(cleanupInterval time.Duration) *InMemoryPriceCache {
	c := &InMemoryPriceCache{
		entries:  make(map[int64]quoteEntry),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	if cleanupInterval > 0 {
		c.wg.Add(1)
		go c.cleanupLoop(cleanupInterval)
	}
	return c
}

// Get returns the cached quote unless it has expired
func (c *InMemoryPriceCache) Get(_ context.Context, productID int64) (catalog.PriceQuote, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[productID]
	if !ok || !c.now().Before(e.expiresAt) {
		return catalog.PriceQuote{}, false, nil
	}
	return e.quote, true, nil
}

// Set stores quote for ttl; a non-positive ttl stores nothing
func (c *InMemoryPriceCache) Set(_ context.Context, quote catalog.PriceQuote, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[quote.ProductID] = quoteEntry{quote: quote, expiresAt: c.now().Add(ttl)}
	return nil
}

// Delete evicts the quote for productID
func (c *InMemoryPriceCache) Delete(_ context.Context, productID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, productID)
	return nil
}

// Len returns the number of stored entries, expired ones included
func (c *InMemoryPriceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the cleanup goroutine. Safe to call more than once.
func (c *InMemoryPriceCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

func (c *InMemoryPriceCache) cleanupLoop(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.purgeExpired()
		case <-c.stopChan:
			return
		}
	}
}

func (c *InMemoryPriceCache) purgeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for id, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, id)
		}
	}
}

var _ PriceCache = (*InMemoryPriceCache)(nil)
