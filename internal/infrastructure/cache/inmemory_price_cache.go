package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/lagerhub/backend/internal/domain/pricing"
)

const defaultCleanupInterval = 30 * time.Second

// InMemoryPriceCache implements pricing.Cache using in-process storage.
// Price quotes from external marketplaces are expensive to fetch, so
// repeated searches for the same query within the TTL are served from
// here instead of re-scraping.
type InMemoryPriceCache struct {
	entries    sync.Map // map[string]*cacheEntry
	defaultTTL time.Duration
	logger     *zap.Logger
	stopCh     chan struct{}
	stopped    int32

	hits   int64
	misses int64
}

// cacheEntry wraps a cached result with expiration time
type cacheEntry struct {
	result    *pricing.Result
	expiresAt time.Time
}

func (e *cacheEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// NewInMemoryPriceCache creates a new in-memory price cache
func NewInMemoryPriceCache(defaultTTL time.Duration, logger *zap.Logger) *InMemoryPriceCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &InMemoryPriceCache{
		defaultTTL: defaultTTL,
		logger:     logger,
		stopCh:     make(chan struct{}),
	}

	go c.cleanupExpired()

	return c
}

// cacheKey normalizes a query into a cache key
func cacheKey(query string) string {
	return "price:" + strings.ToLower(strings.TrimSpace(query))
}

// Get retrieves a cached result for the query
func (c *InMemoryPriceCache) Get(_ context.Context, query string) (*pricing.Result, bool, error) {
	key := cacheKey(query)

	if value, ok := c.entries.Load(key); ok {
		entry := value.(*cacheEntry)
		if !entry.isExpired() {
			atomic.AddInt64(&c.hits, 1)
			c.logger.Debug("price cache hit", zap.String("query", query))
			return entry.result, true, nil
		}
		c.entries.Delete(key)
	}

	atomic.AddInt64(&c.misses, 1)
	c.logger.Debug("price cache miss", zap.String("query", query))
	return nil, false, nil
}

// Set stores a result for the query
func (c *InMemoryPriceCache) Set(_ context.Context, query string, result *pricing.Result, ttl time.Duration) error {
	if result == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.entries.Store(cacheKey(query), &cacheEntry{
		result:    result,
		expiresAt: time.Now().Add(ttl),
	})
	c.logger.Debug("cached price result",
		zap.String("query", query),
		zap.Int("quotes", len(result.Quotes)),
		zap.Duration("ttl", ttl))
	return nil
}

// Delete removes a cached result
func (c *InMemoryPriceCache) Delete(_ context.Context, query string) error {
	c.entries.Delete(cacheKey(query))
	return nil
}

// Close stops the cleanup goroutine
func (c *InMemoryPriceCache) Close() error {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

// Stats returns hit and miss counters
func (c *InMemoryPriceCache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// cleanupExpired periodically removes expired entries
func (c *InMemoryPriceCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.doCleanup()
		}
	}
}

func (c *InMemoryPriceCache) doCleanup() {
	var removed int
	c.entries.Range(func(key, value any) bool {
		if value.(*cacheEntry).isExpired() {
			c.entries.Delete(key)
			removed++
		}
		return true
	})
	if removed > 0 {
		c.logger.Debug("cleaned up expired price cache entries", zap.Int("removed", removed))
	}
}

var _ pricing.Cache = (*InMemoryPriceCache)(nil)
