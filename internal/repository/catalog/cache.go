// Package catalog caches the school catalog snapshot in memory.
package catalog

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/kailas-cloud/kindermatch/internal/domain"
	"github.com/kailas-cloud/kindermatch/internal/metrics"
)

const snapshotKey = "catalog"

// Fetcher is the consumer interface for the upstream catalog source.
type Fetcher interface {
	Fetch(ctx context.Context) ([]domain.School, error)
}

// Cache wraps a Fetcher with a TTL snapshot cache. A search within the TTL
// serves the cached snapshot; expiry triggers a refetch on the next call.
type Cache struct {
	fetcher Fetcher
	cache   *gocache.Cache
	ttl     time.Duration
	logger  *zap.Logger
}

// New creates a catalog cache. logger can be nil.
func New(fetcher Fetcher, ttl time.Duration, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		fetcher: fetcher,
		cache:   gocache.New(ttl, 2*ttl),
		ttl:     ttl,
		logger:  logger,
	}
}

// Catalog returns the current snapshot, fetching from upstream on a miss.
// A fetch failure with no cached snapshot propagates the fetch error
// (domain.ErrCatalogUnavailable from the source).
func (c *Cache) Catalog(ctx context.Context) ([]domain.School, error) {
	if v, ok := c.cache.Get(snapshotKey); ok {
		metrics.CatalogCacheTotal.WithLabelValues("hit").Inc()
		return v.([]domain.School), nil
	}
	metrics.CatalogCacheTotal.WithLabelValues("miss").Inc()

	schools, err := c.fetcher.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh catalog snapshot: %w", err)
	}

	c.cache.Set(snapshotKey, schools, c.ttl)
	c.logger.Debug("catalog snapshot refreshed", zap.Int("schools", len(schools)))
	return schools, nil
}

// Invalidate drops the cached snapshot, forcing a refetch on the next call.
func (c *Cache) Invalidate() {
	c.cache.Delete(snapshotKey)
}
