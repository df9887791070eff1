package analytics

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/pricesniper/backend/internal/models"
)

const snapshotCacheSize = 256

// SnapshotCache memoizes trend snapshots on the read path. The cache
// key pairs the product with the ID of its newest price point, so a
// freshly sampled price always misses and forces a recompute; a stale
// snapshot can never be served across a price change.
type SnapshotCache struct {
	cache *lru.Cache[snapshotKey, models.TrendSnapshot]
}

type snapshotKey struct {
	productID   string
	lastPointID uint
}

func NewSnapshotCache() *SnapshotCache {
	cache, _ := lru.New[snapshotKey, models.TrendSnapshot](snapshotCacheSize)
	return &SnapshotCache{cache: cache}
}

func (c *SnapshotCache) Get(productID string, lastPointID uint) (models.TrendSnapshot, bool) {
	return c.cache.Get(snapshotKey{productID: productID, lastPointID: lastPointID})
}

func (c *SnapshotCache) Add(productID string, lastPointID uint, snap models.TrendSnapshot) {
	c.cache.Add(snapshotKey{productID: productID, lastPointID: lastPointID}, snap)
}
