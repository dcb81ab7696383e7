package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shoply/shoply/internal/model"
)

const (
	// productCachePrefix is the Redis key prefix for cached products.
	productCachePrefix = "product:"
	// productCacheTTL is the time-to-live for cached products.
	productCacheTTL = 5 * time.Minute
)

// GetProduct retrieves a cached product by ID.
// Returns nil on a miss; a corrupted entry is treated as a miss.
func (c *Cache) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	key := productCachePrefix + id

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// Cache miss is not an error
		return nil, nil //nolint:nilerr
	}

	var product model.Product
	if err := json.Unmarshal(data, &product); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &product, nil
}

// SetProduct caches a product.
func (c *Cache) SetProduct(ctx context.Context, product *model.Product) error {
	key := productCachePrefix + product.ID

	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}

	return c.client.Set(ctx, key, data, productCacheTTL).Err()
}

// DeleteProduct removes a cached product.
// Called on every product update or delete so reads never serve stale rows
// past the write.
func (c *Cache) DeleteProduct(ctx context.Context, id string) error {
	key := productCachePrefix + id
	return c.client.Del(ctx, key).Err()
}
