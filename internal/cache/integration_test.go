//go:build integration

package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shoply/shoply/internal/testutil"
)

func newCacheTestEnv(t *testing.T) (context.Context, *Cache) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	redisURL := testutil.RequireEnv(t, "REDIS_URL")

	c, err := New(ctx, redisURL, Options{})
	if err != nil {
		t.Skipf("Skipping integration test: Redis not available: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if err := c.client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("flush redis: %v", err)
	}

	return ctx, c
}

func TestIntegrationProductCache_RoundTrip(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	product := testutil.NewTestProduct(t, "cached-widget")

	// Cold read is a miss, not an error.
	got, err := c.GetProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("GetProduct failed: %v", err)
	}
	if got != nil {
		t.Fatal("Expected a miss before SetProduct")
	}

	if err := c.SetProduct(ctx, product); err != nil {
		t.Fatalf("SetProduct failed: %v", err)
	}

	got, err = c.GetProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("GetProduct failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected a hit after SetProduct")
	}
	if got.Name != product.Name || got.Price != product.Price {
		t.Errorf("cached product mismatch: %+v", got)
	}

	if err := c.DeleteProduct(ctx, product.ID); err != nil {
		t.Fatalf("DeleteProduct failed: %v", err)
	}

	got, err = c.GetProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("GetProduct failed: %v", err)
	}
	if got != nil {
		t.Error("Expected a miss after DeleteProduct")
	}
}

func TestIntegrationProductCache_CorruptEntryIsMiss(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	if err := c.client.Set(ctx, "product:corrupt", "{not json", 0).Err(); err != nil {
		t.Fatalf("seed corrupt entry: %v", err)
	}

	got, err := c.GetProduct(ctx, "corrupt")
	if err != nil {
		t.Fatalf("GetProduct failed: %v", err)
	}
	if got != nil {
		t.Error("Corrupt entry must read as a miss")
	}
}

// TestIntegrationAuthRateLimit_Concurrency verifies the token bucket under
// concurrent load against one client IP.
func TestIntegrationAuthRateLimit_Concurrency(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	ip := "203.0.113.7"
	rate := 2
	burst := 5

	var allowed, rejected int64

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 3; j++ {
				result, err := c.CheckAuthRateLimit(ctx, ip, rate, burst)
				if err != nil {
					t.Errorf("CheckAuthRateLimit error: %v", err)
					return
				}
				if result.Allowed {
					atomic.AddInt64(&allowed, 1)
				} else {
					atomic.AddInt64(&rejected, 1)
				}
			}
		}()
	}

	wg.Wait()

	t.Logf("rate limit test: %d allowed, %d rejected", allowed, rejected)

	// 30 requests with burst 5 at 2/s: only the bucket plus a refill's worth
	// can pass.
	if allowed > int64(burst+rate+1) {
		t.Errorf("Too many requests allowed: %d (expected <= %d)", allowed, burst+rate+1)
	}
	if rejected == 0 {
		t.Error("Expected some requests to be rejected")
	}
}

// A separate IP has its own bucket.
func TestIntegrationAuthRateLimit_PerIP(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	// Drain the first IP's bucket.
	for i := 0; i < 5; i++ {
		if _, err := c.CheckAuthRateLimit(ctx, "198.51.100.1", 1, 5); err != nil {
			t.Fatalf("CheckAuthRateLimit failed: %v", err)
		}
	}
	drained, err := c.CheckAuthRateLimit(ctx, "198.51.100.1", 1, 5)
	if err != nil {
		t.Fatalf("CheckAuthRateLimit failed: %v", err)
	}
	if drained.Allowed {
		t.Error("Expected the drained bucket to reject")
	}

	fresh, err := c.CheckAuthRateLimit(ctx, "198.51.100.2", 1, 5)
	if err != nil {
		t.Fatalf("CheckAuthRateLimit failed: %v", err)
	}
	if !fresh.Allowed {
		t.Error("A different IP must not share the drained bucket")
	}
}
