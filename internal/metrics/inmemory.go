package metrics

import "sync/atomic"

// Snapshot captures current in-memory counters.
type Snapshot struct {
	Registrations      uint64
	LoginSuccesses     uint64
	LoginFailures      uint64
	TokensExpired      uint64
	TokensInvalid      uint64
	TokensMalformed    uint64
	ProductCacheHits   uint64
	ProductCacheMisses uint64
	ProductsCreated    uint64
	ProductsUpdated    uint64
	ProductsDeleted    uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	registrations      uint64
	loginSuccesses     uint64
	loginFailures      uint64
	tokensExpired      uint64
	tokensInvalid      uint64
	tokensMalformed    uint64
	productCacheHits   uint64
	productCacheMisses uint64
	productsCreated    uint64
	productsUpdated    uint64
	productsDeleted    uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		Registrations:      atomic.LoadUint64(&m.registrations),
		LoginSuccesses:     atomic.LoadUint64(&m.loginSuccesses),
		LoginFailures:      atomic.LoadUint64(&m.loginFailures),
		TokensExpired:      atomic.LoadUint64(&m.tokensExpired),
		TokensInvalid:      atomic.LoadUint64(&m.tokensInvalid),
		TokensMalformed:    atomic.LoadUint64(&m.tokensMalformed),
		ProductCacheHits:   atomic.LoadUint64(&m.productCacheHits),
		ProductCacheMisses: atomic.LoadUint64(&m.productCacheMisses),
		ProductsCreated:    atomic.LoadUint64(&m.productsCreated),
		ProductsUpdated:    atomic.LoadUint64(&m.productsUpdated),
		ProductsDeleted:    atomic.LoadUint64(&m.productsDeleted),
	}
}

// IncRegistration increments the registration counter.
func (m *InMemoryRecorder) IncRegistration() {
	atomic.AddUint64(&m.registrations, 1)
}

// IncLoginSuccess increments the successful login counter.
func (m *InMemoryRecorder) IncLoginSuccess() {
	atomic.AddUint64(&m.loginSuccesses, 1)
}

// IncLoginFailure increments the failed login counter.
func (m *InMemoryRecorder) IncLoginFailure() {
	atomic.AddUint64(&m.loginFailures, 1)
}

// IncTokenRejected increments the rejection counter for the given reason.
func (m *InMemoryRecorder) IncTokenRejected(reason string) {
	switch reason {
	case "expired":
		atomic.AddUint64(&m.tokensExpired, 1)
	case "malformed":
		atomic.AddUint64(&m.tokensMalformed, 1)
	default:
		atomic.AddUint64(&m.tokensInvalid, 1)
	}
}

// IncProductCacheHit increments the cache hit counter.
func (m *InMemoryRecorder) IncProductCacheHit() {
	atomic.AddUint64(&m.productCacheHits, 1)
}

// IncProductCacheMiss increments the cache miss counter.
func (m *InMemoryRecorder) IncProductCacheMiss() {
	atomic.AddUint64(&m.productCacheMisses, 1)
}

// IncProductCreated increments the product created counter.
func (m *InMemoryRecorder) IncProductCreated() {
	atomic.AddUint64(&m.productsCreated, 1)
}

// IncProductUpdated increments the product updated counter.
func (m *InMemoryRecorder) IncProductUpdated() {
	atomic.AddUint64(&m.productsUpdated, 1)
}

// IncProductDeleted increments the product deleted counter.
func (m *InMemoryRecorder) IncProductDeleted() {
	atomic.AddUint64(&m.productsDeleted, 1)
}
