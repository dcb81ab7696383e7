package metrics

import (
	"sync"
	"testing"
)

func TestInMemoryRecorder_Counters(t *testing.T) {
	t.Parallel()

	m := NewInMemory()

	m.IncRegistration()
	m.IncLoginSuccess()
	m.IncLoginFailure()
	m.IncLoginFailure()
	m.IncProductCacheHit()
	m.IncProductCacheMiss()
	m.IncProductCreated()
	m.IncProductUpdated()
	m.IncProductDeleted()

	snap := m.Snapshot()
	if snap.Registrations != 1 {
		t.Errorf("Registrations = %d, want 1", snap.Registrations)
	}
	if snap.LoginSuccesses != 1 || snap.LoginFailures != 2 {
		t.Errorf("logins = %d/%d, want 1/2", snap.LoginSuccesses, snap.LoginFailures)
	}
	if snap.ProductCacheHits != 1 || snap.ProductCacheMisses != 1 {
		t.Errorf("cache = %d/%d, want 1/1", snap.ProductCacheHits, snap.ProductCacheMisses)
	}
	if snap.ProductsCreated != 1 || snap.ProductsUpdated != 1 || snap.ProductsDeleted != 1 {
		t.Errorf("products = %d/%d/%d, want 1/1/1",
			snap.ProductsCreated, snap.ProductsUpdated, snap.ProductsDeleted)
	}
}

func TestInMemoryRecorder_TokenRejectionReasons(t *testing.T) {
	t.Parallel()

	m := NewInMemory()

	m.IncTokenRejected("expired")
	m.IncTokenRejected("expired")
	m.IncTokenRejected("malformed")
	m.IncTokenRejected("invalid")
	m.IncTokenRejected("something else")

	snap := m.Snapshot()
	if snap.TokensExpired != 2 {
		t.Errorf("TokensExpired = %d, want 2", snap.TokensExpired)
	}
	if snap.TokensMalformed != 1 {
		t.Errorf("TokensMalformed = %d, want 1", snap.TokensMalformed)
	}
	// Unknown reasons count as invalid.
	if snap.TokensInvalid != 2 {
		t.Errorf("TokensInvalid = %d, want 2", snap.TokensInvalid)
	}
}

func TestInMemoryRecorder_Concurrent(t *testing.T) {
	t.Parallel()

	m := NewInMemory()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.IncRegistration()
			}
		}()
	}
	wg.Wait()

	if got := m.Snapshot().Registrations; got != 1000 {
		t.Errorf("Registrations = %d, want 1000", got)
	}
}
