// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Auth metrics
	IncRegistration()
	IncLoginSuccess()
	IncLoginFailure()
	IncTokenRejected(reason string) // reason: "expired", "invalid", "malformed"

	// Catalog metrics
	IncProductCacheHit()
	IncProductCacheMiss()
	IncProductCreated()
	IncProductUpdated()
	IncProductDeleted()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
