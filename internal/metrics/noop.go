package metrics

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncRegistration is a no-op.
func (n *NoopRecorder) IncRegistration() {}

// IncLoginSuccess is a no-op.
func (n *NoopRecorder) IncLoginSuccess() {}

// IncLoginFailure is a no-op.
func (n *NoopRecorder) IncLoginFailure() {}

// IncTokenRejected is a no-op.
func (n *NoopRecorder) IncTokenRejected(reason string) {}

// IncProductCacheHit is a no-op.
func (n *NoopRecorder) IncProductCacheHit() {}

// IncProductCacheMiss is a no-op.
func (n *NoopRecorder) IncProductCacheMiss() {}

// IncProductCreated is a no-op.
func (n *NoopRecorder) IncProductCreated() {}

// IncProductUpdated is a no-op.
func (n *NoopRecorder) IncProductUpdated() {}

// IncProductDeleted is a no-op.
func (n *NoopRecorder) IncProductDeleted() {}
