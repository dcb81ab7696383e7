package handler

import (
	"fmt"
	"net/http"

	"github.com/shoply/shoply/internal/metrics"
)

// MetricsHandler exposes the in-memory counters to operators.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics writes the current counters in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "shoply_registrations_total %d\n", snap.Registrations)

	writeMetric(w, "shoply_logins_total{status=\"success\"} %d\n", snap.LoginSuccesses)
	writeMetric(w, "shoply_logins_total{status=\"failure\"} %d\n", snap.LoginFailures)

	writeMetric(w, "shoply_tokens_rejected_total{reason=\"expired\"} %d\n", snap.TokensExpired)
	writeMetric(w, "shoply_tokens_rejected_total{reason=\"invalid\"} %d\n", snap.TokensInvalid)
	writeMetric(w, "shoply_tokens_rejected_total{reason=\"malformed\"} %d\n", snap.TokensMalformed)

	writeMetric(w, "shoply_product_cache_reads_total{result=\"hit\"} %d\n", snap.ProductCacheHits)
	writeMetric(w, "shoply_product_cache_reads_total{result=\"miss\"} %d\n", snap.ProductCacheMisses)

	writeMetric(w, "shoply_products_created_total %d\n", snap.ProductsCreated)
	writeMetric(w, "shoply_products_updated_total %d\n", snap.ProductsUpdated)
	writeMetric(w, "shoply_products_deleted_total %d\n", snap.ProductsDeleted)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
