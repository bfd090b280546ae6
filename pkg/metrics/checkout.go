package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records conversion outcomes for cart checkouts.
type CheckoutMetrics struct {
	duration  *prometheus.HistogramVec
	converted prometheus.Counter
	conflicts prometheus.Counter
	failures  prometheus.Counter
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	converted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_converted_total",
		Help: "Carts successfully converted into reservation groups.",
	})
	conflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_conflict_total",
		Help: "Checkouts aborted because a held vehicle was no longer available.",
	})
	failures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_failure_total",
		Help: "Checkouts aborted by unexpected errors.",
	})
	reg.MustRegister(duration, converted, conflicts, failures)
	return &CheckoutMetrics{
		duration:  duration,
		converted: converted,
		conflicts: conflicts,
		failures:  failures,
	}
}

// ObserveDuration records the duration for a checkout outcome.
func (c *CheckoutMetrics) ObserveDuration(outcome string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// IncConverted increments the successful conversion counter.
func (c *CheckoutMetrics) IncConverted() {
	if c == nil || c.converted == nil {
		return
	}
	c.converted.Inc()
}

// IncConflict increments the availability conflict counter.
func (c *CheckoutMetrics) IncConflict() {
	if c == nil || c.conflicts == nil {
		return
	}
	c.conflicts.Inc()
}

// IncFailure increments the unexpected failure counter.
func (c *CheckoutMetrics) IncFailure() {
	if c == nil || c.failures == nil {
		return
	}
	c.failures.Inc()
}
