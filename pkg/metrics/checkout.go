package metrics

import "github.com/prometheus/client_golang/prometheus"

// CheckoutMetrics counts order placement outcomes.
type CheckoutMetrics struct {
	placed   prometheus.Counter
	rejected *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	placed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_orders_placed_total",
		Help: "Orders successfully placed.",
	})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_orders_rejected_total",
		Help: "Checkout attempts rejected, by reason.",
	}, []string{"reason"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of the order placement sequence in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(placed, rejected, duration)
	return &CheckoutMetrics{
		placed:   placed,
		rejected: rejected,
		duration: duration,
	}
}

// IncPlaced increments the successful order counter.
func (c *CheckoutMetrics) IncPlaced() {
	if c == nil || c.placed == nil {
		return
	}
	c.placed.Inc()
}

// IncRejected increments the rejection counter for the given reason.
func (c *CheckoutMetrics) IncRejected(reason string) {
	if c == nil || c.rejected == nil {
		return
	}
	if reason == "" {
		reason = "unknown"
	}
	c.rejected.WithLabelValues(reason).Inc()
}

// ObserveDuration records how long the placement sequence took.
func (c *CheckoutMetrics) ObserveDuration(seconds float64) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.Observe(seconds)
}
