package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCheckoutMetricsCount(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewCheckoutMetrics(reg)

	m.IncPlaced()
	m.IncPlaced()
	m.IncRejected("insufficient_stock")
	m.IncRejected("")

	if got := testutil.ToFloat64(m.placed); got != 2 {
		t.Fatalf("placed = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.rejected.WithLabelValues("insufficient_stock")); got != 1 {
		t.Fatalf("rejected[insufficient_stock] = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.rejected.WithLabelValues("unknown")); got != 1 {
		t.Fatalf("rejected[unknown] = %v, want 1", got)
	}
}

func TestNilSafe(t *testing.T) {
	t.Parallel()

	var m *CheckoutMetrics
	m.IncPlaced()
	m.IncRejected("x")
	m.ObserveDuration(0.5)

	empty := NewCheckoutMetrics(nil)
	empty.IncPlaced()
}
