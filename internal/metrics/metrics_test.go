package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.CartMutation("add")
	m.CartMutation("add")
	m.Checkout(6100)
	m.CatalogLoaded("file", 4, 1)
	m.CatalogFailed("remote")

	if got := testutil.ToFloat64(m.CartMutations.WithLabelValues("add")); got != 2 {
		t.Fatalf("expected 2 add mutations, got %v", got)
	}
	if got := testutil.ToFloat64(m.CheckoutCents); got != 6100 {
		t.Fatalf("expected 6100 cents, got %v", got)
	}
	if got := testutil.ToFloat64(m.MalformedEntries.WithLabelValues("file")); got != 1 {
		t.Fatalf("expected 1 malformed entry, got %v", got)
	}
	if got := testutil.ToFloat64(m.CatalogProducts); got != 0 {
		t.Fatalf("expected product gauge reset after failure, got %v", got)
	}
	if n, err := testutil.GatherAndCount(reg); err != nil || n == 0 {
		t.Fatalf("expected registered metrics, got %d err=%v", n, err)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.CartMutation("add")
	m.Checkout(1)
	m.CatalogLoaded("file", 1, 1)
	m.CatalogFailed("file")
	m.Sessions(3)
	m.Limited()
}
