package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the storefront collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	CartMutations      *prometheus.CounterVec
	Checkouts          prometheus.Counter
	CheckoutCents      prometheus.Counter
	CatalogFetchErrors *prometheus.CounterVec
	MalformedEntries   *prometheus.CounterVec
	CatalogProducts    prometheus.Gauge
	ActiveSessions     prometheus.Gauge
	RateLimited        prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CartMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_cart_mutations_total",
			Help: "Cart mutations by operation.",
		}, []string{"op"}),
		Checkouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_checkouts_total",
			Help: "Completed checkouts.",
		}),
		CheckoutCents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_checkout_amount_cents_total",
			Help: "Sum of checked out totals in minor units.",
		}),
		CatalogFetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_catalog_fetch_errors_total",
			Help: "Catalog loads that failed as a whole.",
		}, []string{"source"}),
		MalformedEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_catalog_malformed_entries_total",
			Help: "Catalog entries skipped during load.",
		}, []string{"source"}),
		CatalogProducts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "storefront_catalog_products",
			Help: "Products in the current catalog snapshot.",
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "storefront_active_sessions",
			Help: "Sessions holding a cart.",
		}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_rate_limited_total",
			Help: "Requests rejected by the rate limiter.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.CartMutations,
			m.Checkouts,
			m.CheckoutCents,
			m.CatalogFetchErrors,
			m.MalformedEntries,
			m.CatalogProducts,
			m.ActiveSessions,
			m.RateLimited,
		)
	}
	return m
}

func (m *Metrics) CartMutation(op string) {
	if m == nil {
		return
	}
	m.CartMutations.WithLabelValues(op).Inc()
}

func (m *Metrics) Checkout(totalCents int64) {
	if m == nil {
		return
	}
	m.Checkouts.Inc()
	m.CheckoutCents.Add(float64(totalCents))
}

func (m *Metrics) CatalogLoaded(source string, products, malformed int) {
	if m == nil {
		return
	}
	m.CatalogProducts.Set(float64(products))
	if malformed > 0 {
		m.MalformedEntries.WithLabelValues(source).Add(float64(malformed))
	}
}

func (m *Metrics) CatalogFailed(source string) {
	if m == nil {
		return
	}
	m.CatalogFetchErrors.WithLabelValues(source).Inc()
	m.CatalogProducts.Set(0)
}

func (m *Metrics) Sessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}

func (m *Metrics) Limited() {
	if m == nil {
		return
	}
	m.RateLimited.Inc()
}
