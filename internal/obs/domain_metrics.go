package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// QuoteTotal counts quote computations by outcome.
	QuoteTotal *prometheus.CounterVec
	// QuoteFailureTotal counts failed quotes by failure reason.
	QuoteFailureTotal *prometheus.CounterVec
	// QuoteAmountCents records the distribution of quoted totals in cents.
	QuoteAmountCents *prometheus.HistogramVec
	// SnapshotRefreshTotal counts configuration snapshot refresh outcomes.
	SnapshotRefreshTotal *prometheus.CounterVec
	// SnapshotVersion exposes the configuration generation currently served.
	SnapshotVersion prometheus.Gauge
	// SnapshotAgeSeconds exposes the age of the active snapshot.
	SnapshotAgeSeconds prometheus.Gauge
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		QuoteTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_total",
			Help:      "Count of shipping quote computations by outcome.",
		}, []string{"result"})
		QuoteFailureTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_failure_total",
			Help:      "Count of failed shipping quotes by reason.",
		}, []string{"reason"})
		QuoteAmountCents = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quote_amount_cents",
			Help:      "Distribution of quoted shipping totals in cents.",
			Buckets:   []float64{0, 100, 250, 500, 1000, 2000, 5000, 10000},
		}, []string{"method"})
		SnapshotRefreshTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_refresh_total",
			Help:      "Count of configuration snapshot refresh attempts by outcome.",
		}, []string{"result"})
		SnapshotVersion = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_version",
			Help:      "Configuration generation of the snapshot currently serving quotes.",
		})
		SnapshotAgeSeconds = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_age_seconds",
			Help:      "Age of the active configuration snapshot in seconds.",
		})

		mustRegisterCollector(reg, QuoteTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				QuoteTotal = v
			}
		})
		mustRegisterCollector(reg, QuoteFailureTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				QuoteFailureTotal = v
			}
		})
		mustRegisterCollector(reg, QuoteAmountCents, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.HistogramVec); ok {
				QuoteAmountCents = v
			}
		})
		mustRegisterCollector(reg, SnapshotRefreshTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				SnapshotRefreshTotal = v
			}
		})
		mustRegisterCollector(reg, SnapshotVersion, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Gauge); ok {
				SnapshotVersion = v
			}
		})
		mustRegisterCollector(reg, SnapshotAgeSeconds, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Gauge); ok {
				SnapshotAgeSeconds = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register metric: %w", err))
	}
}
