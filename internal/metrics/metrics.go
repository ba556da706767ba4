// Package metrics collects and exposes Prometheus metrics for the
// reconciliation flow.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector counts reconciliation outcomes. A nil *Collector is safe to use
// and records nothing, so the flow works without metrics wired.
type Collector struct {
	fallbackPublishes   prometheus.Counter
	reconciledPublishes prometheus.Counter
	staleDiscards       prometheus.Counter
	fetchFailures       prometheus.Counter
	billingReconciles   prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		fallbackPublishes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "subie_fallback_publishes_total",
			Help: "States published with a fallback profile derived from session metadata.",
		}),
		reconciledPublishes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "subie_reconciled_publishes_total",
			Help: "States published after the authoritative profile replaced the fallback.",
		}),
		staleDiscards: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "subie_stale_results_discarded_total",
			Help: "Profile fetch results discarded because the subject no longer matched.",
		}),
		fetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "subie_profile_fetch_failures_total",
			Help: "Profile store fetch failures absorbed by the flow.",
		}),
		billingReconciles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "subie_billing_reconciles_total",
			Help: "Billing ledger reconciliations written through to the profile store.",
		}),
	}

	reg.MustRegister(
		c.fallbackPublishes,
		c.reconciledPublishes,
		c.staleDiscards,
		c.fetchFailures,
		c.billingReconciles,
	)

	return c
}

func (c *Collector) RecordFallbackPublish() {
	if c != nil {
		c.fallbackPublishes.Inc()
	}
}

func (c *Collector) RecordReconciledPublish() {
	if c != nil {
		c.reconciledPublishes.Inc()
	}
}

func (c *Collector) RecordStaleDiscard() {
	if c != nil {
		c.staleDiscards.Inc()
	}
}

func (c *Collector) RecordFetchFailure() {
	if c != nil {
		c.fetchFailures.Inc()
	}
}

func (c *Collector) RecordBillingReconcile() {
	if c != nil {
		c.billingReconciles.Inc()
	}
}

// Handler returns the HTTP handler for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
