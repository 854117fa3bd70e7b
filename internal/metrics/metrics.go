// Package metrics holds the Prometheus collectors shared by the quote engine
// and the HTTP surface. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "liquidity_quote"

type Metrics struct {
	quotes            *prometheus.CounterVec
	chainReads        *prometheus.HistogramVec
	chainReadFailures *prometheus.CounterVec
	superseded        prometheus.Counter
}

// New creates the collectors and registers them on reg. A nil reg leaves them
// unregistered, which tests use to avoid global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		quotes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_total",
			Help:      "Liquidity quotes computed, by kind and outcome.",
		}, []string{"kind", "outcome"}),
		chainReads: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chain_read_seconds",
			Help:      "Latency of chain reads including retries.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		chainReadFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chain_read_failures_total",
			Help:      "Chain reads that failed after all retries.",
		}, []string{"op"}),
		superseded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_superseded_total",
			Help:      "Quote results discarded because a newer request started.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.quotes, m.chainReads, m.chainReadFailures, m.superseded)
	}
	return m
}

func (m *Metrics) ObserveQuote(kind, outcome string) {
	if m == nil {
		return
	}
	m.quotes.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) ObserveChainRead(op string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.chainReads.WithLabelValues(op).Observe(elapsed.Seconds())
	if err != nil {
		m.chainReadFailures.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) ObserveSuperseded() {
	if m == nil {
		return
	}
	m.superseded.Inc()
}
