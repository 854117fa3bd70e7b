package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveQuote("add", "ok")
		m.ObserveChainRead("getReserves", time.Millisecond, errors.New("boom"))
		m.ObserveSuperseded()
	})
}

func TestObserveQuoteCountsByOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveQuote("add", "ok")
	m.ObserveQuote("add", "ok")
	m.ObserveQuote("remove", "pool_not_found")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.quotes.WithLabelValues("add", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.quotes.WithLabelValues("remove", "pool_not_found")))
}

func TestObserveChainReadCountsFailures(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveChainRead("getReserves", 5*time.Millisecond, nil)
	m.ObserveChainRead("getReserves", 5*time.Millisecond, errors.New("timeout"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.chainReadFailures.WithLabelValues("getReserves")))

	families, err := reg.Gather()
	require.NoError(t, err)
	var found bool
	for _, mf := range families {
		if mf.GetName() == "liquidity_quote_chain_read_seconds" {
			found = true
			require.Len(t, mf.GetMetric(), 1)
			assert.Equal(t, uint64(2), mf.GetMetric()[0].GetHistogram().GetSampleCount())
		}
	}
	assert.True(t, found)
}
