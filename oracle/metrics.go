package oracle

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	callsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pope_oracle_calls_total",
			Help: "Total number of oracle calls issued by the POPE tree, by operation.",
		},
		[]string{"op"},
	)

	registerOnce sync.Once
)

func registerMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(callsTotal)
	})
}

// instrumented wraps an Oracle and reports a Prometheus counter per
// operation, making the oracle's call volume observable at runtime
// rather than only in tests.
type instrumented struct {
	under Oracle
}

// Instrument wraps o with Prometheus call counters. If o is a *Cached,
// it also registers gauges mirroring its hit/miss/size counters, same
// as calling InstrumentCache(o) directly; InstrumentCache is safe to
// call again on the same *Cached afterward, so callers that already
// hold a reference to it are free to call either one.
func Instrument(o Oracle) Oracle {
	registerMetrics()
	if c, ok := o.(*Cached); ok {
		InstrumentCache(c)
	}
	return &instrumented{under: o}
}

func (i *instrumented) Cmp(ctx context.Context, a, b CT) (Ordering, error) {
	callsTotal.WithLabelValues("cmp").Inc()
	return i.under.Cmp(ctx, a, b)
}

func (i *instrumented) Sort(ctx context.Context, items []CT) ([]CT, error) {
	callsTotal.WithLabelValues("sort").Inc()
	return i.under.Sort(ctx, items)
}

func (i *instrumented) Partition(ctx context.Context, items []CT, pivots []CT) ([]int, error) {
	callsTotal.WithLabelValues("partition").Inc()
	return i.under.Partition(ctx, items, pivots)
}

// InstrumentCache registers Prometheus gauges mirroring a Cached
// oracle's hit/miss/size counters. Safe to call more than once on the
// same *Cached: registration only happens the first time.
func InstrumentCache(c *Cached) {
	c.metricsOnce.Do(func() {
		hits := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "pope_oracle_cache_hits_total",
			Help: "Cumulative Cmp calls served from the comparison cache.",
		}, func() float64 {
			h, _, _ := c.Stats()
			return float64(h)
		})
		misses := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "pope_oracle_cache_misses_total",
			Help: "Cumulative Cmp calls that missed the comparison cache.",
		}, func() float64 {
			_, m, _ := c.Stats()
			return float64(m)
		})
		size := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "pope_oracle_cache_size",
			Help: "Current number of entries held in the comparison cache.",
		}, func() float64 {
			_, _, s := c.Stats()
			return float64(s)
		})
		prometheus.MustRegister(hits, misses, size)
	})
}
