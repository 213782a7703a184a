package cache

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the loader's Prometheus collectors
type Metrics struct {
	hits     prometheus.Counter
	loads    *prometheus.CounterVec
	duration prometheus.Histogram
	rows     prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "phddash",
			Subsystem: "dataset",
			Name:      "cache_hits_total",
			Help:      "Loads served from the memoized table.",
		}),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "phddash",
			Subsystem: "dataset",
			Name:      "fetches_total",
			Help:      "Fetch+parse attempts by result.",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "phddash",
			Subsystem: "dataset",
			Name:      "fetch_duration_seconds",
			Help:      "Time spent fetching and parsing the dataset.",
			Buckets:   prometheus.DefBuckets,
		}),
		rows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "phddash",
			Subsystem: "dataset",
			Name:      "rows",
			Help:      "Rows in the memoized table.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.hits, m.loads, m.duration, m.rows)
	}
	return m
}
