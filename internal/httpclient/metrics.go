package httpclient

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	lookupHit         = "hit"
	lookupMiss        = "miss"
	lookupRevalidated = "revalidated"
	lookupModified    = "modified"
	lookupMalformed   = "malformed"

	writeStored  = "stored"
	writeSkipped = "skipped"
	writeError   = "error"
)

type metrics struct {
	lookups     *prometheus.CounterVec
	writes      *prometheus.CounterVec
	storedBytes prometheus.Histogram
}

// newMetrics registers the client's metrics. A nil registerer keeps them
// unregistered.
func newMetrics(registerer prometheus.Registerer) *metrics {
	factory := promauto.With(registerer)

	return &metrics{
		lookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fetchcache_lookups_total",
				Help: "Total number of cache lookups, by outcome",
			},
			[]string{"result"},
		),
		writes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fetchcache_store_writes_total",
				Help: "Total number of responses handed to the store, by outcome",
			},
			[]string{"result"},
		),
		storedBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fetchcache_stored_bytes",
				Help:    "Size of the encoded entries written to the store",
				Buckets: prometheus.ExponentialBuckets(256, 4, 10),
			},
		),
	}
}
