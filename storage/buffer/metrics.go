package buffer

import "github.com/prometheus/client_golang/prometheus"

// metrics holds the pool's counters. The counters always exist so callers
// of Inc never nil-check; they are only exposed when a registerer is
// supplied through WithMetrics.
type metrics struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	evictions prometheus.Counter
	flushes   prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	mt := &metrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pagestore",
			Subsystem: "buffer",
			Name:      "hits_total",
			Help:      "Page requests served by a resident page.",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pagestore",
			Subsystem: "buffer",
			Name:      "misses_total",
			Help:      "Page requests that faulted the page in from disk.",
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pagestore",
			Subsystem: "buffer",
			Name:      "evictions_total",
			Help:      "Resident pages evicted to reclaim a slot.",
		}),
		flushes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pagestore",
			Subsystem: "buffer",
			Name:      "flushes_total",
			Help:      "Dirty pages written back to disk.",
		}),
	}
	if reg != nil {
		reg.MustRegister(mt.hits, mt.misses, mt.evictions, mt.flushes)
	}
	return mt
}
