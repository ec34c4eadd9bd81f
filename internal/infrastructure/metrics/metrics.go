package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CacheMetrics counts cache facade outcomes by operation. The facade never
// surfaces errors to callers, so these counters are the only place a backend
// problem is visible beyond the logs.
type CacheMetrics struct {
	Hits   *prometheus.CounterVec
	Misses *prometheus.CounterVec
	Errors *prometheus.CounterVec
}

// NewCacheMetrics creates the counters and registers them on reg. Passing a
// fresh registry per instance keeps tests isolated.
func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	m := &CacheMetrics{
		Hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Cache operations that found or wrote a value.",
		}, []string{"operation"}),
		Misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Cache reads that found no value.",
		}, []string{"operation"}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_errors_total",
			Help: "Cache operations that failed against the backend or codec, including operations short-circuited because the cache is disabled.",
		}, []string{"operation"}),
	}
	reg.MustRegister(m.Hits, m.Misses, m.Errors)
	return m
}
