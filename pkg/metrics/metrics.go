package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	Queries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "maxrand_queries_total", Help: "Baseline queries by kind",
	}, []string{"kind"})
	ComputeSeconds = prometheus.NewSummary(prometheus.SummaryOpts{
		Name: "maxrand_compute_seconds", Help: "Distribution build and query latency",
	})
	CacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "maxrand_cache_hits_total", Help: "Baseline cache hits",
	})
	CacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "maxrand_cache_misses_total", Help: "Baseline cache misses",
	})
	Evaluations = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "maxrand_evaluations_total", Help: "Stored evaluation verdicts",
	})
)

func MustRegister() {
	prometheus.MustRegister(Queries, ComputeSeconds, CacheHits, CacheMisses, Evaluations)
}
