package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ecrit",
		Subsystem: "cache",
		Name:      "requests_total",
		Help:      "Cache lookups by backend and result (hit, miss, error).",
	}, []string{"backend", "result"})

	cacheErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ecrit",
		Subsystem: "cache",
		Name:      "errors_total",
		Help:      "Absorbed cache backend errors by operation.",
	}, []string{"backend", "op"})

	cacheInvalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ecrit",
		Subsystem: "cache",
		Name:      "invalidations_total",
		Help:      "Cache invalidations by kind (exact, prefix).",
	}, []string{"backend", "kind"})

	cacheSwept = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ecrit",
		Subsystem: "cache",
		Name:      "swept_total",
		Help:      "Expired entries removed by the periodic sweep.",
	}, []string{"backend"})
)
