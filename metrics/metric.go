package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "stratofs"

var (
	Registry = prometheus.NewRegistry()

	CacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ufs_cache",
		Name:      "hits_total",
		Help:      "mount cache lookups answered locally",
	})
	CacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ufs_cache",
		Name:      "misses_total",
		Help:      "mount cache lookups that fell through to the master",
	})
	MasterQueries = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ufs_cache",
		Name:      "master_queries_total",
		Help:      "get ufs info round trips to the master",
	})
	UfsConnects = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ufs_cache",
		Name:      "connects_total",
		Help:      "ufs connection handshakes by worker role",
	}, []string{"role"})
	ConnectRollbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ufs_cache",
		Name:      "connect_rollbacks_total",
		Help:      "cache entries removed after a failed connect",
	})
	UfsClosed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ufs_cache",
		Name:      "ufs_closed_total",
		Help:      "ufs driver instances closed, including losers of populate races",
	})
)

func init() {
	Registry.MustRegister(
		CacheHits,
		CacheMisses,
		MasterQueries,
		UfsConnects,
		ConnectRollbacks,
		UfsClosed,
	)
}
