package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Store Metrics
	SessionWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "session_writes_total",
		Help: "The total number of session set operations.",
	}, []string{"backend"})
	SessionReads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "session_reads_total",
		Help: "The total number of session get operations that returned a value.",
	}, []string{"backend"})
	SessionMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "session_read_misses_total",
		Help: "The total number of session get operations on absent or expired keys.",
	}, []string{"backend"})
	SessionDeletes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "session_deletes_total",
		Help: "The total number of session remove operations.",
	}, []string{"backend"})
	StoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "session_store_errors_total",
		Help: "The total number of failed store operations.",
	}, []string{"backend", "op"})

	// Sweeper Metrics
	SessionsPurged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sessions_purged_total",
		Help: "The total number of expired session rows reclaimed by the sweeper.",
	})
)

// Handler exposes the Prometheus registry over HTTP.
func Handler() http.Handler {
	return promhttp.Handler()
}
